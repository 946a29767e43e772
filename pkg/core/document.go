package core

import (
	"fmt"
	"time"
)

// Reserved document keys.
const (
	KeyID        = "id"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
)

// Document is the raw field map a driver persists for one entity instance.
type Document map[string]any

// ID returns the document id and whether a non-empty string id is present.
func (d Document) ID() (string, bool) {
	v, ok := d[KeyID]
	if !ok || v == nil {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Has reports whether the document carries a non-nil value for key.
func (d Document) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

// Time reads a timestamp field. Missing and nil values report ok=false.
func (d Document) Time(key string) (t time.Time, ok bool, err error) {
	v, present := d[key]
	if !present || v == nil {
		return time.Time{}, false, nil
	}
	t, err = ParseTime(v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("field %s: %w", key, err)
	}
	return t, true, nil
}

// Clone returns a deep copy of the document. Nested maps and slices are
// copied; scalar values (including time.Time) are copied by value.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Document:
		return val.Clone()
	case map[string]any:
		return map[string]any(Document(val).Clone())
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

// ParseTime converts a stored timestamp into a UTC time.Time. It accepts
// time.Time, *time.Time and RFC 3339 strings.
func ParseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("nil timestamp")
		}
		return t.UTC(), nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", t, err)
		}
		return parsed.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}
