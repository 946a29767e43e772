package driver

import (
	"iter"
	"reflect"
	"regexp"
	"sort"
	"time"

	"github.com/leapstack-labs/leapdal/pkg/core"
)

// Query is a field-equality predicate: a document matches when every key
// holds an equal value. An empty Query matches every document.
type Query map[string]any

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that every key is a plain field name.
func (q Query) Validate() error {
	for k := range q {
		if !keyPattern.MatchString(k) {
			return core.InvalidInputf("query key %q is not a field name", k)
		}
	}
	return nil
}

// Keys returns the query keys in sorted order.
func (q Query) Keys() []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Matches reports whether doc satisfies the predicate.
func (q Query) Matches(doc core.Document) bool {
	for k, want := range q {
		got, ok := doc[k]
		if !ok || !ValueEqual(got, want) {
			return false
		}
	}
	return true
}

// ValueEqual compares two document values. Numbers compare by value
// regardless of their Go type and timestamps compare as instants.
func ValueEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if ta, ok := toTime(a); ok {
		tb, ok := toTime(b)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

// Collect drains a query sequence into a slice, stopping at the first error.
func Collect(seq iter.Seq2[core.Document, error]) ([]core.Document, error) {
	var docs []core.Document
	for doc, err := range seq {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
