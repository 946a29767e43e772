package sqldoc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/leapstack-labs/leapdal/pkg/core"
)

// Dialect supplies the SQL that differs between backends. Every backend
// stores documents in one table:
//
//	documents(collection, id, body, created_ns, updated_ns)
//
// keyed by (collection, id), with body holding the JSON document.
type Dialect interface {
	// Name identifies the backend in errors and logs.
	Name() string

	// Bind returns the placeholder for the n-th (1-based) argument.
	Bind(n int) string

	// BodyExpr returns the select expression yielding body as JSON text.
	BodyExpr() string

	// UpsertSQL writes (collection, id, body, created_ns, updated_ns),
	// replacing any row with the same key.
	UpsertSQL() string

	// FieldEquals returns a predicate comparing the top-level body field
	// key against the n-th argument, and the argument to bind. Keys have
	// already been validated as plain field names.
	FieldEquals(key string, n int, value any) (clause string, arg any, err error)
}

// JSONPath returns the SQLite/DuckDB path of a top-level field.
func JSONPath(key string) string {
	return "'$." + key + "'"
}

// ScalarArg normalizes a filter value into its JSON scalar form: times
// become UTC RFC 3339 strings, as they are in stored bodies. Composite
// values are rejected.
func ScalarArg(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, nil
	case json.Number:
		return v.String(), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	default:
		return nil, core.InvalidInputf("cannot filter on %T values", value)
	}
}

func encodeBody(doc core.Document) ([]byte, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return body, nil
}

func decodeBody(body []byte) (core.Document, error) {
	var doc core.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
