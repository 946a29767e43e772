package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/leapstack-labs/leapdal/pkg/core"
)

// Dialect is the PostgreSQL flavor of the document table SQL.
type Dialect struct{}

// Name returns the dialect name.
func (Dialect) Name() string { return Name }

// Bind returns the numbered placeholder.
func (Dialect) Bind(n int) string { return fmt.Sprintf("$%d", n) }

// BodyExpr renders the JSONB body as text.
func (Dialect) BodyExpr() string { return "body::text" }

// UpsertSQL returns the insert-or-replace statement.
func (Dialect) UpsertSQL() string {
	return `INSERT INTO documents (collection, id, body, created_ns, updated_ns)
VALUES ($1, $2, $3::jsonb, $4, $5)
ON CONFLICT (collection, id) DO UPDATE SET
    body = EXCLUDED.body,
    created_ns = EXCLUDED.created_ns,
    updated_ns = EXCLUDED.updated_ns`
}

// FieldEquals matches with JSONB containment, which also covers nested
// objects and arrays.
func (Dialect) FieldEquals(key string, n int, value any) (string, any, error) {
	if t, ok := value.(time.Time); ok {
		value = t.UTC().Format(time.RFC3339Nano)
	}
	fragment, err := json.Marshal(map[string]any{key: value})
	if err != nil {
		return "", nil, core.InvalidInputf("cannot filter on %s: %v", key, err)
	}
	return fmt.Sprintf("body @> $%d::jsonb", n), string(fragment), nil
}
