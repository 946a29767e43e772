package sqlite

import (
	"fmt"

	"github.com/leapstack-labs/leapdal/pkg/drivers/sqldoc"
)

// Dialect is the SQLite flavor of the document table SQL.
type Dialect struct{}

// Name returns the dialect name.
func (Dialect) Name() string { return Name }

// Bind returns the positional placeholder.
func (Dialect) Bind(int) string { return "?" }

// BodyExpr returns the body column.
func (Dialect) BodyExpr() string { return "body" }

// UpsertSQL returns the insert-or-replace statement.
func (Dialect) UpsertSQL() string {
	return `INSERT INTO documents (collection, id, body, created_ns, updated_ns)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET
    body = excluded.body,
    created_ns = excluded.created_ns,
    updated_ns = excluded.updated_ns`
}

// FieldEquals compares a top-level JSON field with json_extract. The JSON
// type is checked as well since json_extract maps true to 1.
func (Dialect) FieldEquals(key string, _ int, value any) (string, any, error) {
	arg, err := sqldoc.ScalarArg(value)
	if err != nil {
		return "", nil, err
	}

	path := sqldoc.JSONPath(key)
	switch v := arg.(type) {
	case nil:
		return fmt.Sprintf("json_type(body, %s) = 'null'", path), nil, nil
	case bool:
		return fmt.Sprintf("json_type(body, %s) = '%t'", path, v), nil, nil
	case string:
		return fmt.Sprintf("json_type(body, %[1]s) = 'text' AND json_extract(body, %[1]s) = ?", path), v, nil
	default:
		return fmt.Sprintf("json_type(body, %[1]s) IN ('integer', 'real') AND json_extract(body, %[1]s) = ?", path), v, nil
	}
}
