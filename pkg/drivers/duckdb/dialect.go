package duckdb

import (
	"fmt"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/drivers/sqldoc"
)

// Dialect is the DuckDB flavor of the document table SQL.
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
    body = EXCLUDED.body,
    created_ns = EXCLUDED.created_ns,
    updated_ns = EXCLUDED.updated_ns`
}

// FieldEquals compares a top-level JSON field, guarding on its JSON type.
// Numbers compare as DOUBLE so 20 and 20.0 are equal.
func (Dialect) FieldEquals(key string, _ int, value any) (string, any, error) {
	arg, err := sqldoc.ScalarArg(value)
	if err != nil {
		return "", nil, err
	}

	path := sqldoc.JSONPath(key)
	switch v := arg.(type) {
	case nil:
		return fmt.Sprintf("json_type(body, %s) = 'NULL'", path), nil, nil
	case bool:
		return fmt.Sprintf("json_type(body, %[1]s) = 'BOOLEAN' AND json_extract_string(body, %[1]s) = '%[2]t'", path, v), nil, nil
	case string:
		return fmt.Sprintf("json_type(body, %[1]s) = 'VARCHAR' AND json_extract_string(body, %[1]s) = ?", path), v, nil
	default:
		f, ok := toDouble(v)
		if !ok {
			return "", nil, core.InvalidInputf("cannot filter on %T values", value)
		}
		return fmt.Sprintf("json_type(body, %[1]s) IN ('BIGINT', 'UBIGINT', 'DOUBLE') AND CAST(json_extract_string(body, %[1]s) AS DOUBLE) = ?", path), f, nil
	}
}

func toDouble(v any) (float64, bool) {
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
	default:
		return 0, false
	}
}
