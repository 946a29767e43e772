package duckdb

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

func TestStore_Registered(t *testing.T) {
	assert.True(t, driver.IsRegistered(Name))

	b, err := driver.NewBackend(driver.Config{Type: "duckdb"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Name, b.Name())
}

func TestDialect_FieldEquals(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		wantClause string
		wantArg    any
		wantErr    bool
	}{
		{
			name:       "string",
			value:      "s1",
			wantClause: "json_type(body, '$.k') = 'VARCHAR' AND json_extract_string(body, '$.k') = ?",
			wantArg:    "s1",
		},
		{
			name:       "int compares as double",
			value:      20,
			wantClause: "json_type(body, '$.k') IN ('BIGINT', 'UBIGINT', 'DOUBLE') AND CAST(json_extract_string(body, '$.k') AS DOUBLE) = ?",
			wantArg:    float64(20),
		},
		{
			name:       "bool",
			value:      true,
			wantClause: "json_type(body, '$.k') = 'BOOLEAN' AND json_extract_string(body, '$.k') = 'true'",
		},
		{
			name:       "null",
			value:      nil,
			wantClause: "json_type(body, '$.k') = 'NULL'",
		},
		{
			name:    "map",
			value:   map[string]any{"a": 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, arg, err := Dialect{}.FieldEquals("k", 2, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, tt.wantArg, arg)
		})
	}
}

func TestStore_QueryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := New(nil)
	s.DB = db

	stmt := `SELECT body FROM documents WHERE collection = ? AND json_type(body, '$.model_id') = 'VARCHAR' AND json_extract_string(body, '$.model_id') = ? ORDER BY created_ns, id`
	mock.ExpectQuery(regexp.QuoteMeta(stmt)).
		WithArgs("snapshot", "m1").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(`{"id":"sn1","model_id":"m1"}`))

	docs, err := driver.Collect(s.Query(context.Background(), core.CollectionSnapshot, driver.Query{"model_id": "m1"}))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "sn1", docs[0]["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_NotConnected(t *testing.T) {
	s := New(nil)
	_, err := s.Get(context.Background(), core.CollectionModel, "m1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")
}
