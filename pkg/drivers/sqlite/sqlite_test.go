package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdal/internal/testutil"
	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/dal"
	"github.com/leapstack-labs/leapdal/pkg/driver"
	"github.com/leapstack-labs/leapdal/pkg/driver/drivertest"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s := New(testutil.NewTestLogger(t))
	require.NoError(t, s.Open(context.Background(), driver.Config{Path: MemoryPath}))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	drivertest.Run(t, func(t *testing.T) driver.Driver {
		return openMemory(t)
	})
}

func TestStore_Registered(t *testing.T) {
	assert.True(t, driver.IsRegistered(Name))

	b, err := driver.Open(context.Background(), driver.Config{Type: "SQLite"}, nil)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()
	assert.Equal(t, Name, b.Name())
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.db")

	s := New(nil)
	require.NoError(t, s.Open(ctx, driver.Config{Path: path}))
	assert.Equal(t, path, s.Path())

	stored, err := s.Set(ctx, core.CollectionModel, core.Document{"name": "churn"})
	require.NoError(t, err)
	id, _ := stored.ID()

	version, err := s.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	require.NoError(t, s.Close())

	reopened := New(nil)
	require.NoError(t, reopened.Open(ctx, driver.Config{Path: path}))
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, core.CollectionModel, id)
	require.NoError(t, err)
	assert.Equal(t, "churn", got["name"])
}

func TestStore_QueryTypes(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	_, err := s.Set(ctx, core.CollectionTask, core.Document{"name": "flag", "gpu": true})
	require.NoError(t, err)
	_, err = s.Set(ctx, core.CollectionTask, core.Document{"name": "one", "gpu": 1})
	require.NoError(t, err)
	_, err = s.Set(ctx, core.CollectionTask, core.Document{"name": "nothing", "gpu": nil})
	require.NoError(t, err)

	tests := []struct {
		name  string
		query driver.Query
		want  string
	}{
		{name: "true is not one", query: driver.Query{"gpu": true}, want: "flag"},
		{name: "one is not true", query: driver.Query{"gpu": 1}, want: "one"},
		{name: "null", query: driver.Query{"gpu": nil}, want: "nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := driver.Collect(s.Query(ctx, core.CollectionTask, tt.query))
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, tt.want, docs[0]["name"])
		})
	}
}

func TestDialect_FieldEquals(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		wantClause string
		wantArg    any
		wantErr    bool
	}{
		{name: "string", value: "s1", wantClause: "json_type(body, '$.session_id') = 'text' AND json_extract(body, '$.session_id') = ?", wantArg: "s1"},
		{name: "number", value: 20, wantClause: "json_type(body, '$.session_id') IN ('integer', 'real') AND json_extract(body, '$.session_id') = ?", wantArg: 20},
		{name: "true", value: true, wantClause: "json_type(body, '$.session_id') = 'true'"},
		{name: "false", value: false, wantClause: "json_type(body, '$.session_id') = 'false'"},
		{name: "null", value: nil, wantClause: "json_type(body, '$.session_id') = 'null'"},
		{name: "list", value: []any{"a"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, arg, err := Dialect{}.FieldEquals("session_id", 2, tt.value)
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

func TestStore_MemoryWritesInsideQueryLoop(t *testing.T) {
	s := openMemory(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range []string{"churn", "retention"} {
		_, err := s.Set(ctx, core.CollectionModel, core.Document{"name": name})
		require.NoError(t, err)
	}

	n := 0
	for doc, err := range s.Query(ctx, core.CollectionModel, nil) {
		require.NoError(t, err)
		doc["name"] = doc["name"].(string) + "-v2"
		_, err = s.Set(ctx, core.CollectionModel, doc)
		require.NoError(t, err, "write while ranging over a query")
		n++
	}
	assert.Equal(t, 2, n)

	docs, err := driver.Collect(s.Query(ctx, core.CollectionModel, driver.Query{"name": "churn-v2"}))
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestStore_MemoryNestedDALUpdate(t *testing.T) {
	d := dal.New(openMemory(t))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := d.Model().Create(ctx, dal.Entity(&core.Model{Name: "churn"}))
	require.NoError(t, err)

	for m, err := range d.Model().All(ctx, nil) {
		require.NoError(t, err)
		_, err = d.Model().Update(ctx, dal.Fragment(core.Document{"id": m.ID, "description": "nightly"}))
		require.NoError(t, err)
	}

	models, err := d.Model().Query(ctx, nil)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "nightly", models[0].Description)
}
