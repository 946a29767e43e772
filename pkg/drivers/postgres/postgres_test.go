package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdal/internal/testutil"
	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   driver.Config
		expected string
	}{
		{
			name: "basic connection",
			config: driver.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				User:     "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: driver.Config{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				User:     "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name:     "defaults",
			config:   driver.Config{Database: "datmo"},
			expected: "host=localhost port=5432 dbname=datmo sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func TestStore_Registered(t *testing.T) {
	assert.True(t, driver.IsRegistered(Name))

	b, err := driver.NewBackend(driver.Config{Type: "postgres"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Name, b.Name())
}

func TestDialect_FieldEquals(t *testing.T) {
	ts := time.Date(2024, 1, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		name    string
		value   any
		wantArg string
	}{
		{name: "string", value: "s1", wantArg: `{"session_id":"s1"}`},
		{name: "number", value: 20, wantArg: `{"session_id":20}`},
		{name: "bool", value: true, wantArg: `{"session_id":true}`},
		{name: "null", value: nil, wantArg: `{"session_id":null}`},
		{name: "time is normalized to UTC", value: ts, wantArg: `{"session_id":"2024-01-01T12:00:00Z"}`},
		{name: "object", value: map[string]any{"gpu": 1}, wantArg: `{"session_id":{"gpu":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, arg, err := Dialect{}.FieldEquals("session_id", 3, tt.value)
			require.NoError(t, err)
			assert.Equal(t, "body @> $3::jsonb", clause)
			assert.Equal(t, tt.wantArg, arg)
		})
	}
}

func TestDialect_FieldEqualsUnencodable(t *testing.T) {
	_, _, err := Dialect{}.FieldEquals("x", 2, make(chan int))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(testutil.NewTestLogger(t))
	s.DB = db
	return s, mock
}

func TestStore_Get(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"body"}).AddRow(`{"id": "c1", "commit_id": "abc"}`)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT body::text FROM documents WHERE collection = $1 AND id = $2`)).
		WithArgs("code", "c1").
		WillReturnRows(rows)

	doc, err := s.Get(context.Background(), core.CollectionCode, "c1")
	require.NoError(t, err)
	assert.Equal(t, "abc", doc["commit_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Set(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Minute)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (collection, id, body, created_ns, updated_ns)`)).
		WithArgs("code", "c1", sqlmock.AnyArg(), created.UnixNano(), updated.UnixNano()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stored, err := s.Set(context.Background(), core.CollectionCode, core.Document{
		"id":              "c1",
		"commit_id":       "abc",
		core.KeyCreatedAt: created,
		core.KeyUpdatedAt: updated,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", stored["commit_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Query(t *testing.T) {
	s, mock := newMockStore(t)
	stmt := `SELECT body::text FROM documents WHERE collection = $1 AND body @> $2::jsonb AND body @> $3::jsonb ORDER BY created_ns, id`
	rows := sqlmock.NewRows([]string{"body"}).AddRow(`{"id": "t1", "name": "train"}`)
	mock.ExpectQuery(regexp.QuoteMeta(stmt)).
		WithArgs("task", `{"gpu":false}`, `{"session_id":"s1"}`).
		WillReturnRows(rows)

	docs, err := driver.Collect(s.Query(context.Background(), core.CollectionTask, driver.Query{"session_id": "s1", "gpu": false}))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "train", docs[0]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE collection = $1 AND id = $2`)).
		WithArgs("session", "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	existed, err := s.Delete(context.Background(), core.CollectionSession, "s1")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_OpenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s := New(nil)
	err := s.Open(ctx, driver.Config{Host: "127.0.0.1", Port: 1, Database: "none"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.Nil(t, s.DB)
}
