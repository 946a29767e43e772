package sqldoc

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// qmark is a minimal dialect using ? placeholders.
type qmark struct{}

func (qmark) Name() string      { return "qmark" }
func (qmark) Bind(int) string   { return "?" }
func (qmark) BodyExpr() string  { return "body" }
func (qmark) UpsertSQL() string { return "UPSERT documents" }

func (qmark) FieldEquals(key string, _ int, value any) (string, any, error) {
	arg, err := ScalarArg(value)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("field(%s) = ?", key), arg, nil
}

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewStore(db, qmark{}, nil)
	s.Now = func() time.Time { return now }
	return &s, mock
}

func TestStore_Close(t *testing.T) {
	tests := []struct {
		name    string
		setupDB bool
	}{
		{name: "close with nil DB", setupDB: false},
		{name: "close with open DB", setupDB: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(nil, qmark{}, nil)
			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				s.DB = db
			}
			assert.NoError(t, s.Close())
		})
	}
}

func TestStore_NotConnected(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil, qmark{}, nil)

	tests := []struct {
		name      string
		operation func() error
	}{
		{name: "exec", operation: func() error { return s.Exec(ctx, "SELECT 1") }},
		{name: "get", operation: func() error {
			_, err := s.Get(ctx, core.CollectionModel, "m1")
			return err
		}},
		{name: "set", operation: func() error {
			_, err := s.Set(ctx, core.CollectionModel, core.Document{})
			return err
		}},
		{name: "delete", operation: func() error {
			_, err := s.Delete(ctx, core.CollectionModel, "m1")
			return err
		}},
		{name: "query", operation: func() error {
			_, err := driver.Collect(s.Query(ctx, core.CollectionModel, nil))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not established")
		})
	}
}

func TestStore_Exec(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE documents").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INVALID SQL").WillReturnError(assert.AnError)

	require.NoError(t, s.Exec(context.Background(), "CREATE TABLE documents (id TEXT)"))

	err := s.Exec(context.Background(), "INVALID SQL")
	var derr *core.DriverError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "qmark", derr.Driver)
	assert.Equal(t, "exec", derr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get(t *testing.T) {
	getSQL := regexp.QuoteMeta(`SELECT body FROM documents WHERE collection = ? AND id = ?`)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      core.Document
		errIs     error
		driverErr bool
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"body"}).AddRow(`{"id":"m1","name":"churn"}`)
				mock.ExpectQuery(getSQL).WithArgs("model", "m1").WillReturnRows(rows)
			},
			want: core.Document{"id": "m1", "name": "churn"},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(getSQL).WithArgs("model", "m1").WillReturnError(sql.ErrNoRows)
			},
			errIs: core.ErrNotFound,
		},
		{
			name: "backend failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(getSQL).WithArgs("model", "m1").WillReturnError(assert.AnError)
			},
			errIs:     assert.AnError,
			driverErr: true,
		},
		{
			name: "corrupt body",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"body"}).AddRow(`{not json`)
				mock.ExpectQuery(getSQL).WithArgs("model", "m1").WillReturnRows(rows)
			},
			driverErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setupMock(mock)

			got, err := s.Get(context.Background(), core.CollectionModel, "m1")
			switch {
			case tt.errIs != nil || tt.driverErr:
				require.Error(t, err)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}
				if tt.driverErr {
					var derr *core.DriverError
					assert.ErrorAs(t, err, &derr)
				}
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Set(t *testing.T) {
	upsert := regexp.QuoteMeta("UPSERT documents")

	t.Run("writes body and ordering columns", func(t *testing.T) {
		s, mock := newMockStore(t)
		body := `{"created_at":"2024-01-01T12:00:00Z","id":"m1","name":"churn","updated_at":"2024-01-01T12:00:00Z"}`
		mock.ExpectExec(upsert).
			WithArgs("model", "m1", body, now.UnixNano(), now.UnixNano()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		stored, err := s.Set(context.Background(), core.CollectionModel, core.Document{"id": "m1", "name": "churn"})
		require.NoError(t, err)
		assert.Equal(t, "m1", stored["id"])
		assert.Equal(t, "2024-01-01T12:00:00Z", stored[core.KeyCreatedAt])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("assigns id", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(upsert).
			WithArgs("user", sqlmock.AnyArg(), sqlmock.AnyArg(), now.UnixNano(), now.UnixNano()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		stored, err := s.Set(context.Background(), core.CollectionUser, core.Document{"name": "ada"})
		require.NoError(t, err)
		id, ok := stored.ID()
		assert.True(t, ok)
		assert.NotEmpty(t, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects malformed timestamps", func(t *testing.T) {
		s, mock := newMockStore(t)
		_, err := s.Set(context.Background(), core.CollectionUser, core.Document{core.KeyCreatedAt: "yesterday"})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps backend failure", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(upsert).WillReturnError(assert.AnError)

		_, err := s.Set(context.Background(), core.CollectionUser, core.Document{"name": "ada"})
		var derr *core.DriverError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "set", derr.Op)
		assert.Equal(t, core.CollectionUser, derr.Collection)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestStore_Delete(t *testing.T) {
	deleteSQL := regexp.QuoteMeta(`DELETE FROM documents WHERE collection = ? AND id = ?`)

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "existing", affected: 1, want: true},
		{name: "missing", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			mock.ExpectExec(deleteSQL).WithArgs("task", "t1").WillReturnResult(sqlmock.NewResult(0, tt.affected))

			existed, err := s.Delete(context.Background(), core.CollectionTask, "t1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, existed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Query(t *testing.T) {
	t.Run("filters and orders", func(t *testing.T) {
		s, mock := newMockStore(t)
		stmt := regexp.QuoteMeta(`SELECT body FROM documents WHERE collection = ? AND field(gpu) = ? AND field(session_id) = ? ORDER BY created_ns, id`)
		rows := sqlmock.NewRows([]string{"body"}).
			AddRow(`{"id":"t1","name":"first"}`).
			AddRow(`{"id":"t2","name":"second"}`)
		mock.ExpectQuery(stmt).WithArgs("task", true, "s1").WillReturnRows(rows)

		docs, err := driver.Collect(s.Query(context.Background(), core.CollectionTask, driver.Query{"session_id": "s1", "gpu": true}))
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "first", docs[0]["name"])
		assert.Equal(t, "second", docs[1]["name"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops when the consumer stops", func(t *testing.T) {
		s, mock := newMockStore(t)
		rows := sqlmock.NewRows([]string{"body"}).
			AddRow(`{"id":"t1"}`).
			AddRow(`{"id":"t2"}`)
		mock.ExpectQuery("SELECT body FROM documents").WillReturnRows(rows).RowsWillBeClosed()

		count := 0
		for _, err := range s.Query(context.Background(), core.CollectionTask, nil) {
			require.NoError(t, err)
			count++
			break
		}
		assert.Equal(t, 1, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("buffered results free the connection before yielding", func(t *testing.T) {
		s, mock := newMockStore(t)
		s.Buffered = true
		s.DB.SetMaxOpenConns(1)

		rows := sqlmock.NewRows([]string{"body"}).
			AddRow(`{"id":"t1"}`).
			AddRow(`{"id":"t2"}`)
		mock.ExpectQuery("SELECT body FROM documents").WillReturnRows(rows).RowsWillBeClosed()
		mock.ExpectExec("DELETE FROM documents").WithArgs("task", "t1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM documents").WithArgs("task", "t2").WillReturnResult(sqlmock.NewResult(0, 1))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		for doc, err := range s.Query(ctx, core.CollectionTask, nil) {
			require.NoError(t, err)
			id, _ := doc.ID()
			existed, err := s.Delete(ctx, core.CollectionTask, id)
			require.NoError(t, err)
			assert.True(t, existed)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects malformed keys before touching the database", func(t *testing.T) {
		s, mock := newMockStore(t)
		_, err := driver.Collect(s.Query(context.Background(), core.CollectionTask, driver.Query{"a b": 1}))
		assert.ErrorIs(t, err, core.ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects composite filter values", func(t *testing.T) {
		s, _ := newMockStore(t)
		_, err := driver.Collect(s.Query(context.Background(), core.CollectionTask, driver.Query{"results": map[string]any{"a": 1}}))
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("wraps backend failure", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT body FROM documents").WillReturnError(assert.AnError)

		_, err := driver.Collect(s.Query(context.Background(), core.CollectionTask, nil))
		var derr *core.DriverError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "query", derr.Op)
	})
}

func TestScalarArg(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 500, time.UTC)

	tests := []struct {
		name    string
		value   any
		want    any
		wantErr bool
	}{
		{name: "string", value: "x", want: "x"},
		{name: "int", value: 3, want: 3},
		{name: "bool", value: false, want: false},
		{name: "nil", value: nil, want: nil},
		{name: "time", value: ts, want: "2024-01-01T12:00:00.0000005Z"},
		{name: "slice", value: []string{"a"}, wantErr: true},
		{name: "map", value: map[string]any{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScalarArg(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := gooseLogger{slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Printf("OK   %s (%d ms)\n", "00001_documents.sql", 3)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "00001_documents.sql")

	buf.Reset()
	assert.PanicsWithValue(t, "migrate: no such table", func() {
		l.Fatalf("no such %s", "table")
	})
	assert.Contains(t, buf.String(), "level=ERROR")
}
