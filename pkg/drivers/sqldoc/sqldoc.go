// Package sqldoc implements the driver contract on top of database/sql.
// Concrete backends (sqlite, postgres, duckdb) embed Store and supply a
// Dialect plus their own connection and schema setup.
package sqldoc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// Store provides the document operations shared by SQL backends.
//
// Buffered makes Query read every row and release the connection before
// yielding. Backends limited to one connection set it so callers can
// write from inside a range loop.
type Store struct {
	DB       *sql.DB
	Dialect  Dialect
	Logger   *slog.Logger
	Now      func() time.Time
	Buffered bool
}

// NewStore builds a Store over an already opened database.
// If logger is nil, a discard logger is used.
func NewStore(db *sql.DB, d Dialect, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Store{DB: db, Dialect: d, Logger: logger, Now: time.Now}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.DB != nil {
		s.Logger.Debug("closing database connection", slog.String("driver", s.Dialect.Name()))
		return s.DB.Close()
	}
	return nil
}

// Exec executes a statement that doesn't return rows.
func (s *Store) Exec(ctx context.Context, stmt string) error {
	if s.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
		return s.wrap("exec", "", err)
	}
	return nil
}

// Get returns the stored document.
func (s *Store) Get(ctx context.Context, collection, id string) (core.Document, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	stmt := fmt.Sprintf(`SELECT %s FROM documents WHERE collection = %s AND id = %s`,
		s.Dialect.BodyExpr(), s.Dialect.Bind(1), s.Dialect.Bind(2))

	var body []byte
	err := s.DB.QueryRowContext(ctx, stmt, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NotFoundError(collection, id)
	}
	if err != nil {
		return nil, s.wrap("get", collection, err)
	}

	doc, err := decodeBody(body)
	if err != nil {
		return nil, s.wrap("get", collection, err)
	}
	return doc, nil
}

// Set upserts the document, assigning an id and timestamps as needed.
func (s *Store) Set(ctx context.Context, collection string, doc core.Document) (core.Document, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	stored, id, assigned := driver.Prepare(doc, s.now())
	createdAt, _, err := stored.Time(core.KeyCreatedAt)
	if err != nil {
		return nil, core.InvalidInputf("%v", err)
	}
	updatedAt, _, err := stored.Time(core.KeyUpdatedAt)
	if err != nil {
		return nil, core.InvalidInputf("%v", err)
	}

	body, err := encodeBody(stored)
	if err != nil {
		return nil, core.InvalidInputf("%v", err)
	}

	s.Logger.Debug("storing document",
		slog.String("collection", collection),
		slog.String("id", id),
		slog.Bool("insert", assigned))

	_, err = s.DB.ExecContext(ctx, s.Dialect.UpsertSQL(),
		collection, id, string(body), createdAt.UnixNano(), updatedAt.UnixNano())
	if err != nil {
		return nil, s.wrap("set", collection, err)
	}

	// Hand back the document as a reader will see it.
	out, err := decodeBody(body)
	if err != nil {
		return nil, s.wrap("set", collection, err)
	}
	return out, nil
}

// Delete removes the document and reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	if s.DB == nil {
		return false, fmt.Errorf("database connection not established")
	}

	stmt := fmt.Sprintf(`DELETE FROM documents WHERE collection = %s AND id = %s`,
		s.Dialect.Bind(1), s.Dialect.Bind(2))

	res, err := s.DB.ExecContext(ctx, stmt, collection, id)
	if err != nil {
		return false, s.wrap("delete", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, s.wrap("delete", collection, err)
	}
	return n > 0, nil
}

// Query streams matching documents ordered by creation time, then id.
func (s *Store) Query(ctx context.Context, collection string, q driver.Query) iter.Seq2[core.Document, error] {
	return func(yield func(core.Document, error) bool) {
		if s.DB == nil {
			yield(nil, fmt.Errorf("database connection not established"))
			return
		}

		stmt, args, err := s.selectSQL(collection, q)
		if err != nil {
			yield(nil, err)
			return
		}

		rows, err := s.DB.QueryContext(ctx, stmt, args...)
		if err != nil {
			yield(nil, s.wrap("query", collection, err))
			return
		}

		if s.Buffered {
			docs, err := s.drain(rows, collection)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, doc := range docs {
				if !yield(doc, nil) {
					return
				}
			}
			return
		}

		defer func() { _ = rows.Close() }()
		for rows.Next() {
			doc, err := s.scan(rows, collection)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, s.wrap("query", collection, err))
		}
	}
}

// drain reads every remaining row and closes rows.
func (s *Store) drain(rows *sql.Rows, collection string) ([]core.Document, error) {
	defer func() { _ = rows.Close() }()

	var docs []core.Document
	for rows.Next() {
		doc, err := s.scan(rows, collection)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("query", collection, err)
	}
	return docs, nil
}

func (s *Store) scan(rows *sql.Rows, collection string) (core.Document, error) {
	var body []byte
	if err := rows.Scan(&body); err != nil {
		return nil, s.wrap("query", collection, err)
	}
	doc, err := decodeBody(body)
	if err != nil {
		return nil, s.wrap("query", collection, err)
	}
	return doc, nil
}

// selectSQL builds the query statement and its arguments.
func (s *Store) selectSQL(collection string, q driver.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM documents WHERE collection = %s",
		s.Dialect.BodyExpr(), s.Dialect.Bind(1))
	args := []any{collection}

	for _, key := range q.Keys() {
		clause, arg, err := s.Dialect.FieldEquals(key, len(args)+1, q[key])
		if err != nil {
			return "", nil, err
		}
		b.WriteString(" AND ")
		b.WriteString(clause)
		if arg != nil {
			args = append(args, arg)
		}
	}
	b.WriteString(" ORDER BY created_ns, id")
	return b.String(), args, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Store) wrap(op, collection string, err error) error {
	return &core.DriverError{Driver: s.Dialect.Name(), Op: op, Collection: collection, Err: err}
}
