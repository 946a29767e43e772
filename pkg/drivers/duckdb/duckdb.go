// Package duckdb provides a driver.Backend storing documents in a DuckDB
// database file or an in-memory DuckDB instance.
//
// Import this package with a blank identifier to register the backend:
//
//	import _ "github.com/leapstack-labs/leapdal/pkg/drivers/duckdb"
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leapstack-labs/leapdal/pkg/driver"
	"github.com/leapstack-labs/leapdal/pkg/drivers/sqldoc"
)

// Name is the registry name of the duckdb backend.
const Name = "duckdb"

// goose has no DuckDB dialect, so the table is created in place.
const schemaSQL = `CREATE TABLE IF NOT EXISTS documents (
    collection VARCHAR NOT NULL,
    id VARCHAR NOT NULL,
    body VARCHAR NOT NULL,
    created_ns BIGINT NOT NULL,
    updated_ns BIGINT NOT NULL,
    PRIMARY KEY (collection, id)
)`

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Backend {
		return New(logger)
	})
}

// Store is the DuckDB backend.
type Store struct {
	sqldoc.Store
}

// New creates an unopened DuckDB store.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Store {
	return &Store{Store: sqldoc.NewStore(nil, Dialect{}, logger)}
}

// Name returns the registry name.
func (s *Store) Name() string { return Name }

// Open opens the database at cfg.Path and creates the document table.
// Use ":memory:" or an empty path for an in-memory database.
func (s *Store) Open(ctx context.Context, cfg driver.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	s.Logger.Debug("opening duckdb database", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	s.DB = db
	if err := s.Exec(ctx, schemaSQL); err != nil {
		_ = s.Close()
		s.DB = nil
		return fmt.Errorf("failed to create document table: %w", err)
	}
	return nil
}
