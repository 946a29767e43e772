// Package sqlite provides a driver.Backend persisting documents in a
// SQLite file through the pure Go modernc.org/sqlite driver.
//
// Import this package with a blank identifier to register the backend:
//
//	import _ "github.com/leapstack-labs/leapdal/pkg/drivers/sqlite"
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/leapstack-labs/leapdal/pkg/driver"
	"github.com/leapstack-labs/leapdal/pkg/drivers/sqldoc"
)

// Name is the registry name of the sqlite backend.
const Name = "sqlite"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Backend {
		return New(logger)
	})
}

// Store is the SQLite backend.
type Store struct {
	sqldoc.Store
	path string
}

// New creates an unopened SQLite store.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Store {
	return &Store{Store: sqldoc.NewStore(nil, Dialect{}, logger)}
}

// Name returns the registry name.
func (s *Store) Name() string { return Name }

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// Open opens the database at cfg.Path and applies pending migrations.
// An empty path opens an in-memory database.
func (s *Store) Open(ctx context.Context, cfg driver.Config) error {
	path := cfg.Path
	if path == "" {
		path = MemoryPath
	}

	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	s.Logger.Debug("opening sqlite database", slog.String("path", path))

	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database, so the store
	// keeps one and buffers query results to free it between yields.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}
	s.Buffered = path == MemoryPath

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := sqldoc.Migrate(db, migrations, "migrations", "sqlite", s.Logger); err != nil {
		_ = db.Close()
		return err
	}

	s.DB = db
	s.path = path
	return nil
}

// MigrationVersion returns the applied schema version.
func (s *Store) MigrationVersion() (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	return sqldoc.MigrationVersion(s.DB, migrations, "sqlite", s.Logger)
}

func buildDSN(path string) string {
	if path == MemoryPath {
		return path
	}
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}
