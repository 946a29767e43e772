// Package postgres provides a driver.Backend storing documents as JSONB
// rows in PostgreSQL through pgx.
//
// Import this package with a blank identifier to register the backend:
//
//	import _ "github.com/leapstack-labs/leapdal/pkg/drivers/postgres"
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/leapstack-labs/leapdal/pkg/driver"
	"github.com/leapstack-labs/leapdal/pkg/drivers/sqldoc"
)

// Name is the registry name of the postgres backend.
const Name = "postgres"

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Backend {
		return New(logger)
	})
}

// Store is the PostgreSQL backend.
type Store struct {
	sqldoc.Store
}

// New creates an unopened PostgreSQL store.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Store {
	return &Store{Store: sqldoc.NewStore(nil, Dialect{}, logger)}
}

// Name returns the registry name.
func (s *Store) Name() string { return Name }

// Open connects to PostgreSQL and applies pending migrations.
func (s *Store) Open(ctx context.Context, cfg driver.Config) error {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = buildPostgresDSN(cfg)
	}

	s.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := sqldoc.Migrate(db, migrations, "migrations", "postgres", s.Logger); err != nil {
		_ = db.Close()
		return err
	}

	s.DB = db
	return nil
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
func buildPostgresDSN(cfg driver.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}
