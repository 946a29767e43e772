// Package driver defines the storage contract the DAL is built on and a
// registry of named backends.
//
// A driver is an opaque collection-oriented store. Collections are
// independent namespaces; every operation addresses exactly one document
// or one collection and is atomic on its own.
package driver

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapdal/pkg/core"
)

// Driver is the four-operation storage contract.
type Driver interface {
	// Get returns the document stored under id. A missing document yields
	// an error matching core.ErrNotFound.
	Get(ctx context.Context, collection, id string) (core.Document, error)

	// Set inserts doc when it has no id (the driver assigns one) and
	// overwrites the stored document otherwise. The returned document is
	// the stored version with id, created_at and updated_at populated.
	Set(ctx context.Context, collection string, doc core.Document) (core.Document, error)

	// Delete removes the document and reports whether it existed.
	// Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) (bool, error)

	// Query returns the documents matching q. The sequence is lazy and
	// finite; ranging over it again re-runs the lookup.
	Query(ctx context.Context, collection string, q Query) iter.Seq2[core.Document, error]
}

// Backend is a Driver with a connection lifecycle.
type Backend interface {
	Driver

	// Name returns the registry name of the backend.
	Name() string

	// Open connects the backend and prepares its storage.
	Open(ctx context.Context, cfg Config) error

	// Close releases the backend's resources.
	Close() error
}

// Config holds backend connection settings. Which fields matter depends
// on the backend: file-based stores read Path, network stores read
// DSN or Host/Port/User/Password/Database.
type Config struct {
	Type     string
	Path     string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Options  map[string]string
}

// Prepare returns the copy of doc a backend should persist: an id is
// assigned when absent and missing timestamps are set to now. The second
// result reports whether the id was newly assigned.
func Prepare(doc core.Document, now time.Time) (core.Document, string, bool) {
	out := doc.Clone()
	if out == nil {
		out = core.Document{}
	}

	id, ok := out.ID()
	if !ok {
		id = uuid.NewString()
		out[core.KeyID] = id
	}

	now = now.UTC()
	if !out.Has(core.KeyCreatedAt) {
		out[core.KeyCreatedAt] = now
	}
	if !out.Has(core.KeyUpdatedAt) {
		out[core.KeyUpdatedAt] = now
	}
	return out, id, !ok
}
