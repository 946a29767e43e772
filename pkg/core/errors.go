package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Test with errors.Is; drivers and the DAL wrap them
// with the collection and id involved.
var (
	// ErrNotFound is returned when a document id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed or incomplete caller input.
	ErrInvalidInput = errors.New("invalid input")
)

// DriverError wraps a failure surfaced by a storage backend. The DAL
// passes it through without interpreting or retrying it.
type DriverError struct {
	Driver     string
	Op         string
	Collection string
	Err        error
}

func (e *DriverError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("%s: %s: %v", e.Driver, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Driver, e.Op, e.Collection, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// NotFoundError builds an error matching ErrNotFound for a collection/id pair.
func NotFoundError(collection, id string) error {
	return fmt.Errorf("%s %q: %w", collection, id, ErrNotFound)
}

// InvalidInputf builds an error matching ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
