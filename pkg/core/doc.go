// Package core defines the shared language of the leapdal system.
//
// This package contains:
//   - Documents, the raw field maps persisted by drivers
//   - Entities (Model, Code, Environment, FileCollection, Session, Task,
//     Snapshot, User) and their document translation
//   - The error taxonomy (ErrNotFound, ErrInvalidInput, DriverError)
//
// The Golden Rule: pkg/core imports ONLY stdlib and mapstructure.
// All other packages depend on core, not the reverse.
package core
