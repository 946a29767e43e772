// Package memory provides a volatile driver.Backend storing documents in
// process local maps. It is safe for concurrent access and best suited
// for tests and throwaway stores.
package memory

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// Name is the registry name of the memory backend.
const Name = "memory"

func init() {
	driver.Register(Name, func(logger *slog.Logger) driver.Backend {
		return New(logger)
	})
}

// Store keeps one ordered collection per name. Every document handed
// in or out is cloned so callers never share state with the store.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	logger      *slog.Logger
	now         func() time.Time
}

type collection struct {
	docs  map[string]core.Document
	order []string
}

// New constructs an empty memory store.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		collections: make(map[string]*collection),
		logger:      logger,
		now:         time.Now,
	}
}

// Name returns the registry name.
func (s *Store) Name() string { return Name }

// Open is a no-op; the store is usable right after New.
func (s *Store) Open(context.Context, driver.Config) error { return nil }

// Close drops every stored document.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = make(map[string]*collection)
	return nil
}

// Get returns a clone of the stored document.
func (s *Store) Get(_ context.Context, name, id string) (core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		if doc, ok := c.docs[id]; ok {
			return doc.Clone(), nil
		}
	}
	return nil, core.NotFoundError(name, id)
}

// Set stores a clone of doc, assigning an id and timestamps as needed.
func (s *Store) Set(_ context.Context, name string, doc core.Document) (core.Document, error) {
	stored, id, _ := driver.Prepare(doc, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collectionLocked(name)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = stored

	s.logger.Debug("stored document", slog.String("collection", name), slog.String("id", id))
	return stored.Clone(), nil
}

// Delete removes the document and reports whether it existed.
func (s *Store) Delete(_ context.Context, name, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return false, nil
	}
	if _, ok := c.docs[id]; !ok {
		return false, nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Query yields clones of matching documents in insertion order. Each
// range takes a fresh snapshot of the collection under the read lock.
func (s *Store) Query(_ context.Context, name string, q driver.Query) iter.Seq2[core.Document, error] {
	return func(yield func(core.Document, error) bool) {
		if err := q.Validate(); err != nil {
			yield(nil, err)
			return
		}
		for _, doc := range s.matching(name, q) {
			if !yield(doc, nil) {
				return
			}
		}
	}
}

func (s *Store) matching(name string, q driver.Query) []core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil
	}
	var out []core.Document
	for _, id := range c.order {
		doc := c.docs[id]
		if q.Matches(doc) {
			out = append(out, doc.Clone())
		}
	}
	return out
}

// collectionLocked returns the named collection, creating it on first
// use; caller must already hold the write lock.
func (s *Store) collectionLocked(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]core.Document)}
		s.collections[name] = c
	}
	return c
}
