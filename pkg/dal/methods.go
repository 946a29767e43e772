package dal

import (
	"context"
	"iter"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// Decoder translates a stored document into an entity.
type Decoder[E core.Entity] func(core.Document) (E, error)

// Methods is the CRUD component for one entity kind. All eight kinds
// share this implementation; they differ only in collection and decoder.
type Methods[E core.Entity] struct {
	docs   *DocumentMethods
	decode Decoder[E]
}

// NewMethods builds the component for collection over d.
func NewMethods[E core.Entity](collection string, decode Decoder[E], d driver.Driver, opts ...Option) *Methods[E] {
	return newMethods(collection, decode, d, buildOptions(opts))
}

func newMethods[E core.Entity](collection string, decode Decoder[E], d driver.Driver, o options) *Methods[E] {
	validate := func(doc core.Document) error {
		_, err := decode(doc)
		return err
	}
	return &Methods[E]{
		docs:   newDocumentMethods(collection, d, o, validate),
		decode: decode,
	}
}

// Collection returns the collection name.
func (m *Methods[E]) Collection() string {
	return m.docs.Collection()
}

// Documents returns the kind-erased view sharing this component's
// driver and collection.
func (m *Methods[E]) Documents() *DocumentMethods {
	return m.docs
}

// GetByID returns the entity stored under id.
func (m *Methods[E]) GetByID(ctx context.Context, id string) (E, error) {
	doc, err := m.docs.Get(ctx, id)
	if err != nil {
		var zero E
		return zero, err
	}
	return m.decode(doc)
}

// Create stores a new entity and returns it with id and timestamps set.
// A fragment the kind cannot decode is rejected before anything is
// written.
func (m *Methods[E]) Create(ctx context.Context, in Input) (E, error) {
	doc, err := m.docs.Create(ctx, in)
	if err != nil {
		var zero E
		return zero, err
	}
	return m.decode(doc)
}

// Update changes an existing entity. See DocumentMethods.Update.
func (m *Methods[E]) Update(ctx context.Context, in Input) (E, error) {
	doc, err := m.docs.Update(ctx, in)
	if err != nil {
		var zero E
		return zero, err
	}
	return m.decode(doc)
}

// Delete removes the entity and reports whether it existed.
func (m *Methods[E]) Delete(ctx context.Context, id string) (bool, error) {
	return m.docs.Delete(ctx, id)
}

// Query returns the matching entities in driver order.
func (m *Methods[E]) Query(ctx context.Context, q driver.Query) ([]E, error) {
	var out []E
	for e, err := range m.All(ctx, q) {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// All is the lazy form of Query. Ranging over it again re-runs the
// lookup.
func (m *Methods[E]) All(ctx context.Context, q driver.Query) iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		for doc, err := range m.docs.Query(ctx, q) {
			var e E
			if err == nil {
				e, err = m.decode(doc)
			}
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Count returns the number of matching entities.
func (m *Methods[E]) Count(ctx context.Context, q driver.Query) (int, error) {
	return m.docs.Count(ctx, q)
}
