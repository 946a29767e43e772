package dal

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// DocumentMethods implements CRUD for one collection in terms of raw
// documents. Methods[E] layers entity translation on top of it.
type DocumentMethods struct {
	collection string
	driver     driver.Driver
	logger     *slog.Logger
	now        func() time.Time
	validate   func(core.Document) error
}

// newDocumentMethods builds the document view. validate, when set, sees
// every payload before it reaches the driver.
func newDocumentMethods(collection string, d driver.Driver, o options, validate func(core.Document) error) *DocumentMethods {
	return &DocumentMethods{
		collection: collection,
		driver:     d,
		logger:     o.logger.With(slog.String("collection", collection)),
		now:        o.now,
		validate:   validate,
	}
}

// Collection returns the collection name.
func (m *DocumentMethods) Collection() string {
	return m.collection
}

// Get returns the stored document.
func (m *DocumentMethods) Get(ctx context.Context, id string) (core.Document, error) {
	return m.driver.Get(ctx, m.collection, id)
}

// Create stores a new document. The driver assigns the id; supplying one
// is an input error.
func (m *DocumentMethods) Create(ctx context.Context, in Input) (core.Document, error) {
	doc, err := m.payload(in)
	if err != nil {
		return nil, err
	}
	if doc.Has(core.KeyID) {
		return nil, core.InvalidInputf("create does not accept an id")
	}
	delete(doc, core.KeyID)

	now := m.now().UTC()
	if err := setTime(doc, core.KeyCreatedAt, now); err != nil {
		return nil, err
	}
	if err := setTime(doc, core.KeyUpdatedAt, now); err != nil {
		return nil, err
	}
	if err := m.check(doc); err != nil {
		return nil, err
	}

	stored, err := m.driver.Set(ctx, m.collection, doc)
	if err != nil {
		return nil, err
	}

	id, _ := stored.ID()
	m.logger.Debug("created document", slog.String("id", id))
	return stored, nil
}

// Update changes an existing document.
//
// A fragment is merged over the stored document: fields it names are
// replaced and all others are kept. An entity replaces the stored fields
// wholesale. Either way id and created_at keep their stored values and
// updated_at moves to now unless a fragment sets it.
//
// Update reads then writes without a version check, so concurrent
// updates of one document resolve as last write wins.
func (m *DocumentMethods) Update(ctx context.Context, in Input) (core.Document, error) {
	var (
		doc   core.Document
		id    string
		merge bool
	)

	switch v := in.(type) {
	case entityInput:
		if err := m.checkEntity(v.entity); err != nil {
			return nil, err
		}
		id = v.entity.EntityID()
		if id == "" {
			return nil, core.InvalidInputf("update requires an id")
		}
		doc = v.entity.ToDocument()
	case fragmentInput:
		var ok bool
		if id, ok = v.doc.ID(); !ok {
			return nil, core.InvalidInputf("update requires an id")
		}
		doc = v.doc.Clone()
		merge = true
	default:
		return nil, core.InvalidInputf("missing input")
	}

	current, err := m.driver.Get(ctx, m.collection, id)
	if err != nil {
		return nil, err
	}

	var payload core.Document
	if merge {
		payload = current.Clone()
		for k, v := range doc {
			payload[k] = v
		}
	} else {
		payload = doc
	}

	payload[core.KeyID] = id
	delete(payload, core.KeyCreatedAt)
	if current.Has(core.KeyCreatedAt) {
		payload[core.KeyCreatedAt] = current[core.KeyCreatedAt]
		if t, _, err := current.Time(core.KeyCreatedAt); err == nil {
			payload[core.KeyCreatedAt] = t
		}
	}

	now := m.now().UTC()
	if merge && doc.Has(core.KeyUpdatedAt) {
		if err := setTime(payload, core.KeyUpdatedAt, now); err != nil {
			return nil, err
		}
	} else {
		payload[core.KeyUpdatedAt] = now
	}
	if err := m.check(payload); err != nil {
		return nil, err
	}

	stored, err := m.driver.Set(ctx, m.collection, payload)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("updated document", slog.String("id", id), slog.Int("fields", len(doc)))
	return stored, nil
}

// Delete removes the document and reports whether it existed.
func (m *DocumentMethods) Delete(ctx context.Context, id string) (bool, error) {
	existed, err := m.driver.Delete(ctx, m.collection, id)
	if err != nil {
		return false, err
	}
	m.logger.Debug("deleted document", slog.String("id", id), slog.Bool("existed", existed))
	return existed, nil
}

// Query returns the matching documents in driver order. The predicate
// is handed to the driver as is.
func (m *DocumentMethods) Query(ctx context.Context, q driver.Query) iter.Seq2[core.Document, error] {
	return m.driver.Query(ctx, m.collection, q)
}

// Count returns the number of matching documents.
func (m *DocumentMethods) Count(ctx context.Context, q driver.Query) (int, error) {
	n := 0
	for _, err := range m.driver.Query(ctx, m.collection, q) {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// check rejects a payload the kind's decoder cannot read, so a mistyped
// field never reaches the store.
func (m *DocumentMethods) check(doc core.Document) error {
	if m.validate == nil {
		return nil
	}
	if err := m.validate(doc); err != nil {
		return core.InvalidInputf("%v", err)
	}
	return nil
}

// payload returns a private copy of the document an Input carries.
func (m *DocumentMethods) payload(in Input) (core.Document, error) {
	switch v := in.(type) {
	case entityInput:
		if err := m.checkEntity(v.entity); err != nil {
			return nil, err
		}
		return v.entity.ToDocument(), nil
	case fragmentInput:
		doc := v.doc.Clone()
		if doc == nil {
			doc = core.Document{}
		}
		return doc, nil
	default:
		return nil, core.InvalidInputf("missing input")
	}
}

func (m *DocumentMethods) checkEntity(e core.Entity) error {
	if e == nil {
		return core.InvalidInputf("missing entity")
	}
	if e.Collection() != m.collection {
		return core.InvalidInputf("%s entity passed to %s methods", e.Collection(), m.collection)
	}
	return nil
}

// setTime normalizes the timestamp at key to UTC, or sets it to def when
// absent.
func setTime(doc core.Document, key string, def time.Time) error {
	t, ok, err := doc.Time(key)
	if err != nil {
		return core.InvalidInputf("%v", err)
	}
	if !ok {
		t = def
	}
	doc[key] = t
	return nil
}
