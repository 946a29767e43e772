package core

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Collection names, one per entity kind.
const (
	CollectionModel          = "model"
	CollectionCode           = "code"
	CollectionEnvironment    = "environment"
	CollectionFileCollection = "file_collection"
	CollectionSession        = "session"
	CollectionTask           = "task"
	CollectionSnapshot       = "snapshot"
	CollectionUser           = "user"
)

// Collections returns every collection name in a stable order.
func Collections() []string {
	return []string{
		CollectionModel,
		CollectionCode,
		CollectionEnvironment,
		CollectionFileCollection,
		CollectionSession,
		CollectionTask,
		CollectionSnapshot,
		CollectionUser,
	}
}

// IsCollection reports whether name is one of the fixed collections.
func IsCollection(name string) bool {
	for _, c := range Collections() {
		if c == name {
			return true
		}
	}
	return false
}

// Entity is a typed view over a document. Every kind can render itself
// back into a document; the matching FromDocument constructor reverses it.
type Entity interface {
	// Collection returns the collection the kind is stored in.
	Collection() string
	// EntityID returns the driver-assigned id, empty before creation.
	EntityID() string
	// ToDocument renders the entity as a document.
	ToDocument() Document
}

// Meta holds the fields every document carries.
type Meta struct {
	ID        string    `mapstructure:"id"`
	CreatedAt time.Time `mapstructure:"created_at"`
	UpdatedAt time.Time `mapstructure:"updated_at"`
}

// EntityID returns the document id.
func (m Meta) EntityID() string {
	return m.ID
}

func (m Meta) document() Document {
	doc := Document{}
	if m.ID != "" {
		doc[KeyID] = m.ID
	}
	putTime(doc, KeyCreatedAt, m.CreatedAt)
	putTime(doc, KeyUpdatedAt, m.UpdatedAt)
	return doc
}

// decodeDocument fills out from doc. Timestamps may arrive either as
// time.Time (memory driver) or RFC 3339 strings (JSON-backed drivers).
func decodeDocument(kind string, doc Document, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		Result: out,
	})
	if err != nil {
		return fmt.Errorf("build %s decoder: %w", kind, err)
	}
	if err := dec.Decode(map[string]any(doc)); err != nil {
		return fmt.Errorf("decode %s document: %w", kind, err)
	}
	return nil
}

func putTime(doc Document, key string, t time.Time) {
	if !t.IsZero() {
		doc[key] = t
	}
}

func putStrings(doc Document, key string, v []string) {
	if len(v) > 0 {
		doc[key] = append([]string(nil), v...)
	}
}

func putMap(doc Document, key string, v map[string]any) {
	if len(v) > 0 {
		doc[key] = v
	}
}

// putExtra re-emits fields the entity does not model. Known keys win.
func putExtra(doc Document, extra map[string]any) {
	for k, v := range extra {
		if _, taken := doc[k]; !taken {
			doc[k] = v
		}
	}
}

// FromDocument translates doc into the entity kind stored in collection.
func FromDocument(collection string, doc Document) (Entity, error) {
	switch collection {
	case CollectionModel:
		return asEntity(ModelFromDocument(doc))
	case CollectionCode:
		return asEntity(CodeFromDocument(doc))
	case CollectionEnvironment:
		return asEntity(EnvironmentFromDocument(doc))
	case CollectionFileCollection:
		return asEntity(FileCollectionFromDocument(doc))
	case CollectionSession:
		return asEntity(SessionFromDocument(doc))
	case CollectionTask:
		return asEntity(TaskFromDocument(doc))
	case CollectionSnapshot:
		return asEntity(SnapshotFromDocument(doc))
	case CollectionUser:
		return asEntity(UserFromDocument(doc))
	default:
		return nil, InvalidInputf("unknown collection %q", collection)
	}
}

// asEntity keeps a failed translation from turning into a non-nil
// interface holding a nil pointer.
func asEntity[E Entity](e E, err error) (Entity, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}
