// Package dal is the data access layer: one CRUD component per entity
// kind over a pluggable driver.Driver, reached through the DAL facade.
//
//	d := dal.New(store, dal.WithLogger(logger))
//	m, err := d.Model().Create(ctx, dal.Entity(&core.Model{Name: "churn"}))
//	m, err = d.Model().Update(ctx, dal.Fragment(core.Document{"id": m.ID, "description": "v2"}))
package dal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// Option configures a DAL or a Methods component.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger. Nil keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the time source for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// lazy builds a value on first use and returns the same value after.
type lazy[T any] struct {
	once sync.Once
	v    T
}

func (l *lazy[T]) get(build func() T) T {
	l.once.Do(func() { l.v = build() })
	return l.v
}

// DAL is the facade over one driver. Each accessor builds its component
// on first call and returns that same component afterwards.
type DAL struct {
	driver driver.Driver
	opts   options

	model          lazy[*Methods[*core.Model]]
	code           lazy[*Methods[*core.Code]]
	environment    lazy[*Methods[*core.Environment]]
	fileCollection lazy[*Methods[*core.FileCollection]]
	session        lazy[*Methods[*core.Session]]
	task           lazy[*Methods[*core.Task]]
	snapshot       lazy[*Methods[*core.Snapshot]]
	user           lazy[*Methods[*core.User]]
}

// New creates a facade over d. The facade does not own d; closing the
// driver stays with the caller.
func New(d driver.Driver, opts ...Option) *DAL {
	return &DAL{driver: d, opts: buildOptions(opts)}
}

// Driver returns the underlying driver.
func (d *DAL) Driver() driver.Driver {
	return d.driver
}

func build[E core.Entity](d *DAL, collection string, decode Decoder[E]) func() *Methods[E] {
	return func() *Methods[E] {
		d.opts.logger.Debug("building methods", slog.String("collection", collection))
		return newMethods(collection, decode, d.driver, d.opts)
	}
}

// Model returns the model component.
func (d *DAL) Model() *Methods[*core.Model] {
	return d.model.get(build(d, core.CollectionModel, core.ModelFromDocument))
}

// Code returns the code component.
func (d *DAL) Code() *Methods[*core.Code] {
	return d.code.get(build(d, core.CollectionCode, core.CodeFromDocument))
}

// Environment returns the environment component.
func (d *DAL) Environment() *Methods[*core.Environment] {
	return d.environment.get(build(d, core.CollectionEnvironment, core.EnvironmentFromDocument))
}

// FileCollection returns the file collection component.
func (d *DAL) FileCollection() *Methods[*core.FileCollection] {
	return d.fileCollection.get(build(d, core.CollectionFileCollection, core.FileCollectionFromDocument))
}

// Session returns the session component.
func (d *DAL) Session() *Methods[*core.Session] {
	return d.session.get(build(d, core.CollectionSession, core.SessionFromDocument))
}

// Task returns the task component.
func (d *DAL) Task() *Methods[*core.Task] {
	return d.task.get(build(d, core.CollectionTask, core.TaskFromDocument))
}

// Snapshot returns the snapshot component.
func (d *DAL) Snapshot() *Methods[*core.Snapshot] {
	return d.snapshot.get(build(d, core.CollectionSnapshot, core.SnapshotFromDocument))
}

// User returns the user component.
func (d *DAL) User() *Methods[*core.User] {
	return d.user.get(build(d, core.CollectionUser, core.UserFromDocument))
}

// Kinds returns the collection names in accessor order.
func (d *DAL) Kinds() []string {
	return core.Collections()
}

// Raw returns the document view of the component for kind.
func (d *DAL) Raw(kind string) (*DocumentMethods, error) {
	switch kind {
	case core.CollectionModel:
		return d.Model().Documents(), nil
	case core.CollectionCode:
		return d.Code().Documents(), nil
	case core.CollectionEnvironment:
		return d.Environment().Documents(), nil
	case core.CollectionFileCollection:
		return d.FileCollection().Documents(), nil
	case core.CollectionSession:
		return d.Session().Documents(), nil
	case core.CollectionTask:
		return d.Task().Documents(), nil
	case core.CollectionSnapshot:
		return d.Snapshot().Documents(), nil
	case core.CollectionUser:
		return d.User().Documents(), nil
	default:
		return nil, core.InvalidInputf("unknown kind %q (expected one of %v)", kind, core.Collections())
	}
}

// Count returns the number of documents of kind matching q.
func (d *DAL) Count(ctx context.Context, kind string, q driver.Query) (int, error) {
	m, err := d.Raw(kind)
	if err != nil {
		return 0, err
	}
	return m.Count(ctx, q)
}

// KindStat is the document count of one collection.
type KindStat struct {
	Kind  string `json:"kind" yaml:"kind"`
	Count int    `json:"count" yaml:"count"`
}

// Stats counts the documents of every kind concurrently.
func (d *DAL) Stats(ctx context.Context) ([]KindStat, error) {
	kinds := d.Kinds()
	stats := make([]KindStat, len(kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			n, err := d.Count(ctx, kind, nil)
			if err != nil {
				return err
			}
			stats[i] = KindStat{Kind: kind, Count: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
