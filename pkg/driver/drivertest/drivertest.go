// Package drivertest provides a conformance suite every driver.Driver
// implementation runs in its own tests.
package drivertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdal/pkg/core"
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// Factory returns a fresh, empty driver for one subtest.
type Factory func(t *testing.T) driver.Driver

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Run exercises the driver contract against drivers built by newDriver.
func Run(t *testing.T, newDriver Factory) {
	t.Helper()

	t.Run("get missing", func(t *testing.T) {
		d := newDriver(t)
		_, err := d.Get(context.Background(), core.CollectionModel, "nonexistent")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("set assigns id and timestamps", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		stored, err := d.Set(ctx, core.CollectionModel, core.Document{"name": "churn"})
		require.NoError(t, err)

		id, ok := stored.ID()
		require.True(t, ok)
		assert.NotEmpty(t, id)
		assert.Equal(t, "churn", stored["name"])

		_, ok, err = stored.Time(core.KeyCreatedAt)
		require.NoError(t, err)
		assert.True(t, ok)
		_, ok, err = stored.Time(core.KeyUpdatedAt)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := d.Get(ctx, core.CollectionModel, id)
		require.NoError(t, err)
		assert.Equal(t, "churn", got["name"])
	})

	t.Run("set does not alias caller document", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		in := core.Document{"name": "a"}
		stored, err := d.Set(ctx, core.CollectionModel, in)
		require.NoError(t, err)
		assert.NotContains(t, in, core.KeyID)

		id, _ := stored.ID()
		stored["name"] = "mutated"
		got, err := d.Get(ctx, core.CollectionModel, id)
		require.NoError(t, err)
		assert.Equal(t, "a", got["name"])
	})

	t.Run("set keeps supplied timestamps", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		stored, err := d.Set(ctx, core.CollectionTask, core.Document{
			core.KeyCreatedAt: base,
			core.KeyUpdatedAt: base.Add(time.Hour),
		})
		require.NoError(t, err)
		id, _ := stored.ID()

		got, err := d.Get(ctx, core.CollectionTask, id)
		require.NoError(t, err)
		createdAt, _, err := got.Time(core.KeyCreatedAt)
		require.NoError(t, err)
		updatedAt, _, err := got.Time(core.KeyUpdatedAt)
		require.NoError(t, err)
		assert.True(t, createdAt.Equal(base))
		assert.True(t, updatedAt.Equal(base.Add(time.Hour)))
	})

	t.Run("set with id overwrites", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		first, err := d.Set(ctx, core.CollectionSession, core.Document{"name": "a", "model_id": "m1"})
		require.NoError(t, err)
		id, _ := first.ID()

		_, err = d.Set(ctx, core.CollectionSession, core.Document{"id": id, "name": "b"})
		require.NoError(t, err)

		got, err := d.Get(ctx, core.CollectionSession, id)
		require.NoError(t, err)
		assert.Equal(t, id, got[core.KeyID])
		assert.Equal(t, "b", got["name"])
		assert.NotContains(t, got, "model_id")
	})

	t.Run("set with unknown id inserts under that id", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		_, err := d.Set(ctx, core.CollectionUser, core.Document{"id": "fixed", "name": "ada"})
		require.NoError(t, err)

		got, err := d.Get(ctx, core.CollectionUser, "fixed")
		require.NoError(t, err)
		assert.Equal(t, "ada", got["name"])
	})

	t.Run("collections are independent", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		_, err := d.Set(ctx, core.CollectionModel, core.Document{"id": "same", "name": "model"})
		require.NoError(t, err)
		_, err = d.Set(ctx, core.CollectionUser, core.Document{"id": "same", "name": "user"})
		require.NoError(t, err)

		m, err := d.Get(ctx, core.CollectionModel, "same")
		require.NoError(t, err)
		u, err := d.Get(ctx, core.CollectionUser, "same")
		require.NoError(t, err)
		assert.Equal(t, "model", m["name"])
		assert.Equal(t, "user", u["name"])

		_, err = d.Get(ctx, core.CollectionCode, "same")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		stored, err := d.Set(ctx, core.CollectionCode, core.Document{"commit_id": "abc"})
		require.NoError(t, err)
		id, _ := stored.ID()

		existed, err := d.Delete(ctx, core.CollectionCode, id)
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = d.Delete(ctx, core.CollectionCode, id)
		require.NoError(t, err)
		assert.False(t, existed)

		_, err = d.Get(ctx, core.CollectionCode, id)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("query", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		seed := []core.Document{
			{"name": "first", "session_id": "s1", "gpu": true, "duration": 10, core.KeyCreatedAt: base},
			{"name": "second", "session_id": "s2", "gpu": false, "duration": 20, core.KeyCreatedAt: base.Add(time.Second)},
			{"name": "third", "session_id": "s1", "gpu": false, "duration": 30, core.KeyCreatedAt: base.Add(2 * time.Second)},
		}
		for _, doc := range seed {
			_, err := d.Set(ctx, core.CollectionTask, doc)
			require.NoError(t, err)
		}
		_, err := d.Set(ctx, core.CollectionSnapshot, core.Document{"name": "elsewhere"})
		require.NoError(t, err)

		tests := []struct {
			name  string
			query driver.Query
			want  []string
		}{
			{name: "all", query: nil, want: []string{"first", "second", "third"}},
			{name: "empty predicate", query: driver.Query{}, want: []string{"first", "second", "third"}},
			{name: "string field", query: driver.Query{"session_id": "s1"}, want: []string{"first", "third"}},
			{name: "number field", query: driver.Query{"duration": 20}, want: []string{"second"}},
			{name: "bool field", query: driver.Query{"gpu": true}, want: []string{"first"}},
			{name: "conjunction", query: driver.Query{"session_id": "s1", "gpu": false}, want: []string{"third"}},
			{name: "no match", query: driver.Query{"session_id": "s9"}, want: nil},
			{name: "missing field", query: driver.Query{"label": "x"}, want: nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				docs, err := driver.Collect(d.Query(ctx, core.CollectionTask, tt.query))
				require.NoError(t, err)
				assert.Equal(t, tt.want, names(docs))
			})
		}
	})

	t.Run("query is restartable", func(t *testing.T) {
		d := newDriver(t)
		ctx := context.Background()

		for i, name := range []string{"a", "b"} {
			_, err := d.Set(ctx, core.CollectionUser, core.Document{
				"name":            name,
				core.KeyCreatedAt: base.Add(time.Duration(i) * time.Second),
			})
			require.NoError(t, err)
		}

		seq := d.Query(ctx, core.CollectionUser, nil)
		first, err := driver.Collect(seq)
		require.NoError(t, err)
		second, err := driver.Collect(seq)
		require.NoError(t, err)
		assert.Equal(t, names(first), names(second))
		assert.Equal(t, []string{"a", "b"}, names(first))

		count := 0
		for _, err := range seq {
			require.NoError(t, err)
			count++
			break
		}
		assert.Equal(t, 1, count)
	})

	t.Run("query rejects malformed keys", func(t *testing.T) {
		d := newDriver(t)
		_, err := driver.Collect(d.Query(context.Background(), core.CollectionUser, driver.Query{"name') OR 1=1 --": "x"}))
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})
}

func names(docs []core.Document) []string {
	var out []string
	for _, doc := range docs {
		name, _ := doc["name"].(string)
		out = append(out, name)
	}
	return out
}
