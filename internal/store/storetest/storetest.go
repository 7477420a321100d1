// Package storetest holds the behavior every store backend must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dom/twitter-clone/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Record is the item type the suite stores.
type Record struct {
	ID      string  `dynamodbav:"id" gorm:"column:id;primaryKey"`
	Version string  `dynamodbav:"version" gorm:"column:version;primaryKey"`
	Owner   string  `dynamodbav:"owner" gorm:"column:owner;not null"`
	Email   *string `dynamodbav:"email,omitempty" gorm:"column:email"`
	Body    string  `dynamodbav:"body" gorm:"column:body"`
}

const OwnerIndex = "ByOwner"

// Schema returns the schema of a suite table called name.
func Schema(name string) store.Schema {
	return store.Schema{
		Name:         name,
		PartitionKey: "id",
		SortKey:      "version",
		Indexes: []store.Index{
			{Name: OwnerIndex, PartitionKey: "owner", SortKey: "version"},
		},
		Unique: []string{"email"},
	}
}

// Opener returns an empty table for schema.
type Opener func(t *testing.T, schema store.Schema) store.Table[Record]

var tableSeq atomic.Int64

func fresh(t *testing.T, open Opener) store.Table[Record] {
	t.Helper()
	return open(t, Schema(fmt.Sprintf("storetest_%d", tableSeq.Add(1))))
}

func email(s string) *string { return &s }

// Run exercises open against the store contract.
func Run(t *testing.T, open Opener) {
	t.Run("get missing", func(t *testing.T) {
		tbl := fresh(t, open)
		_, err := tbl.Get(context.Background(), store.Key{"id": "nope", "version": "1"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		tbl := fresh(t, open)
		ctx := context.Background()
		rec := Record{ID: "a", Version: "1", Owner: "alice", Email: email("a@example.com"), Body: "hello"}

		require.NoError(t, tbl.Put(ctx, rec))

		got, err := tbl.Get(ctx, store.Key{"id": "a", "version": "1"})
		require.NoError(t, err)
		assert.Equal(t, rec, got)

		_, err = tbl.Get(ctx, store.Key{"id": "a", "version": "2"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unconditional put overwrites", func(t *testing.T) {
		tbl := fresh(t, open)
		ctx := context.Background()

		require.NoError(t, tbl.Put(ctx, Record{ID: "a", Version: "1", Owner: "alice", Body: "first"}))
		require.NoError(t, tbl.Put(ctx, Record{ID: "a", Version: "1", Owner: "alice", Body: "second"}))

		got, err := tbl.Get(ctx, store.Key{"id": "a", "version": "1"})
		require.NoError(t, err)
		assert.Equal(t, "second", got.Body)

		all, err := tbl.Scan(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("unique on attribute", func(t *testing.T) {
		tbl := fresh(t, open)
		ctx := context.Background()

		first := Record{ID: "a", Version: "1", Owner: "alice", Email: email("dup@example.com")}
		second := Record{ID: "b", Version: "1", Owner: "bob", Email: email("dup@example.com")}
		third := Record{ID: "c", Version: "1", Owner: "carol", Email: email("carol@example.com")}

		require.NoError(t, tbl.Put(ctx, first, store.UniqueOn("email")))
		assert.ErrorIs(t, tbl.Put(ctx, second, store.UniqueOn("email")), store.ErrConditionFailed)
		require.NoError(t, tbl.Put(ctx, third, store.UniqueOn("email")))

		_, err := tbl.Get(ctx, store.Key{"id": "b", "version": "1"})
		assert.ErrorIs(t, err, store.ErrNotFound, "rejected item must not be visible")

		all, err := tbl.Scan(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []Record{first, third}, all)
	})

	t.Run("unique on rejects existing key", func(t *testing.T) {
		tbl := fresh(t, open)
		ctx := context.Background()

		require.NoError(t, tbl.Put(ctx, Record{ID: "a", Version: "1", Owner: "alice", Email: email("a@example.com")}, store.UniqueOn("email")))
		err := tbl.Put(ctx, Record{ID: "a", Version: "1", Owner: "mallory", Email: email("m@example.com")}, store.UniqueOn("email"))
		assert.ErrorIs(t, err, store.ErrConditionFailed)

		got, err := tbl.Get(ctx, store.Key{"id": "a", "version": "1"})
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Owner)
	})

	t.Run("concurrent unique puts", func(t *testing.T) {
		tbl := fresh(t, open)
		ctx := context.Background()

		const writers = 8
		var wg sync.WaitGroup
		var ok, conflicts atomic.Int32
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec := Record{ID: fmt.Sprintf("w%d", i), Version: "1", Owner: "race", Email: email("race@example.com")}
				switch err := tbl.Put(ctx, rec, store.UniqueOn("email")); {
				case err == nil:
					ok.Add(1)
				case assert.ErrorIs(t, err, store.ErrConditionFailed):
					conflicts.Add(1)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), ok.Load())
		assert.Equal(t, int32(writers-1), conflicts.Load())

		all, err := tbl.Scan(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("query index ordering", func(t *testing.T) {
		tbl := fresh(t, open)
		ctx := context.Background()

		for _, rec := range []Record{
			{ID: "t2", Version: "2025-01-01T00:00:02", Owner: "alice", Body: "two"},
			{ID: "t1", Version: "2025-01-01T00:00:01", Owner: "alice", Body: "one"},
			{ID: "x1", Version: "2025-01-01T00:00:05", Owner: "bob", Body: "other"},
			{ID: "t3", Version: "2025-01-01T00:00:03", Owner: "alice", Body: "three"},
		} {
			require.NoError(t, tbl.Put(ctx, rec))
		}

		desc, err := tbl.Query(ctx, store.Query{Index: OwnerIndex, Value: "alice", Descending: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"three", "two", "one"}, bodies(desc))

		asc, err := tbl.Query(ctx, store.Query{Index: OwnerIndex, Value: "alice"})
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three"}, bodies(asc))

		none, err := tbl.Query(ctx, store.Query{Index: OwnerIndex, Value: "nobody", Descending: true})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("query primary partition", func(t *testing.T) {
		tbl := fresh(t, open)
		ctx := context.Background()

		require.NoError(t, tbl.Put(ctx, Record{ID: "a", Version: "1", Owner: "alice", Body: "v1"}))
		require.NoError(t, tbl.Put(ctx, Record{ID: "a", Version: "2", Owner: "alice", Body: "v2"}))
		require.NoError(t, tbl.Put(ctx, Record{ID: "b", Version: "1", Owner: "alice", Body: "other"}))

		got, err := tbl.Query(ctx, store.Query{Value: "a", Descending: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"v2", "v1"}, bodies(got))
	})

	t.Run("query unknown index", func(t *testing.T) {
		tbl := fresh(t, open)
		_, err := tbl.Query(context.Background(), store.Query{Index: "ByColor", Value: "red"})
		assert.ErrorIs(t, err, store.ErrUnknownIndex)
	})

	t.Run("get of a sentinel key is not found", func(t *testing.T) {
		tbl := fresh(t, open)
		ctx := context.Background()

		require.NoError(t, tbl.Put(ctx, Record{ID: "a", Version: "1", Owner: "alice", Email: email("a@x.com")}, store.UniqueOn("email")))

		_, err := tbl.Get(ctx, store.Key{"id": "email#a@x.com", "version": "email#a@x.com"})
		assert.ErrorIs(t, err, store.ErrNotFound)

		got, err := tbl.Query(ctx, store.Query{Value: "email#a@x.com"})
		require.NoError(t, err)
		assert.Empty(t, got)

		all, err := tbl.Scan(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("scan empty", func(t *testing.T) {
		tbl := fresh(t, open)
		all, err := tbl.Scan(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func bodies(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Body
	}
	return out
}
