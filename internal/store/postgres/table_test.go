package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/twitter-clone/internal/store"
	"github.com/dom/twitter-clone/internal/store/postgres"
	"github.com/dom/twitter-clone/internal/store/storetest"
	"github.com/dom/twitter-clone/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Contract(t *testing.T) {
	testDB := testutil.NewTestDB(t)

	storetest.Run(t, func(t *testing.T, schema store.Schema) store.Table[storetest.Record] {
		require.NoError(t, postgres.Migrate[storetest.Record](context.Background(), testDB.DB, schema))
		return postgres.NewTable[storetest.Record](testDB.DB, schema)
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	ctx := context.Background()
	schema := storetest.Schema("migrate_twice")

	require.NoError(t, postgres.Migrate[storetest.Record](ctx, testDB.DB, schema))
	require.NoError(t, postgres.Migrate[storetest.Record](ctx, testDB.DB, schema))
}

func TestTable_UniqueOnUndeclaredAttribute(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	ctx := context.Background()
	schema := storetest.Schema("undeclared_unique")
	require.NoError(t, postgres.Migrate[storetest.Record](ctx, testDB.DB, schema))
	tbl := postgres.NewTable[storetest.Record](testDB.DB, schema)

	err := tbl.Put(ctx, storetest.Record{ID: "a", Version: "1", Owner: "alice"}, store.UniqueOn("owner"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrConditionFailed)
}
