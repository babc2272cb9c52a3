package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTableStoreRequiresTable(t *testing.T) {
	store := NewMemoryTableStore()
	err := store.Upsert(context.Background(), "Incidents", Record{PartitionKey: "INC1", RowKey: "1"})
	assert.Error(t, err)
}

func TestMemoryTableStoreUpsertGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTableStore()
	require.NoError(t, store.CreateTableIfNotExists(ctx, "Incidents"))
	require.NoError(t, store.CreateTableIfNotExists(ctx, "Incidents"))

	require.NoError(t, store.Upsert(ctx, "Incidents", Record{PartitionKey: "INC1", RowKey: "1", Data: []byte(`{"a":1}`)}))
	require.NoError(t, store.Upsert(ctx, "Incidents", Record{PartitionKey: "INC1", RowKey: "1", Data: []byte(`{"a":2}`)}))

	rec, err := store.Get(ctx, "Incidents", "INC1", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(rec.Data))
	assert.NotEmpty(t, rec.ETag)

	require.NoError(t, store.Delete(ctx, "Incidents", "INC1", "1"))
	_, err = store.Get(ctx, "Incidents", "INC1", "1")
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestMemoryTableStoreQueryOrdersByRowKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTableStore()
	require.NoError(t, store.CreateTableIfNotExists(ctx, "Workstreams"))
	for _, rk := range []string{"c", "a", "b"} {
		require.NoError(t, store.Upsert(ctx, "Workstreams", Record{PartitionKey: "INC1", RowKey: rk}))
	}
	require.NoError(t, store.Upsert(ctx, "Workstreams", Record{PartitionKey: "INC2", RowKey: "z"}))

	rows, err := store.Query(ctx, "Workstreams", "INC1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{rows[0].RowKey, rows[1].RowKey, rows[2].RowKey})

	empty, err := store.Query(ctx, "Missing", "INC1")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
