package persistence

import (
	"context"
	"errors"
	"time"
)

// ErrEntityNotFound is returned by TableStore.Get when no row matches.
var ErrEntityNotFound = errors.New("entity not found")

// Record is one row of a logical table. Data holds the JSON-encoded entity.
type Record struct {
	PartitionKey string
	RowKey       string
	Data         []byte
	ETag         string
	Timestamp    time.Time
}

// TableStore is a partition/row keyed entity store.
// Writes are unconditional upserts; ETags are recorded but never compared.
type TableStore interface {
	CreateTableIfNotExists(ctx context.Context, table string) error
	Upsert(ctx context.Context, table string, rec Record) error
	Get(ctx context.Context, table, partitionKey, rowKey string) (*Record, error)
	Query(ctx context.Context, table, partitionKey string) ([]Record, error)
	Delete(ctx context.Context, table, partitionKey, rowKey string) error
}
