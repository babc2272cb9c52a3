package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/spec-kit/bart-incident-bot/internal/persistence"
)

// ErrNotFound is returned when a keyed entity does not exist.
var ErrNotFound = errors.New("entity not found")

// Table names.
const (
	TableIncidents           = "Incidents"
	TableWorkstreams         = "Workstreams"
	TableConferenceRooms     = "ConferenceRooms"
	TableStatusConfiguration = "StatusConfiguration"
	TableUserConfiguration   = "UserConfiguration"
)

// table is a typed view over one logical table. The table is created on first
// use; a failed creation is retried by the next call.
type table[T any] struct {
	name  string
	store persistence.TableStore

	mu    sync.Mutex
	ready bool
}

func newTable[T any](store persistence.TableStore, name string) *table[T] {
	return &table[T]{name: name, store: store}
}

func (t *table[T]) ensure(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ready {
		return nil
	}
	if err := t.store.CreateTableIfNotExists(ctx, t.name); err != nil {
		return fmt.Errorf("create table %s: %w", t.name, err)
	}
	t.ready = true
	return nil
}

func (t *table[T]) put(ctx context.Context, partitionKey, rowKey string, entity *T) error {
	if partitionKey == "" || rowKey == "" {
		return fmt.Errorf("%s: partition and row key required", t.name)
	}
	if err := t.ensure(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	return t.store.Upsert(ctx, t.name, persistence.Record{
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		Data:         data,
	})
}

func (t *table[T]) get(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	if err := t.ensure(ctx); err != nil {
		return nil, err
	}
	rec, err := t.store.Get(ctx, t.name, partitionKey, rowKey)
	if errors.Is(err, persistence.ErrEntityNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var entity T
	if err := json.Unmarshal(rec.Data, &entity); err != nil {
		return nil, fmt.Errorf("decode %s/%s/%s: %w", t.name, partitionKey, rowKey, err)
	}
	return &entity, nil
}

func (t *table[T]) list(ctx context.Context, partitionKey string) ([]T, error) {
	if err := t.ensure(ctx); err != nil {
		return nil, err
	}
	records, err := t.store.Query(ctx, t.name, partitionKey)
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(records))
	for _, rec := range records {
		var entity T
		if err := json.Unmarshal(rec.Data, &entity); err != nil {
			return nil, fmt.Errorf("decode %s/%s/%s: %w", t.name, rec.PartitionKey, rec.RowKey, err)
		}
		result = append(result, entity)
	}
	return result, nil
}

func (t *table[T]) remove(ctx context.Context, partitionKey, rowKey string) error {
	if err := t.ensure(ctx); err != nil {
		return err
	}
	return t.store.Delete(ctx, t.name, partitionKey, rowKey)
}
