package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryTableStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]Record
}

// NewMemoryTableStore returns a process-local TableStore.
func NewMemoryTableStore() TableStore {
	return &memoryTableStore{tables: make(map[string]map[string]Record)}
}

func memoryKey(partitionKey, rowKey string) string {
	return partitionKey + "\x00" + rowKey
}

func (s *memoryTableStore) CreateTableIfNotExists(_ context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = make(map[string]Record)
	}
	return nil
}

func (s *memoryTableStore) Upsert(_ context.Context, table string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("table %s does not exist", table)
	}
	rec.Data = append([]byte(nil), rec.Data...)
	rec.ETag = uuid.NewString()
	rec.Timestamp = time.Now().UTC()
	rows[memoryKey(rec.PartitionKey, rec.RowKey)] = rec
	return nil
}

func (s *memoryTableStore) Get(_ context.Context, table, partitionKey, rowKey string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tables[table][memoryKey(partitionKey, rowKey)]
	if !ok {
		return nil, ErrEntityNotFound
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return &rec, nil
}

func (s *memoryTableStore) Query(_ context.Context, table, partitionKey string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []Record{}
	for _, rec := range s.tables[table] {
		if rec.PartitionKey != partitionKey {
			continue
		}
		rec.Data = append([]byte(nil), rec.Data...)
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RowKey < result[j].RowKey })
	return result, nil
}

func (s *memoryTableStore) Delete(_ context.Context, table, partitionKey, rowKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables[table], memoryKey(partitionKey, rowKey))
	return nil
}
