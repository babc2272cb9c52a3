package repository

import (
	"context"
	"strings"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/persistence"
)

// StatusRepository holds the configured status actions.
type StatusRepository interface {
	Add(ctx context.Context, status *domain.StatusConfiguration) error
	Get(ctx context.Context, name string) (*domain.StatusConfiguration, error)
	GetAll(ctx context.Context) ([]domain.StatusConfiguration, error)
}

type statusRepository struct {
	table *table[domain.StatusConfiguration]
}

// NewStatusRepository constructs repository.
func NewStatusRepository(store persistence.TableStore) StatusRepository {
	return &statusRepository{table: newTable[domain.StatusConfiguration](store, TableStatusConfiguration)}
}

// statusRowKey folds names so lookups are case-insensitive.
func statusRowKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *statusRepository) Add(ctx context.Context, status *domain.StatusConfiguration) error {
	status.PartitionKey = domain.StatusPartition
	return r.table.put(ctx, status.PartitionKey, statusRowKey(status.Name), status)
}

func (r *statusRepository) Get(ctx context.Context, name string) (*domain.StatusConfiguration, error) {
	return r.table.get(ctx, domain.StatusPartition, statusRowKey(name))
}

func (r *statusRepository) GetAll(ctx context.Context) ([]domain.StatusConfiguration, error) {
	return r.table.list(ctx, domain.StatusPartition)
}
