package repository

import (
	"context"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/persistence"
)

// WorkstreamRepository manages workstreams keyed by incident number.
type WorkstreamRepository interface {
	Add(ctx context.Context, workstream *domain.Workstream) error
	Get(ctx context.Context, incidentNumber, workstreamID string) (*domain.Workstream, error)
	GetAll(ctx context.Context, incidentNumber string) ([]domain.Workstream, error)
	Delete(ctx context.Context, workstream *domain.Workstream) error
}

type workstreamRepository struct {
	table *table[domain.Workstream]
}

// NewWorkstreamRepository constructs repository.
func NewWorkstreamRepository(store persistence.TableStore) WorkstreamRepository {
	return &workstreamRepository{table: newTable[domain.Workstream](store, TableWorkstreams)}
}

func (r *workstreamRepository) Add(ctx context.Context, workstream *domain.Workstream) error {
	return r.table.put(ctx, workstream.PartitionKey, workstream.RowKey, workstream)
}

func (r *workstreamRepository) Get(ctx context.Context, incidentNumber, workstreamID string) (*domain.Workstream, error) {
	return r.table.get(ctx, incidentNumber, workstreamID)
}

func (r *workstreamRepository) GetAll(ctx context.Context, incidentNumber string) ([]domain.Workstream, error) {
	return r.table.list(ctx, incidentNumber)
}

func (r *workstreamRepository) Delete(ctx context.Context, workstream *domain.Workstream) error {
	return r.table.remove(ctx, workstream.PartitionKey, workstream.RowKey)
}
