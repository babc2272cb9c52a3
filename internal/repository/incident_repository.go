package repository

import (
	"context"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/persistence"
)

// IncidentRepository persists the ticket-to-conversation linkage.
type IncidentRepository interface {
	Add(ctx context.Context, entity *domain.IncidentEntity) error
	Get(ctx context.Context, incidentNumber, incidentID string) (*domain.IncidentEntity, error)
	GetAll(ctx context.Context, incidentNumber string) ([]domain.IncidentEntity, error)
	Delete(ctx context.Context, entity *domain.IncidentEntity) error
}

type incidentRepository struct {
	table *table[domain.IncidentEntity]
}

// NewIncidentRepository instantiates repository.
func NewIncidentRepository(store persistence.TableStore) IncidentRepository {
	return &incidentRepository{table: newTable[domain.IncidentEntity](store, TableIncidents)}
}

func (r *incidentRepository) Add(ctx context.Context, entity *domain.IncidentEntity) error {
	return r.table.put(ctx, entity.PartitionKey, entity.RowKey, entity)
}

func (r *incidentRepository) Get(ctx context.Context, incidentNumber, incidentID string) (*domain.IncidentEntity, error) {
	return r.table.get(ctx, incidentNumber, incidentID)
}

func (r *incidentRepository) GetAll(ctx context.Context, incidentNumber string) ([]domain.IncidentEntity, error) {
	return r.table.list(ctx, incidentNumber)
}

func (r *incidentRepository) Delete(ctx context.Context, entity *domain.IncidentEntity) error {
	return r.table.remove(ctx, entity.PartitionKey, entity.RowKey)
}
