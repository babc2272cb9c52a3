package repository

import (
	"context"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/persistence"
)

// UserConfigurationRepository stores personal conversation coordinates per AAD object id.
type UserConfigurationRepository interface {
	Add(ctx context.Context, cfg *domain.UserConfiguration) error
	Get(ctx context.Context, aadObjectID string) (*domain.UserConfiguration, error)
	Delete(ctx context.Context, cfg *domain.UserConfiguration) error
}

type userConfigurationRepository struct {
	table *table[domain.UserConfiguration]
}

// NewUserConfigurationRepository constructs repository.
func NewUserConfigurationRepository(store persistence.TableStore) UserConfigurationRepository {
	return &userConfigurationRepository{table: newTable[domain.UserConfiguration](store, TableUserConfiguration)}
}

func (r *userConfigurationRepository) Add(ctx context.Context, cfg *domain.UserConfiguration) error {
	cfg.PartitionKey = domain.UserConfigurationPartition
	return r.table.put(ctx, cfg.PartitionKey, cfg.RowKey, cfg)
}

func (r *userConfigurationRepository) Get(ctx context.Context, aadObjectID string) (*domain.UserConfiguration, error) {
	return r.table.get(ctx, domain.UserConfigurationPartition, aadObjectID)
}

func (r *userConfigurationRepository) Delete(ctx context.Context, cfg *domain.UserConfiguration) error {
	return r.table.remove(ctx, domain.UserConfigurationPartition, cfg.RowKey)
}
