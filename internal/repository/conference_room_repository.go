package repository

import (
	"context"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/persistence"
)

// ConferenceRoomRepository manages bridge lines.
type ConferenceRoomRepository interface {
	Add(ctx context.Context, room *domain.ConferenceRoom) error
	Get(ctx context.Context, code string) (*domain.ConferenceRoom, error)
	GetAll(ctx context.Context) ([]domain.ConferenceRoom, error)
	Delete(ctx context.Context, room *domain.ConferenceRoom) error
}

type conferenceRoomRepository struct {
	table *table[domain.ConferenceRoom]
}

// NewConferenceRoomRepository constructs repository.
func NewConferenceRoomRepository(store persistence.TableStore) ConferenceRoomRepository {
	return &conferenceRoomRepository{table: newTable[domain.ConferenceRoom](store, TableConferenceRooms)}
}

func (r *conferenceRoomRepository) Add(ctx context.Context, room *domain.ConferenceRoom) error {
	room.PartitionKey = domain.ConferenceRoomPartition
	return r.table.put(ctx, room.PartitionKey, room.Code, room)
}

func (r *conferenceRoomRepository) Get(ctx context.Context, code string) (*domain.ConferenceRoom, error) {
	return r.table.get(ctx, domain.ConferenceRoomPartition, code)
}

func (r *conferenceRoomRepository) GetAll(ctx context.Context) ([]domain.ConferenceRoom, error) {
	return r.table.list(ctx, domain.ConferenceRoomPartition)
}

func (r *conferenceRoomRepository) Delete(ctx context.Context, room *domain.ConferenceRoom) error {
	return r.table.remove(ctx, domain.ConferenceRoomPartition, room.Code)
}
