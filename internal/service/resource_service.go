package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/repository"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// ResourceService manages conference bridges.
type ResourceService struct {
	rooms repository.ConferenceRoomRepository
}

// NewResourceService constructs the service.
func NewResourceService(rooms repository.ConferenceRoomRepository) *ResourceService {
	return &ResourceService{rooms: rooms}
}

// GetAvailabilityData returns the bridges not bound to an incident, ordered by code.
func (s *ResourceService) GetAvailabilityData(ctx context.Context) ([]domain.ConferenceRoom, error) {
	rooms, err := s.rooms.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]domain.ConferenceRoom, 0, len(rooms))
	for _, room := range rooms {
		if room.Available {
			available = append(available, room)
		}
	}
	sort.Slice(available, func(i, j int) bool { return available[i].Code < available[j].Code })
	return available, nil
}

// GetRoom fetches one bridge by code.
func (s *ResourceService) GetRoom(ctx context.Context, code string) (*domain.ConferenceRoom, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.NewValidationError("bridge code required", nil)
	}
	room, err := s.rooms.Get(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("conference bridge", map[string]any{"code": code})
	}
	return room, err
}

// Bind marks the bridge as taken. The write is an unconditional overwrite.
func (s *ResourceService) Bind(ctx context.Context, room *domain.ConferenceRoom) error {
	room.Available = false
	return s.rooms.Add(ctx, room)
}

// Release makes the bridge available again.
func (s *ResourceService) Release(ctx context.Context, room *domain.ConferenceRoom) error {
	room.Available = true
	return s.rooms.Add(ctx, room)
}

// AddRoom registers or replaces a bridge.
func (s *ResourceService) AddRoom(ctx context.Context, room *domain.ConferenceRoom) error {
	if strings.TrimSpace(room.Code) == "" {
		return apperrors.NewValidationError("bridge code required", nil)
	}
	return s.rooms.Add(ctx, room)
}

// Seed registers the given bridge codes as available unless they already
// exist. Existing rows keep their availability.
func (s *ResourceService) Seed(ctx context.Context, codes []string, dialInPrefix string) (int, error) {
	added := 0
	for _, code := range codes {
		_, err := s.rooms.Get(ctx, code)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return added, err
		}
		room := &domain.ConferenceRoom{Code: code, Available: true}
		if dialInPrefix != "" {
			room.BridgeURL = dialInPrefix + code
		}
		if err := s.rooms.Add(ctx, room); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
