package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bart-incident-bot/internal/auth"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/service"
	"github.com/spec-kit/bart-incident-bot/internal/ticketing"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// IncidentService is what the incident endpoints need.
type IncidentService interface {
	CreateIncident(ctx context.Context, requester domain.User, in service.CreateIncidentInput) (*domain.Incident, error)
	GetAllIncidents(ctx context.Context, weekDay int) ([]domain.Incident, error)
	SearchIncidents(ctx context.Context, filter ticketing.SearchFilter) ([]domain.Incident, error)
	GetIncident(ctx context.Context, number string) (*domain.Incident, error)
}

// WorkstreamService is what the workstream endpoints need.
type WorkstreamService interface {
	CreateOrUpdate(ctx context.Context, actor domain.User, batch []domain.Workstream) (service.WorkstreamResult, error)
	GetAll(ctx context.Context, incidentNumber string) ([]domain.Workstream, error)
}

// ResourceService is what the bridge endpoints need.
type ResourceService interface {
	GetAvailabilityData(ctx context.Context) ([]domain.ConferenceRoom, error)
	GetRoom(ctx context.Context, code string) (*domain.ConferenceRoom, error)
}

// StatusService lists the configured statuses.
type StatusService interface {
	GetAll(ctx context.Context) ([]domain.StatusConfiguration, error)
}

// UserService is what the directory endpoints need.
type UserService interface {
	SearchUsers(ctx context.Context, query string) ([]domain.User, error)
	GroupMembers(ctx context.Context) ([]domain.User, error)
}

func currentUser(c *fiber.Ctx) (domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil || principal.User.ID == "" {
		return domain.User{}, apperrors.NewSigninRequired("user required")
	}
	return *principal.User, nil
}
