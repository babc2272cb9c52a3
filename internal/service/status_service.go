package service

import (
	"context"
	"strings"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/repository"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// StatusService resolves card action names to backend status codes.
type StatusService struct {
	statuses repository.StatusRepository
}

// NewStatusService constructs the service.
func NewStatusService(statuses repository.StatusRepository) *StatusService {
	return &StatusService{statuses: statuses}
}

// GetAll returns the configured statuses, or the built-in ones when none are configured.
func (s *StatusService) GetAll(ctx context.Context) ([]domain.StatusConfiguration, error) {
	configured, err := s.statuses.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(configured) == 0 {
		return domain.DefaultStatuses(), nil
	}
	return configured, nil
}

// Resolve maps an action name such as "Suspended" to its status.
// Matching is case-insensitive; "Restored" is accepted for "Service Restored".
func (s *StatusService) Resolve(ctx context.Context, action string) (domain.StatusConfiguration, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return domain.StatusConfiguration{}, err
	}
	wanted := strings.TrimSpace(action)
	for _, st := range all {
		if strings.EqualFold(st.Name, wanted) {
			return st, nil
		}
	}
	for _, st := range all {
		if strings.EqualFold(strings.TrimPrefix(st.Name, "Service "), wanted) {
			return st, nil
		}
	}
	return domain.StatusConfiguration{}, apperrors.NewValidationError("unknown status action", map[string]any{"action": action})
}
