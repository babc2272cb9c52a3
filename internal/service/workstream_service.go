package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/events"
	"github.com/spec-kit/bart-incident-bot/internal/repository"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// WorkstreamService manages the sub-tasks of incidents.
type WorkstreamService struct {
	workstreams repository.WorkstreamRepository
	dispatcher  events.Dispatcher
}

// NewWorkstreamService constructs the service.
func NewWorkstreamService(workstreams repository.WorkstreamRepository, dispatcher events.Dispatcher) *WorkstreamService {
	return &WorkstreamService{workstreams: workstreams, dispatcher: dispatcher}
}

// WorkstreamResult counts what an upsert batch did.
type WorkstreamResult struct {
	Upserted int `json:"upserted"`
	Deleted  int `json:"deleted"`
}

// ValidateDrafts checks a batch that has no incident number yet.
func ValidateDrafts(drafts []domain.Workstream) error {
	seen := map[int]struct{}{}
	for _, ws := range drafts {
		if ws.InActive {
			continue
		}
		if err := validateWorkstream(ws); err != nil {
			return err
		}
		if _, dup := seen[ws.Priority]; dup {
			return apperrors.NewValidationError("workstream priorities must be unique", map[string]any{"priority": ws.Priority})
		}
		seen[ws.Priority] = struct{}{}
	}
	return nil
}

func validateWorkstream(ws domain.Workstream) error {
	if ws.Priority <= 0 {
		return apperrors.NewValidationError("workstream priority must be positive", map[string]any{"rowKey": ws.RowKey})
	}
	if strings.TrimSpace(ws.Description) == "" {
		return apperrors.NewValidationError("workstream description required", map[string]any{"rowKey": ws.RowKey})
	}
	return nil
}

// CreateOrUpdate applies a batch: inactive entries are deleted, the rest upserted.
// Active priorities must stay unique per incident once the batch is applied.
func (s *WorkstreamService) CreateOrUpdate(ctx context.Context, actor domain.User, batch []domain.Workstream) (WorkstreamResult, error) {
	byIncident := map[string][]int{}
	for i := range batch {
		ws := &batch[i]
		ws.PartitionKey = strings.TrimSpace(ws.PartitionKey)
		if ws.PartitionKey == "" {
			return WorkstreamResult{}, apperrors.NewValidationError("incident number required", map[string]any{"index": i})
		}
		if ws.InActive {
			if ws.RowKey == "" {
				return WorkstreamResult{}, apperrors.NewValidationError("workstream id required for removal", map[string]any{"index": i})
			}
		} else if err := validateWorkstream(*ws); err != nil {
			return WorkstreamResult{}, err
		}
		byIncident[ws.PartitionKey] = append(byIncident[ws.PartitionKey], i)
	}

	for number, idxs := range byIncident {
		if err := s.checkPriorities(ctx, number, batch, idxs); err != nil {
			return WorkstreamResult{}, err
		}
	}

	var result WorkstreamResult
	perIncident := make(map[string]*WorkstreamResult, len(byIncident))
	for number := range byIncident {
		perIncident[number] = &WorkstreamResult{}
	}
	for i := range batch {
		ws := &batch[i]
		counts := perIncident[ws.PartitionKey]
		if ws.InActive {
			if err := s.workstreams.Delete(ctx, ws); err != nil {
				return result, err
			}
			result.Deleted++
			counts.Deleted++
			continue
		}
		if ws.RowKey == "" {
			ws.RowKey = uuid.NewString()
		}
		if err := s.workstreams.Add(ctx, ws); err != nil {
			return result, err
		}
		result.Upserted++
		counts.Upserted++
	}

	s.publishUpdates(ctx, actor, perIncident)
	return result, nil
}

// publishUpdates emits one event per incident touched by a batch, in incident number order.
func (s *WorkstreamService) publishUpdates(ctx context.Context, actor domain.User, perIncident map[string]*WorkstreamResult) {
	if s.dispatcher == nil {
		return
	}
	numbers := make([]string, 0, len(perIncident))
	for number := range perIncident {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)
	for _, number := range numbers {
		counts := perIncident[number]
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:             uuid.NewString(),
			Type:           events.EventWorkstreamsUpdated,
			IncidentNumber: number,
			Actor:          events.Actor{UserID: actor.ID, Name: actor.DisplayName},
			Timestamp:      time.Now().UTC(),
			Payload:        events.WorkstreamsUpdatedPayload{Upserted: counts.Upserted, Deleted: counts.Deleted},
		})
	}
}

// checkPriorities simulates the batch on top of the stored rows of one incident.
func (s *WorkstreamService) checkPriorities(ctx context.Context, number string, batch []domain.Workstream, idxs []int) error {
	existing, err := s.workstreams.GetAll(ctx, number)
	if err != nil {
		return err
	}
	final := make(map[string]int, len(existing)+len(idxs))
	for _, ws := range existing {
		if !ws.InActive {
			final[ws.RowKey] = ws.Priority
		}
	}
	pending := 0
	for _, i := range idxs {
		ws := batch[i]
		switch {
		case ws.InActive:
			delete(final, ws.RowKey)
		case ws.RowKey == "":
			pending++
			final["\x00new"+strconv.Itoa(pending)] = ws.Priority
		default:
			final[ws.RowKey] = ws.Priority
		}
	}
	seen := make(map[int]struct{}, len(final))
	for _, p := range final {
		if _, dup := seen[p]; dup {
			return apperrors.NewValidationError("workstream priorities must be unique", map[string]any{"incidentNumber": number, "priority": p})
		}
		seen[p] = struct{}{}
	}
	return nil
}

// GetAll lists the workstreams of an incident by priority. An empty number yields an empty list.
func (s *WorkstreamService) GetAll(ctx context.Context, incidentNumber string) ([]domain.Workstream, error) {
	incidentNumber = strings.TrimSpace(incidentNumber)
	if incidentNumber == "" {
		return []domain.Workstream{}, nil
	}
	all, err := s.workstreams.GetAll(ctx, incidentNumber)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority < all[j].Priority
		}
		return all[i].RowKey < all[j].RowKey
	})
	return all, nil
}
