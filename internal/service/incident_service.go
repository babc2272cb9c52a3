package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bart-incident-bot/internal/botframework"
	"github.com/spec-kit/bart-incident-bot/internal/cards"
	"github.com/spec-kit/bart-incident-bot/internal/config"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/events"
	"github.com/spec-kit/bart-incident-bot/internal/repository"
	"github.com/spec-kit/bart-incident-bot/internal/ticketing"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// Ticketing is the incident backend.
type Ticketing interface {
	CreateIncident(ctx context.Context, incident *domain.Incident) (*domain.Incident, error)
	UpdateIncident(ctx context.Context, incident *domain.Incident) (*domain.Incident, error)
	SearchIncidents(ctx context.Context, filter ticketing.SearchFilter) ([]domain.Incident, error)
}

// Messenger posts and replaces activities through the connector.
type Messenger interface {
	SendToConversation(ctx context.Context, serviceURL, conversationID string, activity *botframework.Activity) (string, error)
	UpdateActivity(ctx context.Context, serviceURL, conversationID, activityID string, activity *botframework.Activity) error
	CreateConversation(ctx context.Context, serviceURL string, params botframework.ConversationParameters) (*botframework.ConversationResourceResponse, error)
}

// CreateIncidentInput is the submission from the SPA or the create task module.
type CreateIncidentInput struct {
	Incident    domain.Incident     `json:"incident"`
	Workstreams []domain.Workstream `json:"workstreams"`
}

// StatusChangeRequest is a card action asking to move an incident to another status.
type StatusChangeRequest struct {
	IncidentID     string
	IncidentNumber string
	Action         string
	Title          string
}

// IncidentDependencies bundles the collaborators of the incident service.
type IncidentDependencies struct {
	Ticketing   Ticketing
	Messenger   Messenger
	Incidents   repository.IncidentRepository
	Resources   *ResourceService
	Statuses    *StatusService
	Workstreams *WorkstreamService
	Users       repository.UserConfigurationRepository
	Dispatcher  events.Dispatcher
	Bot         config.BotConfig
	Logger      *zap.Logger
}

// IncidentService coordinates incidents across the ticketing backend, table
// storage and the Teams conversations their cards live in.
type IncidentService struct {
	ticketing   Ticketing
	messenger   Messenger
	incidents   repository.IncidentRepository
	resources   *ResourceService
	statuses    *StatusService
	workstreams *WorkstreamService
	users       repository.UserConfigurationRepository
	dispatcher  events.Dispatcher
	bot         config.BotConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewIncidentService constructs the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{
		ticketing:   deps.Ticketing,
		messenger:   deps.Messenger,
		incidents:   deps.Incidents,
		resources:   deps.Resources,
		statuses:    deps.Statuses,
		workstreams: deps.Workstreams,
		users:       deps.Users,
		dispatcher:  deps.Dispatcher,
		bot:         deps.Bot,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func validateDraft(in CreateIncidentInput) error {
	inc := in.Incident
	details := map[string]any{}
	if strings.TrimSpace(inc.ShortDescription) == "" {
		details["shortDescription"] = "required"
	}
	if strings.TrimSpace(inc.BridgeID) == "" {
		details["bridgeId"] = "required"
	}
	if strings.TrimSpace(inc.Priority) == "" {
		details["priority"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid incident", details)
	}
	return ValidateDrafts(in.Workstreams)
}

// CreateIncident opens a ticket on an available bridge and posts its card to
// the requester and the team channel. Steps after the ticket is created are
// not rolled back on failure.
func (s *IncidentService) CreateIncident(ctx context.Context, requester domain.User, in CreateIncidentInput) (*domain.Incident, error) {
	if requester.ID == "" {
		return nil, apperrors.NewSigninRequired("requester identity missing")
	}
	if err := validateDraft(in); err != nil {
		return nil, err
	}
	if err := s.checkTeamChannel(); err != nil {
		return nil, err
	}

	room, err := s.resources.GetRoom(ctx, in.Incident.BridgeID)
	if err != nil {
		return nil, err
	}
	if !room.Available {
		return nil, apperrors.NewConflict("conference bridge is not available", map[string]any{"code": room.Code})
	}

	draft := in.Incident
	draft.Status = domain.IncidentStatusNew
	draft.RequestedBy = firstNonBlank(draft.RequestedBy, requester.ID)
	draft.RequestedByName = firstNonBlank(draft.RequestedByName, requester.DisplayName)
	draft.BridgeURL = room.BridgeURL

	created, err := s.ticketing.CreateIncident(ctx, &draft)
	if err != nil {
		return nil, transportError(err)
	}
	if created.BridgeID == "" {
		created.BridgeID = room.Code
	}
	if created.BridgeURL == "" {
		created.BridgeURL = room.BridgeURL
	}

	if err := s.resources.Bind(ctx, room); err != nil {
		return nil, err
	}

	statuses, err := s.statuses.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	card := cards.Incident(*created, room, statuses).Attachment()

	entity := &domain.IncidentEntity{
		PartitionKey: created.Number,
		RowKey:       created.ID,
		BridgeID:     room.Code,
		Timestamp:    s.now(),
	}
	var sendErrs []error
	if err := s.postPersonal(ctx, requester, card, entity); err != nil {
		sendErrs = append(sendErrs, err)
	}
	if err := s.postTeam(ctx, card, entity); err != nil {
		sendErrs = append(sendErrs, err)
	}

	if err := s.incidents.Add(ctx, entity); err != nil {
		return nil, err
	}

	if len(in.Workstreams) > 0 {
		batch := make([]domain.Workstream, 0, len(in.Workstreams))
		for _, ws := range in.Workstreams {
			if ws.InActive {
				continue
			}
			ws.PartitionKey = created.Number
			batch = append(batch, ws)
		}
		if _, err := s.workstreams.CreateOrUpdate(ctx, requester, batch); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, events.EventIncidentCreated, requester, created.Number, events.IncidentCreatedPayload{
		IncidentID: created.ID,
		BridgeID:   room.Code,
		Priority:   created.Priority,
		Title:      created.ShortDescription,
	})
	if len(sendErrs) > 0 {
		sendErr := errors.Join(sendErrs...)
		s.logger.Error("incident card delivery failed",
			zap.String("incident_number", created.Number),
			zap.Error(sendErr))
		return nil, backendError(sendErr)
	}
	s.logger.Info("incident created",
		zap.String("incident_number", created.Number),
		zap.String("incident_id", created.ID),
		zap.String("bridge", room.Code))
	return created, nil
}

// checkTeamChannel reports a deployment without a team channel as a server
// fault before anything is created.
func (s *IncidentService) checkTeamChannel() error {
	var missing []string
	if strings.TrimSpace(s.bot.TeamChannelID) == "" {
		missing = append(missing, "BOT_TEAM_CHANNEL_ID")
	}
	if strings.TrimSpace(s.bot.TeamServiceURL) == "" {
		missing = append(missing, "BOT_TEAM_SERVICE_URL")
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.NewInternalError(fmt.Errorf("team channel not configured: %s", strings.Join(missing, ", ")))
}

// postPersonal sends the card to the requester's one-to-one chat, creating it
// when the user never installed the bot personally.
func (s *IncidentService) postPersonal(ctx context.Context, requester domain.User, card botframework.Attachment, entity *domain.IncidentEntity) error {
	serviceURL := firstNonBlank(requester.ServiceURL, s.bot.TeamServiceURL)
	conversationID := ""
	if s.users != nil {
		cfg, err := s.users.Get(ctx, requester.ID)
		switch {
		case err == nil:
			conversationID = cfg.ConversationID
			serviceURL = firstNonBlank(cfg.ServiceURL, serviceURL)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	if conversationID == "" {
		memberID := firstNonBlank(requester.TeamsID, requester.ID)
		resp, err := s.messenger.CreateConversation(ctx, serviceURL, botframework.ConversationParameters{
			Bot:      &botframework.ChannelAccount{ID: s.bot.AppID},
			Members:  []botframework.ChannelAccount{{ID: memberID}},
			TenantID: s.bot.TenantID,
		})
		if err != nil {
			return err
		}
		conversationID = resp.ID
		serviceURL = firstNonBlank(resp.ServiceURL, serviceURL)
	}

	activityID, err := s.messenger.SendToConversation(ctx, serviceURL, conversationID, botframework.NewMessage("", card))
	entity.PersonalConversationID = conversationID
	entity.PersonalServiceURL = serviceURL
	if err != nil {
		return err
	}
	entity.PersonalActivityID = activityID
	return nil
}

// postTeam starts a new thread with the card in the configured team channel.
func (s *IncidentService) postTeam(ctx context.Context, card botframework.Attachment, entity *domain.IncidentEntity) error {
	resp, err := s.messenger.CreateConversation(ctx, s.bot.TeamServiceURL, botframework.ConversationParameters{
		IsGroup:     true,
		Bot:         &botframework.ChannelAccount{ID: s.bot.AppID},
		TenantID:    s.bot.TenantID,
		ChannelData: botframework.NewChannelPost(s.bot.TeamChannelID, s.bot.TenantID),
		Activity:    botframework.NewMessage("", card),
	})
	entity.TeamServiceURL = s.bot.TeamServiceURL
	if err != nil {
		return err
	}
	entity.TeamConversationID = resp.ID
	entity.TeamActivityID = resp.ActivityID
	entity.TeamServiceURL = firstNonBlank(resp.ServiceURL, s.bot.TeamServiceURL)
	return nil
}

// ChangeStatus moves an incident to the status named by a card action and
// replaces its card wherever it was posted. Concurrent changes are last write wins.
func (s *IncidentService) ChangeStatus(ctx context.Context, actor domain.User, req StatusChangeRequest) (*domain.Incident, error) {
	details := map[string]any{}
	if strings.TrimSpace(req.IncidentID) == "" {
		details["incidentId"] = "required"
	}
	if strings.TrimSpace(req.IncidentNumber) == "" {
		details["incidentNumber"] = "required"
	}
	if strings.TrimSpace(req.Action) == "" {
		details["action"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid status change", details)
	}

	entity, err := s.incidents.Get(ctx, req.IncidentNumber, req.IncidentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("incident", map[string]any{"number": req.IncidentNumber, "id": req.IncidentID})
	}
	if err != nil {
		return nil, err
	}

	status, err := s.statuses.Resolve(ctx, req.Action)
	if err != nil {
		return nil, err
	}

	updated, err := s.ticketing.UpdateIncident(ctx, &domain.Incident{ID: req.IncidentID, Status: status.Code})
	if err != nil {
		return nil, transportError(err)
	}
	if updated.Number == "" {
		updated.Number = req.IncidentNumber
	}
	if updated.ShortDescription == "" {
		updated.ShortDescription = req.Title
	}

	var room *domain.ConferenceRoom
	if code := firstNonBlank(entity.BridgeID, updated.BridgeID); code != "" {
		room, err = s.resources.GetRoom(ctx, code)
		if err != nil && !apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, err
		}
		if room != nil && status.Code == domain.IncidentStatusRestored && !room.Available {
			if err := s.resources.Release(ctx, room); err != nil {
				return nil, err
			}
		}
	}

	statuses, err := s.statuses.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	card := cards.Incident(*updated, room, statuses).Attachment()

	var updateErrs []error
	if entity.TeamConversationID != "" && entity.TeamActivityID != "" {
		if err := s.messenger.UpdateActivity(ctx, entity.TeamServiceURL, entity.TeamConversationID, entity.TeamActivityID, botframework.NewMessage("", card)); err != nil {
			updateErrs = append(updateErrs, err)
		}
	}
	if entity.PersonalConversationID != "" && entity.PersonalActivityID != "" {
		serviceURL := firstNonBlank(entity.PersonalServiceURL, entity.TeamServiceURL)
		if err := s.messenger.UpdateActivity(ctx, serviceURL, entity.PersonalConversationID, entity.PersonalActivityID, botframework.NewMessage("", card)); err != nil {
			updateErrs = append(updateErrs, err)
		}
	}

	entity.Timestamp = s.now()
	if err := s.incidents.Add(ctx, entity); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventIncidentStatusChanged, actor, req.IncidentNumber, events.IncidentStatusChangedPayload{
		IncidentID: req.IncidentID,
		Action:     req.Action,
		NewStatus:  status.Code,
	})

	if len(updateErrs) > 0 {
		return updated, backendError(errors.Join(updateErrs...))
	}
	return updated, nil
}

// GetAllIncidents lists incidents created since the start of the day weekDay days ago.
func (s *IncidentService) GetAllIncidents(ctx context.Context, weekDay int) ([]domain.Incident, error) {
	if weekDay < 0 {
		return nil, apperrors.NewValidationError("weekDay must not be negative", map[string]any{"weekDay": weekDay})
	}
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -weekDay)
	incidents, err := s.ticketing.SearchIncidents(ctx, ticketing.SearchFilter{CreatedFrom: &from})
	if err != nil {
		return nil, transportError(err)
	}
	if incidents == nil {
		incidents = []domain.Incident{}
	}
	return incidents, nil
}

// SearchIncidents returns the matching incidents, or not found when there are none.
func (s *IncidentService) SearchIncidents(ctx context.Context, filter ticketing.SearchFilter) ([]domain.Incident, error) {
	incidents, err := s.ticketing.SearchIncidents(ctx, filter)
	if err != nil {
		return nil, transportError(err)
	}
	if len(incidents) == 0 {
		return nil, apperrors.NewNotFound("incidents", nil)
	}
	return incidents, nil
}

// GetIncident looks an incident up by its number.
func (s *IncidentService) GetIncident(ctx context.Context, number string) (*domain.Incident, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperrors.NewValidationError("incident number required", nil)
	}
	incidents, err := s.ticketing.SearchIncidents(ctx, ticketing.SearchFilter{Number: number, Limit: 1})
	if err != nil {
		return nil, transportError(err)
	}
	if len(incidents) == 0 {
		return nil, apperrors.NewNotFound("incident", map[string]any{"number": number})
	}
	return &incidents[0], nil
}

func (s *IncidentService) publish(ctx context.Context, typ events.EventType, actor domain.User, number string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:             uuid.NewString(),
		Type:           typ,
		IncidentNumber: number,
		Actor:          events.Actor{UserID: actor.ID, Name: actor.DisplayName},
		Timestamp:      s.now(),
		Payload:        payload,
	})
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
