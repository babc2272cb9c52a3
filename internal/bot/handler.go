package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/bart-incident-bot/internal/auth"
	"github.com/spec-kit/bart-incident-bot/internal/botframework"
	"github.com/spec-kit/bart-incident-bot/internal/cards"
	"github.com/spec-kit/bart-incident-bot/internal/config"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/service"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

const signInPrompt = "Please sign in first. Type **sign in** to get started."

// Incidents is the part of the incident service the bot drives.
type Incidents interface {
	CreateIncident(ctx context.Context, requester domain.User, in service.CreateIncidentInput) (*domain.Incident, error)
	ChangeStatus(ctx context.Context, actor domain.User, req service.StatusChangeRequest) (*domain.Incident, error)
}

// Workstreams is the part of the workstream service the bot drives.
type Workstreams interface {
	CreateOrUpdate(ctx context.Context, actor domain.User, batch []domain.Workstream) (service.WorkstreamResult, error)
}

// UserRegistry remembers personal conversations.
type UserRegistry interface {
	SaveUserConfiguration(ctx context.Context, cfg *domain.UserConfiguration) error
}

// Replier sends activities back into a conversation.
type Replier interface {
	ReplyToActivity(ctx context.Context, serviceURL, conversationID, replyToID string, activity *botframework.Activity) (string, error)
	SendToConversation(ctx context.Context, serviceURL, conversationID string, activity *botframework.Activity) (string, error)
}

// Dependencies bundles the handler collaborators.
type Dependencies struct {
	Incidents    Incidents
	Workstreams  Workstreams
	Users        UserRegistry
	Replier      Replier
	Tokens       auth.TokenStore
	TokenManager *auth.TokenManager
	Config       config.BotConfig
	Logger       *zap.Logger
}

// Handler processes inbound activities.
type Handler struct {
	incidents   Incidents
	workstreams Workstreams
	users       UserRegistry
	replier     Replier
	tokens      auth.TokenStore
	tm          *auth.TokenManager
	cfg         config.BotConfig
	logger      *zap.Logger
}

// NewHandler constructs the activity handler.
func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		incidents:   deps.Incidents,
		workstreams: deps.Workstreams,
		users:       deps.Users,
		replier:     deps.Replier,
		tokens:      deps.Tokens,
		tm:          deps.TokenManager,
		cfg:         deps.Config,
		logger:      logger,
	}
}

// Handle processes one activity. Invokes get a response body; other
// activities are answered through the connector and return nil.
func (h *Handler) Handle(ctx context.Context, act *botframework.Activity) (*botframework.InvokeResponse, error) {
	if act == nil {
		return nil, apperrors.NewValidationError("activity required", nil)
	}
	if act.Conversation == nil || act.ConversationID() == "" {
		return nil, apperrors.NewValidationError("conversation required", nil)
	}

	switch act.Type {
	case botframework.ActivityTypeMessage:
		return nil, h.onMessage(ctx, act)
	case botframework.ActivityTypeInvoke:
		return h.onInvoke(ctx, act)
	case botframework.ActivityTypeConversationUpdate:
		return nil, h.onConversationUpdate(ctx, act)
	default:
		h.logger.Debug("activity ignored", zap.String("type", string(act.Type)))
		return nil, nil
	}
}

func (h *Handler) reply(ctx context.Context, act *botframework.Activity, msg *botframework.Activity) error {
	_, err := h.replier.ReplyToActivity(ctx, act.ServiceURL, act.ConversationID(), act.ID, msg)
	return err
}

func (h *Handler) replyText(ctx context.Context, act *botframework.Activity, text string) error {
	return h.reply(ctx, act, botframework.NewMessage(text))
}

func (h *Handler) replyCard(ctx context.Context, act *botframework.Activity, card cards.Card) error {
	return h.reply(ctx, act, botframework.NewMessage("", card.Attachment()))
}

// userMessage is what the user sees when an operation fails.
func userMessage(err error) string {
	return "Something went wrong: " + apperrors.ToDomainError(err).Message
}

func (h *Handler) onMessage(ctx context.Context, act *botframework.Activity) error {
	cls := Classify(act)
	log := h.logger.With(zap.String("command", string(cls.Command)), zap.String("conversation_id", act.ConversationID()))

	switch cls.Command {
	case CommandCreateIncident, CommandEditWorkstream:
		if _, ok := h.signedInUser(ctx, act); !ok {
			return h.replyText(ctx, act, signInPrompt)
		}
		if cls.Command == CommandCreateIncident {
			return h.replyCard(ctx, act, cards.TaskModuleLaunch("Create incident", "Open the form to raise a new incident.", cards.CommandCreateIncident, ""))
		}
		return h.replyCard(ctx, act, cards.TaskModuleLaunch("Edit workstreams", "Open the workstream editor.", cards.CommandEditWorkstream, ""))
	case CommandViewWorkstream:
		return h.replyCard(ctx, act, cards.TaskModuleLaunch("Workstreams", "Open the workstream view.", cards.CommandViewWorkstream, ""))
	case CommandSignIn:
		return h.replyCard(ctx, act, cards.SignIn(h.cfg.SignInURL))
	case CommandSignOut:
		if err := h.tokens.Delete(ctx, act.From.AadObjectID); err != nil {
			log.Error("sign out failed", zap.Error(err))
			return h.replyText(ctx, act, userMessage(err))
		}
		return h.replyText(ctx, act, "You are signed out.")
	case CommandHelp:
		return h.replyCard(ctx, act, cards.Help())
	case CommandTakeATour:
		return h.replyCard(ctx, act, cards.Tour())
	case CommandCardAction:
		return h.onCardAction(ctx, act, log)
	default:
		return h.replyText(ctx, act, "command not recognized: "+cls.Text)
	}
}

func (h *Handler) onCardAction(ctx context.Context, act *botframework.Activity, log *zap.Logger) error {
	req, err := DecodeCardAction(act.Value)
	if err != nil {
		log.Warn("card action rejected", zap.Error(err))
		return h.replyText(ctx, act, err.Error())
	}
	if _, err := h.incidents.ChangeStatus(ctx, h.activityUser(act), req); err != nil {
		log.Error("status change failed",
			zap.String("incident_number", req.IncidentNumber),
			zap.String("incident_id", req.IncidentID),
			zap.Error(err))
		return h.replyText(ctx, act, userMessage(err))
	}
	return nil
}

func (h *Handler) onInvoke(ctx context.Context, act *botframework.Activity) (*botframework.InvokeResponse, error) {
	switch act.Name {
	case botframework.InvokeTaskFetch:
		return h.onTaskFetch(ctx, act), nil
	case botframework.InvokeTaskSubmit:
		return h.onTaskSubmit(ctx, act), nil
	case botframework.InvokeSigninVerifyState:
		return h.onVerifyState(ctx, act)
	default:
		return &botframework.InvokeResponse{Status: http.StatusNotImplemented}, nil
	}
}

func ok(body any) *botframework.InvokeResponse {
	return &botframework.InvokeResponse{Status: http.StatusOK, Body: body}
}

func (h *Handler) onTaskFetch(ctx context.Context, act *botframework.Activity) *botframework.InvokeResponse {
	data, err := decodeTaskFetch(act.Value)
	if err != nil {
		return ok(messageResponse(err.Error()))
	}
	if data.CommandID != cards.CommandViewWorkstream {
		if _, signedIn := h.signedInUser(ctx, act); !signedIn {
			return ok(messageResponse(signInPrompt))
		}
	}
	return ok(continueResponse(TaskInfo{
		Title:  taskTitles[data.CommandID],
		URL:    taskModuleURL(h.cfg.AppBaseURL, data.CommandID, data.IncidentNumber),
		Height: h.cfg.TaskModuleHeight,
		Width:  h.cfg.TaskModuleWidth,
	}))
}

func (h *Handler) onTaskSubmit(ctx context.Context, act *botframework.Activity) *botframework.InvokeResponse {
	data, err := decodeTaskSubmit(act.Value)
	if err != nil {
		return ok(messageResponse(err.Error()))
	}
	user, signedIn := h.signedInUser(ctx, act)
	if !signedIn {
		return ok(messageResponse(signInPrompt))
	}

	switch data.CommandID {
	case cards.CommandCreateIncident:
		created, err := h.incidents.CreateIncident(ctx, user, data.createInput())
		if err != nil {
			h.logger.Error("create incident failed", zap.String("user_id", user.ID), zap.Error(err))
			return ok(messageResponse(userMessage(err)))
		}
		return ok(messageResponse(fmt.Sprintf("Incident %s created.", created.Number)))
	default:
		res, err := h.workstreams.CreateOrUpdate(ctx, user, data.Workstreams)
		if err != nil {
			h.logger.Error("workstream update failed", zap.String("user_id", user.ID), zap.Error(err))
			return ok(messageResponse(userMessage(err)))
		}
		return ok(messageResponse(fmt.Sprintf("Workstreams updated: %d saved, %d removed.", res.Upserted, res.Deleted)))
	}
}

type verifyStateValue struct {
	State string `json:"state"`
}

func (h *Handler) onVerifyState(ctx context.Context, act *botframework.Activity) (*botframework.InvokeResponse, error) {
	var v verifyStateValue
	if err := json.Unmarshal(act.Value, &v); err != nil || strings.TrimSpace(v.State) == "" {
		return &botframework.InvokeResponse{Status: http.StatusBadRequest}, nil
	}
	if act.From.AadObjectID == "" {
		return &botframework.InvokeResponse{Status: http.StatusBadRequest}, nil
	}
	if _, err := h.tm.ParseToken(v.State); err != nil {
		h.logger.Warn("sign-in token rejected", zap.String("user_id", act.From.AadObjectID), zap.Error(err))
		return &botframework.InvokeResponse{Status: http.StatusUnauthorized}, nil
	}
	if err := h.tokens.Save(ctx, act.From.AadObjectID, v.State); err != nil {
		return nil, err
	}
	return &botframework.InvokeResponse{Status: http.StatusOK}, nil
}

func (h *Handler) onConversationUpdate(ctx context.Context, act *botframework.Activity) error {
	if act.Recipient == nil || !botAdded(act) {
		return nil
	}
	if act.IsPersonal() && act.From.AadObjectID != "" {
		err := h.users.SaveUserConfiguration(ctx, &domain.UserConfiguration{
			RowKey:         act.From.AadObjectID,
			TeamsID:        act.From.ID,
			UserName:       act.From.Name,
			ConversationID: act.ConversationID(),
			ServiceURL:     act.ServiceURL,
			TenantID:       act.TenantID(),
		})
		if err != nil {
			return err
		}
	}
	_, err := h.replier.SendToConversation(ctx, act.ServiceURL, act.ConversationID(),
		botframework.NewMessage("", cards.Welcome(act.From.Name).Attachment()))
	return err
}

func botAdded(act *botframework.Activity) bool {
	for _, m := range act.MembersAdded {
		if m.ID == act.Recipient.ID {
			return true
		}
	}
	return false
}

// activityUser is the sender as seen in the activity, without a sign-in check.
func (h *Handler) activityUser(act *botframework.Activity) domain.User {
	return domain.User{
		ID:          act.From.AadObjectID,
		DisplayName: act.From.Name,
		TeamsID:     act.From.ID,
		ServiceURL:  act.ServiceURL,
	}
}

// signedInUser resolves the sender's stored access token and validates it.
func (h *Handler) signedInUser(ctx context.Context, act *botframework.Activity) (domain.User, bool) {
	if act.From.AadObjectID == "" {
		return domain.User{}, false
	}
	token, err := h.tokens.Get(ctx, act.From.AadObjectID)
	if err != nil {
		if !errors.Is(err, auth.ErrNoToken) {
			h.logger.Warn("token lookup failed", zap.String("user_id", act.From.AadObjectID), zap.Error(err))
		}
		return domain.User{}, false
	}
	claims, err := h.tm.ParseToken(token)
	if err != nil {
		return domain.User{}, false
	}
	user := *claims.User()
	if user.ID == "" {
		user.ID = act.From.AadObjectID
	}
	if user.DisplayName == "" {
		user.DisplayName = act.From.Name
	}
	user.TeamsID = act.From.ID
	user.ServiceURL = act.ServiceURL
	return user, true
}
