package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bart-incident-bot/internal/api/http/handlers"
	"github.com/spec-kit/bart-incident-bot/internal/auth"
	"github.com/spec-kit/bart-incident-bot/internal/botframework"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/observability"
	"github.com/spec-kit/bart-incident-bot/internal/persistence"
	"github.com/spec-kit/bart-incident-bot/internal/repository"
	"github.com/spec-kit/bart-incident-bot/internal/service"
	"github.com/spec-kit/bart-incident-bot/internal/ticketing"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

type stubIncidents struct {
	created int
	err     error
}

func (s *stubIncidents) CreateIncident(_ context.Context, requester domain.User, in service.CreateIncidentInput) (*domain.Incident, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created++
	inc := in.Incident
	inc.ID, inc.Number, inc.RequestedBy = "42", "INC001", requester.ID
	return &inc, nil
}

func (s *stubIncidents) GetAllIncidents(context.Context, int) ([]domain.Incident, error) {
	return []domain.Incident{}, nil
}

func (s *stubIncidents) SearchIncidents(context.Context, ticketing.SearchFilter) ([]domain.Incident, error) {
	return nil, apperrors.NewNotFound("incidents", nil)
}

func (s *stubIncidents) GetIncident(_ context.Context, number string) (*domain.Incident, error) {
	return &domain.Incident{Number: number}, nil
}

type stubUsers struct{}

func (stubUsers) SearchUsers(context.Context, string) ([]domain.User, error) {
	return []domain.User{{ID: "1", DisplayName: "Dana"}}, nil
}

func (stubUsers) GroupMembers(context.Context) ([]domain.User, error) {
	return nil, apperrors.NewUpstreamError(http.StatusServiceUnavailable, "graph down", "corr-7", nil)
}

type stubBot struct {
	resp *botframework.InvokeResponse
	seen []*botframework.Activity
}

func (s *stubBot) Handle(_ context.Context, act *botframework.Activity) (*botframework.InvokeResponse, error) {
	s.seen = append(s.seen, act)
	return s.resp, nil
}

type testServer struct {
	app       *fiber.App
	incidents *stubIncidents
	bot       *stubBot
	rooms     repository.ConferenceRoomRepository
	workRepo  repository.WorkstreamRepository
	token     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := persistence.NewMemoryTableStore()
	tm := auth.NewTokenManager("test-secret", 5)
	token, _, err := tm.GenerateToken(domain.User{ID: "aad-1", DisplayName: "Dana"})
	require.NoError(t, err)

	s := &testServer{
		incidents: &stubIncidents{},
		bot:       &stubBot{},
		rooms:     repository.NewConferenceRoomRepository(store),
		workRepo:  repository.NewWorkstreamRepository(store),
		token:     token,
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	s.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(s.app, logger, metrics, 0)
	RegisterRoutes(s.app, RouteConfig{
		Health:         handlers.NewHealthHandler("bart", "test", map[string]handlers.Pinger{"postgres": nil}, metrics),
		Messages:       handlers.NewMessagesHandler(s.bot),
		Incidents:      handlers.NewIncidentHandler(s.incidents),
		Workstreams:    handlers.NewWorkstreamHandler(service.NewWorkstreamService(s.workRepo, nil)),
		Resources:      handlers.NewResourcesHandler(service.NewResourceService(s.rooms)),
		Statuses:       handlers.NewStatusHandler(service.NewStatusService(repository.NewStatusRepository(store))),
		Users:          handlers.NewUsersHandler(stubUsers{}),
		AuthMiddleware: auth.NewAuthMiddleware(tm),
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any, authed bool) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, data []byte) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestProtectedRoutesRequireSignIn(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/api/IncidentApi/GetAllIncidents?weekDay=1",
		"/api/WorkstreamApi/GetAllWorkstremsAsync?incidentNumber=INC001",
		"/api/ResourcesApi/GetAvailabilityData",
		"/api/StatusApi/GetAllStatuses",
		"/api/UsersApi/SearchUsers?query=da",
	} {
		resp, data := s.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, apperrors.CodeSigninRequired, decodeError(t, data).Error.Code, path)
	}
}

func TestCreateIncidentEndpoint(t *testing.T) {
	s := newTestServer(t)
	resp, data := s.do(t, http.MethodPost, "/api/IncidentApi/CreateIncidentAsync", fiber.Map{
		"incident": fiber.Map{"shortDescription": "Yard", "priority": "7", "bridgeId": "711752242"},
	}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var inc domain.Incident
	require.NoError(t, json.Unmarshal(data, &inc))
	assert.Equal(t, "INC001", inc.Number)
	assert.Equal(t, "aad-1", inc.RequestedBy)

	s.incidents.err = apperrors.NewConflict("conference bridge is not available", nil)
	resp, data = s.do(t, http.MethodPost, "/api/IncidentApi/CreateIncidentAsync", fiber.Map{"incident": fiber.Map{}}, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperrors.CodeConflict, decodeError(t, data).Error.Code)

	resp, _ = s.do(t, http.MethodPost, "/api/IncidentApi/CreateIncidentAsync", fiber.Map{}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchIncidentsNotFound(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodGet, "/api/IncidentApi/SearchIncidents?description=nothing", nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/IncidentApi/SearchIncidents", nil, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkstreamEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.workRepo.Add(ctx, &domain.Workstream{PartitionKey: "INC001", RowKey: "ws-1", Priority: 1, Description: "Call vendor"}))

	resp, data := s.do(t, http.MethodPost, "/api/WorkstreamApi/CreateOrUpdateWorkstremAsync", []fiber.Map{
		{"partitionKey": "INC001", "rowKey": "ws-1", "priority": 1, "description": "Call vendor", "inActive": true},
		{"partitionKey": "INC001", "priority": 2, "description": "Notify riders"},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, data = s.do(t, http.MethodGet, "/api/WorkstreamApi/GetAllWorkstremsAsync?incidentNumber=INC001", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []domain.Workstream
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Notify riders", list[0].Description)

	resp, data = s.do(t, http.MethodGet, "/api/WorkstreamApi/GetAllWorkstremsAsync?incidentNumber=", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(data))
}

func TestResourcesAndStatuses(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.rooms.Add(ctx, &domain.ConferenceRoom{Code: "711752242", Available: true}))
	require.NoError(t, s.rooms.Add(ctx, &domain.ConferenceRoom{Code: "100", Available: false}))

	resp, data := s.do(t, http.MethodGet, "/api/ResourcesApi/GetAvailabilityData", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rooms []domain.ConferenceRoom
	require.NoError(t, json.Unmarshal(data, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "711752242", rooms[0].Code)

	resp, _ = s.do(t, http.MethodGet, "/api/ResourcesApi/GetConferenceRoom?code=999", nil, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, data = s.do(t, http.MethodGet, "/api/StatusApi/GetAllStatuses", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var statuses []domain.StatusConfiguration
	require.NoError(t, json.Unmarshal(data, &statuses))
	assert.Len(t, statuses, 3)
}

func TestUpstreamErrorPassThrough(t *testing.T) {
	s := newTestServer(t)
	resp, data := s.do(t, http.MethodGet, "/api/UsersApi/GetGroupMembers", nil, true)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decodeError(t, data)
	assert.Equal(t, apperrors.CodeUpstream, body.Error.Code)
	assert.Equal(t, "corr-7", body.Error.Details["correlationId"])
}

func TestMessagesEndpoint(t *testing.T) {
	s := newTestServer(t)
	act := fiber.Map{"type": "message", "text": "help", "conversation": fiber.Map{"id": "a:1"}}

	resp, _ := s.do(t, http.MethodPost, "/api/messages", act, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, s.bot.seen, 1)
	assert.Equal(t, "help", s.bot.seen[0].Text)

	s.bot.resp = &botframework.InvokeResponse{Status: http.StatusOK, Body: fiber.Map{"task": fiber.Map{"type": "message", "value": "hi"}}}
	resp, data := s.do(t, http.MethodPost, "/api/messages", act, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"task":{"type":"message","value":"hi"}}`, string(data))
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodGet, "/health/ready", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := s.do(t, http.MethodGet, "/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.CodeNotFound, decodeError(t, data).Error.Code)
}
