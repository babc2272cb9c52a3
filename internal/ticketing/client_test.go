package ticketing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bart-incident-bot/internal/config"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.ServiceNowConfig{BaseURL: srv.URL, Username: "bart", Password: "secret"}, srv.Client())
}

func TestCreateIncidentPostsRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/now/table/incident", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bart", user)
		assert.Equal(t, "secret", pass)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "database down", body["short_description"])
		assert.Equal(t, "711752242", body["u_bridge"])
		assert.Equal(t, "1", body["state"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":{"sys_id":"42","number":"INC001","short_description":"database down","state":"1","sys_created_on":"2026-10-18 09:30:00"}}`))
	})

	created, err := client.CreateIncident(context.Background(), &domain.Incident{
		ShortDescription: "database down",
		Status:           domain.IncidentStatusNew,
		BridgeID:         "711752242",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, "INC001", created.Number)
	assert.Equal(t, time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC), created.CreatedAt)
}

func TestUpdateIncidentPatchesByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/now/table/incident/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":{"sys_id":"42","number":"INC001","state":"2"}}`))
	})

	updated, err := client.UpdateIncident(context.Background(), &domain.Incident{ID: "42", Status: domain.IncidentStatusSuspended})
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusSuspended, updated.Status)

	_, err = client.UpdateIncident(context.Background(), &domain.Incident{})
	assert.Error(t, err)
}

func TestSearchIncidentsEncodesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "number=INC001^ORDERBYDESCsys_created_on", r.URL.Query().Get("sysparm_query"))
		assert.Equal(t, "true", r.URL.Query().Get("sysparm_exclude_reference_link"))
		assert.Equal(t, "5", r.URL.Query().Get("sysparm_limit"))
		_, _ = w.Write([]byte(`{"result":[{"sys_id":"42","number":"INC001"}]}`))
	})

	found, err := client.SearchIncidents(context.Background(), SearchFilter{Number: "INC001", Limit: 5})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "42", found[0].ID)
}

func TestBackendErrorIsStructured(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Correlation-Id", "corr-7")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"Operation Failed","detail":"ACL Exception"},"status":"failure"}`))
	})

	_, err := client.GetIncident(context.Background(), "42")
	var errResp *ErrorResponse
	require.True(t, errors.As(err, &errResp))
	assert.Equal(t, http.StatusForbidden, errResp.StatusCode)
	assert.Equal(t, "Operation Failed", errResp.Message)
	assert.Equal(t, "ACL Exception", errResp.Detail)
	assert.Equal(t, "corr-7", errResp.CorrelationID)
}

func TestBackendErrorWithoutEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream timeout"))
	})

	_, err := client.SearchIncidents(context.Background(), SearchFilter{})
	var errResp *ErrorResponse
	require.True(t, errors.As(err, &errResp))
	assert.Equal(t, "Bad Gateway", errResp.Message)
	assert.Equal(t, "upstream timeout", errResp.Detail)
}
