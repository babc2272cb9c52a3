package graph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bart-incident-bot/internal/config"
)

func TestSearchUsersBuildsFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/users", r.URL.Path)
		assert.Equal(t, "startswith(displayName,'O''Neil')", r.URL.Query().Get("$filter"))
		assert.Equal(t, "Bearer graph-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"value":[{"id":"u1","displayName":"O'Neil, Pat","userPrincipalName":"pat@contoso.com"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.GraphConfig{BaseURL: srv.URL, AccessToken: "graph-token"}, srv.Client())
	users, err := client.SearchUsers(context.Background(), "O'Neil")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "pat@contoso.com", users[0].UserPrincipalName)
}

func TestGroupMembersFollowsNextLink(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`{"value":[{"id":"u2"}]}`))
			return
		}
		assert.Equal(t, "/v1.0/groups/g1/members", r.URL.Path)
		_, _ = w.Write([]byte(`{"value":[{"id":"u1"}],"@odata.nextLink":"` + srv.URL + `/v1.0/groups/g1/members?page=2"}`))
	}))
	defer srv.Close()

	client := NewClient(config.GraphConfig{BaseURL: srv.URL}, srv.Client())
	users, err := client.GroupMembers(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[1].ID)
}

func TestGraphErrorIsStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"InvalidAuthenticationToken","message":"Access token has expired.","innerError":{"request-id":"req-1"}}}`))
	}))
	defer srv.Close()

	client := NewClient(config.GraphConfig{BaseURL: srv.URL}, srv.Client())
	_, err := client.GetUser(context.Background(), "u1")

	var errResp *ErrorResponse
	require.True(t, errors.As(err, &errResp))
	assert.Equal(t, http.StatusUnauthorized, errResp.StatusCode)
	assert.Equal(t, "InvalidAuthenticationToken", errResp.Code)
	assert.Equal(t, "req-1", errResp.CorrelationID)
}
