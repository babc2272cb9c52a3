package botframework

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToConversation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/conversations/a:1/activities", r.URL.Path)
		assert.Equal(t, "Bearer bot-token", r.Header.Get("Authorization"))

		var act Activity
		require.NoError(t, json.NewDecoder(r.Body).Decode(&act))
		assert.Equal(t, "hello", act.Text)
		_, _ = w.Write([]byte(`{"id":"act-1"}`))
	}))
	defer srv.Close()

	c := NewConnector(srv.Client(), StaticToken("bot-token"))
	id, err := c.SendToConversation(context.Background(), srv.URL+"/", "a:1", NewMessage("hello"))
	require.NoError(t, err)
	assert.Equal(t, "act-1", id)
}

func TestUpdateActivityUsesPut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v3/conversations/19:team/activities/act-9", r.URL.Path)
		var act Activity
		require.NoError(t, json.NewDecoder(r.Body).Decode(&act))
		assert.Equal(t, "act-9", act.ID)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewConnector(srv.Client(), nil)
	require.NoError(t, c.UpdateActivity(context.Background(), srv.URL, "19:team", "act-9", NewMessage("")))
}

func TestCreateConversationInChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/conversations", r.URL.Path)
		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		channel := params["channelData"].(map[string]any)["channel"].(map[string]any)
		assert.Equal(t, "19:ops", channel["id"])
		_, _ = w.Write([]byte(`{"id":"19:ops;messageid=1","activityId":"1"}`))
	}))
	defer srv.Close()

	c := NewConnector(srv.Client(), nil)
	resp, err := c.CreateConversation(context.Background(), srv.URL, ConversationParameters{
		IsGroup:     true,
		ChannelData: NewChannelPost("19:ops", ""),
		Activity:    NewMessage("card"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1", resp.ActivityID)
}

func TestConnectorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("bot not in conversation"))
	}))
	defer srv.Close()

	c := NewConnector(srv.Client(), nil)
	_, err := c.SendToConversation(context.Background(), srv.URL, "a:1", NewMessage("x"))
	var connErr *ConnectorError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, http.StatusForbidden, connErr.StatusCode)

	_, err = c.SendToConversation(context.Background(), "", "a:1", NewMessage("x"))
	assert.Error(t, err)
}

func TestActivityTenantID(t *testing.T) {
	act := &Activity{ChannelData: json.RawMessage(`{"tenant":{"id":"t1"}}`)}
	assert.Equal(t, "t1", act.TenantID())

	act = &Activity{Conversation: &ConversationAccount{TenantID: "t2"}}
	assert.Equal(t, "t2", act.TenantID())

	assert.False(t, (&Activity{Value: json.RawMessage("null")}).HasValue())
}
