package botframework

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TokenSource yields bearer tokens for connector calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// ConnectorError is a non-success reply from the connector service.
type ConnectorError struct {
	StatusCode int
	Message    string
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("connector: %d %s", e.StatusCode, e.Message)
}

// Connector sends and updates activities. Every call is addressed by an
// explicit service URL, so a card can be updated from any turn.
type Connector struct {
	http   *http.Client
	tokens TokenSource
}

// NewConnector builds a connector client.
func NewConnector(httpClient *http.Client, tokens TokenSource) *Connector {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Connector{http: httpClient, tokens: tokens}
}

type resourceResponse struct {
	ID string `json:"id"`
}

// SendToConversation posts an activity into a conversation and returns its id.
func (c *Connector) SendToConversation(ctx context.Context, serviceURL, conversationID string, activity *Activity) (string, error) {
	path := "v3/conversations/" + url.PathEscape(conversationID) + "/activities"
	var out resourceResponse
	if err := c.do(ctx, http.MethodPost, serviceURL, path, activity, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ReplyToActivity posts an activity as a reply to another one.
func (c *Connector) ReplyToActivity(ctx context.Context, serviceURL, conversationID, replyToID string, activity *Activity) (string, error) {
	activity.ReplyToID = replyToID
	path := "v3/conversations/" + url.PathEscape(conversationID) + "/activities/" + url.PathEscape(replyToID)
	var out resourceResponse
	if err := c.do(ctx, http.MethodPost, serviceURL, path, activity, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateActivity replaces a previously sent activity in place.
func (c *Connector) UpdateActivity(ctx context.Context, serviceURL, conversationID, activityID string, activity *Activity) error {
	activity.ID = activityID
	path := "v3/conversations/" + url.PathEscape(conversationID) + "/activities/" + url.PathEscape(activityID)
	return c.do(ctx, http.MethodPut, serviceURL, path, activity, nil)
}

// CreateConversation starts a personal chat or a new channel thread.
func (c *Connector) CreateConversation(ctx context.Context, serviceURL string, params ConversationParameters) (*ConversationResourceResponse, error) {
	var out ConversationResourceResponse
	if err := c.do(ctx, http.MethodPost, serviceURL, "v3/conversations", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Connector) do(ctx context.Context, method, serviceURL, path string, body any, out any) error {
	if serviceURL == "" {
		return fmt.Errorf("connector: service url required")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(serviceURL, "/") + "/" + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("connector token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connector %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ConnectorError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
