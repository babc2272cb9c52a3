package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spec-kit/bart-incident-bot/internal/config"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
)

// maxPages bounds nextLink traversal for group member listings.
const maxPages = 20

// ErrorResponse is a non-success Graph reply.
type ErrorResponse struct {
	StatusCode    int
	Code          string
	Message       string
	CorrelationID string
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("graph: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client is a bearer-authenticated Microsoft Graph reader.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.GraphConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: cfg.BaseURL, token: cfg.AccessToken, http: httpClient}
}

type graphUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
	Mail              string `json:"mail"`
}

type userPage struct {
	Value    []graphUser `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

func (u graphUser) toDomain() domain.User {
	return domain.User{
		ID:                u.ID,
		DisplayName:       u.DisplayName,
		UserPrincipalName: u.UserPrincipalName,
		Mail:              u.Mail,
	}
}

// SearchUsers lists users whose display name starts with prefix.
func (c *Client) SearchUsers(ctx context.Context, prefix string) ([]domain.User, error) {
	params := url.Values{}
	params.Set("$filter", fmt.Sprintf("startswith(displayName,'%s')", strings.ReplaceAll(prefix, "'", "''")))
	params.Set("$select", "id,displayName,userPrincipalName,mail")

	var page userPage
	if err := c.get(ctx, c.baseURL+"/v1.0/users?"+params.Encode(), &page); err != nil {
		return nil, err
	}
	return toUsers(page.Value), nil
}

// GroupMembers lists all members of a group, following nextLink pages.
func (c *Client) GroupMembers(ctx context.Context, groupID string) ([]domain.User, error) {
	next := c.baseURL + "/v1.0/groups/" + url.PathEscape(groupID) + "/members"
	var users []domain.User
	for i := 0; next != "" && i < maxPages; i++ {
		var page userPage
		if err := c.get(ctx, next, &page); err != nil {
			return nil, err
		}
		users = append(users, toUsers(page.Value)...)
		next = page.NextLink
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// GetUser fetches one user by id or principal name.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u graphUser
	if err := c.get(ctx, c.baseURL+"/v1.0/users/"+url.PathEscape(id), &u); err != nil {
		return nil, err
	}
	user := u.toDomain()
	return &user, nil
}

func toUsers(in []graphUser) []domain.User {
	out := make([]domain.User, 0, len(in))
	for _, u := range in {
		out = append(out, u.toDomain())
	}
	return out
}

type errorEnvelope struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		InnerError struct {
			RequestID string `json:"request-id"`
		} `json:"innerError"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graph GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		errResp := &ErrorResponse{StatusCode: resp.StatusCode, CorrelationID: resp.Header.Get("request-id")}
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil && env.Error.Code != "" {
			errResp.Code = env.Error.Code
			errResp.Message = env.Error.Message
			if env.Error.InnerError.RequestID != "" {
				errResp.CorrelationID = env.Error.InnerError.RequestID
			}
		} else {
			errResp.Message = http.StatusText(resp.StatusCode)
		}
		return errResp
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
