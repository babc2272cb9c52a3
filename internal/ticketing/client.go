package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spec-kit/bart-incident-bot/internal/config"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
)

const incidentPath = "/api/now/table/incident"

// SearchFilter narrows SearchIncidents. Zero values are ignored.
type SearchFilter struct {
	Number      string
	Description string
	Statuses    []domain.IncidentStatus
	Priority    string
	CreatedFrom *time.Time
	Limit       int
}

// Client issues table API calls against the ticketing backend. It does not
// retry; retries belong to the http.Client's transport.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.ServiceNowConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		http:     httpClient,
	}
}

type record struct {
	SysID            string `json:"sys_id,omitempty"`
	Number           string `json:"number,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`
	Description      string `json:"description,omitempty"`
	Priority         string `json:"priority,omitempty"`
	State            string `json:"state,omitempty"`
	Bridge           string `json:"u_bridge,omitempty"`
	CallerID         string `json:"caller_id,omitempty"`
	AssignedTo       string `json:"assigned_to,omitempty"`
	CreatedOn        string `json:"sys_created_on,omitempty"`
	UpdatedOn        string `json:"sys_updated_on,omitempty"`
}

type singleResult struct {
	Result record `json:"result"`
}

type listResult struct {
	Result []record `json:"result"`
}

func toRecord(in *domain.Incident) record {
	return record{
		ShortDescription: in.ShortDescription,
		Description:      in.Description,
		Priority:         in.Priority,
		State:            string(in.Status),
		Bridge:           in.BridgeID,
		CallerID:         in.RequestedBy,
		AssignedTo:       in.AssignedTo,
	}
}

func (r record) toIncident() domain.Incident {
	return domain.Incident{
		ID:               r.SysID,
		Number:           r.Number,
		ShortDescription: r.ShortDescription,
		Description:      r.Description,
		Priority:         r.Priority,
		Status:           domain.IncidentStatus(r.State),
		BridgeID:         r.Bridge,
		RequestedBy:      r.CallerID,
		AssignedTo:       r.AssignedTo,
		CreatedAt:        parseTime(r.CreatedOn),
		UpdatedAt:        parseTime(r.UpdatedOn),
	}
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CreateIncident submits a new incident and returns the backend's record.
func (c *Client) CreateIncident(ctx context.Context, incident *domain.Incident) (*domain.Incident, error) {
	var out singleResult
	if err := c.do(ctx, http.MethodPost, incidentPath, nil, toRecord(incident), &out); err != nil {
		return nil, err
	}
	created := out.Result.toIncident()
	return &created, nil
}

// UpdateIncident patches an incident by id.
func (c *Client) UpdateIncident(ctx context.Context, incident *domain.Incident) (*domain.Incident, error) {
	if incident.ID == "" {
		return nil, fmt.Errorf("ticketing: incident id required")
	}
	var out singleResult
	if err := c.do(ctx, http.MethodPatch, incidentPath+"/"+url.PathEscape(incident.ID), nil, toRecord(incident), &out); err != nil {
		return nil, err
	}
	updated := out.Result.toIncident()
	return &updated, nil
}

// GetIncident fetches an incident by id.
func (c *Client) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	var out singleResult
	if err := c.do(ctx, http.MethodGet, incidentPath+"/"+url.PathEscape(id), referenceParams(), nil, &out); err != nil {
		return nil, err
	}
	inc := out.Result.toIncident()
	return &inc, nil
}

// SearchIncidents lists incidents matching the filter, newest first.
func (c *Client) SearchIncidents(ctx context.Context, filter SearchFilter) ([]domain.Incident, error) {
	q := NewQuery()
	if filter.Number != "" {
		q.Equals("number", filter.Number)
	}
	if filter.Description != "" {
		q.Like("short_description", filter.Description)
	}
	if len(filter.Statuses) > 0 {
		states := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			states = append(states, string(s))
		}
		q.In("state", states...)
	}
	if filter.Priority != "" {
		q.Equals("priority", filter.Priority)
	}
	if filter.CreatedFrom != nil {
		q.Since("sys_created_on", *filter.CreatedFrom)
	}
	q.OrderByDesc("sys_created_on")

	params := referenceParams()
	params.Set("sysparm_query", q.String())
	if filter.Limit > 0 {
		params.Set("sysparm_limit", strconv.Itoa(filter.Limit))
	}

	var out listResult
	if err := c.do(ctx, http.MethodGet, incidentPath, params, nil, &out); err != nil {
		return nil, err
	}
	result := make([]domain.Incident, 0, len(out.Result))
	for _, r := range out.Result {
		result = append(result, r.toIncident())
	}
	return result, nil
}

func referenceParams() url.Values {
	params := url.Values{}
	params.Set("sysparm_exclude_reference_link", "true")
	return params
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	}
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ticketing %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ticketing decode %s %s: %w", method, path, err)
	}
	return nil
}
