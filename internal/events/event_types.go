package events

import (
	"time"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentCreated       EventType = "incident_created"
	EventIncidentStatusChanged EventType = "incident_status_changed"
	EventWorkstreamsUpdated    EventType = "workstreams_updated"
)

// Actor identifies who triggered the event.
type Actor struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	IncidentNumber string      `json:"incident_number"`
	Actor          Actor       `json:"actor"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// IncidentCreatedPayload payload.
type IncidentCreatedPayload struct {
	IncidentID string `json:"incident_id"`
	BridgeID   string `json:"bridge_id"`
	Priority   string `json:"priority"`
	Title      string `json:"title"`
}

// IncidentStatusChangedPayload payload.
type IncidentStatusChangedPayload struct {
	IncidentID string                `json:"incident_id"`
	Action     string                `json:"action"`
	NewStatus  domain.IncidentStatus `json:"new_status"`
}

// WorkstreamsUpdatedPayload payload.
type WorkstreamsUpdatedPayload struct {
	Upserted int `json:"upserted"`
	Deleted  int `json:"deleted"`
}
