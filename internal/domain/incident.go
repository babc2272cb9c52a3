package domain

import "time"

// IncidentStatus is the ticketing backend's state code.
type IncidentStatus string

const (
	IncidentStatusNew       IncidentStatus = "1"
	IncidentStatusSuspended IncidentStatus = "2"
	IncidentStatusRestored  IncidentStatus = "3"
)

// HighPriority is the ordinal the backend uses for high priority incidents.
const HighPriority = "7"

// Label returns the display name for a status code.
func (s IncidentStatus) Label() string {
	switch s {
	case IncidentStatusNew:
		return "New"
	case IncidentStatusSuspended:
		return "Suspended"
	case IncidentStatusRestored:
		return "Service Restored"
	default:
		return string(s)
	}
}

// Incident is a trouble ticket as tracked by the ticketing backend.
type Incident struct {
	ID               string         `json:"id"`
	Number           string         `json:"number"`
	ShortDescription string         `json:"shortDescription"`
	Description      string         `json:"description"`
	Priority         string         `json:"priority"`
	Status           IncidentStatus `json:"status"`
	BridgeID         string         `json:"bridgeId"`
	BridgeURL        string         `json:"bridgeUrl,omitempty"`
	RequestedBy      string         `json:"requestedBy"`
	RequestedByName  string         `json:"requestedByName,omitempty"`
	AssignedTo       string         `json:"assignedTo,omitempty"`
	AssignedToName   string         `json:"assignedToName,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// IncidentEntity links a ticket to the Teams conversations its card was posted in.
// PartitionKey is the ticket number, RowKey the ticket id.
type IncidentEntity struct {
	PartitionKey           string    `json:"partitionKey"`
	RowKey                 string    `json:"rowKey"`
	BridgeID               string    `json:"bridgeId"`
	TeamConversationID     string    `json:"teamConversationId"`
	TeamActivityID         string    `json:"teamActivityId"`
	TeamServiceURL         string    `json:"teamServiceUrl"`
	PersonalConversationID string    `json:"personalConversationId"`
	PersonalActivityID     string    `json:"personalActivityId"`
	PersonalServiceURL     string    `json:"personalServiceUrl"`
	Timestamp              time.Time `json:"timestamp"`
}
