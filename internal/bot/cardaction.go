package bot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/bart-incident-bot/internal/service"
)

// CardActionError reports a card action payload that does not have the
// expected shape.
type CardActionError struct {
	Field  string
	Reason string
	Err    error
}

func (e *CardActionError) Error() string {
	if e.Field == "" {
		return "invalid card action: " + e.Reason
	}
	return fmt.Sprintf("invalid card action: %s %s", e.Field, e.Reason)
}

func (e *CardActionError) Unwrap() error {
	return e.Err
}

// cardActionPayload lists every key a status button may emit. Anything else
// is rejected.
type cardActionPayload struct {
	Action         string          `json:"Action"`
	Text           string          `json:"text"`
	IncidentID     string          `json:"incidentId"`
	IncidentNumber string          `json:"incidentNumber"`
	Title          string          `json:"title"`
	MSTeams        json.RawMessage `json:"msteams"`
}

// DecodeCardAction turns an activity value into a status change request.
func DecodeCardAction(value json.RawMessage) (service.StatusChangeRequest, error) {
	if len(bytes.TrimSpace(value)) == 0 {
		return service.StatusChangeRequest{}, &CardActionError{Reason: "empty payload"}
	}
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.DisallowUnknownFields()

	var p cardActionPayload
	if err := dec.Decode(&p); err != nil {
		return service.StatusChangeRequest{}, &CardActionError{Reason: err.Error(), Err: err}
	}
	if dec.More() {
		return service.StatusChangeRequest{}, &CardActionError{Reason: "trailing data"}
	}

	required := []struct {
		name  string
		value string
	}{
		{"Action", p.Action},
		{"incidentId", p.IncidentID},
		{"incidentNumber", p.IncidentNumber},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return service.StatusChangeRequest{}, &CardActionError{Field: r.name, Reason: "is required"}
		}
	}

	return service.StatusChangeRequest{
		IncidentID:     strings.TrimSpace(p.IncidentID),
		IncidentNumber: strings.TrimSpace(p.IncidentNumber),
		Action:         strings.TrimSpace(p.Action),
		Title:          p.Title,
	}, nil
}

// IsCardActionError reports whether err came from DecodeCardAction.
func IsCardActionError(err error) bool {
	var target *CardActionError
	return errors.As(err, &target)
}
