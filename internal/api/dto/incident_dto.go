package dto

import (
	"strings"

	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/ticketing"
)

// CreateIncidentRequest is the SPA's create form.
type CreateIncidentRequest struct {
	Incident    *domain.Incident    `json:"incident"`
	Workstreams []domain.Workstream `json:"workstreams"`
}

// IncidentSearchQuery captures the search filters. Status is a comma
// separated list of status codes.
type IncidentSearchQuery struct {
	Number      string `query:"number"`
	Description string `query:"description"`
	Status      string `query:"status"`
	Priority    string `query:"priority"`
	Limit       int    `query:"limit"`
}

// Empty reports whether no filter was given.
func (q IncidentSearchQuery) Empty() bool {
	return strings.TrimSpace(q.Number) == "" &&
		strings.TrimSpace(q.Description) == "" &&
		strings.TrimSpace(q.Status) == "" &&
		strings.TrimSpace(q.Priority) == ""
}

// Filter converts the query into a backend search filter.
func (q IncidentSearchQuery) Filter() ticketing.SearchFilter {
	f := ticketing.SearchFilter{
		Number:      strings.TrimSpace(q.Number),
		Description: strings.TrimSpace(q.Description),
		Priority:    strings.TrimSpace(q.Priority),
		Limit:       q.Limit,
	}
	for _, s := range strings.Split(q.Status, ",") {
		if s = strings.TrimSpace(s); s != "" {
			f.Statuses = append(f.Statuses, domain.IncidentStatus(s))
		}
	}
	return f
}

// WorkstreamBatchResponse reports what an upsert did.
type WorkstreamBatchResponse struct {
	Upserted int `json:"upserted"`
	Deleted  int `json:"deleted"`
}
