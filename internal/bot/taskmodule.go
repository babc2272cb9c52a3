package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spec-kit/bart-incident-bot/internal/cards"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
	"github.com/spec-kit/bart-incident-bot/internal/service"
)

// TaskInfo describes the web view a task module opens.
type TaskInfo struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	FallbackURL string `json:"fallbackUrl,omitempty"`
	Height      int    `json:"height"`
	Width       int    `json:"width"`
}

// TaskModuleResponse is the body returned to task/fetch and task/submit invokes.
type TaskModuleResponse struct {
	Task TaskModuleStep `json:"task"`
}

// TaskModuleStep is either a continue step opening a page or a message step.
type TaskModuleStep struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

func continueResponse(info TaskInfo) TaskModuleResponse {
	return TaskModuleResponse{Task: TaskModuleStep{Type: "continue", Value: info}}
}

func messageResponse(text string) TaskModuleResponse {
	return TaskModuleResponse{Task: TaskModuleStep{Type: "message", Value: text}}
}

var taskTitles = map[string]string{
	cards.CommandCreateIncident: "Create incident",
	cards.CommandEditWorkstream: "Edit workstreams",
	cards.CommandViewWorkstream: "Workstreams",
}

func taskModuleURL(baseURL, commandID, incidentNumber string) string {
	return fmt.Sprintf("%s/%s?incidentNumber=%s", strings.TrimRight(baseURL, "/"), commandID, url.QueryEscape(incidentNumber))
}

// taskFetchData is the data of a task/fetch invoke. Teams adds context keys
// around it, so only the data object is read.
type taskFetchData struct {
	CommandID      string `json:"commandId"`
	IncidentNumber string `json:"incidentNumber"`
}

// taskSubmitData is what the SPA posts back when a task module closes.
type taskSubmitData struct {
	CommandID   string              `json:"commandId"`
	Incident    *domain.Incident    `json:"incident"`
	Workstreams []domain.Workstream `json:"workstreams"`
}

type taskEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func decodeTaskFetch(value json.RawMessage) (taskFetchData, error) {
	var env taskEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return taskFetchData{}, &CardActionError{Reason: err.Error(), Err: err}
	}
	var data taskFetchData
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &data) != nil {
		return taskFetchData{}, &CardActionError{Field: "data", Reason: "is required"}
	}
	if _, ok := taskTitles[data.CommandID]; !ok {
		return taskFetchData{}, &CardActionError{Field: "commandId", Reason: fmt.Sprintf("%q is not a task module", data.CommandID)}
	}
	return data, nil
}

// decodeTaskSubmit strictly decodes the submitted form. Unknown keys other
// than the msteams marker are rejected.
func decodeTaskSubmit(value json.RawMessage) (taskSubmitData, error) {
	var env taskEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return taskSubmitData{}, &CardActionError{Reason: err.Error(), Err: err}
	}
	if len(env.Data) == 0 {
		return taskSubmitData{}, &CardActionError{Field: "data", Reason: "is required"}
	}

	var strict struct {
		taskSubmitData
		MSTeams json.RawMessage `json:"msteams"`
	}
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&strict); err != nil {
		return taskSubmitData{}, &CardActionError{Reason: err.Error(), Err: err}
	}

	data := strict.taskSubmitData
	switch data.CommandID {
	case cards.CommandCreateIncident:
		if data.Incident == nil {
			return taskSubmitData{}, &CardActionError{Field: "incident", Reason: "is required"}
		}
	case cards.CommandEditWorkstream:
		if len(data.Workstreams) == 0 {
			return taskSubmitData{}, &CardActionError{Field: "workstreams", Reason: "is required"}
		}
	default:
		return taskSubmitData{}, &CardActionError{Field: "commandId", Reason: fmt.Sprintf("%q cannot be submitted", data.CommandID)}
	}
	return data, nil
}

func (d taskSubmitData) createInput() service.CreateIncidentInput {
	return service.CreateIncidentInput{Incident: *d.Incident, Workstreams: d.Workstreams}
}
