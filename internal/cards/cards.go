// Package cards renders adaptive card attachments for the bot.
package cards

import (
	"fmt"
	"strconv"

	"github.com/spec-kit/bart-incident-bot/internal/botframework"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
)

const (
	schemaURL = "http://adaptivecards.io/schemas/adaptive-card.json"
	version   = "1.2"
)

// Task module command ids carried by launch buttons.
const (
	CommandCreateIncident = "createincident"
	CommandEditWorkstream = "editworkstream"
	CommandViewWorkstream = "viewworkstream"
)

// Element is one node of an adaptive card body or action list.
type Element map[string]any

// Card is an adaptive card payload.
type Card struct {
	Type    string    `json:"type"`
	Schema  string    `json:"$schema"`
	Version string    `json:"version"`
	Body    []Element `json:"body"`
	Actions []Element `json:"actions,omitempty"`
}

func newCard(body []Element, actions ...Element) Card {
	return Card{Type: "AdaptiveCard", Schema: schemaURL, Version: version, Body: body, Actions: actions}
}

// Attachment wraps the card for sending.
func (c Card) Attachment() botframework.Attachment {
	return botframework.Attachment{ContentType: botframework.ContentTypeAdaptiveCard, Content: c}
}

func textBlock(text string, bold bool) Element {
	el := Element{"type": "TextBlock", "text": text, "wrap": true}
	if bold {
		el["weight"] = "Bolder"
		el["size"] = "Medium"
	}
	return el
}

func factSet(facts ...[2]string) Element {
	items := make([]Element, 0, len(facts))
	for _, f := range facts {
		if f[1] == "" {
			continue
		}
		items = append(items, Element{"title": f[0], "value": f[1]})
	}
	return Element{"type": "FactSet", "facts": items}
}

func submitAction(title string, data any) Element {
	return Element{"type": "Action.Submit", "title": title, "data": data}
}

func openURLAction(title, url string) Element {
	return Element{"type": "Action.OpenUrl", "title": title, "url": url}
}

// taskModuleAction opens a task module through a task/fetch invoke.
func taskModuleAction(title, commandID, incidentNumber string) Element {
	data := map[string]any{
		"msteams":   map[string]string{"type": "task/fetch"},
		"commandId": commandID,
	}
	if incidentNumber != "" {
		data["incidentNumber"] = incidentNumber
	}
	return submitAction(title, data)
}

// StatusAction is the data emitted by a status button on the incident card.
type StatusAction struct {
	Action         string `json:"Action"`
	IncidentID     string `json:"incidentId"`
	IncidentNumber string `json:"incidentNumber"`
	Title          string `json:"title"`
}

// Incident renders an incident with one button per status it can move to.
func Incident(inc domain.Incident, bridge *domain.ConferenceRoom, statuses []domain.StatusConfiguration) Card {
	bridgeText := inc.BridgeID
	if bridge != nil && bridge.BridgeURL != "" {
		bridgeText = fmt.Sprintf("[%s](%s)", bridge.Code, bridge.BridgeURL)
	}
	priority := inc.Priority
	if priority == domain.HighPriority {
		priority = "High"
	}
	body := []Element{
		textBlock(fmt.Sprintf("%s: %s", inc.Number, inc.ShortDescription), true),
		textBlock(inc.Description, false),
		factSet(
			[2]string{"Status", inc.Status.Label()},
			[2]string{"Priority", priority},
			[2]string{"Bridge", bridgeText},
			[2]string{"Requested by", firstNonEmpty(inc.RequestedByName, inc.RequestedBy)},
			[2]string{"Assigned to", firstNonEmpty(inc.AssignedToName, inc.AssignedTo)},
		),
	}

	actions := make([]Element, 0, len(statuses)+1)
	for _, st := range statuses {
		if st.Code == inc.Status {
			continue
		}
		actions = append(actions, submitAction(st.Name, StatusAction{
			Action:         st.Name,
			IncidentID:     inc.ID,
			IncidentNumber: inc.Number,
			Title:          inc.ShortDescription,
		}))
	}
	actions = append(actions, taskModuleAction("Workstreams", CommandViewWorkstream, inc.Number))
	return newCard(body, actions...)
}

// Workstreams lists an incident's workstreams in priority order.
func Workstreams(incidentNumber string, workstreams []domain.Workstream) Card {
	body := []Element{textBlock("Workstreams for "+incidentNumber, true)}
	if len(workstreams) == 0 {
		body = append(body, textBlock("No workstreams yet.", false))
	}
	for _, ws := range workstreams {
		body = append(body, factSet(
			[2]string{"#" + strconv.Itoa(ws.Priority), ws.Description},
			[2]string{"Assigned to", firstNonEmpty(ws.AssignedName, ws.AssignedTo)},
		))
	}
	return newCard(body, taskModuleAction("Edit workstreams", CommandEditWorkstream, incidentNumber))
}

// Help lists the commands the bot understands.
func Help() Card {
	return newCard([]Element{
		textBlock("Here is what I can do", true),
		textBlock("**Create incident**: open a new incident and post it to the team.", false),
		textBlock("**Edit workstream** / **View workstream**: manage the sub-tasks of an incident.", false),
		textBlock("**Sign in** / **Sign out**: manage your session.", false),
		textBlock("**Take a tour**: a short walkthrough.", false),
	},
		taskModuleAction("Create incident", CommandCreateIncident, ""),
	)
}

// Tour walks a new user through the main flows.
func Tour() Card {
	return newCard([]Element{
		textBlock("Welcome to the tour", true),
		textBlock("1. Type **create incident** to open the incident form and pick an available bridge.", false),
		textBlock("2. The incident card is posted to you and to the incident channel.", false),
		textBlock("3. Use the status buttons on the card to suspend or restore the incident.", false),
		textBlock("4. Type **edit workstream** to split the work into prioritised workstreams.", false),
	})
}

// Welcome greets a user when the bot is installed.
func Welcome(userName string) Card {
	greeting := "Hi there!"
	if userName != "" {
		greeting = fmt.Sprintf("Hi %s!", userName)
	}
	return newCard([]Element{
		textBlock(greeting, true),
		textBlock("I help you create and track incidents. Type **help** to see what I can do.", false),
	},
		submitAction("Take a tour", map[string]string{"text": "take a tour"}),
	)
}

// SignIn prompts the user to authenticate.
func SignIn(signInURL string) Card {
	return newCard([]Element{
		textBlock("Please sign in", true),
		textBlock("Sign in to create incidents and edit workstreams.", false),
	},
		openURLAction("Sign in", signInURL),
	)
}

// TaskModuleLaunch is a card with a single button opening a task module.
func TaskModuleLaunch(title, text, commandID, incidentNumber string) Card {
	return newCard([]Element{
		textBlock(title, true),
		textBlock(text, false),
	},
		taskModuleAction(title, commandID, incidentNumber),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
