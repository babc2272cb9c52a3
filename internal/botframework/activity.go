// Package botframework carries the subset of the Bot Framework activity
// protocol the bot consumes, and a REST client for the connector service.
package botframework

import (
	"encoding/json"
	"time"
)

// ActivityType identifies the kind of activity.
type ActivityType string

const (
	ActivityTypeMessage            ActivityType = "message"
	ActivityTypeInvoke             ActivityType = "invoke"
	ActivityTypeConversationUpdate ActivityType = "conversationUpdate"
)

// Invoke names handled by the bot.
const (
	InvokeTaskFetch         = "task/fetch"
	InvokeTaskSubmit        = "task/submit"
	InvokeSigninVerifyState = "signin/verifyState"
)

// Content types.
const (
	ContentTypeAdaptiveCard = "application/vnd.microsoft.card.adaptive"
	ContentTypeHeroCard     = "application/vnd.microsoft.card.hero"
)

// ChannelAccount identifies a user or bot in a channel.
type ChannelAccount struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	AadObjectID string `json:"aadObjectId,omitempty"`
	Role        string `json:"role,omitempty"`
}

// ConversationAccount identifies a conversation.
type ConversationAccount struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	ConversationType string `json:"conversationType,omitempty"`
	TenantID         string `json:"tenantId,omitempty"`
	IsGroup          bool   `json:"isGroup,omitempty"`
}

// Attachment is a rich card or file attached to an activity.
type Attachment struct {
	ContentType string `json:"contentType"`
	Content     any    `json:"content,omitempty"`
	ContentURL  string `json:"contentUrl,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Activity is one unit of communication between the bot and Teams.
type Activity struct {
	Type         ActivityType         `json:"type"`
	ID           string               `json:"id,omitempty"`
	Timestamp    *time.Time           `json:"timestamp,omitempty"`
	ServiceURL   string               `json:"serviceUrl,omitempty"`
	ChannelID    string               `json:"channelId,omitempty"`
	From         ChannelAccount       `json:"from"`
	Conversation *ConversationAccount `json:"conversation,omitempty"`
	Recipient    *ChannelAccount      `json:"recipient,omitempty"`
	Text         string               `json:"text,omitempty"`
	TextFormat   string               `json:"textFormat,omitempty"`
	Summary      string               `json:"summary,omitempty"`
	Value        json.RawMessage      `json:"value,omitempty"`
	Name         string               `json:"name,omitempty"`
	ReplyToID    string               `json:"replyToId,omitempty"`
	Attachments  []Attachment         `json:"attachments,omitempty"`
	ChannelData  json.RawMessage      `json:"channelData,omitempty"`
	MembersAdded []ChannelAccount     `json:"membersAdded,omitempty"`
}

type teamsChannelData struct {
	Tenant *struct {
		ID string `json:"id"`
	} `json:"tenant"`
}

// TenantID returns the tenant from channel data, falling back to the conversation.
func (a *Activity) TenantID() string {
	if len(a.ChannelData) > 0 {
		var cd teamsChannelData
		if json.Unmarshal(a.ChannelData, &cd) == nil && cd.Tenant != nil && cd.Tenant.ID != "" {
			return cd.Tenant.ID
		}
	}
	if a.Conversation != nil {
		return a.Conversation.TenantID
	}
	return ""
}

// ConversationID returns the conversation id or "".
func (a *Activity) ConversationID() string {
	if a.Conversation == nil {
		return ""
	}
	return a.Conversation.ID
}

// IsPersonal reports whether the activity came from a one-to-one chat.
func (a *Activity) IsPersonal() bool {
	return a.Conversation != nil && a.Conversation.ConversationType == "personal"
}

// HasValue reports whether the activity carries a non-null value payload.
func (a *Activity) HasValue() bool {
	v := string(a.Value)
	return v != "" && v != "null"
}

// NewMessage builds an outgoing message activity.
func NewMessage(text string, attachments ...Attachment) *Activity {
	return &Activity{Type: ActivityTypeMessage, Text: text, Attachments: attachments}
}

// InvokeResponse is the synchronous reply to an invoke activity.
type InvokeResponse struct {
	Status int `json:"status"`
	Body   any `json:"body,omitempty"`
}

// ConversationParameters describe a conversation to create.
type ConversationParameters struct {
	IsGroup     bool             `json:"isGroup"`
	Bot         *ChannelAccount  `json:"bot,omitempty"`
	Members     []ChannelAccount `json:"members,omitempty"`
	TenantID    string           `json:"tenantId,omitempty"`
	ChannelData any              `json:"channelData,omitempty"`
	Activity    *Activity        `json:"activity,omitempty"`
}

// ConversationResourceResponse is returned when a conversation is created.
type ConversationResourceResponse struct {
	ID         string `json:"id"`
	ActivityID string `json:"activityId,omitempty"`
	ServiceURL string `json:"serviceUrl,omitempty"`
}

// ChannelPost is the channel data addressing a new thread in a team channel.
type ChannelPost struct {
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
	Tenant *struct {
		ID string `json:"id"`
	} `json:"tenant,omitempty"`
}

// NewChannelPost addresses a channel, optionally within a tenant.
func NewChannelPost(channelID, tenantID string) ChannelPost {
	var cp ChannelPost
	cp.Channel.ID = channelID
	if tenantID != "" {
		cp.Tenant = &struct {
			ID string `json:"id"`
		}{ID: tenantID}
	}
	return cp
}
