// Package bot routes Bot Framework activities to the incident services.
package bot

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/spec-kit/bart-incident-bot/internal/botframework"
)

// Command is one of the fixed set of instructions the bot understands.
type Command string

const (
	CommandUnknown        Command = ""
	CommandCreateIncident Command = "CREATE INCIDENT"
	CommandEditWorkstream Command = "EDIT WORKSTREAM"
	CommandViewWorkstream Command = "VIEW WORKSTREAM"
	CommandSignIn         Command = "SIGN IN"
	CommandSignOut        Command = "SIGN OUT"
	CommandHelp           Command = "HELP"
	CommandTakeATour      Command = "TAKE A TOUR"
	CommandCardAction     Command = "CARDACTION"
)

var knownCommands = map[Command]struct{}{
	CommandCreateIncident: {},
	CommandEditWorkstream: {},
	CommandViewWorkstream: {},
	CommandSignIn:         {},
	CommandSignOut:        {},
	CommandHelp:           {},
	CommandTakeATour:      {},
	CommandCardAction:     {},
}

// Parse maps free text to a command. Case and surrounding or repeated
// whitespace are ignored.
func Parse(text string) Command {
	normalized := Command(strings.ToUpper(strings.Join(strings.Fields(text), " ")))
	if _, ok := knownCommands[normalized]; ok {
		return normalized
	}
	return CommandUnknown
}

// Classification is the routing decision for one activity.
type Classification struct {
	Command Command
	// Text is the user's input with mentions removed, kept for error replies.
	Text string
}

var mentionPattern = regexp.MustCompile(`(?is)<at>.*?</at>`)

// Classify decides which command an activity carries. A message with no text
// whose value has a non-empty Action is a card action; otherwise the text, or
// the value's text key, is parsed.
func Classify(act *botframework.Activity) Classification {
	text := strings.TrimSpace(mentionPattern.ReplaceAllString(act.Text, ""))
	var keys map[string]json.RawMessage
	if act.HasValue() {
		_ = json.Unmarshal(act.Value, &keys)
	}

	if text == "" && act.Type == botframework.ActivityTypeMessage && stringKey(keys, "Action") != "" {
		return Classification{Command: CommandCardAction}
	}
	if text == "" {
		text = strings.TrimSpace(stringKey(keys, "text"))
	}
	return Classification{Command: Parse(text), Text: text}
}

// stringKey reads a string member, matching the key case-insensitively.
func stringKey(keys map[string]json.RawMessage, key string) string {
	for k, raw := range keys {
		if !strings.EqualFold(k, key) {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return ""
}
