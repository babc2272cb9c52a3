package cards

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bart-incident-bot/internal/botframework"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
)

func TestIncidentCardOffersOtherStatuses(t *testing.T) {
	inc := domain.Incident{ID: "42", Number: "INC001", ShortDescription: "db down", Status: domain.IncidentStatusNew, Priority: domain.HighPriority}
	card := Incident(inc, &domain.ConferenceRoom{Code: "711752242", BridgeURL: "https://bridge/711752242"}, domain.DefaultStatuses())

	require.Len(t, card.Actions, 3)
	first, ok := card.Actions[0]["data"].(StatusAction)
	require.True(t, ok)
	assert.Equal(t, "Suspended", first.Action)
	assert.Equal(t, "42", first.IncidentID)
	assert.Equal(t, "INC001", first.IncidentNumber)
	assert.Equal(t, "Action.Submit", card.Actions[2]["type"])

	att := card.Attachment()
	assert.Equal(t, botframework.ContentTypeAdaptiveCard, att.ContentType)

	raw, err := json.Marshal(att)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Action":"Service Restored"`)
	assert.Contains(t, string(raw), `"value":"High"`)
}

func TestFactSetSkipsEmptyValues(t *testing.T) {
	fs := factSet([2]string{"A", "1"}, [2]string{"B", ""})
	assert.Len(t, fs["facts"], 1)
}

func TestWorkstreamsCardEmpty(t *testing.T) {
	card := Workstreams("INC001", nil)
	raw, err := json.Marshal(card)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "No workstreams yet.")
	assert.Contains(t, string(raw), `"commandId":"editworkstream"`)
}
