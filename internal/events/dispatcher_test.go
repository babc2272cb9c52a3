package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var seen []string
	d.Subscribe(EventIncidentCreated, func(context.Context, Event) error {
		seen = append(seen, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventIncidentCreated, func(context.Context, Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventWorkstreamsUpdated, func(context.Context, Event) error {
		seen = append(seen, "other")
		return nil
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventIncidentCreated}))
	assert.Equal(t, []string{"first", "second"}, seen)
}
