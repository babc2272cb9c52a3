package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/bart-incident-bot/internal/events"
)

// Notifier delivers one event.
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// NotificationWorker moves event delivery off the request path. Events are
// queued by the dispatcher and delivered by a single goroutine.
type NotificationWorker struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan events.Event
	wg       sync.WaitGroup
}

// NewNotificationWorker creates a worker with the given queue size.
func NewNotificationWorker(notifier Notifier, logger *zap.Logger, buffer int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationWorker{notifier: notifier, logger: logger, queue: make(chan events.Event, buffer)}
}

// Subscribe queues every incident event published on the dispatcher.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	for _, t := range []events.EventType{
		events.EventIncidentCreated,
		events.EventIncidentStatusChanged,
		events.EventWorkstreamsUpdated,
	} {
		dispatcher.Subscribe(t, w.enqueue)
	}
}

// enqueue drops the event when the queue is full rather than blocking the request.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, event dropped",
			zap.String("event_type", string(event.Type)),
			zap.String("incident_number", event.IncidentNumber))
	}
	return nil
}

// Start delivers queued events until ctx is cancelled, then drains what is left.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event := <-w.queue:
				w.deliver(ctx, event)
			case <-ctx.Done():
				for {
					select {
					case event := <-w.queue:
						w.deliver(context.Background(), event)
					default:
						return
					}
				}
			}
		}
	}()
}

// Wait blocks until the delivery goroutine has exited.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if err := w.notifier.Notify(ctx, event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("incident_number", event.IncidentNumber),
			zap.Error(err))
	}
}
