// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within diffwatch.
package eventbus

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/diffwatch/internal/core/logging"
)

// Event identifies an event type on the bus.
type Event string

const (
	EventHeadChanged           Event = "head.changed"
	EventViewRefreshed         Event = "view.refreshed"
	EventFileStaged            Event = "file.staged"
	EventRepoBusy              Event = "repo.busy"
	EventNotificationPublished Event = "notification.published"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches events to subscribers from a single goroutine,
// preserving publish order. Publishing never blocks; events are dropped
// (and logged) when the buffer is full.
type EventBus struct {
	mu   sync.RWMutex
	subs map[Event][]func(any)
	ch   chan envelope
	done chan struct{}
	log  zerolog.Logger
}

// New creates an event bus with the given buffer size.
func New(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventBus{
		subs: make(map[Event][]func(any)),
		ch:   make(chan envelope, buffer),
		done: make(chan struct{}),
		log:  logging.Component("eventbus"),
	}
}

// Start runs the dispatch loop until ctx is canceled.
func (bus *EventBus) Start(ctx context.Context) {
	go func() {
		defer close(bus.done)
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-bus.ch:
				bus.dispatch(env)
			}
		}
	}()
}

// Wait blocks until the dispatch loop has exited.
func (bus *EventBus) Wait() { <-bus.done }

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	handlers := make([]func(any), len(bus.subs[env.event]))
	copy(handlers, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range handlers {
		fn(env.payload)
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
}

func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
	default:
		bus.log.Warn().
			Str("event", string(event)).
			Msg("event dropped: bus buffer full")
	}
}

// PublishHeadChanged publishes a head.changed event.
func (bus *EventBus) PublishHeadChanged(p HeadChangedPayload) { bus.send(EventHeadChanged, p) }

// SubscribeHeadChanged registers a handler for head.changed events.
func (bus *EventBus) SubscribeHeadChanged(fn func(HeadChangedPayload)) {
	bus.subscribe(EventHeadChanged, func(v any) {
		if p, ok := v.(HeadChangedPayload); ok {
			fn(p)
		}
	})
}

// PublishViewRefreshed publishes a view.refreshed event.
func (bus *EventBus) PublishViewRefreshed(p ViewRefreshedPayload) { bus.send(EventViewRefreshed, p) }

// SubscribeViewRefreshed registers a handler for view.refreshed events.
func (bus *EventBus) SubscribeViewRefreshed(fn func(ViewRefreshedPayload)) {
	bus.subscribe(EventViewRefreshed, func(v any) {
		if p, ok := v.(ViewRefreshedPayload); ok {
			fn(p)
		}
	})
}

// PublishFileStaged publishes a file.staged event.
func (bus *EventBus) PublishFileStaged(p FileStagedPayload) { bus.send(EventFileStaged, p) }

// SubscribeFileStaged registers a handler for file.staged events.
func (bus *EventBus) SubscribeFileStaged(fn func(FileStagedPayload)) {
	bus.subscribe(EventFileStaged, func(v any) {
		if p, ok := v.(FileStagedPayload); ok {
			fn(p)
		}
	})
}

// PublishRepoBusy publishes a repo.busy event.
func (bus *EventBus) PublishRepoBusy(p RepoBusyPayload) { bus.send(EventRepoBusy, p) }

// SubscribeRepoBusy registers a handler for repo.busy events.
func (bus *EventBus) SubscribeRepoBusy(fn func(RepoBusyPayload)) {
	bus.subscribe(EventRepoBusy, func(v any) {
		if p, ok := v.(RepoBusyPayload); ok {
			fn(p)
		}
	})
}

// PublishNotificationPublished publishes a notification.published event.
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

// SubscribeNotificationPublished registers a handler for notification.published events.
func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(v any) {
		if p, ok := v.(NotificationPublishedPayload); ok {
			fn(p)
		}
	})
}
