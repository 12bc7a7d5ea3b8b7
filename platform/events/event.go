// Package events is the in-process pub/sub layer the workflow side effects
// hang off: reminder scheduling and notifications subscribe here instead of
// being called by the modules that publish. Domain event types live in
// internal/events; this package only carries the bus machinery.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName uniquely identifies the event type and doubles as the
	// subscription key.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp field shared by all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a BaseEvent with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events it subscribed to.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to the handlers subscribed under their EventName.
type Bus interface {
	// Publish fans out asynchronously; handler errors are logged by the bus,
	// never returned to the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync runs all handlers before returning and reports their
	// joined error. Used where the caller must know delivery happened.
	PublishSync(ctx context.Context, event Event) error

	Subscribe(eventName string, handler Handler)
}
