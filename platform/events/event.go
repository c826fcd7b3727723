// Package events carries domain events between modules over an in-process
// bus. It is part of the platform layer and knows nothing about the domain
// types flowing through it.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event published on the bus.
type Event interface {
	// EventName identifies the event type; subscriptions key on it.
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp every event carries.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt reports when the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes published events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish fans the event out to its subscribers without waiting.
	Publish(ctx context.Context, event Event)

	// PublishSync waits for every subscriber and joins their errors.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for events carrying the given name.
	Subscribe(eventName string, handler Handler)
}
