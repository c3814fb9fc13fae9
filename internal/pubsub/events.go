// Package pubsub is a typed in-process event bus. The engine publishes on
// it and the TUI shell consumes events through Listener.
package pubsub

import (
	"context"
	"time"
)

// EventType tags an event so subscribers can filter on it.
type EventType string

// Item mutations.
const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Engine notifications.
const (
	StatusEvent  EventType = "status"
	LibraryEvent EventType = "library"
	OpenEvent    EventType = "open"
	QuitEvent    EventType = "quit"
)

// LogEvent carries a formatted debug log line.
const LogEvent EventType = "log"

// Event is one published payload and when it was published.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Publisher is the sending half of a Broker.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// Subscriber is the receiving half of a Broker.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
	SubscribeTypes(ctx context.Context, types ...EventType) <-chan Event[T]
}

var (
	_ Publisher[int]  = (*Broker[int])(nil)
	_ Subscriber[int] = (*Broker[int])(nil)
)
