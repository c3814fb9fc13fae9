package engine

import (
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/pubsub"
)

// Event is the payload the engine publishes for the shell around it.
//
//   - pubsub.StatusEvent carries Message.
//   - pubsub.LibraryEvent carries Library after :library.
//   - pubsub.OpenEvent carries the Item whose file should be opened.
//   - pubsub.QuitEvent is sent for :q, :wq and Q.
//   - pubsub.CreatedEvent, UpdatedEvent and DeletedEvent carry Count after
//     a mutation.
type Event struct {
	Message string
	Library string
	Item    library.Item
	Count   int
}

func (e *Engine) publish(t pubsub.EventType, ev Event) {
	if e.broker == nil {
		return
	}
	e.broker.Publish(t, ev)
}
