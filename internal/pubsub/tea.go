package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Listener feeds broker events into a bubbletea update loop. Each Listen
// command yields one event, so Update must call Listen again after handling
// it.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewListener subscribes to broker for the given types, or all types when
// none are given. The subscription ends with ctx.
func NewListener[T any](ctx context.Context, broker *Broker[T], types ...EventType) *Listener[T] {
	l := &Listener[T]{ctx: ctx}
	if len(types) == 0 {
		l.ch = broker.Subscribe(ctx)
	} else {
		l.ch = broker.SubscribeTypes(ctx, types...)
	}
	return l
}

// Listen waits for the next event. The command yields nil once the
// subscription is over. A nil listener returns a nil command.
func (l *Listener[T]) Listen() tea.Cmd {
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-l.ctx.Done():
			return nil
		case ev, ok := <-l.ch:
			if !ok {
				return nil
			}
			return ev
		}
	}
}
