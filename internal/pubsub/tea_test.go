package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListener_YieldsEventsInOrder(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()
	l := NewListener(t.Context(), b)

	b.Publish(CreatedEvent, 1)
	b.Publish(DeletedEvent, 2)

	first, ok := l.Listen()().(Event[int])
	require.True(t, ok)
	require.Equal(t, 1, first.Payload)

	second, ok := l.Listen()().(Event[int])
	require.True(t, ok)
	require.Equal(t, DeletedEvent, second.Type)
}

func TestListener_FiltersByType(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()
	l := NewListener(t.Context(), b, OpenEvent)
	require.Equal(t, 1, b.SubscriberCount())

	b.Publish(StatusEvent, "ignored")
	b.Publish(OpenEvent, "/books/sicp.pdf")

	ev, ok := l.Listen()().(Event[string])
	require.True(t, ok)
	require.Equal(t, "/books/sicp.pdf", ev.Payload)
}

func TestListener_NilAfterCancel(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	l := NewListener(ctx, b)

	cancel()
	require.Nil(t, l.Listen()())
}

func TestListener_NilAfterBrokerClose(t *testing.T) {
	b := NewBroker[string]()
	l := NewListener(t.Context(), b)

	b.Close()
	require.Nil(t, l.Listen()())
}

func TestListener_NilReceiver(t *testing.T) {
	var l *Listener[int]
	require.Nil(t, l.Listen())
}
