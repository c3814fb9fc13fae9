package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event[T]{}
	}
}

func requireClosed[T any](t *testing.T, ch <-chan Event[T]) {
	t.Helper()
	select {
	case _, ok := <-ch:
		require.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
}

func TestBroker_DeliversToEverySubscriber(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	subs := []<-chan Event[int]{b.Subscribe(t.Context()), b.Subscribe(t.Context())}
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(CreatedEvent, 7)
	for _, ch := range subs {
		ev := receive(t, ch)
		require.Equal(t, CreatedEvent, ev.Type)
		require.Equal(t, 7, ev.Payload)
		require.False(t, ev.Timestamp.IsZero())
	}
}

func TestBroker_CancelledContextUnsubscribes(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	keep := b.Subscribe(t.Context())

	cancel()
	requireClosed(t, ch)
	require.Equal(t, 1, b.SubscriberCount())

	b.Publish(StatusEvent, "still here")
	require.Equal(t, "still here", receive(t, keep).Payload)
}

func TestBroker_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	b := NewBrokerWithBuffer[int](2)
	defer b.Close()
	ch := b.Subscribe(t.Context())

	done := make(chan struct{})
	go func() {
		for i := range 10 {
			b.Publish(UpdatedEvent, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	require.Equal(t, 0, receive(t, ch).Payload)
	require.Equal(t, 1, receive(t, ch).Payload)
	select {
	case ev := <-ch:
		t.Fatalf("expected the rest to be dropped, got %d", ev.Payload)
	default:
	}
}

func TestBroker_CloseEndsSubscriptions(t *testing.T) {
	b := NewBroker[int]()
	ch := b.Subscribe(t.Context())

	b.Close()
	b.Close()
	requireClosed(t, ch)
	require.Zero(t, b.SubscriberCount())

	// Publishing and subscribing after close are harmless.
	b.Publish(DeletedEvent, 1)
	requireClosed(t, b.Subscribe(t.Context()))
}

func TestBroker_CancelAfterCloseIsSafe(t *testing.T) {
	b := NewBroker[int]()
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)

	b.Close()
	cancel()
	requireClosed(t, ch)
}

func TestBroker_SubscribeTypes(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	lib := b.SubscribeTypes(t.Context(), LibraryEvent, OpenEvent)
	all := b.Subscribe(t.Context())

	b.Publish(StatusEvent, "status")
	b.Publish(LibraryEvent, "papers")

	ev := receive(t, lib)
	require.Equal(t, LibraryEvent, ev.Type)
	require.Equal(t, "papers", ev.Payload)

	require.Equal(t, StatusEvent, receive(t, all).Type)
	require.Equal(t, LibraryEvent, receive(t, all).Type)

	select {
	case ev := <-lib:
		t.Fatalf("unexpected event %v", ev.Type)
	default:
	}
}
