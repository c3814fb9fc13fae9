package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 64

// typeFilter is the set of event types a subscriber wants. nil accepts all.
type typeFilter map[EventType]struct{}

func (f typeFilter) accepts(t EventType) bool {
	if f == nil {
		return true
	}
	_, ok := f[t]
	return ok
}

type subscription[T any] struct {
	ch    chan Event[T]
	types typeFilter
}

// Broker fans events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Broker[T any] struct {
	mu     sync.RWMutex
	subs   map[*subscription[T]]struct{}
	closed bool
	buffer int
}

// NewBroker creates a broker with a 64-event buffer per subscriber.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker with the given per-subscriber buffer.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:   make(map[*subscription[T]]struct{}),
		buffer: max(size, 0),
	}
}

// Subscribe returns a channel receiving every event. It is closed when ctx
// ends or the broker closes.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	return b.subscribe(ctx, nil)
}

// SubscribeTypes is Subscribe restricted to the given event types.
func (b *Broker[T]) SubscribeTypes(ctx context.Context, types ...EventType) <-chan Event[T] {
	filter := make(typeFilter, len(types))
	for _, t := range types {
		filter[t] = struct{}{}
	}
	return b.subscribe(ctx, filter)
}

func (b *Broker[T]) subscribe(ctx context.Context, types typeFilter) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	s := &subscription[T]{ch: make(chan Event[T], b.buffer), types: types}
	b.subs[s] = struct{}{}
	context.AfterFunc(ctx, func() { b.unsubscribe(s) })
	return s.ch
}

func (b *Broker[T]) unsubscribe(s *subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.ch)
}

// Publish stamps payload with the current time and delivers it.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	ev := Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
	for s := range b.subs {
		if !s.types.accepts(eventType) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// Close closes every subscriber channel. Later calls do nothing.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
	}
	clear(b.subs)
}

// SubscriberCount returns the number of open subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
