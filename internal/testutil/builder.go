package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/library"
)

// Builder accumulates items and writes them into a store.
type Builder struct {
	t     *testing.T
	store library.Store
	items []library.Item
}

// NewBuilder creates a builder for store.
func NewBuilder(t *testing.T, store library.Store) *Builder {
	t.Helper()
	return &Builder{t: t, store: store}
}

// WithItem adds an item.
func (b *Builder) WithItem(id, title string, opts ...ItemOption) *Builder {
	b.items = append(b.items, Item(id, title, opts...))
	return b
}

// Build upserts every accumulated item and returns them in insertion order.
func (b *Builder) Build() []library.Item {
	b.t.Helper()
	for _, item := range b.items {
		require.NoError(b.t, b.store.Upsert(context.Background(), item))
	}
	return b.items
}
