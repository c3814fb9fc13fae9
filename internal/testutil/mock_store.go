package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zjrosen/folio/internal/library"
)

// MockStore is a testify mock of library.Store for asserting exact store
// traffic and injecting errors MemoryStore cannot produce.
type MockStore struct {
	mock.Mock
}

var _ library.Store = (*MockStore)(nil)

func (m *MockStore) Load(ctx context.Context, id string) (library.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(library.Item), args.Error(1)
}

func (m *MockStore) Upsert(ctx context.Context, item library.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) List(ctx context.Context, opts library.ListOptions) ([]library.Item, error) {
	args := m.Called(ctx, opts)
	items, _ := args.Get(0).([]library.Item)
	return items, args.Error(1)
}
