package testutil

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/zjrosen/folio/internal/library"
)

// MemoryStore is an in-memory library.Store. Failures can be injected per
// item id to exercise partial batch errors.
type MemoryStore struct {
	mu          sync.Mutex
	items       map[string]library.Item
	failUpsert  map[string]error
	failDelete  map[string]error
	upsertCalls int
	deleteCalls int
}

// NewMemoryStore creates a store holding items.
func NewMemoryStore(items ...library.Item) *MemoryStore {
	s := &MemoryStore{
		items:      make(map[string]library.Item),
		failUpsert: make(map[string]error),
		failDelete: make(map[string]error),
	}
	for _, item := range items {
		s.items[item.ID] = item.Clone()
	}
	return s
}

var _ library.Store = (*MemoryStore)(nil)

// FailUpsert makes every Upsert of id return err. A nil err clears it.
func (s *MemoryStore) FailUpsert(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failUpsert, id)
		return
	}
	s.failUpsert[id] = err
}

// FailDelete makes every Delete of id return err. A nil err clears it.
func (s *MemoryStore) FailDelete(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failDelete, id)
		return
	}
	s.failDelete[id] = err
}

func (s *MemoryStore) Load(_ context.Context, id string) (library.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return library.Item{}, &library.ItemNotFoundError{ID: id}
	}
	return item.Clone(), nil
}

func (s *MemoryStore) Upsert(_ context.Context, item library.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	if err := s.failUpsert[item.ID]; err != nil {
		return err
	}
	s.items[item.ID] = item.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if err := s.failDelete[id]; err != nil {
		return err
	}
	if _, ok := s.items[id]; !ok {
		return &library.ItemNotFoundError{ID: id}
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, opts library.ListOptions) ([]library.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []library.Item
	for _, item := range s.items {
		if opts.Matches(item) {
			out = append(out, item.Clone())
		}
	}
	library.SortItems(out, opts.SortBy)
	return out, nil
}

// Snapshot returns a copy of every stored item keyed by id.
func (s *MemoryStore) Snapshot() map[string]library.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]library.Item, len(s.items))
	for id, item := range s.items {
		out[id] = item.Clone()
	}
	return out
}

// IDs returns the stored ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.items))
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Calls returns the number of Upsert and Delete calls seen.
func (s *MemoryStore) Calls() (upserts, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertCalls, s.deleteCalls
}
