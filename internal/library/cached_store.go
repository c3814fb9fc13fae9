package library

import (
	"context"
	"time"

	"github.com/zjrosen/folio/internal/cachemanager"
)

const itemCacheTTL = 5 * time.Minute

// CachedStore puts a read-through cache in front of Load. Writes go to the
// underlying store first and then drop the cached copy.
type CachedStore struct {
	Store
	loads *cachemanager.ReadThroughCache[string, Item, string]
}

// NewCachedStore wraps store. With bypass set the cache is skipped.
func NewCachedStore(store Store, bypass bool) *CachedStore {
	cache := cachemanager.NewInMemoryCacheManager[string, Item]("items", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	return &CachedStore{
		Store: store,
		loads: cachemanager.NewReadThroughCache[string, Item, string](cache, store.Load, bypass),
	}
}

var _ Store = (*CachedStore)(nil)

// Load returns a clone of the cached item so callers can mutate it freely.
func (s *CachedStore) Load(ctx context.Context, id string) (Item, error) {
	item, err := s.loads.GetWithRefresh(ctx, id, id, itemCacheTTL)
	if err != nil {
		return Item{}, err
	}
	return item.Clone(), nil
}

func (s *CachedStore) Upsert(ctx context.Context, item Item) error {
	if err := s.Store.Upsert(ctx, item); err != nil {
		return err
	}
	return s.loads.Invalidate(ctx, item.ID)
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	return s.loads.Invalidate(ctx, id)
}

// Invalidate drops every cached item. Used after the database changed
// underneath us.
func (s *CachedStore) Invalidate(ctx context.Context) error {
	return s.loads.Reset(ctx)
}
