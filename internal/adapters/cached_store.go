// Package adapters decorates the backend store with the per-owner query cache.
package adapters

import (
	"context"
	"slices"
	"time"

	"finsimples/internal/backend"
	"finsimples/internal/cache"
	"finsimples/internal/core"
)

// CachedStore serves list reads from per-kind caches and passes every other
// call through to the wrapped store. Writes do not touch the caches; the
// caller publishes an invalidation on the bus the caches subscribe to.
type CachedStore struct {
	backend.Store

	txs   *cache.Query[[]core.Transaction]
	cats  *cache.Query[[]core.Category]
	goals *cache.Query[[]core.Goal]
}

// NewCachedStore wraps store and subscribes its caches to bus. Caches are
// registered with manager for periodic expiry when manager is non-nil.
func NewCachedStore(store backend.Store, bus *cache.Bus, manager *cache.Manager, maxEntries int, ttl time.Duration) *CachedStore {
	s := &CachedStore{
		Store: store,
		txs:   cache.NewQuery[[]core.Transaction](cache.Transactions, bus, maxEntries, ttl),
		cats:  cache.NewQuery[[]core.Category](cache.Categories, bus, maxEntries, ttl),
		goals: cache.NewQuery[[]core.Goal](cache.Goals, bus, maxEntries, ttl),
	}
	if manager != nil {
		manager.Register(s.txs)
		manager.Register(s.cats)
		manager.Register(s.goals)
	}
	return s
}

// ListTransactions returns a copy of the cached list so callers may reorder it.
func (s *CachedStore) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	v, err := s.txs.Get(ctx, ownerID, func(ctx context.Context) ([]core.Transaction, error) {
		return s.Store.ListTransactions(ctx, ownerID)
	})
	return slices.Clone(v), err
}

func (s *CachedStore) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	v, err := s.cats.Get(ctx, ownerID, func(ctx context.Context) ([]core.Category, error) {
		return s.Store.ListCategories(ctx, ownerID)
	})
	return slices.Clone(v), err
}

func (s *CachedStore) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	v, err := s.goals.Get(ctx, ownerID, func(ctx context.Context) ([]core.Goal, error) {
		return s.Store.ListGoals(ctx, ownerID)
	})
	return slices.Clone(v), err
}

// Stats reports cached owners per kind.
func (s *CachedStore) Stats() map[cache.Kind]int {
	return map[cache.Kind]int{
		cache.Transactions: s.txs.Size(),
		cache.Categories:   s.cats.Size(),
		cache.Goals:        s.goals.Size(),
	}
}
