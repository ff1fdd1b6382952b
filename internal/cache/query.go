package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader fetches a fresh value for an owner.
type Loader[T any] func(ctx context.Context) (T, error)

// Query caches one resource kind per owner. Concurrent misses for the same
// owner share a single load, and a load that races with an invalidation is
// returned to its callers but never stored.
type Query[T any] struct {
	kind  Kind
	lru   *LRUCache[string, T]
	group singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

// NewQuery creates a cache for kind and subscribes it to bus when non-nil.
func NewQuery[T any](kind Kind, bus *Bus, maxEntries int, ttl time.Duration) *Query[T] {
	q := &Query[T]{
		kind: kind,
		lru:  NewLRUCache[string, T](maxEntries, ttl),
		gens: make(map[string]uint64),
	}
	if bus != nil {
		bus.Subscribe(func(_ context.Context, inv Invalidation) {
			if inv.Has(kind) {
				q.Forget(inv.OwnerID)
			}
		})
	}
	return q
}

func (q *Query[T]) Kind() Kind { return q.kind }

// Get returns the cached value for owner or loads it.
func (q *Query[T]) Get(ctx context.Context, owner string, load Loader[T]) (T, error) {
	if v, ok := q.lru.Get(owner); ok {
		return v, nil
	}

	q.mu.Lock()
	gen := q.gens[owner]
	q.mu.Unlock()

	v, err, _ := q.group.Do(fmt.Sprintf("%s#%d", owner, gen), func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		q.mu.Lock()
		if q.gens[owner] == gen {
			q.lru.Set(owner, val)
		}
		q.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Forget drops the owner's entry and discards any load already in flight.
func (q *Query[T]) Forget(owner string) {
	q.mu.Lock()
	q.gens[owner]++
	q.lru.Delete(owner)
	q.mu.Unlock()
}

// CleanExpired implements Cleaner.
func (q *Query[T]) CleanExpired() int {
	return q.lru.CleanExpired()
}

func (q *Query[T]) Size() int {
	return q.lru.Size()
}
