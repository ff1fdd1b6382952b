package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[string, int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Errorf("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string, int](10, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	c.Set("b", 2)

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestQueryCachesUntilInvalidated(t *testing.T) {
	bus := NewBus(nil)
	q := NewQuery[[]string](Transactions, bus, 10, time.Minute)
	ctx := context.Background()

	var loads int
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"x"}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := q.Get(ctx, "u1", load); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if loads != 1 {
		t.Fatalf("loads = %d, want 1", loads)
	}

	bus.Invalidate(ctx, Invalidation{OwnerID: "u1", Kinds: []Kind{Categories}})
	q.Get(ctx, "u1", load)
	if loads != 1 {
		t.Errorf("unrelated kind reloaded: loads = %d", loads)
	}

	bus.Invalidate(ctx, Invalidation{OwnerID: "u1", Kinds: []Kind{Transactions}})
	q.Get(ctx, "u1", load)
	if loads != 2 {
		t.Errorf("loads = %d, want 2", loads)
	}
}

func TestQueryDoesNotCacheErrors(t *testing.T) {
	q := NewQuery[int](Goals, nil, 10, time.Minute)
	boom := errors.New("boom")
	if _, err := q.Get(context.Background(), "u1", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("Get() err = %v, want %v", err, boom)
	}
	if q.Size() != 0 {
		t.Errorf("Size() = %d, want 0", q.Size())
	}
}

func TestQueryCollapsesConcurrentLoads(t *testing.T) {
	q := NewQuery[int](Transactions, nil, 10, time.Minute)
	release := make(chan struct{})
	var loads atomic.Int32

	load := func(context.Context) (int, error) {
		loads.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := q.Get(context.Background(), "u1", load); err != nil || v != 42 {
				t.Errorf("Get() = %d, %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

func TestQueryDropsLoadRacingInvalidation(t *testing.T) {
	q := NewQuery[int](Transactions, nil, 10, time.Minute)
	ctx := context.Background()

	_, err := q.Get(ctx, "u1", func(context.Context) (int, error) {
		q.Forget("u1") // a mutation lands while loading
		return 1, nil
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if q.Size() != 0 {
		t.Errorf("stale load was cached")
	}
}

func TestManagerCleanNow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string, int](10, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	now = now.Add(time.Minute)
	if n := m.CleanNow(); n != 1 {
		t.Errorf("CleanNow() = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

func TestRecorder(t *testing.T) {
	// No recorder in context: no-op.
	Record(context.Background(), Invalidation{OwnerID: "u1", Kinds: []Kind{Goals}})

	ctx, rec := WithRecorder(context.Background())
	Record(ctx, Invalidation{OwnerID: "u1", Kinds: []Kind{Categories}})
	Record(ctx, Invalidation{OwnerID: "u1", Kinds: []Kind{Transactions, Categories}})

	got := rec.Kinds()
	if len(got) != 2 || got[0] != Categories || got[1] != Transactions {
		t.Errorf("Kinds() = %v, want [categories transactions]", got)
	}
}
