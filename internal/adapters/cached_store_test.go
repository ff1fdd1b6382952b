package adapters

import (
	"context"
	"testing"
	"time"

	"finsimples/internal/cache"
	"finsimples/internal/core"
	"finsimples/internal/storage/memory"
)

type countingStore struct {
	*memory.Store
	txLists int
}

func (c *countingStore) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	c.txLists++
	return c.Store.ListTransactions(ctx, ownerID)
}

func TestCachedStoreInvalidation(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: memory.New()}
	bus := cache.NewBus(nil)
	s := NewCachedStore(inner, bus, nil, 10, time.Minute)

	tx := core.Transaction{Description: "Café", Amount: core.Money{Cents: 500}, Type: core.Expense, Category: "Lazer", Date: core.NewDate(2024, 5, 1)}
	if _, err := s.InsertTransactions(ctx, "u1", []core.Transaction{tx}); err != nil {
		t.Fatalf("InsertTransactions() error = %v", err)
	}

	for range 3 {
		got, err := s.ListTransactions(ctx, "u1")
		if err != nil || len(got) != 1 {
			t.Fatalf("ListTransactions() = %v, %v", got, err)
		}
	}
	if inner.txLists != 1 {
		t.Errorf("store list calls = %d, want 1", inner.txLists)
	}

	// A write without invalidation keeps serving the cached list.
	s.InsertTransactions(ctx, "u1", []core.Transaction{tx})
	if got, _ := s.ListTransactions(ctx, "u1"); len(got) != 1 {
		t.Errorf("cached list len = %d, want 1", len(got))
	}

	// Invalidating another kind leaves transactions cached.
	bus.Invalidate(ctx, cache.Invalidation{OwnerID: "u1", Kinds: []cache.Kind{cache.Goals}})
	if got, _ := s.ListTransactions(ctx, "u1"); len(got) != 1 {
		t.Errorf("list after goals invalidation len = %d, want 1", len(got))
	}

	bus.Invalidate(ctx, cache.Invalidation{OwnerID: "u1", Kinds: []cache.Kind{cache.Transactions}})
	if got, _ := s.ListTransactions(ctx, "u1"); len(got) != 2 {
		t.Errorf("list after invalidation len = %d, want 2", len(got))
	}
	if inner.txLists != 2 {
		t.Errorf("store list calls = %d, want 2", inner.txLists)
	}
}

func TestCachedStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewCachedStore(memory.New(), nil, cache.NewManager(nil), 10, time.Minute)

	s.InsertCategories(ctx, "u1", []core.Category{{Name: "Lazer", Type: core.Expense}})
	first, _ := s.ListCategories(ctx, "u1")
	first[0].Name = "mutated"

	second, _ := s.ListCategories(ctx, "u1")
	if second[0].Name != "Lazer" {
		t.Errorf("cached entry mutated through returned slice: %q", second[0].Name)
	}
	if got := s.Stats()[cache.Categories]; got != 1 {
		t.Errorf("Stats()[categories] = %d, want 1", got)
	}
}
