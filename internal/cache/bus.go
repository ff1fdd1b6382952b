package cache

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Handler receives invalidations published on a Bus.
type Handler func(ctx context.Context, inv Invalidation)

// Bus fans invalidations out to in-process subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   []Handler
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers h for every subsequent invalidation.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, h)
}

// Invalidate delivers inv to all subscribers synchronously.
func (b *Bus) Invalidate(ctx context.Context, inv Invalidation) {
	if inv.OwnerID == "" || len(inv.Kinds) == 0 {
		return
	}
	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	b.logger.DebugContext(ctx, "Cache invalidation", "owner_id", inv.OwnerID, "kinds", inv.Kinds)
	for _, h := range subs {
		h(ctx, inv)
	}
}

// Has reports whether inv covers kind.
func (inv Invalidation) Has(kind Kind) bool {
	return slices.Contains(inv.Kinds, kind)
}

// KindNames renders the kinds as strings, e.g. for response headers.
func (inv Invalidation) KindNames() []string {
	out := make([]string, len(inv.Kinds))
	for i, k := range inv.Kinds {
		out[i] = string(k)
	}
	return out
}
