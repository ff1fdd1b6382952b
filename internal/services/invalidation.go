package services

import (
	"context"

	"finsimples/internal/cache"
)

// invalidate declares kinds of owner stale. The request recorder, if any,
// sees the kinds even when no invalidator is configured.
func invalidate(ctx context.Context, inv cache.Invalidator, owner string, kinds ...cache.Kind) {
	i := cache.Invalidation{OwnerID: owner, Kinds: kinds}
	cache.Record(ctx, i)
	if inv != nil {
		inv.Invalidate(ctx, i)
	}
}
