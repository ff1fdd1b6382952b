// Package worker runs the background side of cache coherence across instances.
package worker

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"finsimples/internal/amqp"
	"finsimples/internal/cache"
)

// Publisher sends invalidations to other instances.
type Publisher interface {
	PublishInvalidation(ctx context.Context, msg *amqp.InvalidationMessage) error
}

// Broadcaster applies invalidations to the local bus and, when a publisher
// is configured, forwards them to every other instance.
type Broadcaster struct {
	origin    string
	bus       *cache.Bus
	publisher Publisher
	logger    *slog.Logger
}

// NewBroadcaster creates a Broadcaster with a fresh origin id. publisher may be nil.
func NewBroadcaster(bus *cache.Bus, publisher Publisher, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		origin:    uuid.NewString(),
		bus:       bus,
		publisher: publisher,
		logger:    logger,
	}
}

// Origin identifies this instance in published messages.
func (b *Broadcaster) Origin() string { return b.origin }

// Invalidate implements cache.Invalidator. A failed publish is logged; the
// local caches are already coherent and peers fall back to their TTL.
func (b *Broadcaster) Invalidate(ctx context.Context, inv cache.Invalidation) {
	if inv.OwnerID == "" || len(inv.Kinds) == 0 {
		return
	}
	b.bus.Invalidate(ctx, inv)

	if b.publisher == nil {
		return
	}
	msg := amqp.NewInvalidationMessage(b.origin, inv.OwnerID, inv.KindNames())
	if err := b.publisher.PublishInvalidation(context.WithoutCancel(ctx), msg); err != nil {
		b.logger.WarnContext(ctx, "Failed to broadcast cache invalidation",
			"owner_id", inv.OwnerID,
			"kinds", inv.KindNames(),
			"error", err)
	}
}

// Consumer receives invalidations published by other instances.
type Consumer interface {
	ConsumeInvalidations(ctx context.Context, handler func(context.Context, *amqp.InvalidationMessage) error) error
}

// InvalidationWorker applies remote invalidations to the local bus.
type InvalidationWorker struct {
	origin   string
	bus      *cache.Bus
	consumer Consumer
	logger   *slog.Logger
}

func NewInvalidationWorker(origin string, bus *cache.Bus, consumer Consumer, logger *slog.Logger) *InvalidationWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvalidationWorker{origin: origin, bus: bus, consumer: consumer, logger: logger}
}

// Run consumes until ctx is cancelled.
func (w *InvalidationWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Invalidation worker started", "origin", w.origin)
	return w.consumer.ConsumeInvalidations(ctx, w.HandleMessage)
}

// HandleMessage applies msg unless this instance published it.
func (w *InvalidationWorker) HandleMessage(ctx context.Context, msg *amqp.InvalidationMessage) error {
	if msg.Origin == w.origin {
		return nil
	}

	inv := cache.Invalidation{OwnerID: msg.OwnerID}
	for _, name := range msg.Kinds {
		k := cache.Kind(name)
		if !slices.Contains(cache.AllKinds, k) {
			w.logger.WarnContext(ctx, "Ignoring unknown cache kind", "kind", name, "origin", msg.Origin)
			continue
		}
		inv.Kinds = append(inv.Kinds, k)
	}

	w.logger.DebugContext(ctx, "Applying remote invalidation",
		"owner_id", inv.OwnerID,
		"kinds", inv.KindNames(),
		"origin", msg.Origin)
	w.bus.Invalidate(ctx, inv)
	return nil
}
