package worker

import (
	"context"
	"errors"
	"testing"

	"finsimples/internal/amqp"
	"finsimples/internal/cache"
)

type fakePublisher struct {
	sent []*amqp.InvalidationMessage
	err  error
}

func (f *fakePublisher) PublishInvalidation(_ context.Context, msg *amqp.InvalidationMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

// loopback delivers published messages straight to the handler.
type loopback struct {
	msgs []*amqp.InvalidationMessage
}

func (l *loopback) ConsumeInvalidations(ctx context.Context, handler func(context.Context, *amqp.InvalidationMessage) error) error {
	for _, m := range l.msgs {
		if err := handler(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func recordBus() (*cache.Bus, *[]cache.Invalidation) {
	bus := cache.NewBus(nil)
	var got []cache.Invalidation
	bus.Subscribe(func(_ context.Context, inv cache.Invalidation) { got = append(got, inv) })
	return bus, &got
}

func TestBroadcaster(t *testing.T) {
	ctx := context.Background()

	t.Run("local and remote", func(t *testing.T) {
		bus, got := recordBus()
		pub := &fakePublisher{}
		b := NewBroadcaster(bus, pub, nil)

		b.Invalidate(ctx, cache.Invalidation{OwnerID: "u1", Kinds: []cache.Kind{cache.Transactions, cache.Categories}})

		if len(*got) != 1 {
			t.Fatalf("local invalidations = %d, want 1", len(*got))
		}
		if len(pub.sent) != 1 || pub.sent[0].Origin != b.Origin() || pub.sent[0].Kinds[1] != "categories" {
			t.Errorf("published = %+v", pub.sent)
		}
	})

	t.Run("publish failure keeps local invalidation", func(t *testing.T) {
		bus, got := recordBus()
		b := NewBroadcaster(bus, &fakePublisher{err: errors.New("broker down")}, nil)
		b.Invalidate(ctx, cache.Invalidation{OwnerID: "u1", Kinds: []cache.Kind{cache.Goals}})
		if len(*got) != 1 {
			t.Errorf("local invalidations = %d, want 1", len(*got))
		}
	})

	t.Run("empty invalidation is dropped", func(t *testing.T) {
		bus, got := recordBus()
		pub := &fakePublisher{}
		NewBroadcaster(bus, pub, nil).Invalidate(ctx, cache.Invalidation{OwnerID: "u1"})
		if len(*got) != 0 || len(pub.sent) != 0 {
			t.Errorf("empty invalidation propagated")
		}
	})
}

func TestInvalidationWorker(t *testing.T) {
	bus, got := recordBus()
	src := &loopback{msgs: []*amqp.InvalidationMessage{
		amqp.NewInvalidationMessage("self", "u1", []string{"transactions"}),
		amqp.NewInvalidationMessage("peer", "u2", []string{"goals", "bogus"}),
	}}

	w := NewInvalidationWorker("self", bus, src, nil)
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(*got) != 1 {
		t.Fatalf("applied = %d, want 1 (own echo ignored)", len(*got))
	}
	inv := (*got)[0]
	if inv.OwnerID != "u2" || len(inv.Kinds) != 1 || inv.Kinds[0] != cache.Goals {
		t.Errorf("applied invalidation = %+v", inv)
	}
}
