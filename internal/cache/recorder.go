package cache

import (
	"context"
	"slices"
	"sync"
)

// Recorder collects the kinds invalidated while serving one request.
type Recorder struct {
	mu    sync.Mutex
	kinds []Kind
}

type recorderKey struct{}

// WithRecorder returns a context whose invalidations are collected by the
// returned Recorder.
func WithRecorder(ctx context.Context) (context.Context, *Recorder) {
	r := &Recorder{}
	return context.WithValue(ctx, recorderKey{}, r), r
}

// Record adds inv's kinds to the recorder in ctx, if any.
func Record(ctx context.Context, inv Invalidation) {
	r := RecorderFrom(ctx)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range inv.Kinds {
		if !slices.Contains(r.kinds, k) {
			r.kinds = append(r.kinds, k)
		}
	}
}

// Kinds returns the recorded kinds in first-recorded order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.kinds)
}

// RecorderFrom returns the recorder in ctx, or nil.
func RecorderFrom(ctx context.Context) *Recorder {
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}
