package fetchkit

import (
	"context"
	"sync"
	"time"
)

// NewThrottled returns a wrapper limiting fn to at most one execution per
// interval. A call outside the window executes immediately. A call inside the
// window joins the in-flight execution if one is running; otherwise it joins
// a single execution scheduled for when the window elapses. Unlike debounce,
// demand inside a window always produces an execution at the window boundary.
func NewThrottled[T any](fn func(ctx context.Context) (T, error), interval time.Duration) func(ctx context.Context) (T, error) {
	if fn == nil {
		panic("fetchkit: nil function")
	}
	t := &throttler[T]{fn: fn, interval: interval}
	return t.call
}

type throttler[T any] struct {
	mu       sync.Mutex
	fn       func(ctx context.Context) (T, error)
	interval time.Duration
	last     time.Time
	inflight *throttleCall[T]
	trailing *throttleCall[T]
}

type throttleCall[T any] struct {
	val  T
	err  error
	done chan struct{}
}

func (c *throttleCall[T]) wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (t *throttler[T]) call(ctx context.Context) (T, error) {
	t.mu.Lock()
	now := time.Now()

	if t.last.IsZero() || now.Sub(t.last) >= t.interval {
		c := &throttleCall[T]{done: make(chan struct{})}
		t.last = now
		t.inflight = c
		t.mu.Unlock()
		t.run(ctx, c)
		return c.val, c.err
	}

	if c := t.inflight; c != nil {
		t.mu.Unlock()
		return c.wait(ctx)
	}
	if c := t.trailing; c != nil {
		t.mu.Unlock()
		return c.wait(ctx)
	}

	// Previous execution settled inside the window: schedule one trailing
	// execution for the remainder and share it with later in-window callers.
	c := &throttleCall[T]{done: make(chan struct{})}
	t.trailing = c
	remaining := t.interval - now.Sub(t.last)
	// The scheduling caller may be gone by the time the window elapses; its
	// cancellation must not fail the execution shared with later callers.
	runCtx := context.WithoutCancel(ctx)
	time.AfterFunc(remaining, func() {
		t.mu.Lock()
		t.trailing = nil
		t.last = time.Now()
		t.inflight = c
		t.mu.Unlock()
		t.run(runCtx, c)
	})
	t.mu.Unlock()
	return c.wait(ctx)
}

// run executes fn, publishes the outcome and clears the in-flight marker.
func (t *throttler[T]) run(ctx context.Context, c *throttleCall[T]) {
	c.val, c.err = t.fn(ctx)

	t.mu.Lock()
	if t.inflight == c {
		t.inflight = nil
	}
	t.mu.Unlock()

	close(c.done)
}
