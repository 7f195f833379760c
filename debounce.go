package fetchkit

import (
	"context"
	"sync"
	"time"
)

// NewDebounced returns a trailing-edge debounced wrapper around fn. Each call
// re-arms a single timer for delay; when a quiet period finally elapses, fn
// runs once with the arguments of the latest call and only that caller
// receives its outcome. Earlier callers in the burst fail fast with
// ErrSuperseded. Calls arriving faster than delay postpone execution
// indefinitely; no maximum wait is enforced.
func NewDebounced[A, T any](fn func(ctx context.Context, arg A) (T, error), delay time.Duration) func(ctx context.Context, arg A) (T, error) {
	if fn == nil {
		panic("fetchkit: nil function")
	}
	d := &debouncer[A, T]{fn: fn, delay: delay}
	return d.call
}

type debouncer[A, T any] struct {
	mu      sync.Mutex
	fn      func(ctx context.Context, arg A) (T, error)
	delay   time.Duration
	timer   *time.Timer
	pending *debounceCall[T]
}

type debounceCall[T any] struct {
	val        T
	err        error
	done       chan struct{}
	superseded chan struct{}
}

func (d *debouncer[A, T]) call(ctx context.Context, arg A) (T, error) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.pending != nil {
		close(d.pending.superseded)
	}

	c := &debounceCall[T]{
		done:       make(chan struct{}),
		superseded: make(chan struct{}),
	}
	d.pending = c
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending != c {
			// A Stop raced with this fire; a newer call owns the timer now.
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.timer = nil
		d.mu.Unlock()

		c.val, c.err = d.fn(ctx, arg)
		close(c.done)
	})
	d.mu.Unlock()

	var zero T
	select {
	case <-c.done:
		return c.val, c.err
	case <-c.superseded:
		return zero, ErrSuperseded
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
