package fetchkit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BatcherConfig configures a Batcher. BatchFn is required; zero values for
// the limits fall back to DefaultMaxBatchSize and DefaultMaxWait.
type BatcherConfig[K comparable, R any] struct {
	MaxBatchSize int
	MaxWait      time.Duration
	BatchFn      BatchFunc[K, R]
	Metrics      *MetricsCollector
}

// Batcher accumulates keyed requests arriving within a short window, or up to
// a size limit, into one batched round-trip and fans the results back out.
// A key appearing twice in one window gets two independent settlements fed by
// the same BatchFn call. Each Batcher owns an isolated window; construct one
// per batched endpoint. Safe for concurrent use.
type Batcher[K comparable, R any] struct {
	cfg BatcherConfig[K, R]

	mu    sync.Mutex
	keys  []K
	calls []*batchCall[R]
	timer *time.Timer
}

type batchCall[R any] struct {
	val  R
	err  error
	done chan struct{}
}

// NewBatcher constructs a Batcher from cfg.
func NewBatcher[K comparable, R any](cfg BatcherConfig[K, R]) *Batcher[K, R] {
	if cfg.BatchFn == nil {
		panic("fetchkit: BatchFn is required")
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	return &Batcher[K, R]{cfg: cfg}
}

// Do enqueues key into the current window and blocks until its individual
// result is available. Reaching MaxBatchSize flushes immediately; otherwise
// the window flushes MaxWait after its first key arrived. If BatchFn fails,
// every caller in the window receives that error; if it merely omits a key,
// only that key's callers receive a *KeyError.
func (b *Batcher[K, R]) Do(ctx context.Context, key K) (R, error) {
	b.mu.Lock()
	c := &batchCall[R]{done: make(chan struct{})}
	b.keys = append(b.keys, key)
	b.calls = append(b.calls, c)

	if len(b.keys) >= b.cfg.MaxBatchSize {
		keys, calls := b.snapshotLocked()
		b.mu.Unlock()
		// The triggering caller's cancellation must not fail the whole batch.
		b.flush(context.WithoutCancel(ctx), "size", keys, calls)
	} else {
		if b.timer == nil {
			b.timer = time.AfterFunc(b.cfg.MaxWait, b.flushAfterWait)
		}
		b.mu.Unlock()
	}

	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Pending returns the number of keys waiting in the current window.
func (b *Batcher[K, R]) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.keys)
}

func (b *Batcher[K, R]) flushAfterWait() {
	b.mu.Lock()
	keys, calls := b.snapshotLocked()
	b.mu.Unlock()

	if len(keys) == 0 {
		// A size-triggered flush emptied the window before the timer fired.
		return
	}
	b.flush(context.Background(), "window", keys, calls)
}

// snapshotLocked atomically captures and clears the window so new arrivals
// accumulate into a fresh one while the batched call is outstanding.
func (b *Batcher[K, R]) snapshotLocked() ([]K, []*batchCall[R]) {
	keys, calls := b.keys, b.calls
	b.keys, b.calls = nil, nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	return keys, calls
}

func (b *Batcher[K, R]) flush(ctx context.Context, trigger string, keys []K, calls []*batchCall[R]) {
	b.cfg.Metrics.RecordBatchFlush(trigger, len(keys))

	results, err := b.cfg.BatchFn(ctx, keys)
	if err != nil {
		for _, c := range calls {
			c.err = err
			close(c.done)
		}
		return
	}

	for i, c := range calls {
		if val, ok := results[keys[i]]; ok {
			c.val = val
		} else {
			c.err = &KeyError{Key: fmt.Sprint(keys[i])}
		}
		close(c.done)
	}
}
