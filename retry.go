package fetchkit

import (
	"context"
	"sync/atomic"
	"time"
)

// Retry invokes fetcher until it succeeds, the attempt limit is reached, the
// retry condition declines, or ctx ends. Delays between attempts grow
// exponentially with jitter and are capped by the configured maximum. The
// error returned after exhaustion is the last attempt's error, unwrapped.
func Retry[T any](ctx context.Context, fetcher Fetcher[T], opts ...RetryOption) (T, error) {
	if fetcher == nil {
		panic("fetchkit: nil fetcher")
	}

	cfg := defaultRetryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	for attempt := 0; ; attempt++ {
		val, err := fetcher(ctx)
		if err == nil {
			return val, nil
		}

		if attempt >= cfg.maxRetries || !cfg.condition(err, attempt) {
			return zero, err
		}
		if cfg.budget != nil && !cfg.budget.Allow() {
			return zero, err
		}

		cfg.metrics.RecordRetryAttempt(attempt + 1)

		delay := cfg.strategy.Delay(attempt, cfg.initialDelay, cfg.maxDelay, cfg.factor, cfg.jitter)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}
}

// RetryBudget caps the total number of retries issued across all calls that
// share it within a sliding window, protecting a struggling transport from
// coordinated retry storms. Safe for concurrent use.
type RetryBudget struct {
	maxRetries  int64
	perWindow   time.Duration
	current     int64
	windowStart int64
}

// NewRetryBudget creates a budget allowing maxRetries retries per window.
func NewRetryBudget(maxRetries int, perWindow time.Duration) *RetryBudget {
	return &RetryBudget{
		maxRetries:  int64(maxRetries),
		perWindow:   perWindow,
		windowStart: time.Now().UnixNano(),
	}
}

// Allow reports whether another retry fits in the current window and claims
// it if so.
func (rb *RetryBudget) Allow() bool {
	now := time.Now().UnixNano()
	windowStart := atomic.LoadInt64(&rb.windowStart)

	if now-windowStart >= int64(rb.perWindow) {
		if atomic.CompareAndSwapInt64(&rb.windowStart, windowStart, now) {
			atomic.StoreInt64(&rb.current, 0)
		}
	}

	if atomic.LoadInt64(&rb.current) >= rb.maxRetries {
		return false
	}
	return atomic.AddInt64(&rb.current, 1) <= rb.maxRetries
}

// Stats returns the spent budget, the cap and the current window start.
func (rb *RetryBudget) Stats() (current, max int64, windowStart time.Time) {
	return atomic.LoadInt64(&rb.current),
		rb.maxRetries,
		time.Unix(0, atomic.LoadInt64(&rb.windowStart))
}
