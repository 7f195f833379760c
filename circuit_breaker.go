package fetchkit

import (
	"context"
	"sync"
	"time"
)

// BreakerState represents the state of the circuit breaker.
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

// BreakerConfig holds circuit breaker thresholds. Zero values fall back to
// 5 failures, 60s recovery and 2 successes.
type BreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	SuccessThreshold int
}

// Breaker is a three-state circuit breaker usable as one more composable
// decorator around a fetcher; see Guard. Safe for concurrent use.
type Breaker struct {
	mu          sync.Mutex
	config      BreakerConfig
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
}

// NewBreaker creates a circuit breaker with the given configuration.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout == 0 {
		config.RecoveryTimeout = 60 * time.Second
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 2
	}
	return &Breaker{
		config: config,
		state:  StateClosed,
	}
}

// Allow reports whether a call may proceed, transitioning open to half-open
// once the recovery timeout has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(b.lastFailure) >= b.config.RecoveryTimeout {
			b.state = StateHalfOpen
			b.successes = 0
			return true
		}
		return false
	case StateHalfOpen:
		return true
	default:
		return false
	}
}

// RecordFailure counts a failed call, opening the breaker at the threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = time.Now()
	if b.state == StateHalfOpen || (b.state == StateClosed && b.failures >= b.config.FailureThreshold) {
		b.state = StateOpen
	}
}

// RecordSuccess counts a successful call, closing a half-open breaker after
// enough consecutive successes.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
		}
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Guard executes fetcher through the breaker, failing fast with
// ErrCircuitOpen while it is open.
func Guard[T any](ctx context.Context, b *Breaker, fetcher Fetcher[T]) (T, error) {
	var zero T
	if !b.Allow() {
		return zero, ErrCircuitOpen
	}

	val, err := fetcher(ctx)
	if err != nil {
		b.RecordFailure()
		return zero, err
	}
	b.RecordSuccess()
	return val, nil
}
