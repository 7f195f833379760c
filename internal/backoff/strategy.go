// Package backoff provides delay calculation strategies for retry loops.
package backoff

import (
	"math/rand"
	"time"
)

// Strategy defines the interface for backoff calculation algorithms.
type Strategy interface {
	// Delay returns the wait before the retry following the given zero-based
	// failed attempt.
	Delay(attempt int, initialDelay, maxDelay time.Duration, factor, jitter float64) time.Duration
}

// ExponentialJitterStrategy grows the delay exponentially, caps it at
// maxDelay, then adds a uniformly random jitter in [0, jitter*delay).
type ExponentialJitterStrategy struct{}

// Delay implements the Strategy interface.
func (s ExponentialJitterStrategy) Delay(attempt int, initialDelay, maxDelay time.Duration, factor, jitter float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Guard pow against overflow for absurd attempt counts.
	if attempt > 30 {
		attempt = 30
	}

	delay := time.Duration(float64(initialDelay) * pow(factor, attempt))
	if delay < 0 || delay > maxDelay {
		delay = maxDelay
	}

	jitter = clampJitter(jitter)
	if jitter > 0 {
		delay += time.Duration(float64(delay) * jitter * rand.Float64())
	}
	return delay
}

// DecorrelatedJitterStrategy implements AWS-style decorrelated jitter, which
// spreads retries more evenly than exponential jitter under heavy contention.
type DecorrelatedJitterStrategy struct{}

// Delay implements the Strategy interface. The jitter parameter is unused;
// randomness is inherent to the algorithm.
func (s DecorrelatedJitterStrategy) Delay(attempt int, initialDelay, maxDelay time.Duration, factor, jitter float64) time.Duration {
	if attempt <= 0 {
		return initialDelay
	}
	if attempt > 10 {
		attempt = 10
	}

	// Stateless variant of random_between(base, min(cap, prev*3)):
	// random_between(base, min(cap, base*3^attempt)).
	base := float64(initialDelay)
	upper := base * pow(3.0, attempt)

	maxFloat := float64(maxDelay)
	if upper > maxFloat || upper < 0 {
		upper = maxFloat
	}
	if upper < base {
		upper = base
	}

	delay := time.Duration(base + rand.Float64()*(upper-base))
	if delay < 0 || delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func clampJitter(jitter float64) float64 {
	if jitter < 0 {
		return 0
	}
	if jitter > 1 {
		return 1
	}
	return jitter
}

func pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}

// Pow exposes integer exponentiation for callers that precompute bounds.
func Pow(base float64, exponent int) float64 {
	return pow(base, exponent)
}
