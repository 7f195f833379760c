package backoff

import (
	"time"
)

// Calculator computes retry delays using a configurable strategy.
type Calculator struct {
	strategy Strategy
}

// NewCalculator creates a calculator with the specified strategy.
func NewCalculator(strategy Strategy) *Calculator {
	return &Calculator{
		strategy: strategy,
	}
}

// Delay computes the wait before the retry following the given failed attempt.
func (c *Calculator) Delay(attempt int, initialDelay, maxDelay time.Duration, factor, jitter float64) time.Duration {
	return c.strategy.Delay(attempt, initialDelay, maxDelay, factor, jitter)
}

// Strategy returns the strategy in use.
func (c *Calculator) Strategy() Strategy {
	return c.strategy
}

// ExponentialJitterCalculator returns a calculator for the default strategy.
func ExponentialJitterCalculator() *Calculator {
	return NewCalculator(ExponentialJitterStrategy{})
}

// DecorrelatedJitterCalculator returns a calculator for AWS-style jitter.
func DecorrelatedJitterCalculator() *Calculator {
	return NewCalculator(DecorrelatedJitterStrategy{})
}
