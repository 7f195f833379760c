package backoff

import (
	"testing"
	"time"
)

func TestExponentialJitterGrowsAndCaps(t *testing.T) {
	strategy := ExponentialJitterStrategy{}
	initial := 100 * time.Millisecond
	max := 2 * time.Second

	prevBase := time.Duration(0)
	for attempt := 0; attempt < 8; attempt++ {
		// Jitter 0 makes the result deterministic for monotonicity checks.
		delay := strategy.Delay(attempt, initial, max, 2.0, 0)
		if delay < prevBase {
			t.Errorf("attempt %d delay %v shrank below %v", attempt, delay, prevBase)
		}
		if delay > max {
			t.Errorf("attempt %d delay %v exceeds cap %v", attempt, delay, max)
		}
		prevBase = delay
	}

	if delay := strategy.Delay(10, initial, max, 2.0, 0); delay != max {
		t.Errorf("large attempt delay = %v, want the cap %v", delay, max)
	}
}

func TestExponentialJitterRange(t *testing.T) {
	strategy := ExponentialJitterStrategy{}
	initial := 100 * time.Millisecond
	max := time.Minute

	for i := 0; i < 100; i++ {
		delay := strategy.Delay(2, initial, max, 2.0, 0.1)
		base := 400 * time.Millisecond
		if delay < base {
			t.Fatalf("delay %v below base %v", delay, base)
		}
		if upper := base + base/10; delay >= upper {
			t.Fatalf("delay %v at or above base+10%% (%v)", delay, upper)
		}
	}
}

func TestExponentialJitterNegativeAttempt(t *testing.T) {
	strategy := ExponentialJitterStrategy{}
	delay := strategy.Delay(-3, 100*time.Millisecond, time.Second, 2.0, 0)
	if delay != 100*time.Millisecond {
		t.Errorf("negative attempt delay = %v, want the initial delay", delay)
	}
}

func TestExponentialJitterOverflowGuard(t *testing.T) {
	strategy := ExponentialJitterStrategy{}
	max := 30 * time.Second
	if delay := strategy.Delay(1000, time.Second, max, 2.0, 0); delay != max {
		t.Errorf("huge attempt delay = %v, want the cap %v", delay, max)
	}
}

func TestDecorrelatedJitterBounds(t *testing.T) {
	strategy := DecorrelatedJitterStrategy{}
	initial := 50 * time.Millisecond
	max := time.Second

	for attempt := 0; attempt < 6; attempt++ {
		for i := 0; i < 50; i++ {
			delay := strategy.Delay(attempt, initial, max, 2.0, 0.1)
			if delay < initial && attempt > 0 {
				t.Fatalf("attempt %d delay %v below base %v", attempt, delay, initial)
			}
			if delay > max {
				t.Fatalf("attempt %d delay %v exceeds cap %v", attempt, delay, max)
			}
		}
	}
}

func TestDecorrelatedJitterFirstAttempt(t *testing.T) {
	strategy := DecorrelatedJitterStrategy{}
	initial := 50 * time.Millisecond
	if delay := strategy.Delay(0, initial, time.Second, 2.0, 0.1); delay != initial {
		t.Errorf("attempt 0 delay = %v, want the initial delay", delay)
	}
}

func TestClampJitter(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := clampJitter(tt.in); got != tt.want {
			t.Errorf("clampJitter(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPow(t *testing.T) {
	tests := []struct {
		base     float64
		exponent int
		want     float64
	}{
		{2, 0, 1},
		{2, 3, 8},
		{1.5, 2, 2.25},
		{3, 1, 3},
	}
	for _, tt := range tests {
		if got := Pow(tt.base, tt.exponent); got != tt.want {
			t.Errorf("Pow(%v, %d) = %v, want %v", tt.base, tt.exponent, got, tt.want)
		}
	}
}
