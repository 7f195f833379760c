package fetchkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios
var (
	// ErrSuperseded is returned to a debounced caller whose invocation was
	// replaced by a later call before its quiet period elapsed.
	ErrSuperseded = errors.New("fetchkit: call superseded")

	// ErrNoResult is the sentinel matched by errors.Is when a batch call
	// succeeded but its result map omitted a requested key.
	ErrNoResult = errors.New("fetchkit: no result for key")

	// ErrCircuitOpen is returned when the circuit breaker is in open state.
	ErrCircuitOpen = errors.New("fetchkit: circuit open")
)

// KeyError reports that a batched call completed but produced no result for
// one requested key. It matches ErrNoResult via errors.Is.
type KeyError struct {
	Key string
}

// Error implements error interface.
func (e *KeyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("fetchkit: no result for key %q", e.Key)
}

// Unwrap returns ErrNoResult so callers can match the class of failure.
func (e *KeyError) Unwrap() error {
	return ErrNoResult
}
