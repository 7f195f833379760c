package fetchkit

import (
	"context"
	"time"
)

// Fetcher performs one asynchronous call against the underlying transport.
// fetchkit never constructs these; callers supply them.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Entry is a cached value together with its write time and expiry.
// Entries are replaced whole on refresh, never mutated in place.
type Entry[T any] struct {
	Data      T
	Timestamp time.Time
	ExpiresAt time.Time
}

// Stats is a point-in-time snapshot of a Store for observability.
type Stats struct {
	Size      int
	Pending   int
	Keys      []string
	Hits      int64
	Misses    int64
	Refreshes int64
}

// RetryCondition decides whether an error on the given zero-based attempt
// should be retried.
type RetryCondition func(err error, attempt int) bool

// RefreshErrorFunc observes failures of detached background refreshes, which
// are otherwise only logged.
type RefreshErrorFunc func(key string, err error)

// BatchFunc resolves one batched round-trip. A key absent from the returned
// map is reported to its caller as a *KeyError; it does not fail the batch.
type BatchFunc[K comparable, R any] func(ctx context.Context, keys []K) (map[K]R, error)
