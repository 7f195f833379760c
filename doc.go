// Package fetchkit provides client-side request coordination primitives that
// reduce redundant calls against an arbitrary asynchronous transport:
//
//   - Keyed cache-and-dedup store with TTL and stale-while-revalidate (Store)
//   - Trailing-edge debounce of bursty invocations (NewDebounced)
//   - Throttling to at most one execution per interval (NewThrottled)
//   - Retries with exponential backoff + jitter (Retry)
//   - Windowed batching of many small keyed lookups (Batcher)
//   - Circuit breaker for failing transports (Breaker)
//
// Design goals:
//   - Transport agnostic: a fetch is any func(ctx) (T, error)
//   - Small surface area: functional options configure everything
//   - Each primitive is independently usable and freely composable
//   - Safe concurrent use of every instance
//   - Optional Prometheus metrics and lightweight structured logging
//
// Typical usage:
//
//	store := fetchkit.NewStore[*Profile](
//	    fetchkit.WithDefaultTTL(5*time.Minute),
//	    fetchkit.WithMetrics(),
//	)
//	profile, err := store.GetOrFetch(ctx, "profile:42", fetchProfile,
//	    fetchkit.WithStaleWhileRevalidate())
//
// Primitives compose by wrapping: pass a retried fetcher as a store producer,
// or a throttled wrapper around a batched request. Nothing is shared between
// instances implicitly; construct one per isolated namespace.
package fetchkit
