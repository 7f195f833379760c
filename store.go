package fetchkit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Store is a keyed cache with request de-duplication. For any key at most one
// producer call is in flight at a time regardless of caller concurrency; the
// one exception is the single detached background refresh permitted under
// stale-while-revalidate, which itself checks the in-flight table first.
// The zero value is not usable; construct with NewStore. Safe for concurrent use.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]*Entry[T]
	pending map[string]*fetchCall[T]

	name       string
	defaultTTL time.Duration
	logger     Logger
	metrics    *MetricsCollector
	refreshErr RefreshErrorFunc
	nowFunc    func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	refreshes atomic.Int64
}

// fetchCall is one in-flight producer invocation shared between callers.
type fetchCall[T any] struct {
	val  T
	err  error
	done chan struct{}
}

func (c *fetchCall[T]) wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// NewStore constructs a Store using the provided functional options.
func NewStore[T any](options ...StoreOption) *Store[T] {
	cfg := storeConfig{
		name:       "default",
		defaultTTL: DefaultTTL,
		nowFunc:    time.Now,
	}
	for _, option := range options {
		option(&cfg)
	}

	return &Store[T]{
		entries:    make(map[string]*Entry[T]),
		pending:    make(map[string]*fetchCall[T]),
		name:       cfg.name,
		defaultTTL: cfg.defaultTTL,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
		refreshErr: cfg.refreshErr,
		nowFunc:    cfg.nowFunc,
	}
}

// GetOrFetch returns the cached value for key or obtains it via producer.
// Concurrent callers for the same key during one fetch window share a single
// producer call and observe the same outcome. Producer failures propagate
// verbatim to every joined caller and nothing is cached.
//
// With WithStaleWhileRevalidate, an entry older than its TTL but younger than
// twice the TTL is returned immediately while a detached refresh runs in the
// background; refresh failures are logged (and reported to the
// RefreshErrorFunc if one is configured) but never surfaced here.
func (s *Store[T]) GetOrFetch(ctx context.Context, key string, producer Fetcher[T], opts ...FetchOption) (T, error) {
	if producer == nil {
		panic("fetchkit: nil producer")
	}
	if key == "" {
		panic("fetchkit: empty key")
	}

	fo := fetchOptions{ttl: s.defaultTTL}
	for _, opt := range opts {
		opt(&fo)
	}

	if !fo.forceRefresh {
		now := s.nowFunc()
		s.mu.RLock()
		entry, ok := s.entries[key]
		s.mu.RUnlock()
		if ok {
			if now.Before(entry.ExpiresAt) {
				s.hits.Add(1)
				s.metrics.RecordCacheHit(s.name)
				return entry.Data, nil
			}
			if fo.staleWhileRevalidate && now.Sub(entry.Timestamp) < 2*fo.ttl {
				s.hits.Add(1)
				s.metrics.RecordCacheHit(s.name)
				s.refreshInBackground(key, producer, fo.ttl)
				return entry.Data, nil
			}
		}
	}

	s.misses.Add(1)
	s.metrics.RecordCacheMiss(s.name)

	call, owner := s.startFetch(key)
	if !owner {
		s.metrics.RecordDedupShare(s.name)
		return call.wait(ctx)
	}

	val, err := producer(ctx)
	s.finishFetch(key, call, val, err, fo.ttl)
	if err != nil {
		s.metrics.RecordFetch(s.name, "error")
		var zero T
		return zero, err
	}
	s.metrics.RecordFetch(s.name, "success")
	return val, nil
}

// Get is a synchronous, non-fetching peek. It reports the cached value only
// if present and unexpired, with no side effects.
func (s *Store[T]) Get(key string) (T, bool) {
	now := s.nowFunc()
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !now.Before(entry.ExpiresAt) {
		var zero T
		return zero, false
	}
	return entry.Data, true
}

// Set unconditionally installs a fresh entry, bypassing any fetch. A ttl of
// zero or less uses the store default. Intended for optimistic writes.
func (s *Store[T]) Set(key string, data T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.nowFunc()
	entry := &Entry[T]{Data: data, Timestamp: now, ExpiresAt: now.Add(ttl)}

	s.mu.Lock()
	s.entries[key] = entry
	size := len(s.entries)
	s.mu.Unlock()

	s.metrics.RecordCacheSize(s.name, size)
}

// Invalidate removes the entry for one key. An in-flight fetch for the same
// key is not cancelled; it completes and repopulates the cache.
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	size := len(s.entries)
	s.mu.Unlock()

	s.metrics.RecordCacheSize(s.name, size)
}

// InvalidatePattern removes every entry whose key satisfies match.
// Runs in O(number of cached keys).
func (s *Store[T]) InvalidatePattern(match func(key string) bool) {
	s.mu.Lock()
	for key := range s.entries {
		if match(key) {
			delete(s.entries, key)
		}
	}
	size := len(s.entries)
	s.mu.Unlock()

	s.metrics.RecordCacheSize(s.name, size)
}

// Clear drops all entries and forgets all in-flight bookkeeping. Outstanding
// fetches are not cancelled; callers already joined to them still observe
// their settlement, they are just no longer candidates for de-duplication.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*Entry[T])
	s.pending = make(map[string]*fetchCall[T])
	s.mu.Unlock()

	s.metrics.RecordCacheSize(s.name, 0)
	s.metrics.RecordPendingFetches(s.name, 0)
}

// Stats returns a snapshot of cache and in-flight state for observability.
func (s *Store[T]) Stats() Stats {
	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	pending := len(s.pending)
	s.mu.RUnlock()

	return Stats{
		Size:      len(keys),
		Pending:   pending,
		Keys:      keys,
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Refreshes: s.refreshes.Load(),
	}
}

// startFetch registers an in-flight call for key, or joins the existing one.
// The second return value reports whether this caller owns the fetch.
func (s *Store[T]) startFetch(key string) (*fetchCall[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if call, exists := s.pending[key]; exists {
		return call, false
	}
	call := &fetchCall[T]{done: make(chan struct{})}
	s.pending[key] = call
	s.metrics.RecordPendingFetches(s.name, len(s.pending))
	return call, true
}

// finishFetch publishes the outcome, caches on success and releases waiters.
// The identity guard tolerates Clear having replaced the pending table while
// the fetch was running.
func (s *Store[T]) finishFetch(key string, call *fetchCall[T], val T, err error, ttl time.Duration) {
	s.mu.Lock()
	if err == nil {
		now := s.nowFunc()
		s.entries[key] = &Entry[T]{Data: val, Timestamp: now, ExpiresAt: now.Add(ttl)}
	}
	if s.pending[key] == call {
		delete(s.pending, key)
	}
	size := len(s.entries)
	pending := len(s.pending)
	s.mu.Unlock()

	s.metrics.RecordCacheSize(s.name, size)
	s.metrics.RecordPendingFetches(s.name, pending)

	call.val, call.err = val, err
	close(call.done)
}

// refreshInBackground kicks off a detached refresh unless a fetch for key is
// already underway. No caller awaits this path, so failures are swallowed.
func (s *Store[T]) refreshInBackground(key string, producer Fetcher[T], ttl time.Duration) {
	call, owner := s.startFetch(key)
	if !owner {
		return
	}

	s.refreshes.Add(1)
	s.metrics.RecordBackgroundRefresh(s.name)

	go func() {
		val, err := producer(context.Background())
		s.finishFetch(key, call, val, err, ttl)
		if err != nil {
			s.metrics.RecordBackgroundRefreshFailure(s.name)
			if s.logger != nil {
				s.logger.Warn("background refresh failed", "store", s.name, "key", key, "error", err.Error())
			}
			if s.refreshErr != nil {
				s.refreshErr(key, err)
			}
		}
	}()
}
