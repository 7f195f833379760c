package fetchkit

import (
	"time"

	"github.com/ammujacic/fetchkit/internal/backoff"
)

// Defaults applied by NewStore, Retry and NewBatcher.
const (
	DefaultTTL           = 5 * time.Minute
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = 1 * time.Second
	DefaultMaxDelay      = 30 * time.Second
	DefaultBackoffFactor = 2.0
	DefaultJitter        = 0.1
	DefaultMaxBatchSize  = 50
	DefaultMaxWait       = 10 * time.Millisecond
)

type storeConfig struct {
	name       string
	defaultTTL time.Duration
	logger     Logger
	metrics    *MetricsCollector
	refreshErr RefreshErrorFunc
	nowFunc    func() time.Time
}

// StoreOption configures a Store at construction time.
type StoreOption func(*storeConfig)

// WithName sets the store name used as the metrics label.
func WithName(name string) StoreOption {
	return func(cfg *storeConfig) {
		cfg.name = name
	}
}

// WithDefaultTTL sets the time-to-live applied when a fetch does not override it.
func WithDefaultTTL(ttl time.Duration) StoreOption {
	return func(cfg *storeConfig) {
		if ttl > 0 {
			cfg.defaultTTL = ttl
		}
	}
}

// WithLogger sets the logger used for swallowed background refresh failures.
func WithLogger(logger Logger) StoreOption {
	return func(cfg *storeConfig) {
		cfg.logger = logger
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() StoreOption {
	return func(cfg *storeConfig) {
		cfg.metrics = NewMetricsCollector()
	}
}

// WithCollector sets a custom metrics collector, typically one created with
// NewMetricsCollectorWithRegistry and shared across primitives.
func WithCollector(collector *MetricsCollector) StoreOption {
	return func(cfg *storeConfig) {
		cfg.metrics = collector
	}
}

// WithRefreshErrorFunc installs a hook observing background refresh failures,
// which are otherwise only logged.
func WithRefreshErrorFunc(fn RefreshErrorFunc) StoreOption {
	return func(cfg *storeConfig) {
		cfg.refreshErr = fn
	}
}

type fetchOptions struct {
	ttl                  time.Duration
	forceRefresh         bool
	staleWhileRevalidate bool
}

// FetchOption configures a single GetOrFetch call.
type FetchOption func(*fetchOptions)

// WithTTL overrides the store's default TTL for this fetch.
func WithTTL(ttl time.Duration) FetchOption {
	return func(fo *fetchOptions) {
		if ttl > 0 {
			fo.ttl = ttl
		}
	}
}

// WithForceRefresh bypasses the cached entry and always fetches.
func WithForceRefresh() FetchOption {
	return func(fo *fetchOptions) {
		fo.forceRefresh = true
	}
}

// WithStaleWhileRevalidate serves an expired entry younger than twice its TTL
// immediately while refreshing it in the background.
func WithStaleWhileRevalidate() FetchOption {
	return func(fo *fetchOptions) {
		fo.staleWhileRevalidate = true
	}
}

type retryConfig struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	factor       float64
	jitter       float64
	condition    RetryCondition
	strategy     backoff.Strategy
	budget       *RetryBudget
	metrics      *MetricsCollector
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxRetries:   DefaultMaxRetries,
		initialDelay: DefaultInitialDelay,
		maxDelay:     DefaultMaxDelay,
		factor:       DefaultBackoffFactor,
		jitter:       DefaultJitter,
		condition:    func(error, int) bool { return true },
		strategy:     backoff.ExponentialJitterStrategy{},
	}
}

// RetryOption configures a single Retry call.
type RetryOption func(*retryConfig)

// WithMaxRetries sets the maximum number of retry attempts after the initial one.
func WithMaxRetries(n int) RetryOption {
	return func(cfg *retryConfig) {
		if n >= 0 {
			cfg.maxRetries = n
		}
	}
}

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) RetryOption {
	return func(cfg *retryConfig) {
		if d > 0 {
			cfg.initialDelay = d
		}
	}
}

// WithMaxDelay caps the computed backoff delay.
func WithMaxDelay(d time.Duration) RetryOption {
	return func(cfg *retryConfig) {
		if d > 0 {
			cfg.maxDelay = d
		}
	}
}

// WithBackoffFactor sets the exponential growth factor between attempts.
func WithBackoffFactor(f float64) RetryOption {
	return func(cfg *retryConfig) {
		if f > 0 {
			cfg.factor = f
		}
	}
}

// WithJitter sets the jitter fraction of the computed delay (0.0 to 1.0).
func WithJitter(f float64) RetryOption {
	return func(cfg *retryConfig) {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		cfg.jitter = f
	}
}

// WithRetryCondition sets the predicate consulted before each retry.
func WithRetryCondition(fn RetryCondition) RetryOption {
	return func(cfg *retryConfig) {
		if fn != nil {
			cfg.condition = fn
		}
	}
}

// WithBackoffStrategy selects the backoff algorithm.
func WithBackoffStrategy(strategy backoff.Strategy) RetryOption {
	return func(cfg *retryConfig) {
		if strategy != nil {
			cfg.strategy = strategy
		}
	}
}

// WithRetryBudget applies a shared windowed cap on retry attempts.
func WithRetryBudget(budget *RetryBudget) RetryOption {
	return func(cfg *retryConfig) {
		cfg.budget = budget
	}
}

// WithRetryMetrics records retry attempts on the given collector.
func WithRetryMetrics(collector *MetricsCollector) RetryOption {
	return func(cfg *retryConfig) {
		cfg.metrics = collector
	}
}
