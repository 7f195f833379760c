package fetchkit

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for fetchkit's coordination
// primitives. A nil collector is valid and records nothing, so instrumented
// code never needs nil checks. Safe for concurrent use.
type MetricsCollector struct {
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheSize   *prometheus.GaugeVec

	fetchesTotal   *prometheus.CounterVec
	pendingFetches *prometheus.GaugeVec
	dedupShares    *prometheus.CounterVec

	backgroundRefreshes       *prometheus.CounterVec
	backgroundRefreshFailures *prometheus.CounterVec

	retryAttempts *prometheus.CounterVec

	batchFlushes *prometheus.CounterVec
	batchSize    prometheus.Histogram
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer, typically a dedicated *prometheus.Registry in tests.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchkit_cache_hits_total",
				Help: "Total number of cache hits, including stale hits served under revalidation",
			},
			[]string{"store"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchkit_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"store"},
		),
		cacheSize: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fetchkit_cache_size",
				Help: "Current number of entries in the cache",
			},
			[]string{"store"},
		),
		fetchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchkit_fetches_total",
				Help: "Total number of producer invocations by outcome",
			},
			[]string{"store", "outcome"},
		),
		pendingFetches: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fetchkit_pending_fetches",
				Help: "Number of fetches currently in flight",
			},
			[]string{"store"},
		),
		dedupShares: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchkit_dedup_shares_total",
				Help: "Total number of callers that joined an in-flight fetch instead of issuing their own",
			},
			[]string{"store"},
		),
		backgroundRefreshes: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchkit_background_refreshes_total",
				Help: "Total number of detached stale-while-revalidate refreshes started",
			},
			[]string{"store"},
		),
		backgroundRefreshFailures: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchkit_background_refresh_failures_total",
				Help: "Total number of background refreshes that failed",
			},
			[]string{"store"},
		),
		retryAttempts: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchkit_retry_attempts_total",
				Help: "Total number of retry attempts",
			},
			[]string{"attempt"},
		),
		batchFlushes: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchkit_batch_flushes_total",
				Help: "Total number of batch flushes by trigger (size or window)",
			},
			[]string{"trigger"},
		),
		batchSize: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fetchkit_batch_size",
				Help:    "Number of keys per flushed batch",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
	}
}

// RecordCacheHit increments the cache hit counter.
func (mc *MetricsCollector) RecordCacheHit(store string) {
	if mc == nil {
		return
	}
	mc.cacheHits.WithLabelValues(store).Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (mc *MetricsCollector) RecordCacheMiss(store string) {
	if mc == nil {
		return
	}
	mc.cacheMisses.WithLabelValues(store).Inc()
}

// RecordCacheSize sets the cache size gauge.
func (mc *MetricsCollector) RecordCacheSize(store string, size int) {
	if mc == nil {
		return
	}
	mc.cacheSize.WithLabelValues(store).Set(float64(size))
}

// RecordFetch records one settled producer invocation.
func (mc *MetricsCollector) RecordFetch(store, outcome string) {
	if mc == nil {
		return
	}
	mc.fetchesTotal.WithLabelValues(store, outcome).Inc()
}

// RecordPendingFetches sets the in-flight fetch gauge.
func (mc *MetricsCollector) RecordPendingFetches(store string, pending int) {
	if mc == nil {
		return
	}
	mc.pendingFetches.WithLabelValues(store).Set(float64(pending))
}

// RecordDedupShare increments the de-dup share counter.
func (mc *MetricsCollector) RecordDedupShare(store string) {
	if mc == nil {
		return
	}
	mc.dedupShares.WithLabelValues(store).Inc()
}

// RecordBackgroundRefresh increments the background refresh counter.
func (mc *MetricsCollector) RecordBackgroundRefresh(store string) {
	if mc == nil {
		return
	}
	mc.backgroundRefreshes.WithLabelValues(store).Inc()
}

// RecordBackgroundRefreshFailure increments the refresh failure counter.
func (mc *MetricsCollector) RecordBackgroundRefreshFailure(store string) {
	if mc == nil {
		return
	}
	mc.backgroundRefreshFailures.WithLabelValues(store).Inc()
}

// RecordRetryAttempt increments the retry counter for an attempt.
func (mc *MetricsCollector) RecordRetryAttempt(attempt int) {
	if mc == nil {
		return
	}
	mc.retryAttempts.WithLabelValues(strconv.Itoa(attempt)).Inc()
}

// RecordBatchFlush records one flush and its size.
func (mc *MetricsCollector) RecordBatchFlush(trigger string, size int) {
	if mc == nil {
		return
	}
	mc.batchFlushes.WithLabelValues(trigger).Inc()
	mc.batchSize.Observe(float64(size))
}
