package fetchkit

import (
	"context"
	"testing"
	"time"
)

func TestStoreDefaults(t *testing.T) {
	store := NewStore[int]()
	if store.defaultTTL != DefaultTTL {
		t.Errorf("default TTL = %v, want %v", store.defaultTTL, DefaultTTL)
	}
	if store.name != "default" {
		t.Errorf("default name = %q, want %q", store.name, "default")
	}
	if store.metrics != nil {
		t.Error("metrics should be disabled by default")
	}
	if store.logger != nil {
		t.Error("logger should be unset by default")
	}
}

func TestStoreOptions(t *testing.T) {
	logger := NewSimpleLogger()
	store := NewStore[int](
		WithName("profiles"),
		WithDefaultTTL(time.Minute),
		WithLogger(logger),
	)
	if store.name != "profiles" {
		t.Errorf("name = %q, want %q", store.name, "profiles")
	}
	if store.defaultTTL != time.Minute {
		t.Errorf("TTL = %v, want %v", store.defaultTTL, time.Minute)
	}
	if store.logger != logger {
		t.Error("logger option not applied")
	}
}

func TestWithDefaultTTLIgnoresNonPositive(t *testing.T) {
	store := NewStore[int](WithDefaultTTL(-time.Second))
	if store.defaultTTL != DefaultTTL {
		t.Errorf("TTL = %v, non-positive values should keep the default", store.defaultTTL)
	}
}

func TestFetchOptions(t *testing.T) {
	fo := fetchOptions{ttl: DefaultTTL}
	for _, opt := range []FetchOption{
		WithTTL(time.Second),
		WithForceRefresh(),
		WithStaleWhileRevalidate(),
	} {
		opt(&fo)
	}

	if fo.ttl != time.Second {
		t.Errorf("ttl = %v, want 1s", fo.ttl)
	}
	if !fo.forceRefresh || !fo.staleWhileRevalidate {
		t.Errorf("flags = %+v, want both set", fo)
	}
}

func TestRetryDefaults(t *testing.T) {
	cfg := defaultRetryConfig()
	if cfg.maxRetries != DefaultMaxRetries {
		t.Errorf("maxRetries = %d, want %d", cfg.maxRetries, DefaultMaxRetries)
	}
	if cfg.initialDelay != DefaultInitialDelay {
		t.Errorf("initialDelay = %v, want %v", cfg.initialDelay, DefaultInitialDelay)
	}
	if cfg.maxDelay != DefaultMaxDelay {
		t.Errorf("maxDelay = %v, want %v", cfg.maxDelay, DefaultMaxDelay)
	}
	if cfg.factor != DefaultBackoffFactor {
		t.Errorf("factor = %v, want %v", cfg.factor, DefaultBackoffFactor)
	}
	if cfg.jitter != DefaultJitter {
		t.Errorf("jitter = %v, want %v", cfg.jitter, DefaultJitter)
	}
	if !cfg.condition(nil, 0) {
		t.Error("default condition should always retry")
	}
}

func TestWithJitterClamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0.3, 0.3},
		{1.5, 1},
	}
	for _, tt := range tests {
		cfg := defaultRetryConfig()
		WithJitter(tt.in)(&cfg)
		if cfg.jitter != tt.want {
			t.Errorf("WithJitter(%v) = %v, want %v", tt.in, cfg.jitter, tt.want)
		}
	}
}

func TestBatcherConfigDefaults(t *testing.T) {
	batcher := NewBatcher(BatcherConfig[string, int]{
		BatchFn: func(ctx context.Context, keys []string) (map[string]int, error) {
			return nil, nil
		},
	})
	if batcher.cfg.MaxBatchSize != DefaultMaxBatchSize {
		t.Errorf("MaxBatchSize = %d, want %d", batcher.cfg.MaxBatchSize, DefaultMaxBatchSize)
	}
	if batcher.cfg.MaxWait != DefaultMaxWait {
		t.Errorf("MaxWait = %v, want %v", batcher.cfg.MaxWait, DefaultMaxWait)
	}
}
