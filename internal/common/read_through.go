package common

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"skyatlas/airports/internal/logging"
	"skyatlas/airports/internal/metrics"
)

// GetOrLoad is the read-through path shared by every cached read. On a hit
// the cached JSON is decoded into T. On a miss loader runs; a non-nil result
// is stored for ttl, a nil result is returned without being cached.
func GetOrLoad[T any](
	ctx context.Context,
	cache CacheInterface,
	metricsReg *metrics.MetricsRegistry,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (*T, error),
) (*T, error) {
	family := KeyFamily(key)

	if data, found := cache.Get(ctx, key); found {
		var val T
		err := json.Unmarshal(data, &val)
		if err == nil {
			metricsReg.CacheHitsTotal.WithLabelValues(family).Inc()
			return &val, nil
		}
		logging.Warn("Discarding undecodable cache entry", "key", key, "error", err.Error())
	}
	metricsReg.CacheMissesTotal.WithLabelValues(family).Inc()

	val, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}

	data, err := json.Marshal(val)
	if err != nil {
		logging.Warn("Failed to encode cache entry", "key", key, "error", err.Error())
		return val, nil
	}
	cache.Set(ctx, key, data, ttl)
	return val, nil
}
