package common

import (
	"context"
	"time"

	"skyatlas/airports/internal/config"
	"skyatlas/airports/internal/logging"
)

// NewResponseCache picks the configured backend. When Redis is selected but
// unreachable the service starts on the in-process cache instead of failing.
func NewResponseCache(ctx context.Context, cacheCfg config.CacheConfig, redisCfg config.RedisConfig) CacheInterface {
	if cacheCfg.Backend == "memory" {
		logging.Info("Using in-memory response cache")
		return NewCacheService(5*time.Minute, 10*time.Minute)
	}

	client := NewRedisClient(redisCfg)
	svc, err := NewRedisCacheService(ctx, client, cacheCfg.KeyPrefix)
	if err != nil {
		_ = client.Close()
		logging.Warn("Redis unavailable, falling back to in-memory cache",
			"addr", redisCfg.Addr(),
			"error", err.Error(),
		)
		return NewCacheService(5*time.Minute, 10*time.Minute)
	}

	logging.Info("Using Redis response cache", "addr", redisCfg.Addr(), "prefix", cacheCfg.KeyPrefix)
	return svc
}
