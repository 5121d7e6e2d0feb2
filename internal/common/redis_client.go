package common

import (
	"time"

	"github.com/redis/go-redis/v9"

	"skyatlas/airports/internal/config"
	"skyatlas/airports/internal/logging"
)

// NewRedisClient builds a client from configuration. It does not connect;
// NewRedisCacheService pings before the client is used.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	logging.Info("Initializing Redis client", "addr", cfg.Addr(), "db", cfg.DB)

	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}
