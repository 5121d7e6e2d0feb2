package common

import (
	"context"
	"time"
)

// CacheInterface defines the contract for response cache backends.
// Implementations never surface backend failures from Get or Set: a failed
// Get is a miss and a failed Set is logged and dropped.
type CacheInterface interface {
	// Get returns the serialized value for key and true on a hit
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for duration
	Set(ctx context.Context, key string, value []byte, duration time.Duration)

	// InvalidateAll drops every entry owned by this cache
	InvalidateAll(ctx context.Context) error

	// Ping reports backend reachability for health checks
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and health output
	Name() string

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}
