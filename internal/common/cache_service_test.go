package common

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyatlas/airports/internal/config"
)

func TestCacheService_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewCacheService(time.Minute, time.Minute)

	_, found := c.Get(ctx, "airport:1")
	assert.False(t, found)

	c.Set(ctx, "airport:1", []byte(`{"id":1}`), time.Minute)
	data, found := c.Get(ctx, "airport:1")
	require.True(t, found)
	assert.JSONEq(t, `{"id":1}`, string(data))

	require.NoError(t, c.InvalidateAll(ctx))
	_, found = c.Get(ctx, "airport:1")
	assert.False(t, found)

	// idempotent
	require.NoError(t, c.InvalidateAll(ctx))
	assert.Equal(t, "memory", c.Name())
}

func TestCacheService_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewCacheService(time.Minute, time.Minute)

	c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, found := c.Get(ctx, "k")
	assert.False(t, found)
}

func newTestRedisCache(t *testing.T, prefix string) (*RedisCacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc, err := NewRedisCacheService(context.Background(), client, prefix)
	require.NoError(t, err)
	return svc, mr
}

func TestRedisCacheService_SetGetWithPrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	svc, mr := newTestRedisCache(t, "airports-api:")

	svc.Set(ctx, "airport:iata:JFK", []byte(`{"id":1}`), 10*time.Minute)

	assert.True(t, mr.Exists("airports-api:airport:iata:JFK"))
	data, found := svc.Get(ctx, "airport:iata:JFK")
	require.True(t, found)
	assert.JSONEq(t, `{"id":1}`, string(data))

	ttl, err := svc.TTL(ctx, "airport:iata:JFK")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, ttl)

	mr.FastForward(11 * time.Minute)
	_, found = svc.Get(ctx, "airport:iata:JFK")
	assert.False(t, found)
}

func TestRedisCacheService_InvalidateAllOnlyTouchesPrefix(t *testing.T) {
	ctx := context.Background()
	svc, mr := newTestRedisCache(t, "airports-api:")

	for i := 0; i < 1200; i++ {
		svc.Set(ctx, AirportIDKey(int64(i)), []byte("x"), time.Minute)
	}
	require.NoError(t, mr.Set("someone-else:key", "keep"))

	require.NoError(t, svc.InvalidateAll(ctx))

	assert.Equal(t, []string{"someone-else:key"}, mr.Keys())
	_, found := svc.Get(ctx, AirportIDKey(5))
	assert.False(t, found)

	// idempotent
	require.NoError(t, svc.InvalidateAll(ctx))
}

func TestRedisCacheService_EmptyPrefixFlushesDB(t *testing.T) {
	ctx := context.Background()
	svc, mr := newTestRedisCache(t, "")

	svc.Set(ctx, "airports:stats", []byte("{}"), time.Minute)
	require.NoError(t, mr.Set("other", "x"))

	require.NoError(t, svc.InvalidateAll(ctx))
	assert.Empty(t, mr.Keys())
}

func TestRedisCacheService_BackendFailureIsAMiss(t *testing.T) {
	ctx := context.Background()
	svc, mr := newTestRedisCache(t, "p:")
	svc.Set(ctx, "k", []byte("v"), time.Minute)

	mr.Close()

	_, found := svc.Get(ctx, "k")
	assert.False(t, found)

	// must not panic or block past its timeout
	svc.Set(ctx, "k", []byte("v"), time.Minute)
	assert.Error(t, svc.Ping(ctx))
}

func TestRedisCacheService_SetSurvivesCancelledRequest(t *testing.T) {
	svc, mr := newTestRedisCache(t, "p:")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Set(ctx, "k", []byte("v"), time.Minute)

	assert.True(t, mr.Exists("p:k"))
}

func TestNewResponseCache_FallsBackToMemory(t *testing.T) {
	c := NewResponseCache(context.Background(),
		config.CacheConfig{Backend: "redis", KeyPrefix: "p:"},
		config.RedisConfig{Host: "127.0.0.1", Port: 1},
	)
	assert.Equal(t, "memory", c.Name())
}

func TestNewResponseCache_UsesRedisWhenReachable(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewResponseCache(context.Background(),
		config.CacheConfig{Backend: "redis", KeyPrefix: "p:"},
		config.RedisConfig{Host: mr.Host(), Port: atoi(t, mr.Port())},
	)
	defer c.Close()
	assert.Equal(t, "redis", c.Name())
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]\\`, escapeGlob(`a*b?c[d]\`))
}
