package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyatlas/airports/internal/metrics"
	"skyatlas/airports/internal/models/dtos"
)

func TestGetOrLoad_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c := NewCacheService(time.Minute, time.Minute)
	m := metrics.NewNopRegistry()

	calls := 0
	loader := func(context.Context) (*dtos.AirportResponse, error) {
		calls++
		return &dtos.AirportResponse{ID: 3, Name: "Heathrow"}, nil
	}

	first, err := GetOrLoad(ctx, c, m, AirportIDKey(3), time.Minute, loader)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, m, AirportIDKey(3), time.Minute, loader)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("airport_id")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("airport_id")))
}

func TestGetOrLoad_NilIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewCacheService(time.Minute, time.Minute)
	m := metrics.NewNopRegistry()

	calls := 0
	loader := func(context.Context) (*dtos.AirportResponse, error) {
		calls++
		return nil, nil
	}

	for i := 0; i < 2; i++ {
		got, err := GetOrLoad(ctx, c, m, AirportIDKey(9), time.Minute, loader)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, 2, calls)
	_, found := c.Get(ctx, AirportIDKey(9))
	assert.False(t, found)
}

func TestGetOrLoad_LoaderErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	_, err := GetOrLoad(context.Background(), NewCacheService(time.Minute, time.Minute), metrics.NewNopRegistry(),
		StatsKey(), time.Minute,
		func(context.Context) (*dtos.StatsResponse, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestGetOrLoad_CorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	c := NewCacheService(time.Minute, time.Minute)
	c.Set(ctx, StatsKey(), []byte("not json"), time.Minute)

	got, err := GetOrLoad(ctx, c, metrics.NewNopRegistry(), StatsKey(), time.Minute,
		func(context.Context) (*dtos.StatsResponse, error) { return &dtos.StatsResponse{Total: 7}, nil })
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Total)

	// and the entry was repaired
	data, found := c.Get(ctx, StatsKey())
	require.True(t, found)
	assert.Contains(t, string(data), `"total":7`)
}
