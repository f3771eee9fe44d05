package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchKey(t *testing.T) {
	date := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "cache:search:S1:S3:2025-03-14:eco", SearchKey("S1", "S3", date, "eco"))
	assert.Equal(t, "cache:search:S1:S3:2025-03-14:*", SearchKey("S1", "S3", date, ""))
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)
	key := SearchKey("S1", "S3", time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), "")

	_, ok, err := c.GetItineraries(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	its := []domain.Itinerary{{ScheduleID: "sch-1", Distance: 25}}
	require.NoError(t, c.SetItineraries(ctx, key, its))
	its[0].Distance = 99

	got, ok, err := c.GetItineraries(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 25.0, got[0].Distance)
}

func TestMemoryCache_EmptyResultIsAHit(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	require.NoError(t, c.SetItineraries(ctx, "cache:search:a", []domain.Itinerary{}))
	got, ok, err := c.GetItineraries(ctx, "cache:search:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestMemoryCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	require.NoError(t, c.SetItineraries(ctx, "cache:search:a", []domain.Itinerary{{ScheduleID: "1"}}))
	require.NoError(t, c.SetItineraries(ctx, "cache:search:b", []domain.Itinerary{{ScheduleID: "2"}}))
	require.NoError(t, c.InvalidateItineraries(ctx))

	_, ok, _ := c.GetItineraries(ctx, "cache:search:a")
	assert.False(t, ok)
	_, ok, _ = c.GetItineraries(ctx, "cache:search:b")
	assert.False(t, ok)
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, time.Minute)
	assert.NotNil(t, c)
	assert.Equal(t, time.Minute, c.searchTTL)
	assert.NoError(t, c.Close())
}
