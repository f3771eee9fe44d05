package cache

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps search results in process. It is used when no Redis address is configured.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(searchTTL time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(searchTTL, 2*searchTTL)}
}

func (c *MemoryCache) GetItineraries(_ context.Context, key string) ([]domain.Itinerary, bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	cached := v.([]domain.Itinerary)
	out := make([]domain.Itinerary, len(cached))
	copy(out, cached)
	return out, true, nil
}

func (c *MemoryCache) SetItineraries(_ context.Context, key string, itineraries []domain.Itinerary) error {
	stored := make([]domain.Itinerary, len(itineraries))
	copy(stored, itineraries)
	c.store.SetDefault(key, stored)
	return nil
}

func (c *MemoryCache) InvalidateItineraries(_ context.Context) error {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, searchPrefix) {
			c.store.Delete(key)
		}
	}
	return nil
}
