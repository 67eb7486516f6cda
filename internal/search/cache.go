// internal/search/cache.go
package search

import (
	"sync"

	"package-provider/internal/models"
)

// HotelInfoCache holds hotel metadata for the life of the process. It is
// shared by every run the process serves, never invalidated and never
// persisted. Concurrent writes for one key are last-write-wins.
type HotelInfoCache struct {
	mu      sync.RWMutex
	entries map[string]*models.HotelMetadata
}

func NewHotelInfoCache() *HotelInfoCache {
	return &HotelInfoCache{entries: make(map[string]*models.HotelMetadata)}
}

func (c *HotelInfoCache) Get(hotelKey string) (*models.HotelMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.entries[hotelKey]
	return h, ok
}

func (c *HotelInfoCache) Set(hotelKey string, hotel *models.HotelMetadata) {
	if hotel == nil {
		return
	}
	c.mu.Lock()
	c.entries[hotelKey] = hotel
	c.mu.Unlock()
}

func (c *HotelInfoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
