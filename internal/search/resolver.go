// internal/search/resolver.go
package search

import (
	"context"
	stderrors "errors"

	"package-provider/internal/common/logger"
	"package-provider/internal/common/metrics"
	"package-provider/internal/models"
)

var errEmptyHotelResult = stderrors.New("hotels endpoint returned no records")

// HotelFetcher loads metadata for a single hotel from upstream.
type HotelFetcher interface {
	FetchHotel(ctx context.Context, stage, hotelKey string) (*models.HotelMetadata, error)
}

// Resolver serves hotel metadata from the cache, fetching on a miss.
type Resolver struct {
	fetcher HotelFetcher
	cache   *HotelInfoCache
	logger  logger.Logger
}

func NewResolver(fetcher HotelFetcher, cache *HotelInfoCache, log logger.Logger) *Resolver {
	if cache == nil {
		cache = NewHotelInfoCache()
	}
	return &Resolver{fetcher: fetcher, cache: cache, logger: log}
}

// Resolve returns metadata for hotelKey. Failures leave the cache untouched.
func (r *Resolver) Resolve(ctx context.Context, params models.SearchParameters, hotelKey string) (*models.HotelMetadata, error) {
	if hotel, ok := r.cache.Get(hotelKey); ok {
		metrics.HotelCacheLookups.WithLabelValues("hit").Inc()
		return hotel, nil
	}
	metrics.HotelCacheLookups.WithLabelValues("miss").Inc()

	hotel, err := r.fetcher.FetchHotel(ctx, ResolveStage(params.Stage), hotelKey)
	if err != nil {
		return nil, err
	}

	r.cache.Set(hotelKey, hotel)
	r.logger.Debug("hotel metadata cached", map[string]interface{}{
		"hotelKey": hotelKey,
		"cached":   r.cache.Len(),
	})
	return hotel, nil
}
