// internal/search/images.go
package search

import (
	"package-provider/internal/models"
	"package-provider/pkg/imagemap"
)

const (
	imageContentType = "image/jpeg"
	PlaceholderImage = "http://images1.spies.dk/images/SiteID11/SitePage/hotelbillede_mangler_975_350.jpg"
)

func newImage(uri string) models.Image {
	return models.Image{Type: imageContentType, URI: uri}
}

// smallImages always come from the hotel record.
func smallImages(hotel *models.HotelMetadata) []models.Image {
	out := make([]models.Image, 0, len(hotel.Images))
	for _, img := range hotel.Images {
		out = append(out, newImage(img.URL))
	}
	return out
}

// largeImages prefers the precomputed map, then the hotel record, then a
// single placeholder.
func largeImages(images imagemap.ImageMap, hotel *models.HotelMetadata) []models.Image {
	if urls := images.Lookup(hotel.WvID); len(urls) > 0 {
		out := make([]models.Image, 0, len(urls))
		for _, u := range urls {
			out = append(out, newImage(u))
		}
		return out
	}
	if len(hotel.Images) > 0 {
		return smallImages(hotel)
	}
	return []models.Image{newImage(PlaceholderImage)}
}
