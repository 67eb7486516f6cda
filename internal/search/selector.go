// internal/search/selector.go
package search

import "package-provider/internal/models"

// SelectCheapest returns the lowest-priced offer. Ties keep the earliest.
func SelectCheapest(offers []models.RawOffer) (models.RawOffer, bool) {
	if len(offers) == 0 {
		return models.RawOffer{}, false
	}
	best := 0
	for i := 1; i < len(offers); i++ {
		if offers[i].Price < offers[best].Price {
			best = i
		}
	}
	return offers[best], true
}
