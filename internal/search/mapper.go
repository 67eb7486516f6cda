// internal/search/mapper.go
package search

import (
	"fmt"
	"math"
	"strings"

	"package-provider/internal/common/errors"
	"package-provider/internal/models"
	"package-provider/pkg/imagemap"
)

const (
	DefaultProviderID = "lambda-searcher"

	unavailable   = "unavailable"
	unknownFlight = "na"
)

// Mapper converts a selected offer and its hotel into the client schema.
type Mapper struct {
	images     imagemap.ImageMap
	providerID string
}

func NewMapper(images imagemap.ImageMap, providerID string) *Mapper {
	if providerID == "" {
		providerID = DefaultProviderID
	}
	return &Mapper{images: images, providerID: providerID}
}

// Map returns nil without error when hotel is nil. An offer without an
// outbound route is a mapping error.
func (m *Mapper) Map(params models.SearchParameters, offer models.RawOffer, hotel *models.HotelMetadata) (*models.MappedResult, error) {
	if hotel == nil {
		return nil, nil
	}

	id := hotel.WvID
	if id == "" && len(params.HotelKeys) == 1 {
		id = params.HotelKeys[0]
	}

	outbound := listFlights(models.RouteOutbound, offer.Flights)
	if len(outbound) == 0 {
		return nil, errors.NewMappingError(id, "offer has no outbound route")
	}
	inbound := listFlights(models.RouteInbound, offer.Flights)

	concept := models.Concept{}
	if hotel.Concept != nil {
		concept = *hotel.Concept
	}

	return &models.MappedResult{
		Type: models.ResultTypePackage,
		ID:   id,
		URL:  params.SearchID + "/" + id,
		PackageOffer: models.PackageOffer{
			PriorityCode: unavailable,
			Hotel: models.Hotel{
				ID:   id,
				Name: hotel.Name,
				Images: models.HotelImages{
					Small: smallImages(hotel),
					Large: largeImages(m.images, hotel),
				},
				StarRating: starRating(hotel.Rating),
				Place: models.Place{
					Name:    hotel.Geographical.ResortName,
					Country: hotel.Geographical.CountryName,
					Region:  hotel.Geographical.AreaName,
				},
				Description: hotel.Description,
				Concept:     concept,
			},
			Flights: models.Flights{Outbound: outbound, Inbound: inbound},
			Price: models.Price{
				Total:         offer.Price,
				PerPerson:     PerPerson(offer.Price, travelers(params, offer)),
				Currency:      offer.CurrencyCode,
				DiscountPrice: offer.Discount,
			},
			Provider: models.Provider{
				ID:        m.providerID,
				Reference: hotel.ProductCode,
				DeepLink:  offer.TripURL,
			},
			Nights:          offer.Duration,
			Amenities:       FormatAmenities(hotel.Facts),
			DestinationCode: outbound[0].Arrival.Airport.Code,
			DestinationName: unavailable,
			DepartureCode:   outbound[0].Departure.Airport.Code,
		},
	}, nil
}

// PerPerson rounds total/travelers up to a whole unit. Zero travelers
// divides by one.
func PerPerson(total float64, travelers int) string {
	if travelers <= 0 {
		travelers = 1
	}
	return fmt.Sprintf("%.2f", math.Ceil(total/float64(travelers)))
}

// travelers prefers the head count the offer was priced for.
func travelers(params models.SearchParameters, offer models.RawOffer) int {
	if n := offer.Adults + offer.Children; n > 0 {
		return n
	}
	return params.Travelers()
}

func starRating(r models.HotelRating) float64 {
	if r.GuestRating != nil && *r.GuestRating != 0 {
		return *r.GuestRating
	}
	if r.DoubledRating != nil {
		return *r.DoubledRating / 2
	}
	return 0
}

func listFlights(sequence int, flights []models.Flight) []models.FlightRecord {
	out := []models.FlightRecord{}
	for _, f := range flights {
		for _, route := range f.Routes {
			if route.RouteSequence != sequence || len(route.Legs) == 0 {
				continue
			}
			first := route.Legs[0]
			last := route.Legs[len(route.Legs)-1]

			carriers := make([]string, len(route.Legs))
			for i, leg := range route.Legs {
				carriers[i] = leg.CarrierCode
			}

			departureName := ""
			out = append(out, models.FlightRecord{
				Number: unknownFlight,
				Departure: models.FlightEndpoint{
					LocalDateTime: first.DepartureDateTime,
					Airport:       models.Airport{Code: first.DepartureCode, Name: &departureName},
				},
				Arrival: models.FlightEndpoint{
					LocalDateTime: last.ArrivalTime,
					Airport:       models.Airport{Code: last.DestinationCode},
				},
				Carrier: models.Carrier{Code: strings.Join(carriers, ",")},
			})
		}
	}
	return out
}
