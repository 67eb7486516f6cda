// internal/models/offer.go
package models

// RawOffer is one priced package as returned by the upstream trips endpoint.
type RawOffer struct {
	Price        float64  `json:"price"`
	PaxPrice     float64  `json:"paxPrice,omitempty"`
	CurrencyCode string   `json:"currencyCode"`
	Duration     int      `json:"duration"`
	Flights      []Flight `json:"flights"`
	TripURL      string   `json:"tripUrl"`
	Discount     *float64 `json:"discount,omitempty"`
	Adults       int      `json:"adults,omitempty"`
	Children     int      `json:"children,omitempty"`
	HotelID      string   `json:"wvId,omitempty"`
}

type Flight struct {
	Routes []Route `json:"routes"`
}

type Route struct {
	RouteSequence int   `json:"routeSequence"`
	Legs          []Leg `json:"legs"`
}

type Leg struct {
	DepartureDateTime string `json:"departureDateTime"`
	DepartureCode     string `json:"departureCode"`
	ArrivalTime       string `json:"arrivalTime"`
	DestinationCode   string `json:"destinationCode"`
	CarrierCode       string `json:"carrierCode"`
}

const (
	RouteOutbound = 1
	RouteInbound  = 2
)

type OffersResponse struct {
	Result    []RawOffer `json:"result"`
	TotalHits int        `json:"totalHits,omitempty"`
}
