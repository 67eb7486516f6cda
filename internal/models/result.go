// internal/models/result.go
package models

const ResultTypePackage = "package"

// MappedResult is the client-facing package record.
type MappedResult struct {
	Type         string       `json:"type"`
	ID           string       `json:"id"`
	URL          string       `json:"url,omitempty"`
	PackageOffer PackageOffer `json:"packageOffer"`
}

type PackageOffer struct {
	PriorityCode    string                 `json:"priorityCode"`
	Hotel           Hotel                  `json:"hotel"`
	Flights         Flights                `json:"flights"`
	Price           Price                  `json:"price"`
	Provider        Provider               `json:"provider"`
	Nights          int                    `json:"nights"`
	Amenities       map[string]interface{} `json:"amenities"`
	DestinationCode string                 `json:"destinationCode"`
	DestinationName string                 `json:"destinationName"`
	DepartureCode   string                 `json:"departureCode"`
}

type Hotel struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Images      HotelImages `json:"images"`
	StarRating  float64     `json:"starRating"`
	Place       Place       `json:"place"`
	Description string      `json:"description"`
	Concept     Concept     `json:"concept"`
}

type HotelImages struct {
	Small []Image `json:"small"`
	Large []Image `json:"large"`
}

// Image keeps displaySequence and primary as explicit nulls for the client schema.
type Image struct {
	Type            string `json:"type"`
	DisplaySequence *int   `json:"displaySequence"`
	Primary         *bool  `json:"primary"`
	URI             string `json:"uri"`
}

type Place struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

type Flights struct {
	Outbound []FlightRecord `json:"outbound"`
	Inbound  []FlightRecord `json:"inbound"`
}

type FlightRecord struct {
	Number    string         `json:"number"`
	Departure FlightEndpoint `json:"departure"`
	Arrival   FlightEndpoint `json:"arrival"`
	Carrier   Carrier        `json:"carrier"`
}

type FlightEndpoint struct {
	LocalDateTime string  `json:"localDateTime"`
	Airport       Airport `json:"airport"`
}

type Airport struct {
	Code string  `json:"code"`
	Name *string `json:"name,omitempty"`
}

type Carrier struct {
	Code string `json:"code"`
}

type Price struct {
	Total         float64  `json:"total"`
	PerPerson     string   `json:"perPerson"`
	Currency      string   `json:"currency"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
}

type Provider struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	DeepLink  string `json:"deepLink"`
}
