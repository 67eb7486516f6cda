// internal/models/hotel.go
package models

import "encoding/json"

// HotelMetadata is the descriptive record from the upstream hotels endpoint.
// Facts stays raw because upstream does not always send an array.
type HotelMetadata struct {
	WvID         string          `json:"wvId"`
	Name         string          `json:"name"`
	Images       []HotelImage    `json:"images"`
	Rating       HotelRating     `json:"rating"`
	Geographical Geographical    `json:"geographical"`
	Facts        json.RawMessage `json:"facts,omitempty"`
	ProductCode  string          `json:"productCode"`
	Description  string          `json:"description"`
	Concept      *Concept        `json:"concept,omitempty"`
}

type HotelImage struct {
	URL string `json:"url"`
}

type HotelRating struct {
	GuestRating   *float64 `json:"guestRating,omitempty"`
	DoubledRating *float64 `json:"doubledRating,omitempty"`
}

type Geographical struct {
	ResortName  string `json:"resortName"`
	CountryName string `json:"countryName"`
	AreaName    string `json:"areaName"`
}

type Concept struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Fact is one amenity entry. ID may be a string or a number upstream.
type Fact struct {
	ID    interface{} `json:"id"`
	Name  string      `json:"name,omitempty"`
	Value interface{} `json:"value"`
}

type HotelsResponse struct {
	Result []HotelMetadata `json:"result"`
}
