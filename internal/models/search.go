// internal/models/search.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SNSEvent is the notification envelope a search request arrives in.
type SNSEvent struct {
	Records []SNSRecord `json:"Records"`
}

type SNSRecord struct {
	EventSource string          `json:"EventSource,omitempty"`
	Sns         SNSNotification `json:"Sns"`
}

type SNSNotification struct {
	MessageID string `json:"MessageId,omitempty"`
	TopicArn  string `json:"TopicArn,omitempty"`
	Message   string `json:"Message"`
}

// SearchMessage is the JSON document carried in the notification body.
type SearchMessage struct {
	Context SearchContext  `json:"context"`
	Query   *SearchQuery   `json:"query,omitempty"`
	Content *SearchContent `json:"content,omitempty"`
}

type SearchContext struct {
	SearchID     string `json:"searchId"`
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
}

type SearchQuery struct {
	Passengers        []Passenger   `json:"passengers,omitempty"`
	TravelPeriod      *TravelPeriod `json:"travelPeriod,omitempty"`
	DepartureAirports []string      `json:"departureAirports,omitempty"`
}

type Passenger struct {
	Birthday string `json:"birthday,omitempty"`
}

type TravelPeriod struct {
	DepartureBetween []string      `json:"departureBetween,omitempty"`
	Nights           []FlexibleInt `json:"nights,omitempty"`
}

type SearchContent struct {
	Hotels []string `json:"hotels,omitempty"`
}

// FlexibleInt accepts both 7 and "7".
type FlexibleInt int

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("expected integer, got %s", string(data))
		}
		n = json.Number(strings.TrimSpace(s))
	}
	v, err := strconv.Atoi(n.String())
	if err != nil {
		return fmt.Errorf("expected integer, got %s", string(data))
	}
	*f = FlexibleInt(v)
	return nil
}

// SearchParameters is the canonical, read-only form of one search request.
type SearchParameters struct {
	SearchID      string   `json:"searchId"`
	UserID        string   `json:"userId"`
	ConnectionID  string   `json:"connectionId"`
	HotelKeys     []string `json:"hotelKeys"`
	Adults        int      `json:"adults"`
	Children      int      `json:"children"`
	DepartureDate string   `json:"departureDate,omitempty"`
	DepartureCode string   `json:"departureCode,omitempty"`
	Duration      *int     `json:"duration,omitempty"`
	Stage         string   `json:"stage"`
}

// Travelers is the head count used for per-person pricing.
func (p SearchParameters) Travelers() int {
	return p.Adults + p.Children
}

// ForHotel returns a copy scoped to a single hotel key.
func (p SearchParameters) ForHotel(hotelKey string) SearchParameters {
	clone := p
	clone.HotelKeys = []string{hotelKey}
	if p.Duration != nil {
		d := *p.Duration
		clone.Duration = &d
	}
	return clone
}
