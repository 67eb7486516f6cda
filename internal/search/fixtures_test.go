package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"package-provider/internal/models"
)

// ==========================
// Shared Fixtures
// ==========================

func floatPtr(f float64) *float64 { return &f }

func testOffer(price float64) models.RawOffer {
	return models.RawOffer{
		Price:        price,
		CurrencyCode: "DKK",
		Duration:     7,
		TripURL:      "https://www.spies.dk/trip/118060",
		Adults:       2,
		Flights: []models.Flight{{
			Routes: []models.Route{
				{
					RouteSequence: models.RouteOutbound,
					Legs: []models.Leg{
						{DepartureDateTime: "2016-09-01T06:00:00", DepartureCode: "CPH", ArrivalTime: "2016-09-01T09:00:00", DestinationCode: "FRA", CarrierCode: "DK"},
						{DepartureDateTime: "2016-09-01T10:00:00", DepartureCode: "FRA", ArrivalTime: "2016-09-01T14:00:00", DestinationCode: "PMI", CarrierCode: "LH"},
					},
				},
				{
					RouteSequence: models.RouteInbound,
					Legs: []models.Leg{
						{DepartureDateTime: "2016-09-08T15:00:00", DepartureCode: "PMI", ArrivalTime: "2016-09-08T19:00:00", DestinationCode: "CPH", CarrierCode: "DK"},
					},
				},
			},
		}},
	}
}

func testHotel(key string) *models.HotelMetadata {
	return &models.HotelMetadata{
		WvID:         key,
		Name:         "Hotel " + key,
		Images:       []models.HotelImage{{URL: "http://img/" + key + "/1.jpg"}, {URL: "http://img/" + key + "/2.jpg"}},
		Rating:       models.HotelRating{GuestRating: floatPtr(4.5)},
		Geographical: models.Geographical{ResortName: "Alcudia", CountryName: "Spanien", AreaName: "Mallorca"},
		Facts:        json.RawMessage(`[{"id":"OutdoorPool","name":"Udendørs pool","value":"Ja"},{"id":"Internet","value":"Nej"},{"id":130,"name":"Bar","value":"1"}]`),
		ProductCode:  "PRD-" + key,
		Description:  "Near the beach",
	}
}

// fakeUpstream serves the trips and hotels endpoints from in-memory tables.
type fakeUpstream struct {
	mu          sync.Mutex
	offers      map[string][]models.RawOffer
	hotels      map[string]*models.HotelMetadata
	failSearch  map[string]bool
	failHotels  map[string]bool
	searchCalls int32
	hotelCalls  int32
	lastQueries []string
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		offers:     map[string][]models.RawOffer{},
		hotels:     map[string]*models.HotelMetadata{},
		failSearch: map[string]bool{},
		failHotels: map[string]bool{},
	}
}

func (f *fakeUpstream) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("hotelIds")
		f.mu.Lock()
		f.lastQueries = append(f.lastQueries, r.URL.RequestURI())
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/dptrips"):
			atomic.AddInt32(&f.searchCalls, 1)
			if f.failSearch[key] {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_ = json.NewEncoder(w).Encode(models.OffersResponse{Result: f.offers[key], TotalHits: len(f.offers[key])})
		case strings.HasSuffix(r.URL.Path, "/hotels"):
			atomic.AddInt32(&f.hotelCalls, 1)
			if f.failHotels[key] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			resp := models.HotelsResponse{Result: []models.HotelMetadata{}}
			if h, ok := f.hotels[key]; ok {
				resp.Result = append(resp.Result, *h)
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}
