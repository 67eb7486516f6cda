// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"package-provider/internal/common/config"
	"package-provider/internal/common/logger"
	"package-provider/internal/delivery"
	"package-provider/internal/models"
	"package-provider/internal/search"
	"package-provider/internal/server"
	"package-provider/pkg/imagemap"
)

// ==========================
// Test Helper Functions
// ==========================

const searchEvent = `{
	"context": {"searchId": "e2e-search", "connectionId": "e2e-conn", "userId": "e2e-user"},
	"query": {
		"passengers": [{"birthday": "1980-01-01"}, {"birthday": "1982-05-05"}],
		"travelPeriod": {"departureBetween": ["2030-06-01"], "nights": [7]},
		"departureAirports": ["airport.CPH"]
	},
	"content": {"hotels": ["hotel:NE.wvHotelPartId.118060", "hotel:NE.wvHotelPartId.119870", "hotel:NE.wvHotelPartId.200001"]}
}`

func snsWrap(t *testing.T, message string) string {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{
		"Records": []interface{}{map[string]interface{}{"Sns": map[string]interface{}{"Message": message}}},
	})
	require.NoError(t, err)
	return string(data)
}

type upstream struct {
	hotelCalls int32
}

// serve answers trips and hotels requests: 118060 has two offers,
// 119870 has none and 200001 has offers but no hotel record.
func (u *upstream) serve(t *testing.T) *httptest.Server {
	offer := func(price float64) map[string]interface{} {
		return map[string]interface{}{
			"price": price, "currencyCode": "DKK", "duration": 7, "adults": 2,
			"tripUrl": "https://example.test/trip",
			"flights": []interface{}{map[string]interface{}{"routes": []interface{}{
				map[string]interface{}{"routeSequence": 1, "legs": []interface{}{map[string]interface{}{
					"departureDateTime": "2030-06-01T06:00:00", "departureCode": "CPH",
					"arrivalTime": "2030-06-01T10:00:00", "destinationCode": "PMI", "carrierCode": "DK",
				}}},
				map[string]interface{}{"routeSequence": 2, "legs": []interface{}{map[string]interface{}{
					"departureDateTime": "2030-06-08T12:00:00", "departureCode": "PMI",
					"arrivalTime": "2030-06-08T16:00:00", "destinationCode": "CPH", "carrierCode": "DK",
				}}},
			}}},
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("hotelIds")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/dptrips"):
			result := []interface{}{}
			switch key {
			case "118060":
				result = append(result, offer(9999), offer(7499))
			case "200001":
				result = append(result, offer(5000))
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": result, "totalHits": len(result)})
		case strings.HasSuffix(r.URL.Path, "/hotels"):
			atomic.AddInt32(&u.hotelCalls, 1)
			result := []interface{}{}
			if key == "118060" {
				result = append(result, map[string]interface{}{
					"wvId": "118060", "name": "Hotel Playa",
					"rating":       map[string]interface{}{"guestRating": 4.2},
					"geographical": map[string]interface{}{"resortName": "Alcudia", "countryName": "Spanien", "areaName": "Mallorca"},
					"facts":        []interface{}{map[string]interface{}{"id": "OutdoorPool", "value": "Ja"}},
				})
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": result})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type stack struct {
	handler  http.Handler
	client   *redis.Client
	sink     *delivery.RedisSink
	upstream *upstream
}

func newStack(t *testing.T) *stack {
	t.Helper()
	log := logger.NewTestLogger(t)

	up := &upstream{}
	api := up.serve(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	searchCfg := config.SearchConfig{APIBaseURL: api.URL, Stage: "prod", RequestTimeout: 2000}
	outputCfg := config.OutputConfig{Sink: config.SinkRedis, Redis: config.RedisOutput{KeyPrefix: "e2e:results", ChannelPrefix: "e2e:client"}}

	sink, err := delivery.NewFromConfig(outputCfg, delivery.Backends{Redis: rdb}, log)
	require.NoError(t, err)

	client := search.NewClient(searchCfg, nil, log)
	images := imagemap.ImageMap{"118060": imagemap.Entry{imagemap.Tier1280: {"https://img.example.test/118060.jpg"}}}
	coordinator := search.NewCoordinator(client, search.NewResolver(client, nil, log), search.NewMapper(images, ""), log, search.CoordinatorOptions{})
	service := search.NewService(search.NewNormalizer(searchCfg, log), coordinator, nil, log)

	srv := server.New(config.ServerConfig{InvokeTimeout: 10000}, service, sink, nil, log)
	return &stack{handler: srv.Routes(), client: rdb, sink: sink.(*delivery.RedisSink), upstream: up}
}

func (s *stack) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body)))
	return rec
}

func (s *stack) envelopes(t *testing.T, searchID string) []models.OutputEnvelope {
	t.Helper()
	raw, err := s.client.LRange(context.Background(), s.sink.ListKey(searchID), 0, -1).Result()
	require.NoError(t, err)

	out := make([]models.OutputEnvelope, 0, len(raw))
	for _, r := range raw {
		var env models.OutputEnvelope
		require.NoError(t, json.Unmarshal([]byte(r), &env))
		out = append(out, env)
	}
	return out
}

// ==========================
// End-to-End Tests
// ==========================

func TestSearchEvent_StreamsResultsThenCompletion(t *testing.T) {
	s := newStack(t)

	sub := s.client.Subscribe(context.Background(), s.sink.Channel("e2e-conn"))
	defer sub.Close()
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	rec := s.post(t, snsWrap(t, searchEvent))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary models.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.Requested)
	assert.Equal(t, 1, summary.Delivered)
	assert.Equal(t, 1, summary.NoOffers)
	assert.Equal(t, 1, summary.NoResult)

	envs := s.envelopes(t, "e2e-search")
	require.Len(t, envs, 2)

	result := envs[0]
	assert.False(t, result.SearchComplete)
	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, "118060", item.ID)
	assert.Equal(t, "e2e-search/118060", item.URL)
	assert.Equal(t, 7499.0, item.PackageOffer.Price.Total)
	assert.Equal(t, "3750.00", item.PackageOffer.Price.PerPerson)
	assert.Equal(t, true, item.PackageOffer.Amenities["outdoorpool"])
	assert.Equal(t, "https://img.example.test/118060.jpg", item.PackageOffer.Hotel.Images.Large[0].URI)

	completion := envs[1]
	assert.True(t, completion.SearchComplete)
	assert.Empty(t, completion.Items)
	assert.Equal(t, "e2e-user", completion.UserID)

	ch := sub.Channel()
	for i := 0; i < 2; i++ {
		msg := <-ch
		var env models.OutputEnvelope
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, i == 1, env.SearchComplete)
	}
}

func TestSearchEvent_WarmCacheSkipsMetadataFetch(t *testing.T) {
	s := newStack(t)

	require.Equal(t, http.StatusOK, s.post(t, searchEvent).Code)
	first := atomic.LoadInt32(&s.upstream.hotelCalls)

	require.Equal(t, http.StatusOK, s.post(t, strings.Replace(searchEvent, "e2e-search", "e2e-search-2", 1)).Code)
	// 118060 is cached; 200001 failed and is fetched again.
	assert.Equal(t, first+1, atomic.LoadInt32(&s.upstream.hotelCalls))
	assert.Len(t, s.envelopes(t, "e2e-search-2"), 2)
}

func TestSearchEvent_InvalidEventPushesNothing(t *testing.T) {
	s := newStack(t)

	rec := s.post(t, `{"context": {"connectionId": "e2e-conn"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	keys, err := s.client.Keys(context.Background(), "*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
