// internal/search/client.go
package search

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"package-provider/internal/common/config"
	"package-provider/internal/common/errors"
	httpclient "package-provider/internal/common/http"
	"package-provider/internal/common/logger"
	"package-provider/internal/common/metrics"
	"package-provider/internal/models"
)

const (
	defaultSearchResource   = "dptrips"
	defaultMetadataResource = "hotels"

	endpointSearch   = "search"
	endpointMetadata = "hotels"
)

// Client talks to the upstream travel API. It serves both the per-hotel
// package search and the hotel metadata lookup.
type Client struct {
	http             *httpclient.Client
	baseURL          string
	searchResource   string
	metadataResource string
	logger           logger.Logger
}

func NewClient(cfg config.SearchConfig, hc *httpclient.Client, log logger.Logger) *Client {
	if hc == nil {
		hc = httpclient.NewClient(config.GetDuration(cfg.RequestTimeout))
	}
	searchResource := strings.Trim(cfg.SearchResource, "/")
	if searchResource == "" {
		searchResource = defaultSearchResource
	}
	metadataResource := strings.Trim(cfg.MetadataResource, "/")
	if metadataResource == "" {
		metadataResource = defaultMetadataResource
	}
	return &Client{
		http:             hc,
		baseURL:          strings.TrimRight(cfg.APIBaseURL, "/"),
		searchResource:   searchResource,
		metadataResource: metadataResource,
		logger:           log,
	}
}

// Search fetches all offers for one hotel key. An empty result is not an error.
func (c *Client) Search(ctx context.Context, params models.SearchParameters, hotelKey string) ([]models.RawOffer, error) {
	target := c.searchURL(params, hotelKey)

	var resp models.OffersResponse
	if err := c.get(ctx, endpointSearch, target, &resp); err != nil {
		if httpclient.IsTimeout(err) {
			return nil, errors.NewUpstreamTimeoutError(endpointSearch, err).WithMetadata("hotelKey", hotelKey)
		}
		return nil, errors.NewUpstreamSearchError(hotelKey, err)
	}

	c.logger.Debug("package search returned", map[string]interface{}{
		"hotelKey":  hotelKey,
		"offers":    len(resp.Result),
		"totalHits": resp.TotalHits,
	})
	return resp.Result, nil
}

// FetchHotel fetches metadata for one hotel key, preferring the record whose
// wvId matches.
func (c *Client) FetchHotel(ctx context.Context, stage, hotelKey string) (*models.HotelMetadata, error) {
	q := url.Values{}
	q.Set("hotelIds", hotelKey)
	target := c.baseURL + "/" + stage + "/" + c.metadataResource + "?" + q.Encode()

	var resp models.HotelsResponse
	if err := c.get(ctx, endpointMetadata, target, &resp); err != nil {
		return nil, errors.NewUpstreamMetadataError(hotelKey, err)
	}
	if len(resp.Result) == 0 {
		return nil, errors.NewUpstreamMetadataError(hotelKey, errEmptyHotelResult)
	}

	for i := range resp.Result {
		if resp.Result[i].WvID == hotelKey {
			return &resp.Result[i], nil
		}
	}
	return &resp.Result[0], nil
}

func (c *Client) get(ctx context.Context, endpoint, target string, out interface{}) error {
	start := time.Now()
	err := c.http.GetJSON(ctx, target, out)
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if httpclient.IsTimeout(err) {
			outcome = "timeout"
		}
		c.logger.Warn("upstream request failed", map[string]interface{}{
			"endpoint": endpoint,
			"url":      target,
			"error":    err,
		})
	}
	metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	return err
}

// searchURL serializes the public parameters for one hotel key. Identity
// and routing fields stay local.
func (c *Client) searchURL(params models.SearchParameters, hotelKey string) string {
	q := url.Values{}
	q.Set("adults", strconv.Itoa(params.Adults))
	q.Set("children", strconv.Itoa(params.Children))
	q.Set("hotelIds", hotelKey)
	if params.DepartureDate != "" {
		q.Set("departureDate", params.DepartureDate)
	}
	if params.DepartureCode != "" {
		q.Set("departureCode", params.DepartureCode)
	}
	if params.Duration != nil {
		q.Set("duration", strconv.Itoa(*params.Duration))
	}
	return c.baseURL + "/" + ResolveStage(params.Stage) + "/" + c.searchResource + "?" + q.Encode()
}
