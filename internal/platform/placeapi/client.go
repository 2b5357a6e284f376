// Package placeapi is a thin client for the external place-details and
// nearby-search APIs consumed by the Location Resolver (C4) and
// Nearby-Locations Resolver (C5), structured the same way as
// internal/platform/mail's client.
package placeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/kplc/bulletin-notify/internal/domain/location"
	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Client is the HTTP-backed PlaceAPI/NearbyAPI used in production.
type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a Client targeting host, authenticating every
// request with the query-string api key the place-details/nearby-search
// APIs expect.
func NewClient(host, apiKey string) *Client {
	return &Client{
		host:       host,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type geometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type placeDetailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		PlaceID          string   `json:"place_id"`
		Geometry         geometry `json:"geometry"`
	} `json:"result"`
}

// GetDetails implements location.PlaceAPI via
// GET {host}/place/details/json?key={k}&place_id={id}, retrying transient
// failures with exponential backoff for at most 3 attempts in all.
func (c *Client) GetDetails(ctx context.Context, externalID string) (*location.PlaceDetails, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("place_id", externalID)
	reqURL := c.host + "/place/details/json?" + q.Encode()

	var out *location.PlaceDetails
	err := retry.Do(
		func() error {
			raw, err := c.get(ctx, reqURL)
			if err != nil {
				return err
			}
			var resp placeDetailsResponse
			if err := json.Unmarshal(raw, &resp); err != nil {
				return apperr.Unexpected("decode place-details response", err)
			}
			out = &location.PlaceDetails{
				Status:           resp.Status,
				Name:             resp.Result.Name,
				FormattedAddress: resp.Result.FormattedAddress,
				Lat:              resp.Result.Geometry.Location.Lat,
				Lng:              resp.Result.Geometry.Location.Lng,
				Raw:              raw,
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return apperr.Retryable(apperr.KindOf(err)) }),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetNearby implements location.NearbyAPI via
// GET {host}/place/nearbysearch/json?rankby=distance&location={lat},{lng}&key={k}.
// The response is cached verbatim; sourceURL is the query URL NearbyLocations
// is keyed on.
func (c *Client) GetNearby(ctx context.Context, lat, lng float64) (string, json.RawMessage, error) {
	q := url.Values{}
	q.Set("rankby", "distance")
	q.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("key", c.apiKey)
	reqURL := c.host + "/place/nearbysearch/json?" + q.Encode()

	var raw json.RawMessage
	err := retry.Do(
		func() error {
			body, err := c.get(ctx, reqURL)
			if err != nil {
				return err
			}
			raw = body
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return apperr.Retryable(apperr.KindOf(err)) }),
	)
	if err != nil {
		return "", nil, err
	}
	return reqURL, raw, nil
}

func (c *Client) get(ctx context.Context, reqURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Unexpected("build place api request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Unexpected("dial place api", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperr.RateLimited("place api rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return nil, apperr.Unexpected(fmt.Sprintf("place api returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, apperr.Expected(fmt.Sprintf("place api rejected request with %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Unexpected("read place api response", err)
	}
	return body, nil
}
