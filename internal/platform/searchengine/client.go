// Package searchengine is a thin client for the external text-search API
// the SearchLocationsByText cache-warming task (C7) calls, plus the
// Redis-backed cache its result is written into, structured the same way
// as internal/platform/placeapi's client.
package searchengine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Client is the HTTP-backed text-search API used in production.
type Client struct {
	host           string
	applicationKey string
	apiKey         string
	httpClient     *http.Client
}

func NewClient(host, applicationKey, apiKey string) *Client {
	return &Client{
		host:           host,
		applicationKey: applicationKey,
		apiKey:         apiKey,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchText queries the external index for free-text candidates and
// returns the raw response verbatim, retrying transient failures with
// exponential backoff for at most 3 attempts in all.
func (c *Client) SearchText(ctx context.Context, text string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("app_id", c.applicationKey)
	q.Set("api_key", c.apiKey)
	q.Set("query", text)
	reqURL := c.host + "/query?" + q.Encode()

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
		return nil, err
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, reqURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Unexpected("build search engine request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Unexpected("dial search engine", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperr.RateLimited("search engine rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return nil, apperr.Unexpected(fmt.Sprintf("search engine returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, apperr.Expected(fmt.Sprintf("search engine rejected request with %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Unexpected("read search engine response", err)
	}
	return body, nil
}
