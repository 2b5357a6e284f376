// Package mail is a thin client for the outbound mail-service API used by
// the notification dispatcher. Template rendering on the recipient side is
// the mail service's concern; this package only builds the request envelope
// and interprets the response.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// AffectedState labels how a location relates to an outage window.
type AffectedState string

const (
	DirectlyAffected    AffectedState = "directly affected"
	PotentiallyAffected AffectedState = "potentially affected"
)

// AffectedLocation is one row of the affected-locations list rendered into
// the outbound email.
type AffectedLocation struct {
	Location  string `json:"location"`
	Date      string `json:"date"`       // dd/mm/YYYY, Africa/Nairobi
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// TemplateData is the `message.data` object in the mail API request body.
type TemplateData struct {
	RecipientName     string             `json:"recipient_name"`
	AffectedState     AffectedState      `json:"affected_state"`
	Link              string             `json:"link"`
	AffectedLocations []AffectedLocation `json:"affected_locations"`
}

// Recipient wraps the destination address.
type Recipient struct {
	Email string `json:"email"`
}

// Message is the full mail API request body.
type Message struct {
	To       Recipient    `json:"to"`
	Template string       `json:"template"`
	Data     TemplateData `json:"data"`
}

type sendRequest struct {
	Message Message `json:"message"`
}

type sendResponse struct {
	RequestID string `json:"requestId"`
}

// Sender sends a rendered notification message and returns the mail
// service's request identifier.
type Sender interface {
	Send(ctx context.Context, msg Message) (requestID string, err error)
}

// Client is the HTTP-backed Sender used in production.
type Client struct {
	host       string
	authToken  string
	templateID string
	httpClient *http.Client
}

// NewClient constructs a Client targeting host, authenticating with a
// bearer token, and always rendering the given mail-service template.
func NewClient(host, authToken, templateID string) *Client {
	return &Client{
		host:       host,
		authToken:  authToken,
		templateID: templateID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send POSTs msg to the mail service with bearer authentication, retrying
// transient failures with exponential backoff for at most 3 attempts in
// all. msg.Template
// defaults to the client's configured template ID when empty.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if msg.Template == "" {
		msg.Template = c.templateID
	}

	var requestID string
	err := retry.Do(
		func() error {
			id, err := c.post(ctx, msg)
			if err != nil {
				return err
			}
			requestID = id
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return apperr.Retryable(apperr.KindOf(err)) }),
	)
	if err != nil {
		return "", err
	}
	return requestID, nil
}

func (c *Client) post(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(sendRequest{Message: msg})
	if err != nil {
		return "", apperr.Unexpected("marshal mail request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Unexpected("build mail request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Unexpected("dial mail service", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperr.RateLimited("mail service rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return "", apperr.Unexpected(fmt.Sprintf("mail service returned %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return "", apperr.Expected(fmt.Sprintf("mail service rejected request with %d", resp.StatusCode), nil)
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Unexpected("decode mail response", err)
	}
	if out.RequestID == "" {
		return "", apperr.Unexpected("mail response missing requestId", nil)
	}
	return out.RequestID, nil
}
