package tasks

import (
	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/internal/domain/notification"
)

// FetchAndSubscribeToLocationPayload is the entry point for C4: resolve
// externalID to a Location, subscribe subscriberID to it, and on success
// enqueue GetNearbyLocations.
type FetchAndSubscribeToLocationPayload struct {
	ExternalID   string    `json:"externalId"`
	SubscriberID uuid.UUID `json:"subscriberId"`
	TaskID       string    `json:"taskId"`
}

// GetNearbyLocationsPayload is the entry point for C5: resolve the
// location's cached neighbour set, then run C6 for subscriberID and
// enqueue one SendEmailNotification per affected source.
type GetNearbyLocationsPayload struct {
	LocationID       uuid.UUID `json:"locationId"`
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	SubscriberID     uuid.UUID `json:"subscriberId"`
	DirectlyAffected bool      `json:"directlyAffected"`
	TaskID           string    `json:"taskId"`
}

// SendEmailNotificationPayload carries C10's input payload verbatim.
type SendEmailNotificationPayload struct {
	notification.AffectedSubscriberWithLocations
}

// SearchLocationsByTextPayload is a cache-warming task: it calls the
// external text-search API once and writes the result into the
// text-search cache.
type SearchLocationsByTextPayload struct {
	Text string `json:"text"`
}
