package subscription

import (
	"time"

	"github.com/google/uuid"
)

// SubscriberLocation is an active subscription linking a subscriber to a
// resolved Location. Unique on (SubscriberID, LocationID).
type SubscriberLocation struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SubscriberID uuid.UUID `db:"subscriber_id" json:"subscriber_id"`
	LocationID   uuid.UUID `db:"location_id" json:"location_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// View joins a subscription with its Location for the subscribed-locations
// listing endpoint.
type View struct {
	SubscriberLocation
	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address"`
}

// Progress statuses reported through C9.
const (
	ProgressPending = "Pending"
	ProgressSuccess = "Success"
	ProgressFailure = "Failure"
)
