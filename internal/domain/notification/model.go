package notification

import (
	"time"

	"github.com/google/uuid"
)

// Seed notification strategies (spec currently names only EMAIL).
const StrategyEmail = "EMAIL"

// NotificationStrategy is a delivery channel.
type NotificationStrategy struct {
	StrategyID uuid.UUID `db:"strategy_id" json:"strategy_id"`
	Name       string    `db:"name" json:"name"`
}

// NotificationRecord is the idempotency record of a delivery. A row is
// reserved with an empty ExternalSendID before the send, deleted again if
// the send does not happen, and stamped with the mail service's request id
// once it succeeds; a row with an empty ExternalSendID therefore does not
// mean the send was acknowledged. The tuple (SourceID, SubscriberID,
// LineName, StrategyID) is the idempotency key.
type NotificationRecord struct {
	SourceID          uuid.UUID `db:"source_id" json:"source_id"`
	SubscriberID      uuid.UUID `db:"subscriber_id" json:"subscriber_id"`
	LineName          string    `db:"line_name" json:"line_name"`
	StrategyID        uuid.UUID `db:"strategy_id" json:"strategy_id"`
	LocationIDMatched uuid.UUID `db:"location_id_matched" json:"location_id_matched"`
	DirectlyAffected  bool      `db:"directly_affected" json:"directly_affected"`
	ExternalSendID    string    `db:"external_send_id" json:"external_send_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// AffectedLocationMatch is one of C6's output triples, plus the location's
// display name for rendering.
type AffectedLocationMatch struct {
	LocationID       uuid.UUID
	LocationName     string
	LineName         string
	DirectlyAffected bool
	From             time.Time
	To               time.Time
}

// NotifiableSubscriber is the minimal subscriber view this package needs —
// kept local so it doesn't import the subscriber domain package's types.
type NotifiableSubscriber struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// AffectedSubscriberWithLocations is C6's per-(subscriber, source-URL)
// output, and C10's task payload.
type AffectedSubscriberWithLocations struct {
	SourceURL  string
	Subscriber NotifiableSubscriber
	Locations  []AffectedLocationMatch
}
