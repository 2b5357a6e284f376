// Package subscriber owns the Subscriber entity: the utility customer who
// has authenticated at least once and may hold SubscriberLocation rows.
package subscriber

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber maps to the subscriber table. Created on first authentication
// and never destroyed; Name and Email may be refreshed from later tokens.
type Subscriber struct {
	SubscriberID uuid.UUID `db:"subscriber_id" json:"subscriber_id"`
	ExternalID   string    `db:"external_id" json:"external_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	LastLogin    time.Time `db:"last_login" json:"last_login"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
