package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists SubscriberLocation rows.
type Repository interface {
	// Create is idempotent on (SubscriberID, LocationID); a repeat call
	// returns the existing row rather than erroring.
	Create(ctx context.Context, subscriberID, locationID uuid.UUID) (*SubscriberLocation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SubscriberLocation, error)
	Delete(ctx context.Context, subscriberID, locationID uuid.UUID) error
	DeleteByID(ctx context.Context, subscriberID, id uuid.UUID) error
	ListBySubscriber(ctx context.Context, subscriberID uuid.UUID) ([]View, error)

	// ListAll returns every subscription row, used by the notify-retry
	// backfill to re-run C5+C6+C10 across the whole subscriber base.
	ListAll(ctx context.Context) ([]SubscriberLocation, error)
}
