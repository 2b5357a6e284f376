package subscriber

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists Subscriber rows.
type Repository interface {
	// GetOrCreateByExternalID returns the subscriber for externalID, creating
	// one (and stamping name/email/last_login) if none exists yet, or
	// refreshing name/email/last_login on an existing row.
	GetOrCreateByExternalID(ctx context.Context, externalID, name, email string) (*Subscriber, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Subscriber, error)
	GetByExternalID(ctx context.Context, externalID string) (*Subscriber, error)
}
