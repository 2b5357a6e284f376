package location

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists Location and NearbyLocations rows.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID string) (*Location, error)
	GetByID(ctx context.Context, locationID uuid.UUID) (*Location, error)
	Create(ctx context.Context, loc *Location) error

	GetNearbyByLocationID(ctx context.Context, locationID uuid.UUID) (*NearbyLocations, error)
	CreateNearby(ctx context.Context, nearby *NearbyLocations) error
}
