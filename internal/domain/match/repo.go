package match

import (
	"context"

	"github.com/google/uuid"
)

// OutageLookup supplies the future outage schedule, grouped by area, that
// the match engine scans a subscriber's location against.
type OutageLookup interface {
	FutureLinesByArea(ctx context.Context) ([]AreaLines, error)
}

// Index is the Postgres full-text-search backend for C6: one function per
// spec.md §4.6's primary/nearby distinction.
type Index interface {
	// SearchPrimary reports whether locationID's primary-location index
	// (name + sanitized address) contains all tokens of any candidate,
	// restricted to the given area name.
	SearchPrimary(ctx context.Context, candidates []string, locationID uuid.UUID, areaName string) (bool, error)

	// SearchNearby reports whether locationID's cached neighbour-response
	// index contains all tokens of any candidate.
	SearchNearby(ctx context.Context, candidates []string, locationID uuid.UUID) (bool, error)
}
