package location

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// PlaceDetails is the subset of the external place-details API response C4
// needs: status plus, when resolvable, the canonical name/address/geometry.
type PlaceDetails struct {
	Status           string
	Name             string
	FormattedAddress string
	Lat              float64
	Lng              float64
	Raw              json.RawMessage
}

// PlaceAPI fetches canonical place details for an externally-identified
// location.
type PlaceAPI interface {
	GetDetails(ctx context.Context, externalID string) (*PlaceDetails, error)
}

// NearbyAPI fetches neighbouring places for a resolved location. SourceURL
// is the query URL the response is cached against.
type NearbyAPI interface {
	GetNearby(ctx context.Context, lat, lng float64) (sourceURL string, raw json.RawMessage, err error)
}

// RateLimiter is the C8 contract as consumed by C4/C5: take one token from
// bucket, or report how long to wait before retrying.
type RateLimiter interface {
	Take(ctx context.Context, bucket string) (allowed bool, retryAfter time.Duration, err error)
}

const (
	// Both C4 and C5 draw from the same location rate-limit bucket;
	// spec.md §6 names only EMAIL_EXTERNAL_API and LOCATION_EXTERNAL_API.
	locationBucket = "LOCATION_EXTERNAL_API"
	cacheableOK    = "OK"
	cacheableEmpty = "ZERO_RESULTS"
)

// Service implements the Location Resolver (C4) and Nearby-Locations
// Resolver (C5).
type Service struct {
	repo    Repository
	places  PlaceAPI
	nearby  NearbyAPI
	limiter RateLimiter
}

func NewService(repo Repository, places PlaceAPI, nearby NearbyAPI, limiter RateLimiter) *Service {
	return &Service{repo: repo, places: places, nearby: nearby, limiter: limiter}
}

// ResolveResult is the {LocationId, Lat, Lng} tuple C4 returns.
type ResolveResult struct {
	LocationID uuid.UUID
	Lat        float64
	Lng        float64
	Resolved   bool // false on a ZERO_RESULTS outcome; no Location row was written
}

// Resolve implements C4's algorithm: return the cached Location for
// externalID if one exists; otherwise take a rate-limit token, call the
// place-details API, and persist the result.
func (s *Service) Resolve(ctx context.Context, externalID string) (*ResolveResult, error) {
	if existing, err := s.repo.GetByExternalID(ctx, externalID); err == nil {
		return &ResolveResult{LocationID: existing.LocationID, Lat: existing.Lat, Lng: existing.Lng, Resolved: true}, nil
	}

	allowed, retryAfter, err := s.limiter.Take(ctx, locationBucket)
	if err != nil {
		return nil, apperr.Unexpected("take rate limit token", err)
	}
	if !allowed {
		return nil, apperr.RateLimitedAfter("place api rate limit exceeded", retryAfter)
	}

	details, err := s.places.GetDetails(ctx, externalID)
	if err != nil {
		return nil, apperr.Unexpected("call place-details api", err)
	}

	switch details.Status {
	case cacheableEmpty:
		// A ZERO_RESULTS response is a terminal, non-retryable outcome: no
		// Location row is written, matching the original's silent-drop
		// behaviour. No subscription is created; the calling task records
		// Failure for its progress key.
		return &ResolveResult{Resolved: false}, apperr.Expected("place details returned ZERO_RESULTS for "+externalID, nil)
	case cacheableOK:
		loc := &Location{
			ExternalID:       externalID,
			Name:             details.Name,
			Address:          details.FormattedAddress,
			SanitizedAddress: Sanitize(details.FormattedAddress),
			APIResponse:      details.Raw,
			Lat:              details.Lat,
			Lng:              details.Lng,
		}
		if err := s.repo.Create(ctx, loc); err != nil {
			return nil, apperr.Unexpected("persist location", err)
		}
		return &ResolveResult{LocationID: loc.LocationID, Lat: loc.Lat, Lng: loc.Lng, Resolved: true}, nil
	default:
		return nil, apperr.Unexpected("place details api returned status "+details.Status, nil)
	}
}

// GetByID returns the resolved Location row, used by the task queue to
// render a location's display name into a notification payload.
func (s *Service) GetByID(ctx context.Context, locationID uuid.UUID) (*Location, error) {
	loc, err := s.repo.GetByID(ctx, locationID)
	if err != nil {
		return nil, apperr.NotFound("location not found", err)
	}
	return loc, nil
}

// ResolveNearby implements C5: return the cached NearbyLocations row for
// locationID if present; otherwise take a rate-limit token, call the
// nearby-search API, and persist the raw response.
func (s *Service) ResolveNearby(ctx context.Context, locationID uuid.UUID, lat, lng float64) (*NearbyLocations, error) {
	if existing, err := s.repo.GetNearbyByLocationID(ctx, locationID); err == nil {
		return existing, nil
	}

	allowed, retryAfter, err := s.limiter.Take(ctx, locationBucket)
	if err != nil {
		return nil, apperr.Unexpected("take rate limit token", err)
	}
	if !allowed {
		return nil, apperr.RateLimitedAfter("nearby-search api rate limit exceeded", retryAfter)
	}

	sourceURL, raw, err := s.nearby.GetNearby(ctx, lat, lng)
	if err != nil {
		return nil, apperr.Unexpected("call nearby-search api", err)
	}

	nearby := &NearbyLocations{LocationID: locationID, SourceURL: sourceURL, Response: raw}
	if err := s.repo.CreateNearby(ctx, nearby); err != nil {
		return nil, apperr.Unexpected("persist nearby locations", err)
	}
	return nearby, nil
}
