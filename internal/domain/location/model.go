// Package location implements the Location Resolver (C4) and
// Nearby-Locations Resolver (C5): canonical place records and their cached
// neighbour sets, fetched from an external place-details/nearby-search API.
package location

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Location is the canonical place record resolved from the external
// place-details API. SanitizedAddress is the field textual matching (C6)
// operates on.
type Location struct {
	LocationID       uuid.UUID       `db:"location_id" json:"location_id"`
	ExternalID       string          `db:"external_id" json:"external_id"`
	Name             string          `db:"name" json:"name"`
	Address          string          `db:"address" json:"address"`
	SanitizedAddress string          `db:"sanitized_address" json:"sanitized_address"`
	APIResponse      json.RawMessage `db:"api_response" json:"-"`
	Lat              float64         `db:"lat" json:"lat"`
	Lng              float64         `db:"lng" json:"lng"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// NearbyLocations is one row per primary location whose neighbour set has
// been fetched; the raw JSON is stored verbatim and queried by C6.
type NearbyLocations struct {
	NearbyID   uuid.UUID       `db:"nearby_id" json:"nearby_id"`
	LocationID uuid.UUID       `db:"location_id" json:"location_id"`
	SourceURL  string          `db:"source_url" json:"source_url"`
	Response   json.RawMessage `db:"response" json:"-"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// acronymTable expands known address abbreviations before textual matching,
// e.g. "Rd" -> "Road".
var acronymTable = map[string]string{
	"rd":     "Road",
	"pri":    "Primary",
	"sec":    "Secondary",
	"mkt":    "Market",
	"est":    "Estate",
	"t/fact": "Tea Factory",
	"apts":   "Apartments",
	"ave":    "Avenue",
	"hqs":    "Headquarters",
}
