// Package source owns the Source entity (one row per successfully ingested
// bulletin URL) and the supplemented ManuallyAddedSource table operators use
// to register a bulletin URL the listing-page scraper missed.
package source

import (
	"time"

	"github.com/google/uuid"
)

// Source is one successfully ingested bulletin. Immutable after insert.
type Source struct {
	SourceID  uuid.UUID `db:"source_id" json:"source_id"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ManuallyAddedSource is a bulletin URL an operator registered by hand. C2
// unions this table with scraped URLs before filtering against the Source
// table.
type ManuallyAddedSource struct {
	URL     string    `db:"url" json:"url"`
	AddedAt time.Time `db:"added_at" json:"added_at"`
}
