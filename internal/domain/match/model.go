package match

import (
	"time"

	"github.com/google/uuid"
)

// LineWindow is one announced line name and the future time window it's
// scheduled for, grouped under the area that owns it.
type LineWindow struct {
	LineName string
	SourceID uuid.UUID
	From     time.Time
	To       time.Time
}

// AreaLines is every future blackout line announced for one area — the
// match engine's per-area unit of work, grounded on the original's
// "lines affected in the future" grouping.
type AreaLines struct {
	AreaID   uuid.UUID
	AreaName string
	Lines    []LineWindow
}

// Match is one (line, time-window, classification) hit for a subscriber's
// resolved location.
type Match struct {
	LocationID       uuid.UUID
	LineName         string
	SourceID         uuid.UUID
	From             time.Time
	To               time.Time
	DirectlyAffected bool
}
