package outage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists the normalized outage schedule. PersistBulletin runs
// its writes inside a single transaction per bulletin (C3's contract).
type Repository interface {
	// WithinTx runs fn with a context scoped to a single transaction,
	// committing on success and rolling back if fn returns an error.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	// ResolveCountyID performs the tolerant county match: exact
	// case-insensitive, then substring on the first word, then dash/space
	// normalization. Returns an apperr.Expected error if nothing matches.
	ResolveCountyID(ctx context.Context, name string) (uuid.UUID, error)
	UpsertArea(ctx context.Context, countyID uuid.UUID, name string) (*Area, error)
	UpsertLine(ctx context.Context, areaID uuid.UUID, name string) (*Line, error)
	InsertSchedule(ctx context.Context, sched *BlackoutSchedule) error
	LinkLineSchedule(ctx context.Context, lineID, scheduleID uuid.UUID) error

	FutureSchedulesForArea(ctx context.Context, areaID uuid.UUID, now time.Time) ([]ScheduleWithLines, error)

	// AllAreasWithFutureSchedules lists every Area that owns at least one
	// BlackoutSchedule with EndTime > now, the match engine's (C6) starting
	// point for "lines affected in the future".
	AllAreasWithFutureSchedules(ctx context.Context, now time.Time) ([]Area, error)
}
