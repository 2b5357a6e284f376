// Package outage is the Outage Store (C3): normalized schedule rows
// (source, area, line, time-frame) persisted transactionally per bulletin.
package outage

import (
	"time"

	"github.com/google/uuid"
)

// County is a fixed seed list the bulletin parser's region/county names are
// tolerant-matched against.
type County struct {
	CountyID uuid.UUID `db:"county_id" json:"county_id"`
	Name     string    `db:"name" json:"name"`
}

// Area grows as bulletins introduce new names. (CountyID, Name) is unique.
type Area struct {
	AreaID   uuid.UUID `db:"area_id" json:"area_id"`
	CountyID uuid.UUID `db:"county_id" json:"county_id"`
	Name     string    `db:"name" json:"name"`
}

// Line is a named customer group inside an area. (AreaID, Name) is unique.
type Line struct {
	LineID uuid.UUID `db:"line_id" json:"line_id"`
	AreaID uuid.UUID `db:"area_id" json:"area_id"`
	Name   string    `db:"name" json:"name"`
}

// BlackoutSchedule is stored in UTC; interpreted in Africa/Nairobi for
// display. EndTime must be greater than StartTime.
type BlackoutSchedule struct {
	ScheduleID uuid.UUID `db:"schedule_id" json:"schedule_id"`
	AreaID     uuid.UUID `db:"area_id" json:"area_id"`
	SourceID   uuid.UUID `db:"source_id" json:"source_id"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
}

// LineSchedule is the many-to-many link between Line and BlackoutSchedule.
// Every row references a schedule whose AreaID is the area that owns the
// line.
type LineSchedule struct {
	LineID     uuid.UUID `db:"line_id" json:"line_id"`
	ScheduleID uuid.UUID `db:"schedule_id" json:"schedule_id"`
}

// ScheduleWithLines is a future BlackoutSchedule joined with the line names
// it applies to, the shape the match engine (C6) queries for.
type ScheduleWithLines struct {
	Schedule BlackoutSchedule
	Lines    []Line
}

// ParsedArea is one Area node from the C1 bulletin AST, ready to persist.
type ParsedArea struct {
	CountyName string
	AreaName   string
	LineNames  []string
	From       time.Time
	To         time.Time
}
