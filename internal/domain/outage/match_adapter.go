package outage

import (
	"context"
	"time"

	"github.com/kplc/bulletin-notify/internal/domain/match"
	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// MatchLookup adapts Service into match.OutageLookup: it groups every
// future blackout schedule by area without requiring the match package to
// know anything about BlackoutSchedule or LineSchedule.
type MatchLookup struct {
	svc *Service
}

func NewMatchLookup(svc *Service) *MatchLookup {
	return &MatchLookup{svc: svc}
}

func (m *MatchLookup) FutureLinesByArea(ctx context.Context) ([]match.AreaLines, error) {
	now := time.Now().UTC()
	areas, err := m.svc.repo.AllAreasWithFutureSchedules(ctx, now)
	if err != nil {
		return nil, apperr.Unexpected("list areas with future schedules", err)
	}

	result := make([]match.AreaLines, 0, len(areas))
	for _, area := range areas {
		schedules, err := m.svc.FutureSchedulesForArea(ctx, area.AreaID)
		if err != nil {
			return nil, err
		}

		var lines []match.LineWindow
		for _, sched := range schedules {
			for _, line := range sched.Lines {
				lines = append(lines, match.LineWindow{
					LineName: line.Name,
					SourceID: sched.Schedule.SourceID,
					From:     sched.Schedule.StartTime,
					To:       sched.Schedule.EndTime,
				})
			}
		}
		if len(lines) == 0 {
			continue
		}
		result = append(result, match.AreaLines{
			AreaID:   area.AreaID,
			AreaName: area.Name,
			Lines:    lines,
		})
	}
	return result, nil
}
