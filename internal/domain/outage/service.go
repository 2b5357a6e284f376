package outage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Service implements the Outage Store (C3): transactional persistence of a
// parsed bulletin's areas into normalized schedule rows.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PersistBulletin writes every parsed area of one bulletin inside a single
// transaction: resolve county, upsert area, insert the schedule, upsert
// lines and link them. A county miss aborts the whole transaction — per
// spec.md §4.3 step (ii).
func (s *Service) PersistBulletin(ctx context.Context, sourceID uuid.UUID, areas []ParsedArea) error {
	err := s.repo.WithinTx(ctx, func(txCtx context.Context) error {
		for _, pa := range areas {
			if !pa.To.After(pa.From) {
				// EndTime must be strictly greater than StartTime; a malformed
				// area aborts the whole bulletin transaction.
				return apperr.Validation("blackout schedule end_time must be after start_time", nil)
			}

			countyID, err := s.repo.ResolveCountyID(txCtx, pa.CountyName)
			if err != nil {
				return apperr.Expected("no county matches "+pa.CountyName, err)
			}

			area, err := s.repo.UpsertArea(txCtx, countyID, pa.AreaName)
			if err != nil {
				return apperr.Unexpected("upsert area", err)
			}

			sched := &BlackoutSchedule{
				AreaID:    area.AreaID,
				SourceID:  sourceID,
				StartTime: pa.From,
				EndTime:   pa.To,
			}
			if err := s.repo.InsertSchedule(txCtx, sched); err != nil {
				return apperr.Unexpected("insert blackout schedule", err)
			}

			for _, lineName := range pa.LineNames {
				line, err := s.repo.UpsertLine(txCtx, area.AreaID, lineName)
				if err != nil {
					return apperr.Unexpected("upsert line", err)
				}
				if err := s.repo.LinkLineSchedule(txCtx, line.LineID, sched.ScheduleID); err != nil {
					return apperr.Unexpected("link line schedule", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Unexpected("outage transaction", err)
	}
	return nil
}

// FutureSchedulesForArea returns schedules (and their line names) for area
// whose EndTime is still in the future, as consumed by the match engine.
func (s *Service) FutureSchedulesForArea(ctx context.Context, areaID uuid.UUID) ([]ScheduleWithLines, error) {
	schedules, err := s.repo.FutureSchedulesForArea(ctx, areaID, time.Now().UTC())
	if err != nil {
		return nil, apperr.Unexpected("load future schedules", err)
	}
	return schedules, nil
}
