package match

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Service runs the candidate-generation plus primary/nearby lookup over
// one subscriber location's area, classifying each future line as
// directly or potentially affecting that location.
type Service struct {
	outages OutageLookup
	index   Index
}

func NewService(outages OutageLookup, index Index) *Service {
	return &Service{outages: outages, index: index}
}

// MatchLocation reports every future blackout line that affects locationID,
// either directly (a hit in the primary name/address index) or potentially
// (no primary hit, but a hit in the cached nearby-locations index). A
// primary hit always wins over a nearby hit for the same line.
func (s *Service) MatchLocation(ctx context.Context, locationID uuid.UUID) ([]Match, error) {
	areas, err := s.outages.FutureLinesByArea(ctx)
	if err != nil {
		return nil, apperr.Unexpected("list future lines by area", err)
	}

	var matches []Match
	for _, area := range areas {
		areaCandidates := AreaCandidates(area.AreaName)
		if len(areaCandidates) == 0 {
			areaCandidates = []string{area.AreaName}
		}

		for _, line := range area.Lines {
			candidates := SearchCandidates(line.LineName)

			direct, err := s.hitsPrimary(ctx, candidates, locationID, areaCandidates)
			if err != nil {
				return nil, apperr.Unexpected("search primary location index", err)
			}
			if direct {
				matches = append(matches, newMatch(locationID, line, true))
				continue
			}

			nearby, err := s.hitsNearby(ctx, candidates, locationID)
			if err != nil {
				return nil, apperr.Unexpected("search nearby location index", err)
			}
			if nearby {
				matches = append(matches, newMatch(locationID, line, false))
			}
		}
	}
	return matches, nil
}

func (s *Service) hitsPrimary(ctx context.Context, candidates []string, locationID uuid.UUID, areaCandidates []string) (bool, error) {
	for _, areaName := range areaCandidates {
		hit, err := s.index.SearchPrimary(ctx, candidates, locationID, areaName)
		if err != nil {
			return false, err
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) hitsNearby(ctx context.Context, candidates []string, locationID uuid.UUID) (bool, error) {
	return s.index.SearchNearby(ctx, candidates, locationID)
}

func newMatch(locationID uuid.UUID, line LineWindow, directlyAffected bool) Match {
	return Match{
		LocationID:       locationID,
		LineName:         line.LineName,
		SourceID:         line.SourceID,
		From:             line.From,
		To:               line.To,
		DirectlyAffected: directlyAffected,
	}
}

// Future reports whether a line window still lies ahead of now, the
// match engine's definition of "affected in the future".
func Future(window LineWindow, now time.Time) bool {
	return window.To.After(now)
}
