package match

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockOutageLookup struct {
	areas []AreaLines
	err   error
}

func (m *mockOutageLookup) FutureLinesByArea(ctx context.Context) ([]AreaLines, error) {
	return m.areas, m.err
}

type mockIndex struct {
	primaryHits map[string]bool // key: areaName
	nearbyHits  bool
}

func (m *mockIndex) SearchPrimary(ctx context.Context, candidates []string, locationID uuid.UUID, areaName string) (bool, error) {
	return m.primaryHits[areaName], nil
}

func (m *mockIndex) SearchNearby(ctx context.Context, candidates []string, locationID uuid.UUID) (bool, error) {
	return m.nearbyHits, nil
}

func thikaRoadArea(lineName string, from, to time.Time) []AreaLines {
	return []AreaLines{
		{
			AreaID:   uuid.New(),
			AreaName: "Thika Road",
			Lines: []LineWindow{
				{LineName: lineName, From: from, To: to},
			},
		},
	}
}

func TestMatchLocation_DirectHitWinsOverNearby(t *testing.T) {
	locationID := uuid.New()
	from := time.Now().Add(24 * time.Hour)
	to := from.Add(8 * time.Hour)
	outages := &mockOutageLookup{areas: thikaRoadArea("Garden City Mall", from, to)}
	index := &mockIndex{primaryHits: map[string]bool{"Thika Road": true}, nearbyHits: true}

	svc := NewService(outages, index)
	matches, err := svc.MatchLocation(context.Background(), locationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(matches), matches)
	}
	if !matches[0].DirectlyAffected {
		t.Fatalf("expected a direct match when primary index hits, got %+v", matches[0])
	}
}

func TestMatchLocation_NoPrimaryFallsBackToNearby(t *testing.T) {
	locationID := uuid.New()
	from := time.Now().Add(24 * time.Hour)
	to := from.Add(8 * time.Hour)
	outages := &mockOutageLookup{areas: thikaRoadArea("Garden City Mall", from, to)}
	index := &mockIndex{primaryHits: map[string]bool{"Thika Road": false}, nearbyHits: true}

	svc := NewService(outages, index)
	matches, err := svc.MatchLocation(context.Background(), locationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(matches), matches)
	}
	if matches[0].DirectlyAffected {
		t.Fatalf("expected a potential match when only the nearby index hits, got %+v", matches[0])
	}
}

func TestMatchLocation_NoHitsProducesNoMatches(t *testing.T) {
	locationID := uuid.New()
	from := time.Now().Add(24 * time.Hour)
	to := from.Add(8 * time.Hour)
	outages := &mockOutageLookup{areas: thikaRoadArea("Garden City Mall", from, to)}
	index := &mockIndex{primaryHits: map[string]bool{"Thika Road": false}, nearbyHits: false}

	svc := NewService(outages, index)
	matches, err := svc.MatchLocation(context.Background(), locationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %v", matches)
	}
}

func TestMatchLocation_PropagatesOutageLookupError(t *testing.T) {
	outages := &mockOutageLookup{err: context.DeadlineExceeded}
	index := &mockIndex{}
	svc := NewService(outages, index)

	_, err := svc.MatchLocation(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected an error when the outage lookup fails")
	}
}

func TestFuture_ReportsWindowsStillAhead(t *testing.T) {
	now := time.Now()
	ahead := LineWindow{To: now.Add(time.Hour)}
	past := LineWindow{To: now.Add(-time.Hour)}

	if !Future(ahead, now) {
		t.Error("expected a window ending after now to be future")
	}
	if Future(past, now) {
		t.Error("expected a window ending before now to not be future")
	}
}
