package outage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

type mockRepo struct {
	counties map[string]uuid.UUID
	areas    map[string]*Area // key: countyID|name
	lines    map[string]*Line // key: areaID|name
	schedules []BlackoutSchedule
	links     map[uuid.UUID][]uuid.UUID // scheduleID -> lineIDs
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		counties: map[string]uuid.UUID{"nairobi": uuid.New()},
		areas:    make(map[string]*Area),
		lines:    make(map[string]*Line),
		links:    make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockRepo) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *mockRepo) ResolveCountyID(_ context.Context, name string) (uuid.UUID, error) {
	id, ok := m.counties[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("no county matches %s", name)
	}
	return id, nil
}

func (m *mockRepo) UpsertArea(_ context.Context, countyID uuid.UUID, name string) (*Area, error) {
	key := countyID.String() + "|" + name
	if a, ok := m.areas[key]; ok {
		return a, nil
	}
	a := &Area{AreaID: uuid.New(), CountyID: countyID, Name: name}
	m.areas[key] = a
	return a, nil
}

func (m *mockRepo) UpsertLine(_ context.Context, areaID uuid.UUID, name string) (*Line, error) {
	key := areaID.String() + "|" + name
	if l, ok := m.lines[key]; ok {
		return l, nil
	}
	l := &Line{LineID: uuid.New(), AreaID: areaID, Name: name}
	m.lines[key] = l
	return l, nil
}

func (m *mockRepo) InsertSchedule(_ context.Context, sched *BlackoutSchedule) error {
	sched.ScheduleID = uuid.New()
	m.schedules = append(m.schedules, *sched)
	return nil
}

func (m *mockRepo) LinkLineSchedule(_ context.Context, lineID, scheduleID uuid.UUID) error {
	m.links[scheduleID] = append(m.links[scheduleID], lineID)
	return nil
}

func (m *mockRepo) FutureSchedulesForArea(_ context.Context, areaID uuid.UUID, now time.Time) ([]ScheduleWithLines, error) {
	var out []ScheduleWithLines
	for _, s := range m.schedules {
		if s.AreaID != areaID || !s.EndTime.After(now) {
			continue
		}
		var lines []Line
		for _, lineID := range m.links[s.ScheduleID] {
			for _, l := range m.lines {
				if l.LineID == lineID {
					lines = append(lines, *l)
				}
			}
		}
		out = append(out, ScheduleWithLines{Schedule: s, Lines: lines})
	}
	return out, nil
}

func (m *mockRepo) AllAreasWithFutureSchedules(_ context.Context, now time.Time) ([]Area, error) {
	seen := map[uuid.UUID]bool{}
	var out []Area
	for _, s := range m.schedules {
		if !s.EndTime.After(now) || seen[s.AreaID] {
			continue
		}
		for _, a := range m.areas {
			if a.AreaID == s.AreaID {
				seen[s.AreaID] = true
				out = append(out, *a)
			}
		}
	}
	return out, nil
}

func testArea() ParsedArea {
	return ParsedArea{
		CountyName: "nairobi",
		AreaName:   "Garden City",
		LineNames:  []string{"Garden City Mall", "Roasters"},
		From:       time.Now().Add(24 * time.Hour),
		To:         time.Now().Add(30 * time.Hour),
	}
}

func TestPersistBulletin_Success(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	err := svc.PersistBulletin(context.Background(), uuid.New(), []ParsedArea{testArea()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.schedules) != 1 {
		t.Fatalf("expected 1 schedule, got %d", len(repo.schedules))
	}
	if len(repo.lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(repo.lines))
	}
}

func TestPersistBulletin_RejectsEndBeforeStart(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	area := testArea()
	area.To = area.From.Add(-time.Hour)
	err := svc.PersistBulletin(context.Background(), uuid.New(), []ParsedArea{area})
	if err == nil {
		t.Fatal("expected error for end_time before start_time")
	}
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected KindValidation, got %s", apperr.KindOf(err))
	}
	if len(repo.schedules) != 0 {
		t.Error("expected no schedule to be persisted on validation failure")
	}
}

func TestPersistBulletin_UnknownCountyAbortsTransaction(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	area := testArea()
	area.CountyName = "atlantis"
	err := svc.PersistBulletin(context.Background(), uuid.New(), []ParsedArea{area})
	if err == nil {
		t.Fatal("expected error for unresolvable county")
	}
	if apperr.KindOf(err) != apperr.KindExpected {
		t.Errorf("expected KindExpected, got %s", apperr.KindOf(err))
	}
	if len(repo.schedules) != 0 {
		t.Error("expected no schedule to be persisted when county resolution fails")
	}
}

func TestPersistBulletin_ReingestingReusesLines(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	area := testArea()
	sourceID := uuid.New()
	if err := svc.PersistBulletin(context.Background(), sourceID, []ParsedArea{area}); err != nil {
		t.Fatalf("unexpected error on first ingest: %v", err)
	}
	linesBefore := len(repo.lines)
	if err := svc.PersistBulletin(context.Background(), sourceID, []ParsedArea{area}); err != nil {
		t.Fatalf("unexpected error on re-ingest: %v", err)
	}
	if len(repo.lines) != linesBefore {
		t.Errorf("expected re-ingesting the same area to reuse existing lines, got %d lines (was %d)", len(repo.lines), linesBefore)
	}
}

func TestFutureSchedulesForArea_ExcludesPast(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	area := testArea()
	countyID := repo.counties["nairobi"]
	a, _ := repo.UpsertArea(context.Background(), countyID, area.AreaName)

	past := BlackoutSchedule{AreaID: a.AreaID, StartTime: time.Now().Add(-48 * time.Hour), EndTime: time.Now().Add(-24 * time.Hour)}
	repo.InsertSchedule(context.Background(), &past)

	future := BlackoutSchedule{AreaID: a.AreaID, StartTime: time.Now().Add(time.Hour), EndTime: time.Now().Add(2 * time.Hour)}
	repo.InsertSchedule(context.Background(), &future)

	schedules, err := svc.FutureSchedulesForArea(context.Background(), a.AreaID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedules) != 1 {
		t.Fatalf("expected 1 future schedule, got %d", len(schedules))
	}
	if schedules[0].Schedule.ScheduleID != future.ScheduleID {
		t.Error("expected only the future schedule to be returned")
	}
}
