package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

type mockRepo struct {
	rows   map[uuid.UUID]*SubscriberLocation
	byPair map[[2]uuid.UUID]uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{rows: map[uuid.UUID]*SubscriberLocation{}, byPair: map[[2]uuid.UUID]uuid.UUID{}}
}

func (m *mockRepo) Create(ctx context.Context, subscriberID, locationID uuid.UUID) (*SubscriberLocation, error) {
	key := [2]uuid.UUID{subscriberID, locationID}
	if id, ok := m.byPair[key]; ok {
		return m.rows[id], nil
	}
	sl := &SubscriberLocation{ID: uuid.New(), SubscriberID: subscriberID, LocationID: locationID}
	m.rows[sl.ID] = sl
	m.byPair[key] = sl.ID
	return sl, nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*SubscriberLocation, error) {
	if sl, ok := m.rows[id]; ok {
		return sl, nil
	}
	return nil, errors.New("not found")
}

func (m *mockRepo) Delete(ctx context.Context, subscriberID, locationID uuid.UUID) error {
	key := [2]uuid.UUID{subscriberID, locationID}
	if id, ok := m.byPair[key]; ok {
		delete(m.rows, id)
		delete(m.byPair, key)
	}
	return nil
}

func (m *mockRepo) DeleteByID(ctx context.Context, subscriberID, id uuid.UUID) error {
	if sl, ok := m.rows[id]; ok {
		delete(m.byPair, [2]uuid.UUID{sl.SubscriberID, sl.LocationID})
		delete(m.rows, id)
	}
	return nil
}

func (m *mockRepo) ListBySubscriber(ctx context.Context, subscriberID uuid.UUID) ([]View, error) {
	var views []View
	for _, sl := range m.rows {
		if sl.SubscriberID == subscriberID {
			views = append(views, View{SubscriberLocation: *sl})
		}
	}
	return views, nil
}

func (m *mockRepo) ListAll(ctx context.Context) ([]SubscriberLocation, error) {
	all := make([]SubscriberLocation, 0, len(m.rows))
	for _, sl := range m.rows {
		all = append(all, *sl)
	}
	return all, nil
}

type mockTasks struct {
	taskID string
	err    error
	calls  int
}

func (m *mockTasks) EnqueueFetchAndSubscribe(ctx context.Context, externalID string, subscriberID uuid.UUID) (string, error) {
	m.calls++
	return m.taskID, m.err
}

type mockProgress struct {
	status string
	found  bool
	err    error
}

func (m *mockProgress) Get(ctx context.Context, taskID string) (string, bool, error) {
	return m.status, m.found, m.err
}

func TestRequestSubscription_RejectsEmptyExternalID(t *testing.T) {
	svc := NewService(newMockRepo(), &mockTasks{}, &mockProgress{})
	_, err := svc.RequestSubscription(context.Background(), uuid.New(), "")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected KindValidation, got %v", apperr.KindOf(err))
	}
}

func TestRequestSubscription_ReturnsTaskID(t *testing.T) {
	tasks := &mockTasks{taskID: "task-1"}
	svc := NewService(newMockRepo(), tasks, &mockProgress{})
	taskID, err := svc.RequestSubscription(context.Background(), uuid.New(), "ext-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if taskID != "task-1" || tasks.calls != 1 {
		t.Fatalf("expected task-1 returned once, got %q calls=%d", taskID, tasks.calls)
	}
}

func TestProgress_NotFound(t *testing.T) {
	svc := NewService(newMockRepo(), &mockTasks{}, &mockProgress{found: false})
	_, err := svc.Progress(context.Background(), "missing")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", apperr.KindOf(err))
	}
}

func TestProgress_ReturnsStatus(t *testing.T) {
	svc := NewService(newMockRepo(), &mockTasks{}, &mockProgress{status: ProgressSuccess, found: true})
	status, err := svc.Progress(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != ProgressSuccess {
		t.Fatalf("expected Success, got %q", status)
	}
}

func TestSubscribeUnsubscribeSubscribe_LeavesOneRow(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockTasks{}, &mockProgress{})
	subscriberID, locationID := uuid.New(), uuid.New()

	if _, err := svc.Subscribe(context.Background(), subscriberID, locationID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Unsubscribe(context.Background(), subscriberID, locationID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Subscribe(context.Background(), subscriberID, locationID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	views, err := svc.ListBySubscriber(context.Background(), subscriberID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected exactly one subscription row, got %d", len(views))
	}
}

func TestSubscribe_IsIdempotentOnRepeatCall(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockTasks{}, &mockProgress{})
	subscriberID, locationID := uuid.New(), uuid.New()

	first, err := svc.Subscribe(context.Background(), subscriberID, locationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Subscribe(context.Background(), subscriberID, locationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected idempotent subscribe to return the same row")
	}
}

func TestRemove_RejectsOtherSubscribersSubscription(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockTasks{}, &mockProgress{})
	owner, intruder, locationID := uuid.New(), uuid.New(), uuid.New()

	sl, err := svc.Subscribe(context.Background(), owner, locationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = svc.Remove(context.Background(), intruder, sl.ID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected KindNotFound for cross-subscriber removal, got %v", apperr.KindOf(err))
	}
}

func TestRemove_DeletesOwnSubscription(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockTasks{}, &mockProgress{})
	owner, locationID := uuid.New(), uuid.New()

	sl, err := svc.Subscribe(context.Background(), owner, locationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Remove(context.Background(), owner, sl.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	views, err := svc.ListBySubscriber(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected subscription removed, got %d rows", len(views))
	}
}

func TestListAll_ReturnsEverySubscriberRegardlessOfOwner(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockTasks{}, &mockProgress{})

	if _, err := svc.Subscribe(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Subscribe(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(all))
	}
}
