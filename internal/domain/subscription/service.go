package subscription

import (
	"context"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// TaskEnqueuer starts the FetchAndSubscribeToLocation task chain (C4→C5→C6)
// for a subscriber's externally-identified location.
type TaskEnqueuer interface {
	EnqueueFetchAndSubscribe(ctx context.Context, externalID string, subscriberID uuid.UUID) (taskID string, err error)
}

// ProgressTracker reads the C9 progress key a subscribe request's task was
// stamped with.
type ProgressTracker interface {
	Get(ctx context.Context, taskID string) (status string, found bool, err error)
}

type Service struct {
	repo     Repository
	tasks    TaskEnqueuer
	progress ProgressTracker
}

func NewService(repo Repository, tasks TaskEnqueuer, progress ProgressTracker) *Service {
	return &Service{repo: repo, tasks: tasks, progress: progress}
}

// RequestSubscription is the synchronous half of POST /api/locations/subscribe:
// it enqueues the FetchAndSubscribeToLocation task and returns its TaskId for
// the client to poll.
func (s *Service) RequestSubscription(ctx context.Context, subscriberID uuid.UUID, externalID string) (string, error) {
	if externalID == "" {
		return "", apperr.Validation("external_id is required", nil)
	}
	taskID, err := s.tasks.EnqueueFetchAndSubscribe(ctx, externalID, subscriberID)
	if err != nil {
		return "", apperr.Unexpected("enqueue fetch-and-subscribe task", err)
	}
	return taskID, nil
}

// Progress resolves a subscribe request's task status for the polling
// endpoint.
func (s *Service) Progress(ctx context.Context, taskID string) (string, error) {
	status, found, err := s.progress.Get(ctx, taskID)
	if err != nil {
		return "", apperr.Unexpected("read task progress", err)
	}
	if !found {
		return "", apperr.NotFound("no progress recorded for task "+taskID, nil)
	}
	return status, nil
}

// Subscribe is the domain operation the task chain invokes once C4 has
// resolved a Location: create the subscription row, idempotently on
// (SubscriberID, LocationID).
func (s *Service) Subscribe(ctx context.Context, subscriberID, locationID uuid.UUID) (*SubscriberLocation, error) {
	sl, err := s.repo.Create(ctx, subscriberID, locationID)
	if err != nil {
		return nil, apperr.Unexpected("create subscription", err)
	}
	return sl, nil
}

// Unsubscribe removes a subscription by (subscriber, location). The
// Location row itself is never touched.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID, locationID uuid.UUID) error {
	if err := s.repo.Delete(ctx, subscriberID, locationID); err != nil {
		return apperr.Unexpected("delete subscription", err)
	}
	return nil
}

// Remove implements DELETE /api/primary_location/{id}: the subscriber may
// only remove their own subscription row.
func (s *Service) Remove(ctx context.Context, subscriberID, subscriptionID uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, subscriptionID)
	if err != nil {
		return apperr.NotFound("subscription not found", err)
	}
	if existing.SubscriberID != subscriberID {
		return apperr.NotFound("subscription not found", nil)
	}
	if err := s.repo.DeleteByID(ctx, subscriberID, subscriptionID); err != nil {
		return apperr.Unexpected("delete subscription", err)
	}
	return nil
}

// ListBySubscriber implements GET /api/locations/list/subscribed.
func (s *Service) ListBySubscriber(ctx context.Context, subscriberID uuid.UUID) ([]View, error) {
	views, err := s.repo.ListBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, apperr.Unexpected("list subscriptions", err)
	}
	return views, nil
}

// ListAll returns every subscription, for the notify-retry backfill
// subcommand.
func (s *Service) ListAll(ctx context.Context) ([]SubscriberLocation, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Unexpected("list all subscriptions", err)
	}
	return all, nil
}
