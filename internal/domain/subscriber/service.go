package subscriber

import (
	"context"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Service authenticates subscribers against their bearer-token identity and
// answers lookups needed by the match engine and notification dispatcher.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate resolves the subscriber for externalID (the JWT `sub`
// claim), creating the row on first sight and refreshing name/email/
// last_login on every call thereafter.
func (s *Service) Authenticate(ctx context.Context, externalID, name, email string) (*Subscriber, error) {
	if externalID == "" {
		return nil, apperr.Validation("external_id is required", nil)
	}
	sub, err := s.repo.GetOrCreateByExternalID(ctx, externalID, name, email)
	if err != nil {
		return nil, apperr.Unexpected("authenticate subscriber", err)
	}
	return sub, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Subscriber, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("subscriber not found", err)
	}
	return sub, nil
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (*Subscriber, error) {
	sub, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, apperr.NotFound("subscriber not found", err)
	}
	return sub, nil
}

// ResolveID satisfies subscription.SubscriberResolver: it turns the JWT
// bearer subject into the subscriber's internal id.
func (s *Service) ResolveID(ctx context.Context, externalID string) (uuid.UUID, error) {
	sub, err := s.GetByExternalID(ctx, externalID)
	if err != nil {
		return uuid.Nil, err
	}
	return sub.SubscriberID, nil
}
