package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/internal/platform/mail"
	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// SourceResolver turns a bulletin source URL into its internal id, without
// this package importing the source domain package's types.
type SourceResolver interface {
	ResolveID(ctx context.Context, sourceURL string) (uuid.UUID, error)
}

// RateLimiter is the C8 contract as consumed by C10.
type RateLimiter interface {
	Take(ctx context.Context, bucket string) (allowed bool, retryAfter time.Duration, err error)
}

const emailBucket = "EMAIL_EXTERNAL_API"

var nairobi = mustLoadNairobi()

func mustLoadNairobi() *time.Location {
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		return time.UTC
	}
	return loc
}

type Service struct {
	repo    Repository
	sources SourceResolver
	limiter RateLimiter
	sender  mail.Sender
}

func NewService(repo Repository, sources SourceResolver, limiter RateLimiter, sender mail.Sender) *Service {
	return &Service{repo: repo, sources: sources, limiter: limiter, sender: sender}
}

// DispatchResult reports which outcome C10's state machine reached.
type DispatchResult string

const (
	DispatchSent       DispatchResult = "Sent"
	DispatchSuppressed DispatchResult = "Suppressed"
)

// Dispatch implements C10's five-step algorithm for one
// AffectedSubscriberWithLocations payload.
func (s *Service) Dispatch(ctx context.Context, payload AffectedSubscriberWithLocations) (DispatchResult, error) {
	sourceID, err := s.sources.ResolveID(ctx, payload.SourceURL)
	if err != nil {
		return "", apperr.Unexpected("resolve source for notification", err)
	}
	strategy, err := s.repo.GetOrCreateStrategyByName(ctx, StrategyEmail)
	if err != nil {
		return "", apperr.Unexpected("resolve email strategy", err)
	}

	candidates := make([]*NotificationRecord, len(payload.Locations))
	for i, loc := range payload.Locations {
		candidates[i] = &NotificationRecord{
			SourceID:          sourceID,
			SubscriberID:      payload.Subscriber.ID,
			LineName:          loc.LineName,
			StrategyID:        strategy.StrategyID,
			LocationIDMatched: loc.LocationID,
			DirectlyAffected:  loc.DirectlyAffected,
		}
	}
	reserved, err := s.repo.ReserveRecords(ctx, candidates)
	if err != nil {
		return "", apperr.Unexpected("reserve notification records", err)
	}
	if len(reserved) == 0 {
		return DispatchSuppressed, nil
	}

	won := make(map[string]bool, len(reserved))
	for _, rec := range reserved {
		won[rec.LineName] = true
	}
	pending := make([]AffectedLocationMatch, 0, len(reserved))
	for _, loc := range payload.Locations {
		if won[loc.LineName] {
			pending = append(pending, loc)
		}
	}

	msg := s.render(payload, pending)

	allowed, retryAfter, err := s.limiter.Take(ctx, emailBucket)
	if err != nil {
		s.release(ctx, reserved)
		return "", apperr.Unexpected("take rate limit token", err)
	}
	if !allowed {
		s.release(ctx, reserved)
		return "", apperr.RateLimitedAfter("email api rate limit exceeded", retryAfter)
	}

	requestID, err := s.sender.Send(ctx, msg)
	if err != nil {
		s.release(ctx, reserved)
		return "", err
	}

	if err := s.repo.SetExternalSendID(ctx, reserved, requestID); err != nil {
		return "", apperr.Unexpected("record notification", err)
	}
	return DispatchSent, nil
}

// release drops reservations whose send never completed, so a future
// replay retries them instead of treating the lines as already notified.
func (s *Service) release(ctx context.Context, recs []*NotificationRecord) {
	_ = s.repo.Release(ctx, recs)
}

func (s *Service) render(payload AffectedSubscriberWithLocations, pending []AffectedLocationMatch) mail.Message {
	state := mail.PotentiallyAffected
	for _, loc := range pending {
		if loc.DirectlyAffected {
			state = mail.DirectlyAffected
			break
		}
	}

	locations := make([]mail.AffectedLocation, len(pending))
	for i, loc := range pending {
		from := loc.From.In(nairobi)
		to := loc.To.In(nairobi)
		locations[i] = mail.AffectedLocation{
			Location:  fmt.Sprintf("%s (%s)", loc.LocationName, loc.LineName),
			Date:      from.Format("02/01/2006"),
			StartTime: from.Format("15:04"),
			EndTime:   to.Format("15:04"),
		}
	}

	return mail.Message{
		To: mail.Recipient{Email: payload.Subscriber.Email},
		Data: mail.TemplateData{
			RecipientName:     payload.Subscriber.Name,
			AffectedState:     state,
			Link:              payload.SourceURL,
			AffectedLocations: locations,
		},
	}
}
