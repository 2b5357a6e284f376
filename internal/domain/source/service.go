package source

import (
	"context"

	"github.com/google/uuid"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Service implements the Source Registry (C2) contract: union scraped and
// manually-added candidate URLs, then filter out anything already ingested.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PendingURLs returns the batch of bulletin URLs that still need ingesting:
// scraped candidates unioned with the manually-added backlog, minus URLs
// already present in the source table.
func (s *Service) PendingURLs(ctx context.Context, scraped []string) ([]string, error) {
	existing, err := s.repo.ExistingURLs(ctx)
	if err != nil {
		return nil, apperr.Unexpected("load existing source URLs", err)
	}

	manual, err := s.repo.ListManual(ctx)
	if err != nil {
		return nil, apperr.Unexpected("load manually added sources", err)
	}

	seen := make(map[string]bool, len(scraped)+len(manual))
	var pending []string
	add := func(url string) {
		if url == "" || existing[url] || seen[url] {
			return
		}
		seen[url] = true
		pending = append(pending, url)
	}
	for _, url := range scraped {
		add(url)
	}
	for _, m := range manual {
		add(m.URL)
	}
	return pending, nil
}

// MarkIngested records a URL as successfully processed. Re-ingesting a known
// URL is a no-op per the GetOrCreate upsert semantics.
func (s *Service) MarkIngested(ctx context.Context, url string) (*Source, error) {
	src, err := s.repo.GetOrCreate(ctx, url)
	if err != nil {
		return nil, apperr.Unexpected("persist source", err)
	}
	return src, nil
}

// AddManual registers an operator-supplied bulletin URL for the next C2
// sweep to pick up.
func (s *Service) AddManual(ctx context.Context, url string) error {
	if url == "" {
		return apperr.Validation("url is required", nil)
	}
	if err := s.repo.AddManual(ctx, url); err != nil {
		return apperr.Unexpected("add manually added source", err)
	}
	return nil
}

func (s *Service) GetByURL(ctx context.Context, url string) (*Source, error) {
	src, err := s.repo.GetByURL(ctx, url)
	if err != nil {
		return nil, apperr.NotFound("source not found", err)
	}
	return src, nil
}

// ResolveURL turns a source id back into its bulletin URL, the inverse of
// ResolveID — the task queue needs this to stamp a SendEmailNotification
// payload's SourceURL from a match's SourceID.
func (s *Service) ResolveURL(ctx context.Context, sourceID uuid.UUID) (string, error) {
	src, err := s.repo.GetByID(ctx, sourceID)
	if err != nil {
		return "", apperr.NotFound("source not found", err)
	}
	return src.URL, nil
}

// ResolveID satisfies notification.SourceResolver: it turns a bulletin URL
// into the source's internal id.
func (s *Service) ResolveID(ctx context.Context, url string) (uuid.UUID, error) {
	src, err := s.GetByURL(ctx, url)
	if err != nil {
		return uuid.Nil, err
	}
	return src.SourceID, nil
}
