package source

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists Source rows and the manually-added-source backlog.
type Repository interface {
	// GetOrCreate returns the Source for url, inserting it if it does not
	// exist yet. Re-ingesting a known URL is therefore a no-op.
	GetOrCreate(ctx context.Context, url string) (*Source, error)
	GetByURL(ctx context.Context, url string) (*Source, error)
	GetByID(ctx context.Context, sourceID uuid.UUID) (*Source, error)
	// ExistingURLs returns the set of URLs already present in the source
	// table, used by C2 to filter the scraped+manual candidate list.
	ExistingURLs(ctx context.Context) (map[string]bool, error)

	AddManual(ctx context.Context, url string) error
	ListManual(ctx context.Context) ([]ManuallyAddedSource, error)
	RemoveManual(ctx context.Context, url string) error
}
