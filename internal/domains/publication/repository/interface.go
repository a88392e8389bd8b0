package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pressline-backend/internal/domains/publication/model"
)

// RepositoryInterface is the single logical publication store. The system
// historically accumulated more than one physical table that can hold a
// published article; this interface fans uniqueness checks out across all of
// them so callers never need to know the physical layout.
type RepositoryInterface interface {
	// ExistsByKey reports whether (domainID, slug) is taken in ANY
	// publication-bearing table, ignoring the row identified by excludeID
	// (uuid.Nil = exclude nothing).
	ExistsByKey(ctx context.Context, domainID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Publication, error)
	GetByKey(ctx context.Context, domainID uuid.UUID, slug string) (*model.Publication, error)
	FindByCampaign(ctx context.Context, campaignID uuid.UUID) (*model.Publication, error)

	// Upsert inserts or updates in place on (domain_id, slug). An existing
	// row owned by a different campaign is NOT overwritten - the method
	// returns model.ErrSlugConflict so the writer can re-allocate.
	// The domain metrics snapshot is updated in the same transaction.
	Upsert(ctx context.Context, pub *model.Publication, spend decimal.Decimal) (*model.Publication, error)

	// MarkPublished flips a draft to published and stamps published_at.
	MarkPublished(ctx context.Context, id uuid.UUID) (*model.Publication, error)

	GetMetrics(ctx context.Context, domainID uuid.UUID) (*model.DomainMetrics, error)

	// ListUnprefixed returns rows from every publication-bearing table of a
	// domain whose slug does not start with prefix. Used by slug migration.
	ListUnprefixed(ctx context.Context, domainID uuid.UUID, prefix string) ([]model.SlugRow, error)

	// UpdateSlug rewrites the slug of one row in the named physical table.
	UpdateSlug(ctx context.Context, table string, id uuid.UUID, newSlug string) error
}
