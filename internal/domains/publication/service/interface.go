package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainModel "pressline-backend/internal/domains/domain/model"
	"pressline-backend/internal/domains/publication/model"
)

// AllocateOptions tunes one slug allocation.
type AllocateOptions struct {
	// ExcludeID ignores an existing row during the uniqueness check,
	// used when re-allocating for an update-in-place.
	ExcludeID uuid.UUID

	// Blocked slugs are never returned, regardless of store state. The
	// writer uses this to exclude a slug that just lost a write race.
	Blocked []string
}

// SlugAllocator produces a globally-unique path segment for a domain.
// Pure read-then-decide: it performs no writes, so two concurrent
// allocations can race - the writer resolves that as a conflict.
type SlugAllocator interface {
	Allocate(ctx context.Context, domainID uuid.UUID, themeKey, candidateText string, opts AllocateOptions) (string, error)
}

// PublishRequest is the writer input. The caller resolves the domain first -
// the writer never touches the domain directory.
type PublishRequest struct {
	Domain        *domainModel.Domain
	CampaignID    *uuid.UUID // nil for ad hoc publications
	ExistingID    uuid.UUID  // non-nil row id when re-driving an update-in-place
	SlugCandidate string
	Title         string
	Body          string
	Status        model.Status
	Spend         decimal.Decimal
}

// Writer performs the idempotent create-or-update of one publication.
type Writer interface {
	Publish(ctx context.Context, req *PublishRequest) (*model.Publication, error)
}

// SlugMigrator re-namespaces legacy slugs under the domain's theme prefix.
type SlugMigrator interface {
	Migrate(ctx context.Context, domain *domainModel.Domain, apply bool) (*model.MigrationReport, error)
}
