package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"pressline-backend/internal/domains/publication/repository"
	"pressline-backend/internal/shared/utils"
)

// maxSuffixAttempts bounds the -{n} probe before falling back to a
// time-based suffix, guaranteeing termination.
const maxSuffixAttempts = 10

type slugAllocator struct {
	repo repository.RepositoryInterface
}

func NewSlugAllocator(repo repository.RepositoryInterface) SlugAllocator {
	return &slugAllocator{repo: repo}
}

func (a *slugAllocator) Allocate(ctx context.Context, domainID uuid.UUID, themeKey, candidateText string, opts AllocateOptions) (string, error) {
	base := utils.NormalizeSlug(candidateText)
	if base == "" {
		// Degenerate input never fails allocation - fall back to a
		// generated identifier.
		base = "post-" + xid.New().String()
	}

	// Namespacing by theme keeps two themes on one domain from colliding on
	// an otherwise-identical human title.
	if theme := utils.NormalizeSlug(themeKey); theme != "" {
		base = theme + "/" + base
	}

	candidate := base
	for n := 0; n <= maxSuffixAttempts; n++ {
		if n > 0 {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}

		if isBlocked(candidate, opts.Blocked) {
			continue
		}

		taken, err := a.repo.ExistsByKey(ctx, domainID, candidate, opts.ExcludeID)
		if err != nil {
			return "", fmt.Errorf("slug uniqueness check failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	// Time-based suffix - xid is unique enough that no further check is
	// worth the read.
	return fmt.Sprintf("%s-%s", base, xid.New().String()), nil
}

func isBlocked(slug string, blocked []string) bool {
	for _, b := range blocked {
		if slug == b {
			return true
		}
	}
	return false
}
