package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainModel "pressline-backend/internal/domains/domain/model"
	"pressline-backend/internal/domains/publication/model"
	"pressline-backend/internal/domains/publication/repository"
	"pressline-backend/pkg/logger"
)

type writer struct {
	repo      repository.RepositoryInterface
	allocator SlugAllocator
}

func NewWriter(repo repository.RepositoryInterface, allocator SlugAllocator) Writer {
	return &writer{repo: repo, allocator: allocator}
}

// Publish allocates a slug and upserts keyed on (domain_id, slug). A write
// race between two concurrent allocations shows up as a conflict; the writer
// re-allocates once with the conflicting slug excluded and retries exactly
// once before surfacing the conflict. No follow-on jobs are enqueued here -
// that belongs to the caller.
func (w *writer) Publish(ctx context.Context, req *PublishRequest) (*model.Publication, error) {
	if req.Domain == nil {
		return nil, model.NewWriteError(errors.New("domain is required"))
	}
	if !req.Domain.IsActive {
		return nil, model.NewWriteError(domainModel.ErrDomainDisabled)
	}

	// A campaign owns at most one publication. When the caller did not pass
	// the row id, look it up so a repeated publish updates in place instead
	// of allocating a suffixed sibling slug.
	existingID := req.ExistingID
	if existingID == uuid.Nil && req.CampaignID != nil {
		existing, err := w.repo.FindByCampaign(ctx, *req.CampaignID)
		if err != nil {
			return nil, model.NewWriteError(err)
		}
		if existing != nil {
			existingID = existing.ID
		}
	}

	slug, err := w.allocator.Allocate(ctx, req.Domain.ID, req.Domain.ThemeKey, req.SlugCandidate, AllocateOptions{
		ExcludeID: existingID,
	})
	if err != nil {
		return nil, err
	}

	pub, err := w.upsert(ctx, req, slug)
	if errors.Is(err, model.ErrSlugConflict) {
		logger.Warn("Slug write race, re-allocating once", map[string]interface{}{
			"domain_id": req.Domain.ID,
			"slug":      slug,
		})

		retrySlug, allocErr := w.allocator.Allocate(ctx, req.Domain.ID, req.Domain.ThemeKey, req.SlugCandidate, AllocateOptions{
			ExcludeID: existingID,
			Blocked:   []string{slug},
		})
		if allocErr != nil {
			return nil, allocErr
		}

		pub, err = w.upsert(ctx, req, retrySlug)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Publication written", map[string]interface{}{
		"publication_id": pub.ID,
		"domain_id":      pub.DomainID,
		"slug":           pub.Slug,
		"status":         string(pub.Status),
	})
	return pub, nil
}

func (w *writer) upsert(ctx context.Context, req *PublishRequest, slug string) (*model.Publication, error) {
	var publishedAt *time.Time
	if req.Status == model.StatusPublished {
		now := time.Now()
		publishedAt = &now
	}

	pub := &model.Publication{
		DomainID:    req.Domain.ID,
		CampaignID:  req.CampaignID,
		Slug:        slug,
		Title:       req.Title,
		Body:        req.Body,
		PublicURL:   req.Domain.PublicURL(slug),
		Status:      req.Status,
		ThemeKey:    req.Domain.ThemeKey,
		PublishedAt: publishedAt,
	}

	return w.repo.Upsert(ctx, pub, req.Spend)
}
