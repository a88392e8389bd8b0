package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pressline-backend/internal/domains/campaign/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, campaign *model.Campaign) (*model.Campaign, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	List(ctx context.Context, status string, limit, offset int) ([]model.Campaign, int64, error)

	// MarkActive moves a pending or paused campaign to active and stamps
	// started_at on the first activation.
	MarkActive(ctx context.Context, id uuid.UUID) error

	// Pause moves a pending or active campaign to paused.
	Pause(ctx context.Context, id uuid.UUID) error

	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, summary string) error

	// RecordExhaustion bumps the exhausted-attempt counter and stores the
	// provider summary without leaving the active state.
	RecordExhaustion(ctx context.Context, id uuid.UUID, attempts int, summary string) error

	// ListStalled returns active campaigns whose last update is older than
	// the cutoff, for the recovery sweep to re-enqueue.
	ListStalled(ctx context.Context, updatedBefore time.Time, limit int) ([]uuid.UUID, error)
}
