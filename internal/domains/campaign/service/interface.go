package service

import (
	"context"

	"github.com/google/uuid"

	"pressline-backend/internal/domains/campaign/model"
)

// Dispatcher hands a campaign to the worker for an asynchronous pipeline
// pass. Implemented by the asynq task client.
type Dispatcher interface {
	EnqueueRunCampaign(ctx context.Context, campaignID uuid.UUID) error
}

// ServiceInterface drives the campaign lifecycle. Resume is the single
// pipeline entry point: creation, operator resume, the recovery sweep and the
// worker all go through it.
type ServiceInterface interface {
	Create(ctx context.Context, accountID uuid.UUID, req *model.CreateCampaignRequest) (*model.Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	List(ctx context.Context, status string, page, pageSize int) ([]model.Campaign, int64, error)

	// Resume runs one pipeline pass: it inspects persisted state and
	// re-drives only the steps that have not happened yet. Safe to call
	// any number of times.
	Resume(ctx context.Context, id uuid.UUID) error

	Pause(ctx context.Context, id uuid.UUID) error

	// RequestResume unpauses if needed and dispatches a worker pass.
	RequestResume(ctx context.Context, id uuid.UUID) error

	// SweepStalled re-dispatches active campaigns that have not progressed
	// recently. Returns how many were re-enqueued.
	SweepStalled(ctx context.Context) (int, error)
}
