package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"pressline-backend/internal/domains/jobqueue/model"
)

// RepositoryInterface is the durable job store. The status column is the
// serialization point: Claim flips queued -> processing atomically so two
// pollers never take the same job.
type RepositoryInterface interface {
	Insert(ctx context.Context, jobType string, payload json.RawMessage) (*model.Job, error)

	// InsertOnce inserts keyed on dedupeKey. When a job with that key
	// already exists, the existing job is returned and no row is written.
	InsertOnce(ctx context.Context, jobType, dedupeKey string, payload json.RawMessage) (*model.Job, error)

	// Claim atomically takes the oldest queued job of one of the given
	// types. Returns (nil, nil) when nothing is queued.
	Claim(ctx context.Context, types []string) (*model.Job, error)

	// SetStatus transitions a processing job to a terminal state.
	SetStatus(ctx context.Context, id uuid.UUID, status model.JobStatus, lastError string) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, status model.JobStatus, offset, limit int) ([]*model.Job, error)

	// ReclaimStale moves processing jobs older than the threshold back to
	// queued and returns the affected ids.
	ReclaimStale(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error)
}
