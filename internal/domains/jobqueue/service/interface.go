package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pressline-backend/internal/domains/jobqueue/model"
)

// Outcome is the terminal result a consumer reports for a claimed job.
type Outcome struct {
	Success bool
	Detail  string // error detail when Success is false
}

// QueueInterface is the producer/consumer surface of the durable job queue.
// Retry policy belongs to producers: a failed job stays failed, and the
// producer may enqueue a fresh one.
type QueueInterface interface {
	Enqueue(ctx context.Context, jobType string, payload interface{}) (uuid.UUID, error)

	// EnqueueOnce enqueues at most one job per dedupe key. Re-enqueueing
	// an existing key returns the existing job's id, so producers can
	// safely repeat the call when re-driving a checkpointed step.
	EnqueueOnce(ctx context.Context, jobType, dedupeKey string, payload interface{}) (uuid.UUID, error)

	// ClaimNext returns the next queued job of one of the given types, or
	// nil when the queue is empty. Safe under concurrent pollers.
	ClaimNext(ctx context.Context, types []string) (*model.Job, error)

	Complete(ctx context.Context, jobID uuid.UUID, outcome Outcome) error

	Get(ctx context.Context, jobID uuid.UUID) (*model.Job, error)
	List(ctx context.Context, status model.JobStatus, page, pageSize int) ([]*model.Job, error)

	// ReclaimStale is an explicit operator action, logged as such - never
	// run silently, to avoid infinite poison-job loops.
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int, error)
}
