package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one asynchronous work item. The payload is opaque to the queue;
// producers and consumers agree on its shape per type. done and failed are
// terminal - a job is never re-queued automatically.
type Job struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Type      string          `json:"type" db:"type"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	Status    JobStatus       `json:"status" db:"status"`
	DedupeKey string          `json:"dedupe_key,omitempty" db:"dedupe_key"`
	LastError string          `json:"last_error,omitempty" db:"last_error"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
