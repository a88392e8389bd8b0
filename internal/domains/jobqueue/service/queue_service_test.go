package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressline-backend/internal/domains/jobqueue/model"
)

// fakeJobRepo mimics the claim semantics of the Postgres store: a job can be
// claimed exactly once, and terminal transitions require processing state.
type fakeJobRepo struct {
	jobs []*model.Job
}

func (f *fakeJobRepo) Insert(ctx context.Context, jobType string, payload json.RawMessage) (*model.Job, error) {
	job := &model.Job{
		ID:        uuid.New(),
		Type:      jobType,
		Payload:   payload,
		Status:    model.JobStatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.jobs = append(f.jobs, job)
	return job, nil
}

func (f *fakeJobRepo) InsertOnce(ctx context.Context, jobType, dedupeKey string, payload json.RawMessage) (*model.Job, error) {
	for _, j := range f.jobs {
		if j.DedupeKey == dedupeKey {
			return j, nil
		}
	}
	job := &model.Job{
		ID:        uuid.New(),
		Type:      jobType,
		Payload:   payload,
		Status:    model.JobStatusQueued,
		DedupeKey: dedupeKey,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.jobs = append(f.jobs, job)
	return job, nil
}

func (f *fakeJobRepo) Claim(ctx context.Context, types []string) (*model.Job, error) {
	for _, j := range f.jobs {
		if j.Status != model.JobStatusQueued {
			continue
		}
		for _, t := range types {
			if j.Type == t {
				j.Status = model.JobStatusProcessing
				j.UpdatedAt = time.Now()
				return j, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeJobRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.JobStatus, lastError string) error {
	for _, j := range f.jobs {
		if j.ID == id {
			if j.Status != model.JobStatusProcessing {
				return model.ErrJobNotProcessing
			}
			j.Status = status
			j.LastError = lastError
			j.UpdatedAt = time.Now()
			return nil
		}
	}
	return model.ErrJobNotFound
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, nil
}

func (f *fakeJobRepo) List(ctx context.Context, status model.JobStatus, offset, limit int) ([]*model.Job, error) {
	out := make([]*model.Job, 0)
	for _, j := range f.jobs {
		if status == "" || j.Status == status {
			out = append(out, j)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (f *fakeJobRepo) ReclaimStale(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error) {
	cutoff := time.Now().Add(-olderThan)
	ids := make([]uuid.UUID, 0)
	for _, j := range f.jobs {
		if j.Status == model.JobStatusProcessing && j.UpdatedAt.Before(cutoff) {
			j.Status = model.JobStatusQueued
			j.UpdatedAt = time.Now()
			ids = append(ids, j.ID)
		}
	}
	return ids, nil
}

func TestQueue_EnqueueClaimComplete(t *testing.T) {
	repo := &fakeJobRepo{}
	q := NewQueueService(repo)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "comment:post", map[string]string{"url": "https://example.test/x"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	job, err := q.ClaimNext(ctx, []string{"comment:post"})
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, model.JobStatusProcessing, job.Status)

	// Queue is empty for a second claimer.
	second, err := q.ClaimNext(ctx, []string{"comment:post"})
	require.NoError(t, err)
	assert.Nil(t, second, "a claimed job must not be handed out twice")

	require.NoError(t, q.Complete(ctx, id, Outcome{Success: true}))

	done, err := q.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusDone, done.Status)
}

func TestQueue_EnqueueOnceDeduplicatesByKey(t *testing.T) {
	repo := &fakeJobRepo{}
	q := NewQueueService(repo)
	ctx := context.Background()

	pubID := uuid.New()
	key := "comment:post:" + pubID.String()

	first, err := q.EnqueueOnce(ctx, "comment:post", key, map[string]string{"publication_id": pubID.String()})
	require.NoError(t, err)

	// A producer re-driving the same step repeats the call; the queue
	// must hand back the existing job instead of growing a duplicate.
	second, err := q.EnqueueOnce(ctx, "comment:post", key, map[string]string{"publication_id": pubID.String()})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, repo.jobs, 1)

	// A different key is a different job.
	_, err = q.EnqueueOnce(ctx, "comment:post", "comment:post:"+uuid.New().String(), nil)
	require.NoError(t, err)
	assert.Len(t, repo.jobs, 2)
}

func TestQueue_FailedOutcomeKeepsDetail(t *testing.T) {
	repo := &fakeJobRepo{}
	q := NewQueueService(repo)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "comment:post", nil)
	require.NoError(t, err)

	_, err = q.ClaimNext(ctx, []string{"comment:post"})
	require.NoError(t, err)

	require.NoError(t, q.Complete(ctx, id, Outcome{Success: false, Detail: "endpoint returned 503"}))

	job, err := q.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Equal(t, "endpoint returned 503", job.LastError)

	// Terminal means terminal: the job is not claimable again.
	next, err := q.ClaimNext(ctx, []string{"comment:post"})
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestQueue_ClaimFiltersOnType(t *testing.T) {
	repo := &fakeJobRepo{}
	q := NewQueueService(repo)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, "other:type", nil)
	require.NoError(t, err)

	job, err := q.ClaimNext(ctx, []string{"comment:post"})
	require.NoError(t, err)
	assert.Nil(t, job, "jobs of unregistered types stay queued")
}

func TestQueue_ReclaimStaleRequeues(t *testing.T) {
	repo := &fakeJobRepo{}
	q := NewQueueService(repo)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "comment:post", nil)
	require.NoError(t, err)
	_, err = q.ClaimNext(ctx, []string{"comment:post"})
	require.NoError(t, err)

	// Backdate the claim so it looks abandoned.
	repo.jobs[0].UpdatedAt = time.Now().Add(-time.Hour)

	count, err := q.ReclaimStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	job, err := q.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusQueued, job.Status)
}

func TestQueue_CompleteRequiresProcessing(t *testing.T) {
	repo := &fakeJobRepo{}
	q := NewQueueService(repo)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "comment:post", nil)
	require.NoError(t, err)

	err = q.Complete(ctx, id, Outcome{Success: true})
	assert.ErrorIs(t, err, model.ErrJobNotProcessing)
}

// stubExecutor records executed jobs and returns a fixed outcome.
type stubExecutor struct {
	jobType  string
	outcome  Outcome
	executed []uuid.UUID
}

func (s *stubExecutor) JobType() string { return s.jobType }

func (s *stubExecutor) Execute(ctx context.Context, job *model.Job) Outcome {
	s.executed = append(s.executed, job.ID)
	return s.outcome
}

func TestPoller_RunCycleDrainsQueue(t *testing.T) {
	repo := &fakeJobRepo{}
	q := NewQueueService(repo)
	ctx := context.Background()

	exec := &stubExecutor{jobType: "comment:post", outcome: Outcome{Success: true}}
	poller := NewPoller(q, exec)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id, err := q.Enqueue(ctx, "comment:post", nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	processed, err := poller.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, processed)
	assert.ElementsMatch(t, ids, exec.executed)

	for _, id := range ids {
		job, err := q.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusDone, job.Status)
	}
}

func TestPoller_FailedExecutionMarksJobFailed(t *testing.T) {
	repo := &fakeJobRepo{}
	q := NewQueueService(repo)
	ctx := context.Background()

	exec := &stubExecutor{jobType: "comment:post", outcome: Outcome{Success: false, Detail: "boom"}}
	poller := NewPoller(q, exec)

	id, err := q.Enqueue(ctx, "comment:post", nil)
	require.NoError(t, err)

	processed, err := poller.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	job, err := q.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.LastError)
}
