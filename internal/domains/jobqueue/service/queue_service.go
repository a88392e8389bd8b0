package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pressline-backend/internal/domains/jobqueue/model"
	"pressline-backend/internal/domains/jobqueue/repository"
	"pressline-backend/pkg/logger"
)

type queueService struct {
	repo repository.RepositoryInterface
}

func NewQueueService(repo repository.RepositoryInterface) QueueInterface {
	return &queueService{repo: repo}
}

func (s *queueService) Enqueue(ctx context.Context, jobType string, payload interface{}) (uuid.UUID, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, model.NewEnqueueError(fmt.Errorf("marshal payload: %w", err))
	}

	job, err := s.repo.Insert(ctx, jobType, raw)
	if err != nil {
		return uuid.Nil, err
	}

	logger.Info("Job enqueued", map[string]interface{}{
		"job_id": job.ID,
		"type":   jobType,
	})
	return job.ID, nil
}

func (s *queueService) EnqueueOnce(ctx context.Context, jobType, dedupeKey string, payload interface{}) (uuid.UUID, error) {
	if dedupeKey == "" {
		return s.Enqueue(ctx, jobType, payload)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, model.NewEnqueueError(fmt.Errorf("marshal payload: %w", err))
	}

	job, err := s.repo.InsertOnce(ctx, jobType, dedupeKey, raw)
	if err != nil {
		return uuid.Nil, err
	}

	logger.Info("Job enqueued", map[string]interface{}{
		"job_id":     job.ID,
		"type":       jobType,
		"dedupe_key": dedupeKey,
	})
	return job.ID, nil
}

func (s *queueService) ClaimNext(ctx context.Context, types []string) (*model.Job, error) {
	if len(types) == 0 {
		return nil, nil
	}
	return s.repo.Claim(ctx, types)
}

func (s *queueService) Complete(ctx context.Context, jobID uuid.UUID, outcome Outcome) error {
	status := model.JobStatusDone
	if !outcome.Success {
		status = model.JobStatusFailed
	}

	if err := s.repo.SetStatus(ctx, jobID, status, outcome.Detail); err != nil {
		return err
	}

	logger.Info("Job completed", map[string]interface{}{
		"job_id": jobID,
		"status": string(status),
	})
	return nil
}

func (s *queueService) Get(ctx context.Context, jobID uuid.UUID) (*model.Job, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, model.ErrJobNotFound
	}
	return job, nil
}

func (s *queueService) List(ctx context.Context, status model.JobStatus, page, pageSize int) ([]*model.Job, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.repo.List(ctx, status, (page-1)*pageSize, pageSize)
}

// ReclaimStale requeues processing jobs whose consumer apparently died.
// Every reclaimed id is logged so the operation leaves an audit trail.
func (s *queueService) ReclaimStale(ctx context.Context, olderThan time.Duration) (int, error) {
	ids, err := s.repo.ReclaimStale(ctx, olderThan)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		logger.Warn("Job reclaimed to queued", map[string]interface{}{
			"job_id":     id,
			"older_than": olderThan.String(),
		})
	}
	return len(ids), nil
}
