package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"pressline-backend/internal/domains/jobqueue/model"
	"pressline-backend/internal/domains/jobqueue/service"
	"pressline-backend/pkg/logger"
)

// ================================================
// STALE PROCESSING JOBS REPORT HANDLER
// ================================================

// StaleReportHandler reports jobs stuck in processing past the stale
// threshold. It NEVER reclaims them - a consumer crash and a poison job look
// identical from here, so re-queueing is left to an explicit operator call.
type StaleReportHandler struct {
	queue      service.QueueInterface
	staleAfter time.Duration
}

func NewStaleReportHandler(queue service.QueueInterface, staleAfter time.Duration) *StaleReportHandler {
	return &StaleReportHandler{queue: queue, staleAfter: staleAfter}
}

func (h *StaleReportHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	jobs, err := h.queue.List(ctx, model.JobStatusProcessing, 1, 100)
	if err != nil {
		return fmt.Errorf("list processing jobs: %w", err)
	}

	cutoff := time.Now().Add(-h.staleAfter)
	stale := 0
	for _, j := range jobs {
		if j.UpdatedAt.Before(cutoff) {
			stale++
			logger.Warn("job stuck in processing", map[string]interface{}{
				"job_id":     j.ID.String(),
				"type":       j.Type,
				"updated_at": j.UpdatedAt.Format(time.RFC3339),
			})
		}
	}

	if stale > 0 {
		logger.Warn("stale processing jobs detected, reclaim via POST /admin/jobs/reclaim", map[string]interface{}{
			"count": stale,
		})
	}
	return nil
}
