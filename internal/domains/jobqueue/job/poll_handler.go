package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"pressline-backend/internal/domains/jobqueue/service"
	"pressline-backend/pkg/logger"
)

// ================================================
// JOB QUEUE POLL HANDLER
// ================================================

// PollHandler runs one polling cycle of the durable queue on the worker.
// The scheduler fires it on an interval; each cycle drains queued jobs.
type PollHandler struct {
	poller *service.Poller
}

func NewPollHandler(poller *service.Poller) *PollHandler {
	return &PollHandler{poller: poller}
}

func (h *PollHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	processed, err := h.poller.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("job queue poll cycle: %w", err)
	}
	if processed > 0 {
		logger.Info("Completed JobQueuePoll job", map[string]interface{}{
			"processed": processed,
		})
	}
	return nil
}
