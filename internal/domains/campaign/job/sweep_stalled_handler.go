package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"pressline-backend/internal/domains/campaign/service"
	"pressline-backend/pkg/logger"
)

// ================================================
// SWEEP STALLED CAMPAIGNS JOB HANDLER
// ================================================

// SweepStalledHandler is the recovery sweep: active campaigns with no recent
// progress get one more pipeline pass dispatched.
type SweepStalledHandler struct {
	campaignService service.ServiceInterface
}

func NewSweepStalledHandler(campaignService service.ServiceInterface) *SweepStalledHandler {
	return &SweepStalledHandler{campaignService: campaignService}
}

func (h *SweepStalledHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	requeued, err := h.campaignService.SweepStalled(ctx)
	if err != nil {
		return fmt.Errorf("sweep stalled campaigns: %w", err)
	}
	if requeued > 0 {
		logger.Info("Completed SweepStalled job", map[string]interface{}{
			"requeued": requeued,
		})
	}
	return nil
}
