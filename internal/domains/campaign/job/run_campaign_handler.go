package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	campaignModel "pressline-backend/internal/domains/campaign/model"
	"pressline-backend/internal/domains/campaign/service"
	"pressline-backend/internal/shared"
	"pressline-backend/internal/shared/utils"
	"pressline-backend/pkg/logger"
)

// ================================================
// RUN CAMPAIGN JOB HANDLER
// ================================================

// RunCampaignHandler executes one pipeline pass on the worker. Returning an
// error makes asynq retry the task, which is exactly one more resume.
type RunCampaignHandler struct {
	campaignService service.ServiceInterface
}

func NewRunCampaignHandler(campaignService service.ServiceInterface) *RunCampaignHandler {
	return &RunCampaignHandler{campaignService: campaignService}
}

func (h *RunCampaignHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.RunCampaignPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("run campaign payload: %w", err)
	}

	logger.Info("Starting RunCampaign job", map[string]interface{}{
		"campaign_id": payload.CampaignID.String(),
	})

	err := h.campaignService.Resume(ctx, payload.CampaignID)
	if err == nil {
		return nil
	}

	// Terminal outcomes must not be retried by asynq: a failed campaign
	// stays failed, and a deleted one has nothing to run.
	if errors.Is(err, campaignModel.ErrCampaignNotFound) {
		logger.Warn("RunCampaign for unknown campaign, dropping task", map[string]interface{}{
			"campaign_id": payload.CampaignID.String(),
		})
		return nil
	}

	var campaignErr *campaignModel.CampaignError
	if errors.As(err, &campaignErr) && campaignErr.Code == campaignModel.ErrCampaignExhausted.Code {
		// Exhaustion is already counted against the campaign budget; an
		// immediate asynq retry would just burn another budget slot.
		logger.Warn("RunCampaign pass exhausted providers", map[string]interface{}{
			"campaign_id": payload.CampaignID.String(),
		})
		return nil
	}

	return fmt.Errorf("run campaign %s: %w", payload.CampaignID, err)
}
