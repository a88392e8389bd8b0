package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"pressline-backend/internal/shared"
)

// TaskClient wraps the asynq client with typed enqueue helpers so services
// never build tasks by hand.
type TaskClient struct {
	client *asynq.Client
}

func NewTaskClient(client *asynq.Client) *TaskClient {
	return &TaskClient{client: client}
}

// EnqueueRunCampaign schedules one pipeline pass for the campaign. Passes are
// retried by asynq on handler error, so a single enqueue is enough.
func (c *TaskClient) EnqueueRunCampaign(ctx context.Context, campaignID uuid.UUID) error {
	payload, err := json.Marshal(shared.RunCampaignPayload{CampaignID: campaignID})
	if err != nil {
		return fmt.Errorf("failed to marshal run campaign payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeRunCampaign, payload)
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueCampaigns),
		asynq.MaxRetry(5),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue run campaign task: %w", err)
	}
	return nil
}
