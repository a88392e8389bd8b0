package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	jobModel "pressline-backend/internal/domains/jobqueue/model"
	jobService "pressline-backend/internal/domains/jobqueue/service"
	"pressline-backend/internal/shared"
	"pressline-backend/pkg/logger"
)

// ================================================
// POST COMMENT EXECUTOR (durable job queue)
// ================================================

// CommentExecutor posts a derived comment referencing a finalized
// publication to the configured outbound endpoint. With no endpoint
// configured the job succeeds as a no-op so queues never fill up in
// environments without a comment target.
type CommentExecutor struct {
	endpointURL string
	httpClient  *http.Client
}

func NewCommentExecutor(endpointURL string) *CommentExecutor {
	return &CommentExecutor{
		endpointURL: endpointURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *CommentExecutor) JobType() string {
	return shared.JobTypePostComment
}

func (e *CommentExecutor) Execute(ctx context.Context, job *jobModel.Job) jobService.Outcome {
	var payload shared.PostCommentPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return jobService.Outcome{Success: false, Detail: fmt.Sprintf("invalid payload: %v", err)}
	}

	if e.endpointURL == "" {
		logger.Debug("comment endpoint not configured, skipping comment job")
		return jobService.Outcome{Success: true, Detail: "comment endpoint not configured, skipped"}
	}

	body, err := json.Marshal(map[string]string{
		"source_url":  payload.PublicURL,
		"anchor_text": payload.AnchorText,
		"target_url":  payload.TargetURL,
		"comment":     fmt.Sprintf("Worth a read on this topic: %s (via %s)", payload.TargetURL, payload.PublicURL),
	})
	if err != nil {
		return jobService.Outcome{Success: false, Detail: fmt.Sprintf("marshal comment: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpointURL, bytes.NewReader(body))
	if err != nil {
		return jobService.Outcome{Success: false, Detail: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return jobService.Outcome{Success: false, Detail: fmt.Sprintf("post comment: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return jobService.Outcome{Success: false, Detail: fmt.Sprintf("comment endpoint returned %d", resp.StatusCode)}
	}

	logger.Info("comment posted", map[string]interface{}{
		"publication_id": payload.PublicationID.String(),
		"public_url":     payload.PublicURL,
	})
	return jobService.Outcome{Success: true}
}
