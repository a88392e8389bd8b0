package shared

import "github.com/google/uuid"

// Asynq task type names. Kept in one place to avoid import cycles between
// domains and the worker.
const (
	TypeRunCampaign = "campaign:run"

	// Scheduler-driven maintenance tasks
	TypeSweepStalled   = "campaign:sweep_stalled"
	TypePollJobQueue   = "jobqueue:poll"
	TypeStaleJobReport = "jobqueue:stale_report"
)

// Asynq queue names
const (
	QueueCampaigns   = "campaigns"
	QueueMaintenance = "maintenance"
)

// Durable job queue types (jobs table, polled - not asynq)
const (
	JobTypePostComment = "comment:post"
)

// RunCampaignPayload triggers one pipeline pass for a campaign
type RunCampaignPayload struct {
	CampaignID uuid.UUID `json:"campaignId"`
}

// PostCommentPayload is the payload of a comment:post job, enqueued after a
// publication is finalized
type PostCommentPayload struct {
	PublicationID uuid.UUID `json:"publicationId"`
	PublicURL     string    `json:"publicUrl"`
	AnchorText    string    `json:"anchorText"`
	TargetURL     string    `json:"targetUrl"`
}
