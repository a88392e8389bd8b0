package model

import (
	"time"

	"github.com/google/uuid"
)

type CampaignStatus string

// Lifecycle: pending -> active -> {completed | failed}, with
// active -> paused -> active as an operator-driven detour.
const (
	StatusPending   CampaignStatus = "pending"
	StatusActive    CampaignStatus = "active"
	StatusPaused    CampaignStatus = "paused"
	StatusCompleted CampaignStatus = "completed"
	StatusFailed    CampaignStatus = "failed"
)

// IsTerminal reports whether no further pipeline work may happen.
func (s CampaignStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Campaign is one unit of publishing intent: turn a keyword + anchor +
// target URL into a published article on a domain.
type Campaign struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	DomainID  uuid.UUID `json:"domain_id" db:"domain_id"`

	Keyword    string `json:"keyword" db:"keyword"`
	AnchorText string `json:"anchor_text" db:"anchor_text"`
	TargetURL  string `json:"target_url" db:"target_url"`

	Status CampaignStatus `json:"status" db:"status"`

	// ExhaustedAttempts counts resume passes that ended in provider
	// exhaustion; past the configured maximum the campaign is failed.
	ExhaustedAttempts int `json:"exhausted_attempts" db:"exhausted_attempts"`

	// FailureSummary is the operator-facing account of which providers were
	// tried and why each failed. Set on exhaustion, kept on failure.
	FailureSummary string `json:"failure_summary,omitempty" db:"failure_summary"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateCampaignRequest struct {
	DomainID   string `json:"domain_id"`
	Keyword    string `json:"keyword"`
	AnchorText string `json:"anchor_text"`
	TargetURL  string `json:"target_url"`
}
