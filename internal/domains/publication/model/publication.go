package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Publication is the durable record of one generated article.
// (domain_id, slug) is unique across every publication-bearing table, not
// just this one - the repository enforces the fan-out check.
type Publication struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	DomainID    uuid.UUID  `json:"domain_id" db:"domain_id"`
	CampaignID  *uuid.UUID `json:"campaign_id,omitempty" db:"campaign_id"` // nil = created ad hoc
	Slug        string     `json:"slug" db:"slug"`
	Title       string     `json:"title" db:"title"`
	Body        string     `json:"body" db:"body"`
	PublicURL   string     `json:"public_url" db:"public_url"`
	Status      Status     `json:"status" db:"status"`
	ThemeKey    string     `json:"theme_key,omitempty" db:"theme_key"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// DomainMetrics is the per-domain snapshot updated in the same transaction
// that writes a publication.
type DomainMetrics struct {
	DomainID         uuid.UUID       `json:"domain_id" db:"domain_id"`
	PublicationCount int             `json:"publication_count" db:"publication_count"`
	GenerationSpend  decimal.Decimal `json:"generation_spend" db:"generation_spend"`
	LastPublishedAt  *time.Time      `json:"last_published_at,omitempty" db:"last_published_at"`
}

// SlugRow identifies one slug-bearing row in a specific physical table.
// Used by the migration pass, which must address legacy tables directly.
type SlugRow struct {
	Table    string
	ID       uuid.UUID
	DomainID uuid.UUID
	Slug     string
}

// MigrationReport summarizes one slug-migration pass.
type MigrationReport struct {
	DomainID  uuid.UUID `json:"domain_id"`
	DryRun    bool      `json:"dry_run"`
	Scanned   int       `json:"scanned"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
	Conflicts int       `json:"conflicts"`
}
