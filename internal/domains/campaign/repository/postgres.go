package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pressline-backend/internal/domains/campaign/model"
)

type PostgresCampaignRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCampaignRepository(pool *pgxpool.Pool) CampaignRepositoryInterface {
	return &PostgresCampaignRepository{pool: pool}
}

const campaignColumns = `id, account_id, domain_id, keyword, anchor_text, target_url,
	status, exhausted_attempts, COALESCE(failure_summary, ''),
	created_at, started_at, completed_at, updated_at`

func scanCampaign(row pgx.Row) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.AccountID, &c.DomainID, &c.Keyword, &c.AnchorText, &c.TargetURL,
		&c.Status, &c.ExhaustedAttempts, &c.FailureSummary,
		&c.CreatedAt, &c.StartedAt, &c.CompletedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCampaignRepository) Create(ctx context.Context, campaign *model.Campaign) (*model.Campaign, error) {
	query := `
		INSERT INTO campaigns (account_id, domain_id, keyword, anchor_text, target_url, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING ` + campaignColumns

	created, err := scanCampaign(r.pool.QueryRow(ctx, query,
		campaign.AccountID, campaign.DomainID, campaign.Keyword,
		campaign.AnchorText, campaign.TargetURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return created, nil
}

func (r *PostgresCampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return campaign, nil
}

func (r *PostgresCampaignRepository) List(ctx context.Context, status string, limit, offset int) ([]model.Campaign, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE ($1 = '' OR status = $1)`
	if err := r.pool.QueryRow(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]model.Campaign, 0, limit)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, total, rows.Err()
}

// transition runs a guarded status update and maps "no rows touched" to
// either not-found or invalid-transition depending on whether the row exists.
func (r *PostgresCampaignRepository) transition(ctx context.Context, id uuid.UUID, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	checkQuery := `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`
	if err := r.pool.QueryRow(ctx, checkQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check campaign: %w", err)
	}
	if !exists {
		return model.ErrCampaignNotFound
	}
	return model.ErrInvalidTransition
}

func (r *PostgresCampaignRepository) MarkActive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE campaigns
		SET status = 'active',
		    started_at = COALESCE(started_at, now()),
		    updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'paused', 'active')`
	return r.transition(ctx, id, query, id)
}

func (r *PostgresCampaignRepository) Pause(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE campaigns
		SET status = 'paused', updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'active')`
	return r.transition(ctx, id, query, id)
}

func (r *PostgresCampaignRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE campaigns
		SET status = 'completed', completed_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'active'`
	return r.transition(ctx, id, query, id)
}

func (r *PostgresCampaignRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, summary string) error {
	query := `
		UPDATE campaigns
		SET status = 'failed',
		    exhausted_attempts = $2,
		    failure_summary = $3,
		    completed_at = now(),
		    updated_at = now()
		WHERE id = $1 AND status = 'active'`
	return r.transition(ctx, id, query, id, attempts, summary)
}

func (r *PostgresCampaignRepository) RecordExhaustion(ctx context.Context, id uuid.UUID, attempts int, summary string) error {
	query := `
		UPDATE campaigns
		SET exhausted_attempts = $2,
		    failure_summary = $3,
		    updated_at = now()
		WHERE id = $1 AND status = 'active'`
	return r.transition(ctx, id, query, id, attempts, summary)
}

func (r *PostgresCampaignRepository) ListStalled(ctx context.Context, updatedBefore time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM campaigns
		WHERE status = 'active' AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, updatedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stalled campaigns: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stalled campaign: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
