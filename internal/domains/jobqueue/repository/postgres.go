package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pressline-backend/internal/domains/jobqueue/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const jobColumns = `id, type, payload, status, COALESCE(dedupe_key, '') AS dedupe_key, COALESCE(last_error, '') AS last_error, created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	err := row.Scan(&j.ID, &j.Type, &j.Payload, &j.Status, &j.DedupeKey, &j.LastError, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *postgresRepository) Insert(ctx context.Context, jobType string, payload json.RawMessage) (*model.Job, error) {
	query := `
    INSERT INTO jobs (type, payload, status)
    VALUES ($1, $2, 'queued')
    RETURNING ` + jobColumns

	j, err := scanJob(r.pool.QueryRow(ctx, query, jobType, payload))
	if err != nil {
		return nil, model.NewEnqueueError(err)
	}
	return j, nil
}

// InsertOnce relies on the partial unique index on dedupe_key: a losing
// insert returns no row, in which case the winning job is fetched instead.
func (r *postgresRepository) InsertOnce(ctx context.Context, jobType, dedupeKey string, payload json.RawMessage) (*model.Job, error) {
	query := `
    INSERT INTO jobs (type, payload, status, dedupe_key)
    VALUES ($1, $2, 'queued', $3)
    ON CONFLICT (dedupe_key) WHERE dedupe_key IS NOT NULL DO NOTHING
    RETURNING ` + jobColumns

	j, err := scanJob(r.pool.QueryRow(ctx, query, jobType, payload, dedupeKey))
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewEnqueueError(err)
	}

	existingQuery := `SELECT ` + jobColumns + ` FROM jobs WHERE dedupe_key = $1`
	j, err = scanJob(r.pool.QueryRow(ctx, existingQuery, dedupeKey))
	if err != nil {
		return nil, model.NewEnqueueError(err)
	}
	return j, nil
}

// Claim takes the oldest queued job of the given types. FOR UPDATE SKIP
// LOCKED gives compare-and-set semantics under concurrent pollers without a
// global lock.
func (r *postgresRepository) Claim(ctx context.Context, types []string) (*model.Job, error) {
	query := `
    UPDATE jobs SET status = 'processing', updated_at = now()
    WHERE id = (
        SELECT id FROM jobs
        WHERE status = 'queued' AND type = ANY($1)
        ORDER BY created_at
        LIMIT 1
        FOR UPDATE SKIP LOCKED
    )
    RETURNING ` + jobColumns

	j, err := scanJob(r.pool.QueryRow(ctx, query, types))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	return j, nil
}

func (r *postgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.JobStatus, lastError string) error {
	query := `
    UPDATE jobs SET status = $2, last_error = NULLIF($3, ''), updated_at = now()
    WHERE id = $1 AND status = 'processing'`

	tag, err := r.pool.Exec(ctx, query, id, status, lastError)
	if err != nil {
		return fmt.Errorf("failed to set job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or not processing - disambiguate for the caller
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if existing == nil {
			return model.ErrJobNotFound
		}
		return model.ErrJobNotProcessing
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	j, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

func (r *postgresRepository) List(ctx context.Context, status model.JobStatus, offset, limit int) ([]*model.Job, error) {
	query := `
    SELECT ` + jobColumns + ` FROM jobs
    WHERE ($1 = '' OR status = $1)
    ORDER BY created_at DESC
    OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, string(status), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var out []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *postgresRepository) ReclaimStale(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error) {
	query := `
    UPDATE jobs SET status = 'queued', updated_at = now()
    WHERE status = 'processing' AND updated_at < now() - $1::interval
    RETURNING id`

	interval := fmt.Sprintf("%d seconds", int(olderThan.Seconds()))
	rows, err := r.pool.Query(ctx, query, interval)
	if err != nil {
		return nil, fmt.Errorf("failed to reclaim stale jobs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
