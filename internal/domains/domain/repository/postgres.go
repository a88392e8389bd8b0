package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pressline-backend/internal/domains/domain/model"
)

// postgresRepository implements RepositoryInterface on pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const domainColumns = `id, hostname, account_id, verification, COALESCE(theme_key, '') AS theme_key, is_active, created_at, updated_at`

func scanDomain(row pgx.Row) (*model.Domain, error) {
	var d model.Domain
	err := row.Scan(
		&d.ID,
		&d.Hostname,
		&d.AccountID,
		&d.Verification,
		&d.ThemeKey,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *postgresRepository) Create(ctx context.Context, d *model.Domain) (*model.Domain, error) {
	query := `
    INSERT INTO domains (hostname, account_id, verification, theme_key)
    VALUES ($1, $2, $3, NULLIF($4, ''))
    RETURNING ` + domainColumns

	row := r.pool.QueryRow(ctx, query, d.Hostname, d.AccountID, d.Verification, d.ThemeKey)

	created, err := scanDomain(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, model.ErrHostnameTaken
		}
		return nil, model.NewRegisterDomainError(err)
	}
	return created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE id = $1`

	d, err := scanDomain(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get domain by id: %w", err)
	}
	return d, nil
}

func (r *postgresRepository) GetByHostname(ctx context.Context, hostname string) (*model.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE hostname = $1`

	d, err := scanDomain(r.pool.QueryRow(ctx, query, hostname))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get domain by hostname: %w", err)
	}
	return d, nil
}

func (r *postgresRepository) List(ctx context.Context, offset, limit int) ([]*model.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var out []*model.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *postgresRepository) SetTheme(ctx context.Context, id uuid.UUID, themeKey string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE domains SET theme_key = NULLIF($2, ''), updated_at = now() WHERE id = $1`,
		id, themeKey,
	)
	if err != nil {
		return fmt.Errorf("failed to set theme: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDomainNotFound
	}
	return nil
}

func (r *postgresRepository) Disable(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE domains SET is_active = false, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to disable domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDomainNotFound
	}
	return nil
}
