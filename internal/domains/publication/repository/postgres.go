package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pressline-backend/internal/domains/publication/model"
	"pressline-backend/pkg/database"
)

// publicationTables lists every physical table that can hold a published
// article. The uniqueness invariant spans all of them. legacy_articles is a
// historical artifact that still serves traffic and cannot be dropped yet.
var publicationTables = []string{"publications", "legacy_articles"}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const publicationColumns = `id, domain_id, campaign_id, slug, title, body, public_url, status, COALESCE(theme_key, '') AS theme_key, published_at, created_at, updated_at`

func scanPublication(row pgx.Row) (*model.Publication, error) {
	var p model.Publication
	err := row.Scan(
		&p.ID,
		&p.DomainID,
		&p.CampaignID,
		&p.Slug,
		&p.Title,
		&p.Body,
		&p.PublicURL,
		&p.Status,
		&p.ThemeKey,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ExistsByKey fans the check out across every publication-bearing table.
func (r *postgresRepository) ExistsByKey(ctx context.Context, domainID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	for _, table := range publicationTables {
		query := fmt.Sprintf(
			`SELECT EXISTS (SELECT 1 FROM %s WHERE domain_id = $1 AND slug = $2 AND id != $3)`,
			table,
		)

		var exists bool
		if err := r.pool.QueryRow(ctx, query, domainID, slug, excludeID).Scan(&exists); err != nil {
			return false, fmt.Errorf("failed uniqueness check on %s: %w", table, err)
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE id = $1`

	p, err := scanPublication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get publication by id: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) GetByKey(ctx context.Context, domainID uuid.UUID, slug string) (*model.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE domain_id = $1 AND slug = $2`

	p, err := scanPublication(r.pool.QueryRow(ctx, query, domainID, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get publication by key: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) FindByCampaign(ctx context.Context, campaignID uuid.UUID) (*model.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE campaign_id = $1 ORDER BY created_at LIMIT 1`

	p, err := scanPublication(r.pool.QueryRow(ctx, query, campaignID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find publication by campaign: %w", err)
	}
	return p, nil
}

// Upsert performs the idempotent create-or-update keyed on (domain_id, slug)
// and updates the domain metrics snapshot in the same transaction. The
// conditional DO UPDATE refuses to overwrite a row owned by a different
// campaign; that case comes back as model.ErrSlugConflict.
func (r *postgresRepository) Upsert(ctx context.Context, pub *model.Publication, spend decimal.Decimal) (*model.Publication, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Publication, error) {
		query := `
    INSERT INTO publications (domain_id, campaign_id, slug, title, body, public_url, status, theme_key, published_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
    ON CONFLICT (domain_id, slug) DO UPDATE
    SET title        = EXCLUDED.title,
        body         = EXCLUDED.body,
        public_url   = EXCLUDED.public_url,
        status       = EXCLUDED.status,
        theme_key    = EXCLUDED.theme_key,
        published_at = COALESCE(publications.published_at, EXCLUDED.published_at),
        updated_at   = now()
    WHERE publications.campaign_id IS NOT DISTINCT FROM EXCLUDED.campaign_id
    RETURNING ` + publicationColumns + `, (xmax = 0) AS inserted`

		var p model.Publication
		var inserted bool
		err := tx.QueryRow(ctx, query,
			pub.DomainID, pub.CampaignID, pub.Slug, pub.Title, pub.Body,
			pub.PublicURL, pub.Status, pub.ThemeKey, pub.PublishedAt,
		).Scan(
			&p.ID, &p.DomainID, &p.CampaignID, &p.Slug, &p.Title, &p.Body,
			&p.PublicURL, &p.Status, &p.ThemeKey, &p.PublishedAt,
			&p.CreatedAt, &p.UpdatedAt, &inserted,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Conflict row belongs to a different campaign
				return nil, model.ErrSlugConflict
			}
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, model.ErrSlugConflict
			}
			return nil, model.NewWriteError(err)
		}

		metricsQuery := `
    INSERT INTO domain_metrics (domain_id, publication_count, generation_spend, last_published_at)
    VALUES ($1, CASE WHEN $2 THEN 1 ELSE 0 END, $3, now())
    ON CONFLICT (domain_id) DO UPDATE
    SET publication_count = domain_metrics.publication_count + (CASE WHEN $2 THEN 1 ELSE 0 END),
        generation_spend  = domain_metrics.generation_spend + EXCLUDED.generation_spend,
        last_published_at = now()`

		if _, err := tx.Exec(ctx, metricsQuery, p.DomainID, inserted, spend); err != nil {
			return nil, fmt.Errorf("failed to update domain metrics: %w", err)
		}

		return &p, nil
	})
}

func (r *postgresRepository) MarkPublished(ctx context.Context, id uuid.UUID) (*model.Publication, error) {
	query := `
    UPDATE publications
    SET status = 'published', published_at = COALESCE(published_at, now()), updated_at = now()
    WHERE id = $1
    RETURNING ` + publicationColumns

	p, err := scanPublication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("failed to mark published: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) GetMetrics(ctx context.Context, domainID uuid.UUID) (*model.DomainMetrics, error) {
	query := `SELECT domain_id, publication_count, generation_spend, last_published_at FROM domain_metrics WHERE domain_id = $1`

	var m model.DomainMetrics
	err := r.pool.QueryRow(ctx, query, domainID).Scan(
		&m.DomainID, &m.PublicationCount, &m.GenerationSpend, &m.LastPublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.DomainMetrics{DomainID: domainID, GenerationSpend: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("failed to get domain metrics: %w", err)
	}
	return &m, nil
}

func (r *postgresRepository) ListUnprefixed(ctx context.Context, domainID uuid.UUID, prefix string) ([]model.SlugRow, error) {
	var out []model.SlugRow

	for _, table := range publicationTables {
		query := fmt.Sprintf(
			`SELECT id, domain_id, slug FROM %s WHERE domain_id = $1 AND slug NOT LIKE $2 ORDER BY slug`,
			table,
		)

		rows, err := r.pool.Query(ctx, query, domainID, prefix+"%")
		if err != nil {
			return nil, fmt.Errorf("failed to list unprefixed slugs from %s: %w", table, err)
		}

		for rows.Next() {
			row := model.SlugRow{Table: table}
			if err := rows.Scan(&row.ID, &row.DomainID, &row.Slug); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan slug row: %w", err)
			}
			out = append(out, row)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (r *postgresRepository) UpdateSlug(ctx context.Context, table string, id uuid.UUID, newSlug string) error {
	if !isPublicationTable(table) {
		return fmt.Errorf("unknown publication table %q", table)
	}

	query := fmt.Sprintf(`UPDATE %s SET slug = $2, updated_at = now() WHERE id = $1`, table)

	tag, err := r.pool.Exec(ctx, query, id, newSlug)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrSlugConflict
		}
		return fmt.Errorf("failed to update slug in %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPublicationNotFound
	}
	return nil
}

func isPublicationTable(table string) bool {
	for _, t := range publicationTables {
		if t == table {
			return true
		}
	}
	return false
}
