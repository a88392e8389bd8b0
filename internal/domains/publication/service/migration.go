package service

import (
	"context"
	"errors"
	"fmt"

	domainModel "pressline-backend/internal/domains/domain/model"
	"pressline-backend/internal/domains/publication/model"
	"pressline-backend/internal/domains/publication/repository"
	"pressline-backend/internal/shared/utils"
	"pressline-backend/pkg/logger"
)

type slugMigrator struct {
	repo repository.RepositoryInterface
}

func NewSlugMigrator(repo repository.RepositoryInterface) SlugMigrator {
	return &slugMigrator{repo: repo}
}

// Migrate re-namespaces every legacy slug of the domain under its theme
// prefix, across all publication-bearing tables. Idempotent: rows already
// carrying the prefix are not selected, so a second pass is a no-op. In
// dry-run mode it only counts what apply mode would do.
func (m *slugMigrator) Migrate(ctx context.Context, domain *domainModel.Domain, apply bool) (*model.MigrationReport, error) {
	theme := utils.NormalizeSlug(domain.ThemeKey)
	if theme == "" {
		return nil, model.ErrDomainNoTheme
	}
	prefix := theme + "/"

	rows, err := m.repo.ListUnprefixed(ctx, domain.ID, prefix)
	if err != nil {
		return nil, fmt.Errorf("migration scan failed: %w", err)
	}

	report := &model.MigrationReport{
		DomainID: domain.ID,
		DryRun:   !apply,
		Scanned:  len(rows),
	}

	for _, row := range rows {
		newSlug := prefix + row.Slug

		taken, err := m.repo.ExistsByKey(ctx, domain.ID, newSlug, row.ID)
		if err != nil {
			return nil, fmt.Errorf("migration uniqueness check failed: %w", err)
		}
		if taken {
			report.Conflicts++
			logger.Warn("Slug migration conflict, row left untouched", map[string]interface{}{
				"table":    row.Table,
				"id":       row.ID,
				"new_slug": newSlug,
			})
			continue
		}

		if !apply {
			report.Updated++
			continue
		}

		if err := m.repo.UpdateSlug(ctx, row.Table, row.ID, newSlug); err != nil {
			if errors.Is(err, model.ErrSlugConflict) {
				// Raced with a concurrent write between check and update
				report.Conflicts++
				continue
			}
			return nil, err
		}
		report.Updated++
	}

	report.Skipped = report.Scanned - report.Updated - report.Conflicts

	logger.Info("Slug migration pass finished", map[string]interface{}{
		"domain_id": domain.ID,
		"dry_run":   report.DryRun,
		"scanned":   report.Scanned,
		"updated":   report.Updated,
		"conflicts": report.Conflicts,
	})
	return report, nil
}
