package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainModel "pressline-backend/internal/domains/domain/model"
	"pressline-backend/internal/domains/publication/model"
)

func TestMigrate_DryRunCountsWithoutWriting(t *testing.T) {
	repo := newFakeRepo()
	domain := activeDomain("minimal")
	repo.seed(&model.Publication{DomainID: domain.ID, Slug: "old-post"})
	repo.seedLegacy(domain.ID, "older-post")

	migrator := NewSlugMigrator(repo)

	report, err := migrator.Migrate(context.Background(), domain, false)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 0, report.Conflicts)
	assert.Empty(t, repo.slugWrites, "dry run must not write")
}

func TestMigrate_ApplyPrefixesAcrossTables(t *testing.T) {
	repo := newFakeRepo()
	domain := activeDomain("minimal")
	repo.seed(&model.Publication{DomainID: domain.ID, Slug: "old-post"})
	repo.seedLegacy(domain.ID, "older-post")

	migrator := NewSlugMigrator(repo)

	report, err := migrator.Migrate(context.Background(), domain, true)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Updated)
	assert.ElementsMatch(t, []string{"minimal/old-post", "minimal/older-post"}, repo.slugWrites)
	assert.Contains(t, repo.pubs, "minimal/old-post")
	assert.Contains(t, repo.legacy, "minimal/older-post")
}

func TestMigrate_SecondPassIsNoop(t *testing.T) {
	repo := newFakeRepo()
	domain := activeDomain("minimal")
	repo.seed(&model.Publication{DomainID: domain.ID, Slug: "old-post"})

	migrator := NewSlugMigrator(repo)

	_, err := migrator.Migrate(context.Background(), domain, true)
	require.NoError(t, err)

	report, err := migrator.Migrate(context.Background(), domain, true)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scanned, "already-prefixed rows are not selected again")
}

func TestMigrate_ConflictLeavesRowUntouched(t *testing.T) {
	repo := newFakeRepo()
	domain := activeDomain("minimal")
	repo.seed(&model.Publication{DomainID: domain.ID, Slug: "post"})
	// The prefixed name is already taken.
	repo.seed(&model.Publication{DomainID: domain.ID, Slug: "minimal/post"})

	migrator := NewSlugMigrator(repo)

	report, err := migrator.Migrate(context.Background(), domain, true)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Conflicts)
	assert.Equal(t, 0, report.Updated)
	assert.Contains(t, repo.pubs, "post", "conflicting row keeps its slug")
}

func TestMigrate_RequiresTheme(t *testing.T) {
	repo := newFakeRepo()
	domain := &domainModel.Domain{ID: uuid.New(), Hostname: "example.test", IsActive: true}

	migrator := NewSlugMigrator(repo)

	_, err := migrator.Migrate(context.Background(), domain, false)
	assert.ErrorIs(t, err, model.ErrDomainNoTheme)
}
