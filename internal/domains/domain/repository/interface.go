package repository

import (
	"context"

	"github.com/google/uuid"

	"pressline-backend/internal/domains/domain/model"
)

// RepositoryInterface is the data access contract for the domain directory.
// GetByID returns (nil, nil) when the domain does not exist.
type RepositoryInterface interface {
	Create(ctx context.Context, d *model.Domain) (*model.Domain, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Domain, error)
	GetByHostname(ctx context.Context, hostname string) (*model.Domain, error)
	List(ctx context.Context, offset, limit int) ([]*model.Domain, error)
	SetTheme(ctx context.Context, id uuid.UUID, themeKey string) error
	Disable(ctx context.Context, id uuid.UUID) error
}
