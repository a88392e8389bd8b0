package service

import (
	"context"

	"github.com/google/uuid"

	"pressline-backend/internal/domains/domain/model"
)

// ServiceInterface is the directory surface the pipeline consumes. Lookup is
// read-only and cached; the pipeline never mutates verification state.
type ServiceInterface interface {
	Register(ctx context.Context, accountID uuid.UUID, req *model.RegisterDomainRequest) (*model.Domain, error)
	GetDomain(ctx context.Context, id uuid.UUID) (*model.Domain, error)
	List(ctx context.Context, page, pageSize int) ([]*model.Domain, error)
	SetTheme(ctx context.Context, id uuid.UUID, themeKey string) error
	Disable(ctx context.Context, id uuid.UUID) error
}
