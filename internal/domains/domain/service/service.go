package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"pressline-backend/internal/domains/domain/model"
	"pressline-backend/internal/domains/domain/repository"
	"pressline-backend/pkg/cache"
	"pressline-backend/pkg/logger"
)

const domainCacheTTL = 60 * time.Second

var hostnamePattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

type domainService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
}

func NewDomainService(repo repository.RepositoryInterface, c cache.Cache) ServiceInterface {
	return &domainService{repo: repo, cache: c}
}

func cacheKey(id uuid.UUID) string {
	return "domain:" + id.String()
}

func (s *domainService) Register(ctx context.Context, accountID uuid.UUID, req *model.RegisterDomainRequest) (*model.Domain, error) {
	hostname := strings.ToLower(strings.TrimSpace(req.Hostname))

	err := validation.ValidateStruct(req,
		validation.Field(&req.Hostname, validation.Required, validation.Length(4, 253)),
		validation.Field(&req.ThemeKey, validation.Length(0, 64)),
	)
	if err != nil {
		return nil, &model.DomainError{Code: model.ErrInvalidHostname.Code, Message: err.Error()}
	}
	if !hostnamePattern.MatchString(hostname) {
		return nil, model.ErrInvalidHostname
	}

	d := &model.Domain{
		Hostname:     hostname,
		AccountID:    accountID,
		Verification: model.VerificationUnverified,
		ThemeKey:     strings.TrimSpace(req.ThemeKey),
	}

	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, err
	}

	logger.Info("Domain registered", map[string]interface{}{
		"domain_id": created.ID,
		"hostname":  created.Hostname,
	})
	return created, nil
}

// GetDomain is the hot read path of the pipeline - cached briefly in Redis.
func (s *domainService) GetDomain(ctx context.Context, id uuid.UUID) (*model.Domain, error) {
	if id == uuid.Nil {
		return nil, model.ErrDomainNotFound
	}

	var cached model.Domain
	if found, err := s.cache.Get(ctx, cacheKey(id), &cached); err == nil && found {
		return &cached, nil
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, model.ErrDomainNotFound
	}

	// Cache failure is non-critical
	if err := s.cache.Set(ctx, cacheKey(id), d, domainCacheTTL); err != nil {
		logger.Warn("Failed to cache domain", map[string]interface{}{"domain_id": id, "error": err.Error()})
	}

	return d, nil
}

func (s *domainService) List(ctx context.Context, page, pageSize int) ([]*model.Domain, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.repo.List(ctx, (page-1)*pageSize, pageSize)
}

func (s *domainService) SetTheme(ctx context.Context, id uuid.UUID, themeKey string) error {
	themeKey = strings.TrimSpace(themeKey)
	if err := validation.Validate(themeKey, validation.Length(0, 64)); err != nil {
		return fmt.Errorf("invalid theme key: %w", err)
	}

	if err := s.repo.SetTheme(ctx, id, themeKey); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey(id))
}

func (s *domainService) Disable(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Disable(ctx, id); err != nil {
		return err
	}

	logger.Info("Domain disabled", map[string]interface{}{"domain_id": id})
	return s.cache.Delete(ctx, cacheKey(id))
}
