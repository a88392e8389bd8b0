package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	domainModel "pressline-backend/internal/domains/domain/model"
	domainService "pressline-backend/internal/domains/domain/service"
	generationModel "pressline-backend/internal/domains/generation/model"
	generationService "pressline-backend/internal/domains/generation/service"
	"pressline-backend/internal/domains/publication/model"
	"pressline-backend/internal/domains/publication/repository"
	"pressline-backend/internal/domains/publication/service"
	"pressline-backend/internal/shared/response"
)

// PublicationHandler exposes the one-off publish path, publication reads and
// the slug-migration batch.
type PublicationHandler struct {
	domains      domainService.ServiceInterface
	orchestrator generationService.Orchestrator
	writer       service.Writer
	migrator     service.SlugMigrator
	repo         repository.RepositoryInterface
	wordTarget   int
}

func NewPublicationHandler(
	domains domainService.ServiceInterface,
	orchestrator generationService.Orchestrator,
	writer service.Writer,
	migrator service.SlugMigrator,
	repo repository.RepositoryInterface,
	wordTarget int,
) *PublicationHandler {
	return &PublicationHandler{
		domains:      domains,
		orchestrator: orchestrator,
		writer:       writer,
		migrator:     migrator,
		repo:         repo,
		wordTarget:   wordTarget,
	}
}

type adhocPublishRequest struct {
	DomainID   string `json:"domain_id"`
	Title      string `json:"title"`
	Keyword    string `json:"keyword"`
	AnchorText string `json:"anchor_text"`
	TargetURL  string `json:"target_url"`
	WordTarget int    `json:"word_target,omitempty"`
}

func (r adhocPublishRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DomainID, validation.Required, is.UUIDv4),
		validation.Field(&r.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.Keyword, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.AnchorText, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.TargetURL, validation.Required, is.URL),
	)
}

// PublishAdhoc handles POST /publications
// Runs the generate -> allocate -> write chain synchronously for a one-off
// article with no owning campaign.
func (h *PublicationHandler) PublishAdhoc(c *gin.Context) {
	var req adhocPublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err)
		return
	}

	domain, err := h.domains.GetDomain(c.Request.Context(), uuid.MustParse(req.DomainID))
	if err != nil {
		status, message, code := domainModel.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	wordTarget := req.WordTarget
	if wordTarget <= 0 {
		wordTarget = h.wordTarget
	}

	result, err := h.orchestrator.Generate(c.Request.Context(), &generationModel.Brief{
		Keyword:    req.Keyword,
		AnchorText: req.AnchorText,
		TargetURL:  req.TargetURL,
		WordTarget: wordTarget,
	})
	if err != nil {
		var exhausted *generationModel.ExhaustedError
		if errors.As(err, &exhausted) {
			response.ErrorWithDetails(c, http.StatusBadGateway, "GENERATION_EXHAUSTED",
				"All content providers failed", exhausted.Attempts)
			return
		}
		response.InternalServerError(c, "Content generation failed")
		return
	}

	_, body := result.Title()
	pub, err := h.writer.Publish(c.Request.Context(), &service.PublishRequest{
		Domain:        domain,
		SlugCandidate: req.Title,
		Title:         req.Title,
		Body:          body,
		Status:        model.StatusPublished,
		Spend:         result.Cost,
	})
	if err != nil {
		status, message, code := model.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	response.Success(c, http.StatusCreated, pub)
}

// Get handles GET /publications/:id
func (h *PublicationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid publication ID")
		return
	}

	pub, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "Failed to load publication")
		return
	}
	if pub == nil {
		response.NotFound(c, "Publication not found")
		return
	}

	response.Success(c, http.StatusOK, pub)
}

// Metrics handles GET /domains/:id/metrics
func (h *PublicationHandler) Metrics(c *gin.Context) {
	domainID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid domain ID")
		return
	}

	m, err := h.repo.GetMetrics(c.Request.Context(), domainID)
	if err != nil {
		response.InternalServerError(c, "Failed to load metrics")
		return
	}

	response.Success(c, http.StatusOK, m)
}

type migrateSlugRequest struct {
	DomainID string `json:"domain_id"`
	Apply    bool   `json:"apply"`
}

// MigrateSlugs handles POST /admin/slug-migration
// Dry-run by default; apply=true rewrites rows.
func (h *PublicationHandler) MigrateSlugs(c *gin.Context) {
	var req migrateSlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	domainID, err := uuid.Parse(req.DomainID)
	if err != nil {
		response.BadRequest(c, "Invalid domain ID")
		return
	}

	domain, err := h.domains.GetDomain(c.Request.Context(), domainID)
	if err != nil {
		status, message, code := domainModel.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	report, err := h.migrator.Migrate(c.Request.Context(), domain, req.Apply)
	if err != nil {
		status, message, code := model.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	response.Success(c, http.StatusOK, report)
}
