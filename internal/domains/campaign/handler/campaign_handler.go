package handler

import (
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pressline-backend/internal/domains/campaign/model"
	"pressline-backend/internal/domains/campaign/service"
	domainModel "pressline-backend/internal/domains/domain/model"
	"pressline-backend/internal/shared/response"
)

// CampaignHandler handles HTTP requests for campaign lifecycle
type CampaignHandler struct {
	service service.ServiceInterface
}

func NewCampaignHandler(svc service.ServiceInterface) *CampaignHandler {
	return &CampaignHandler{service: svc}
}

// respondError maps service errors to HTTP. Campaign operations can surface
// domain directory errors (unknown/disabled domain on create), so both error
// families are checked.
func respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_001", "Validation failed", verrs)
		return
	}

	var domainErr *domainModel.DomainError
	if errors.As(err, &domainErr) {
		status, message, code := domainModel.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	status, message, code := model.GetErrorResponse(err)
	response.ErrorResponse(c, status, code, message)
}

// Create handles POST /campaigns
func (h *CampaignHandler) Create(c *gin.Context) {
	var req model.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	accountID, _ := c.MustGet("account_id").(uuid.UUID)

	campaign, err := h.service.Create(c.Request.Context(), accountID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, campaign)
}

// Get handles GET /campaigns/:id
func (h *CampaignHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid campaign ID")
		return
	}

	campaign, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, campaign)
}

// List handles GET /campaigns?status=&page=&limit=
func (h *CampaignHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")

	campaigns, total, err := h.service.List(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, campaigns, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: int(total),
	})
}

// Pause handles POST /campaigns/:id/pause
func (h *CampaignHandler) Pause(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid campaign ID")
		return
	}

	if err := h.service.Pause(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.StatusPaused})
}

// Resume handles POST /campaigns/:id/resume. The pipeline pass itself runs
// on the worker; this only unpauses and dispatches.
func (h *CampaignHandler) Resume(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid campaign ID")
		return
	}

	if err := h.service.RequestResume(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"message": "resume dispatched"})
}
