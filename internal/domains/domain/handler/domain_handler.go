package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pressline-backend/internal/domains/domain/model"
	"pressline-backend/internal/domains/domain/service"
	"pressline-backend/internal/shared/response"
)

// DomainHandler handles HTTP requests for the domain directory
type DomainHandler struct {
	service service.ServiceInterface
}

func NewDomainHandler(svc service.ServiceInterface) *DomainHandler {
	return &DomainHandler{service: svc}
}

// Register handles POST /domains
func (h *DomainHandler) Register(c *gin.Context) {
	var req model.RegisterDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	accountID, _ := c.MustGet("account_id").(uuid.UUID)

	d, err := h.service.Register(c.Request.Context(), accountID, &req)
	if err != nil {
		status, message, code := model.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	response.Success(c, http.StatusCreated, d.ToResponse())
}

// Get handles GET /domains/:id
func (h *DomainHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid domain ID")
		return
	}

	d, err := h.service.GetDomain(c.Request.Context(), id)
	if err != nil {
		status, message, code := model.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	response.Success(c, http.StatusOK, d.ToResponse())
}

// List handles GET /domains
func (h *DomainHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	domains, err := h.service.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.InternalServerError(c, "Failed to list domains")
		return
	}

	out := make([]*model.DomainResponse, len(domains))
	for i, d := range domains {
		out[i] = d.ToResponse()
	}
	response.SuccessWithMeta(c, http.StatusOK, out, &response.Meta{Page: page, Limit: pageSize})
}

// SetTheme handles PUT /domains/:id/theme
func (h *DomainHandler) SetTheme(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid domain ID")
		return
	}

	var req model.SetThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	if err := h.service.SetTheme(c.Request.Context(), id, req.ThemeKey); err != nil {
		status, message, code := model.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"theme_key": req.ThemeKey})
}

// Disable handles POST /domains/:id/disable
func (h *DomainHandler) Disable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid domain ID")
		return
	}

	if err := h.service.Disable(c.Request.Context(), id); err != nil {
		status, message, code := model.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"disabled": true})
}
