package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pressline-backend/internal/domains/jobqueue/model"
	"pressline-backend/internal/domains/jobqueue/service"
	"pressline-backend/internal/shared/response"
)

// JobHandler exposes the operator surface of the durable job queue.
type JobHandler struct {
	queue      service.QueueInterface
	staleAfter time.Duration
}

func NewJobHandler(queue service.QueueInterface, staleAfter time.Duration) *JobHandler {
	return &JobHandler{queue: queue, staleAfter: staleAfter}
}

// List handles GET /admin/jobs?status=&page=&page_size=
func (h *JobHandler) List(c *gin.Context) {
	status := model.JobStatus(c.Query("status"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	jobs, err := h.queue.List(c.Request.Context(), status, page, pageSize)
	if err != nil {
		response.InternalServerError(c, "Failed to list jobs")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, jobs, &response.Meta{Page: page, Limit: pageSize})
}

// Get handles GET /admin/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.queue.Get(c.Request.Context(), id)
	if err != nil {
		status, message, code := model.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}

	response.Success(c, http.StatusOK, job)
}

// Reclaim handles POST /admin/jobs/reclaim
// Explicit operator action: requeues jobs stuck in processing.
func (h *JobHandler) Reclaim(c *gin.Context) {
	olderThan := h.staleAfter
	if raw := c.Query("older_than_minutes"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			olderThan = time.Duration(minutes) * time.Minute
		}
	}

	count, err := h.queue.ReclaimStale(c.Request.Context(), olderThan)
	if err != nil {
		response.InternalServerError(c, "Failed to reclaim jobs")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reclaimed": count})
}
