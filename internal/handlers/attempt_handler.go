package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trainhub/exam-service/internal/services"
	"github.com/trainhub/exam-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	accessService  services.AccessService
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	accessService services.AccessService,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		accessService:  accessService,
	}
}

// StartAttempt runs the full admission pipeline and, on success, returns
// the sampled question set for a new attempt
// @Summary Start attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 201 {object} services.StartAttemptResult
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /exams/{id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Starting attempt", "exam_id", id)

	result, err := h.attemptService.Start(c.Request.Context(), identityFromContext(c), id, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// SubmitAttempt grades a submitted attempt and records its result
// @Summary Submit attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param submission body services.SubmitAttemptRequest true "Answers"
// @Success 200 {object} services.SubmitAttemptResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting attempt", "attempt_id", req.AttemptID)

	result, err := h.attemptService.Submit(c.Request.Context(), identityFromContext(c), &req, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAttemptCount reports how many attempts the ledger already holds for
// the caller against an exam
// @Summary Count attempts
// @Tags attempts
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} map[string]int
// @Router /exams/{id}/attempts/count [get]
func (h *AttemptHandler) GetAttemptCount(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	count, err := h.attemptService.CountAttempts(c.Request.Context(), identityFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// CheckAccess reports whether the caller may take an exam and under what
// ceiling, without starting anything
// @Summary Check exam access
// @Tags attempts
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /exams/{id}/access [get]
func (h *AttemptHandler) CheckAccess(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	access, err := h.accessService.CanAccess(c.Request.Context(), identityFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	windowOpen := true
	if err := h.accessService.CheckWindow(access.Exam, time.Now()); err != nil {
		windowOpen = false
	}

	c.JSON(http.StatusOK, gin.H{
		"allowed":      true,
		"reason":       access.Reason,
		"max_attempts": access.MaxAttempts,
		"window_open":  windowOpen,
	})
}
