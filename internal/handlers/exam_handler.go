package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trainhub/exam-service/internal/repositories"
	"github.com/trainhub/exam-service/internal/services"
	"github.com/trainhub/exam-service/internal/utils"
)

type ExamHandler struct {
	BaseHandler
	examService   services.ExamService
	exportService services.ExportService
}

func NewExamHandler(
	examService services.ExamService,
	exportService services.ExportService,
	logger utils.Logger,
) *ExamHandler {
	return &ExamHandler{
		BaseHandler:   NewBaseHandler(logger),
		examService:   examService,
		exportService: exportService,
	}
}

// CreateExam creates a new exam
// @Summary Create exam
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body services.CreateExamRequest true "Exam data"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	h.LogRequest(c, "Creating exam")

	var req services.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), identityFromContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// GetExam retrieves an exam by ID
// @Summary Get exam
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// ListExams lists exams visible to the caller
// @Summary List exams
// @Tags exams
// @Produce json
// @Success 200 {object} ListResponse
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	limit, offset := parsePagination(c)
	filters := repositories.ExamFilters{
		IsActive:  parseBoolQuery(c, "is_active"),
		IsPublic:  parseBoolQuery(c, "is_public"),
		OpenAt:    parseTimeQuery(c, "open_at"),
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	exams, total, err := h.examService.List(c.Request.Context(), identityFromContext(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: exams, Total: total})
}

// UpdateExam updates an existing exam
// @Summary Update exam
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param exam body services.UpdateExamRequest true "Fields to update"
// @Success 200 {object} models.Exam
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [put]
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating exam", "exam_id", id)

	var req services.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), identityFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// DeleteExam deletes an exam without recorded results
// @Summary Delete exam
// @Tags exams
// @Param id path uint true "Exam ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /exams/{id} [delete]
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting exam", "exam_id", id)

	if err := h.examService.Delete(c.Request.Context(), identityFromContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignExam assigns an exam to a user
// @Summary Assign exam
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param assignment body services.AssignExamRequest true "Assignment data"
// @Success 201 {object} models.ExamAssignment
// @Failure 409 {object} ErrorResponse
// @Router /exams/{id}/assignments [post]
func (h *ExamHandler) AssignExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.AssignExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Assigning exam", "exam_id", id, "assignee", req.UserID)

	assignment, err := h.examService.Assign(c.Request.Context(), identityFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// UnassignExam removes an exam assignment
// @Summary Unassign exam
// @Tags exams
// @Param id path uint true "Exam ID"
// @Param user_id path string true "User ID"
// @Success 204
// @Router /exams/{id}/assignments/{user_id} [delete]
func (h *ExamHandler) UnassignExam(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID := parseStringParam(c, "user_id")
	if userID == "" {
		return
	}

	h.LogRequest(c, "Unassigning exam", "exam_id", id, "assignee", userID)

	if err := h.examService.Unassign(c.Request.Context(), identityFromContext(c), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAssignments lists the assignments of an exam
// @Summary List exam assignments
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {array} models.ExamAssignment
// @Router /exams/{id}/assignments [get]
func (h *ExamHandler) ListAssignments(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignments, err := h.examService.ListAssignments(c.Request.Context(), identityFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// ListResults lists the recorded results of an exam
// @Summary List exam results
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} ListResponse
// @Router /exams/{id}/results [get]
func (h *ExamHandler) ListResults(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.ResultFilters{
		DateFrom: parseTimeQuery(c, "date_from"),
		DateTo:   parseTimeQuery(c, "date_to"),
		Limit:    limit,
		Offset:   offset,
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}

	results, total, err := h.examService.ListResults(c.Request.Context(), identityFromContext(c), id, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: results, Total: total})
}

// ExportResults downloads an exam's results as a spreadsheet
// @Summary Export exam results
// @Tags exams
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Exam ID"
// @Success 200 {file} binary
// @Router /exams/{id}/results/export [get]
func (h *ExamHandler) ExportResults(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting exam results", "exam_id", id)

	data, filename, err := h.exportService.ExportResults(c.Request.Context(), identityFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
