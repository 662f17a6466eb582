package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/approval-api/internal/dto"
	"github.com/classtrack/approval-api/internal/models"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
	"github.com/classtrack/approval-api/pkg/response"
)

type gradeWorkflow interface {
	Create(ctx context.Context, req dto.CreateGradeRequest, actor models.Actor) (*models.GradeRecord, error)
	Submit(ctx context.Context, id int64, actor models.Actor) (*models.GradeRecord, error)
	Approve(ctx context.Context, id int64, actor models.Actor) (*models.GradeRecord, error)
	Return(ctx context.Context, id int64, actor models.Actor, reason string) (*models.GradeRecord, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
	ListPending(ctx context.Context, actor models.Actor, departmentID string) ([]models.PendingGradeRow, error)
}

// GradeHandler exposes grade workflow endpoints.
type GradeHandler struct {
	grades gradeWorkflow
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeWorkflow) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Create godoc
// @Summary Create a draft grade record
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.grades.Create(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Submit godoc
// @Summary Submit a draft grade for validation
// @Tags Grades
// @Produce json
// @Param id path int true "Grade record ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id}/submit [post]
func (h *GradeHandler) Submit(c *gin.Context) {
	h.transition(c, h.grades.Submit)
}

// Approve godoc
// @Summary Approve a submitted grade
// @Tags Grades
// @Produce json
// @Param id path int true "Grade record ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id}/approve [post]
func (h *GradeHandler) Approve(c *gin.Context) {
	h.transition(c, h.grades.Approve)
}

// Return godoc
// @Summary Return a submitted grade for correction
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path int true "Grade record ID"
// @Param payload body dto.ReturnGradeRequest true "Return payload"
// @Success 200 {object} response.Envelope
// @Router /grades/{id}/return [post]
func (h *GradeHandler) Return(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseRecordID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReturnGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.grades.Return(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// List godoc
// @Summary List grade records
// @Tags Grades
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param subjectId query string false "Filter by subject"
// @Param latestOnly query bool false "Collapse to latest record per key"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	var query dto.GradeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	filter := models.GradeFilter{
		StudentID:       query.StudentID,
		SubjectID:       query.SubjectID,
		AcademicLevelID: query.AcademicLevelID,
		SchoolYear:      query.SchoolYear,
		GradingPeriodID: query.GradingPeriodID,
		LatestOnly:      query.LatestOnly,
		Limit:           query.Limit,
		Offset:          query.Offset,
	}
	if query.Status != "" {
		filter.Status = []models.GradeStatus{models.GradeStatus(query.Status)}
	}
	records, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ListPending godoc
// @Summary List grades awaiting validation
// @Tags Grades
// @Produce json
// @Param departmentId query string false "Department filter (principal only)"
// @Success 200 {object} response.Envelope
// @Router /grades/pending [get]
func (h *GradeHandler) ListPending(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rows, err := h.grades.ListPending(c.Request.Context(), actor, c.Query("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

func (h *GradeHandler) transition(c *gin.Context, fn func(ctx context.Context, id int64, actor models.Actor) (*models.GradeRecord, error)) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := parseRecordID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := fn(c.Request.Context(), id, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

func parseRecordID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid grade record id")
	}
	return id, nil
}
