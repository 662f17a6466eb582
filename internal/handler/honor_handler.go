package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/approval-api/internal/dto"
	"github.com/classtrack/approval-api/internal/models"
	"github.com/classtrack/approval-api/internal/service"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
	"github.com/classtrack/approval-api/pkg/response"
)

type honorDirectory interface {
	Evaluate(ctx context.Context, req dto.EvaluateHonorsRequest) (*service.EvaluationOutcome, error)
	Approve(ctx context.Context, id string, actor models.Actor) (*models.HonorResult, error)
	Reject(ctx context.Context, id string, actor models.Actor, reason string) (*models.HonorResult, error)
	List(ctx context.Context, query dto.HonorQuery, actor models.Actor) ([]models.HonorResult, error)
	ListPending(ctx context.Context, actor models.Actor) ([]models.HonorResult, error)
	CreateCriterion(ctx context.Context, req dto.UpsertCriterionRequest, actor models.Actor) (*models.HonorCriterion, error)
	UpdateCriterion(ctx context.Context, id string, req dto.UpsertCriterionRequest, actor models.Actor) (*models.HonorCriterion, error)
	ListCriteria(ctx context.Context) ([]models.HonorCriterion, error)
}

// HonorHandler exposes honor evaluation and approval endpoints.
type HonorHandler struct {
	honors honorDirectory
}

func NewHonorHandler(honors honorDirectory) *HonorHandler {
	return &HonorHandler{honors: honors}
}

// Evaluate godoc
// @Summary Evaluate honor eligibility for a student key
// @Tags Honors
// @Accept json
// @Produce json
// @Param payload body dto.EvaluateHonorsRequest true "Student key"
// @Success 200 {object} response.Envelope
// @Router /honors/evaluate [post]
func (h *HonorHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluateHonorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	outcome, err := h.honors.Evaluate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Approve godoc
// @Summary Approve a pending honor result
// @Tags Honors
// @Produce json
// @Param id path string true "Honor result ID"
// @Success 200 {object} response.Envelope
// @Router /honors/{id}/approve [post]
func (h *HonorHandler) Approve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.honors.Approve(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject a pending honor result
// @Tags Honors
// @Accept json
// @Produce json
// @Param id path string true "Honor result ID"
// @Param payload body dto.RejectHonorRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Router /honors/{id}/reject [post]
func (h *HonorHandler) Reject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RejectHonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.honors.Reject(c.Request.Context(), c.Param("id"), actor, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List honor results
// @Tags Honors
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /honors [get]
func (h *HonorHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.HonorQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	results, err := h.honors.List(c.Request.Context(), query, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// ListPending godoc
// @Summary List honor results awaiting a decision
// @Tags Honors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /honors/pending [get]
func (h *HonorHandler) ListPending(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	results, err := h.honors.ListPending(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// CreateCriterion godoc
// @Summary Create an honor criterion
// @Tags Criteria
// @Accept json
// @Produce json
// @Param payload body dto.UpsertCriterionRequest true "Criterion payload"
// @Success 201 {object} response.Envelope
// @Router /honor-criteria [post]
func (h *HonorHandler) CreateCriterion(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpsertCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	criterion, err := h.honors.CreateCriterion(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, criterion)
}

// UpdateCriterion godoc
// @Summary Update an honor criterion
// @Tags Criteria
// @Accept json
// @Produce json
// @Param id path string true "Criterion ID"
// @Param payload body dto.UpsertCriterionRequest true "Criterion payload"
// @Success 200 {object} response.Envelope
// @Router /honor-criteria/{id} [put]
func (h *HonorHandler) UpdateCriterion(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpsertCriterionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	criterion, err := h.honors.UpdateCriterion(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, criterion, nil)
}

// ListCriteria godoc
// @Summary List honor criteria
// @Tags Criteria
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /honor-criteria [get]
func (h *HonorHandler) ListCriteria(c *gin.Context) {
	criteria, err := h.honors.ListCriteria(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, criteria, nil)
}
