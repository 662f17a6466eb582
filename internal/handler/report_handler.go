package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/approval-api/internal/models"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
	"github.com/classtrack/approval-api/pkg/response"
)

type honorRollReporter interface {
	HonorRoll(ctx context.Context, academicLevelID, schoolYear string) ([]models.HonorRollRow, bool, error)
	ExportCSV(ctx context.Context, academicLevelID, schoolYear string) ([]byte, error)
	ExportPDF(ctx context.Context, academicLevelID, schoolYear string) ([]byte, error)
}

// ReportHandler serves the honor-roll projection and its exports.
type ReportHandler struct {
	reports honorRollReporter
}

func NewReportHandler(reports honorRollReporter) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// HonorRoll godoc
// @Summary Honor roll for a level and school year
// @Tags Reports
// @Produce json
// @Param academicLevelId query string true "Academic level ID"
// @Param schoolYear query string true "School year"
// @Param format query string false "csv or pdf for file export"
// @Success 200 {object} response.Envelope
// @Router /reports/honor-roll [get]
func (h *ReportHandler) HonorRoll(c *gin.Context) {
	levelID := c.Query("academicLevelId")
	schoolYear := c.Query("schoolYear")

	switch c.Query("format") {
	case "csv":
		payload, err := h.reports.ExportCSV(c.Request.Context(), levelID, schoolYear)
		if err != nil {
			response.Error(c, err)
			return
		}
		name := fmt.Sprintf("honor-roll-%s.csv", schoolYear)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.reports.ExportPDF(c.Request.Context(), levelID, schoolYear)
		if err != nil {
			response.Error(c, err)
			return
		}
		name := fmt.Sprintf("honor-roll-%s.pdf", schoolYear)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "application/pdf", payload)
	case "":
		rows, fromCache, err := h.reports.HonorRoll(c.Request.Context(), levelID, schoolYear)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"cached": fromCache})
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
