package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/approval-api/internal/dto"
	"github.com/classtrack/approval-api/internal/service"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
	"github.com/classtrack/approval-api/pkg/response"
)

type eligibilityChecker interface {
	IsEligible(ctx context.Context, studentID, academicLevelID, schoolYear string) (*service.Eligibility, error)
}

// CertificateHandler answers certificate eligibility checks.
type CertificateHandler struct {
	certificates eligibilityChecker
}

func NewCertificateHandler(certificates eligibilityChecker) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Eligibility godoc
// @Summary Check certificate eligibility for a student key
// @Tags Certificates
// @Produce json
// @Param studentId query string true "Student ID"
// @Param academicLevelId query string true "Academic level ID"
// @Param schoolYear query string true "School year"
// @Success 200 {object} response.Envelope
// @Router /certificates/eligibility [get]
func (h *CertificateHandler) Eligibility(c *gin.Context) {
	var query dto.EligibilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	if query.StudentID == "" || query.AcademicLevelID == "" || query.SchoolYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId, academicLevelId and schoolYear are required"))
		return
	}
	eligibility, err := h.certificates.IsEligible(c.Request.Context(), query.StudentID, query.AcademicLevelID, query.SchoolYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eligibility, nil)
}
