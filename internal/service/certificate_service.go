package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/classtrack/approval-api/internal/models"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
)

type approvedHonorFinder interface {
	FindApprovedByKey(ctx context.Context, studentID, academicLevelID, schoolYear string) (*models.HonorResult, error)
}

// CertificateService is the only surface the certificate-rendering
// subsystem sees: a certificate is unlockable iff an approved honor exists
// for the key. The answer is recomputed on every call because a later
// evaluation run can retire an approved honor; it must never be cached
// beyond the request.
type CertificateService struct {
	honors approvedHonorFinder
}

// NewCertificateService constructs the gate.
func NewCertificateService(honors approvedHonorFinder) *CertificateService {
	return &CertificateService{honors: honors}
}

// Eligibility is the gate's answer, carrying the honor that unlocks the
// certificate when eligible.
type Eligibility struct {
	Eligible bool                `json:"eligible"`
	Honor    *models.HonorResult `json:"honor,omitempty"`
}

// IsEligible answers whether a certificate for the key is unlockable.
func (s *CertificateService) IsEligible(ctx context.Context, studentID, academicLevelID, schoolYear string) (*Eligibility, error) {
	honor, err := s.honors.FindApprovedByKey(ctx, studentID, academicLevelID, schoolYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Eligibility{Eligible: false}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check eligibility")
	}
	return &Eligibility{Eligible: true, Honor: honor}, nil
}
