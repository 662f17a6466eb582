package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classtrack/approval-api/internal/models"
)

type approvedHonorFinderStub struct {
	honors map[string]*models.HonorResult
}

func (f *approvedHonorFinderStub) FindApprovedByKey(ctx context.Context, studentID, academicLevelID, schoolYear string) (*models.HonorResult, error) {
	if honor, ok := f.honors[studentID+"/"+academicLevelID+"/"+schoolYear]; ok {
		copy := *honor
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func TestCertificateEligibility(t *testing.T) {
	finder := &approvedHonorFinderStub{honors: map[string]*models.HonorResult{
		"s1/l1/2025-2026": {ID: "h1", StudentID: "s1", HonorType: "With Honors", Status: models.HonorStatusApproved},
	}}
	svc := NewCertificateService(finder)

	eligibility, err := svc.IsEligible(context.Background(), "s1", "l1", "2025-2026")
	require.NoError(t, err)
	require.True(t, eligibility.Eligible)
	require.Equal(t, "With Honors", eligibility.Honor.HonorType)

	eligibility, err = svc.IsEligible(context.Background(), "s2", "l1", "2025-2026")
	require.NoError(t, err)
	require.False(t, eligibility.Eligible)
	require.Nil(t, eligibility.Honor)
}

func TestCertificateEligibilityFlipsAfterSupersession(t *testing.T) {
	finder := &approvedHonorFinderStub{honors: map[string]*models.HonorResult{
		"s1/l1/2025-2026": {ID: "h1", Status: models.HonorStatusApproved},
	}}
	svc := NewCertificateService(finder)

	eligibility, err := svc.IsEligible(context.Background(), "s1", "l1", "2025-2026")
	require.NoError(t, err)
	require.True(t, eligibility.Eligible)

	// A re-evaluation retired the approved honor; the next check must not
	// serve a stale answer.
	delete(finder.honors, "s1/l1/2025-2026")
	eligibility, err = svc.IsEligible(context.Background(), "s1", "l1", "2025-2026")
	require.NoError(t, err)
	require.False(t, eligibility.Eligible)
}
