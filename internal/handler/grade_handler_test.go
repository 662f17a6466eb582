package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/approval-api/internal/dto"
	"github.com/classtrack/approval-api/internal/middleware"
	"github.com/classtrack/approval-api/internal/models"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
)

type gradeWorkflowMock struct {
	createResp    *models.GradeRecord
	createErr     error
	transResp     *models.GradeRecord
	transErr      error
	listResp      []models.GradeRecord
	listErr       error
	pendingResp   []models.PendingGradeRow
	pendingErr    error
	lastID        int64
	lastReason    string
	lastFilter    models.GradeFilter
	lastDept      string
	createCalled  bool
	pendingCalled bool
}

func (m *gradeWorkflowMock) Create(ctx context.Context, req dto.CreateGradeRequest, actor models.Actor) (*models.GradeRecord, error) {
	m.createCalled = true
	return m.createResp, m.createErr
}

func (m *gradeWorkflowMock) Submit(ctx context.Context, id int64, actor models.Actor) (*models.GradeRecord, error) {
	m.lastID = id
	return m.transResp, m.transErr
}

func (m *gradeWorkflowMock) Approve(ctx context.Context, id int64, actor models.Actor) (*models.GradeRecord, error) {
	m.lastID = id
	return m.transResp, m.transErr
}

func (m *gradeWorkflowMock) Return(ctx context.Context, id int64, actor models.Actor, reason string) (*models.GradeRecord, error) {
	m.lastID = id
	m.lastReason = reason
	return m.transResp, m.transErr
}

func (m *gradeWorkflowMock) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	m.lastFilter = filter
	return m.listResp, m.listErr
}

func (m *gradeWorkflowMock) ListPending(ctx context.Context, actor models.Actor, departmentID string) ([]models.PendingGradeRow, error) {
	m.pendingCalled = true
	m.lastDept = departmentID
	return m.pendingResp, m.pendingErr
}

func instructorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "teach-1", Role: models.RoleInstructor}
}

func TestGradeHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gradeWorkflowMock{createResp: &models.GradeRecord{ID: 1, Status: models.GradeStatusDraft}}
	handler := NewGradeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"student_id":"s1","subject_id":"math","academic_level_id":"l1","school_year":"2025-2026","grade":91.5}`
	req, _ := http.NewRequest(http.MethodPost, "/grades", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, instructorClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.createCalled)
}

func TestGradeHandlerCreateUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(&gradeWorkflowMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/grades", bytes.NewBufferString(`{}`))
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGradeHandlerSubmitParsesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gradeWorkflowMock{transResp: &models.GradeRecord{ID: 42, Status: models.GradeStatusSubmitted}}
	handler := NewGradeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/grades/42/submit", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	c.Set(middleware.ContextUserKey, instructorClaims())

	handler.Submit(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), mockSvc.lastID)
}

func TestGradeHandlerSubmitBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(&gradeWorkflowMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/grades/abc/submit", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	c.Set(middleware.ContextUserKey, instructorClaims())

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradeHandlerApprovePropagatesConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gradeWorkflowMock{transErr: appErrors.ErrConflict}
	handler := NewGradeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/grades/7/approve", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "prin-1", Role: models.RolePrincipal})

	handler.Approve(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestGradeHandlerReturnRequiresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(&gradeWorkflowMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/grades/7/return", bytes.NewBufferString(`{"reason":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "prin-1", Role: models.RolePrincipal})

	handler.Return(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradeHandlerReturnPassesReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gradeWorkflowMock{transResp: &models.GradeRecord{ID: 7, Status: models.GradeStatusReturned}}
	handler := NewGradeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/grades/7/return", bytes.NewBufferString(`{"reason":"missing lab score"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "chair-1", Role: models.RoleChairperson, DepartmentID: "dept-cs"})

	handler.Return(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "missing lab score", mockSvc.lastReason)
}

func TestGradeHandlerListBindsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gradeWorkflowMock{listResp: []models.GradeRecord{{ID: 1}}}
	handler := NewGradeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/grades?studentId=s1&latestOnly=true&status=APPROVED", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", mockSvc.lastFilter.StudentID)
	assert.True(t, mockSvc.lastFilter.LatestOnly)
	assert.Equal(t, []models.GradeStatus{models.GradeStatusApproved}, mockSvc.lastFilter.Status)
}

func TestGradeHandlerListPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &gradeWorkflowMock{pendingResp: []models.PendingGradeRow{}}
	handler := NewGradeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/grades/pending?departmentId=dept-cs", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "prin-1", Role: models.RolePrincipal})

	handler.ListPending(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.pendingCalled)
	assert.Equal(t, "dept-cs", mockSvc.lastDept)
}
