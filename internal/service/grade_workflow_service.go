package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/approval-api/internal/authz"
	"github.com/classtrack/approval-api/internal/dto"
	"github.com/classtrack/approval-api/internal/models"
	"github.com/classtrack/approval-api/internal/repository"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
)

type gradeStore interface {
	Create(ctx context.Context, record *models.GradeRecord) error
	GetByID(ctx context.Context, id int64) (*models.GradeRecord, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
	ListPending(ctx context.Context, departmentID string) ([]models.PendingGradeRow, error)
	Transition(ctx context.Context, params repository.TransitionParams) error
}

type catalogReader interface {
	SubjectByID(ctx context.Context, id string) (*models.Subject, error)
	PeriodByID(ctx context.Context, id string) (*models.GradingPeriod, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// EvaluationTrigger schedules honor evaluation after a final grade approval
// commits. Implementations must not block the approval path.
type EvaluationTrigger interface {
	TriggerEvaluation(studentID, academicLevelID, schoolYear string)
}

// EvaluationTriggerFunc allows using plain functions.
type EvaluationTriggerFunc func(studentID, academicLevelID, schoolYear string)

// TriggerEvaluation implements EvaluationTrigger.
func (f EvaluationTriggerFunc) TriggerEvaluation(studentID, academicLevelID, schoolYear string) {
	f(studentID, academicLevelID, schoolYear)
}

type transitionObserver interface {
	ObserveTransition(resource, action string)
}

// GradeWorkflowService enforces the grade state machine:
// DRAFT → SUBMITTED → {APPROVED, RETURNED}. Every transition couples its
// guard check with a status-conditional update, so of two concurrent
// decisions exactly one wins and the loser sees Conflict.
type GradeWorkflowService struct {
	grades    gradeStore
	catalog   catalogReader
	audit     auditLogger
	trigger   EvaluationTrigger
	metrics   transitionObserver
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// GradeWorkflowOption configures the service.
type GradeWorkflowOption func(*GradeWorkflowService)

// WithEvaluationTrigger sets the post-approval evaluation hook.
func WithEvaluationTrigger(trigger EvaluationTrigger) GradeWorkflowOption {
	return func(s *GradeWorkflowService) {
		if trigger != nil {
			s.trigger = trigger
		}
	}
}

// WithTransitionObserver sets the metrics sink.
func WithTransitionObserver(observer transitionObserver) GradeWorkflowOption {
	return func(s *GradeWorkflowService) {
		if observer != nil {
			s.metrics = observer
		}
	}
}

// NewGradeWorkflowService constructs the service.
func NewGradeWorkflowService(grades gradeStore, catalog catalogReader, audit auditLogger, validate *validator.Validate, logger *zap.Logger, opts ...GradeWorkflowOption) *GradeWorkflowService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &GradeWorkflowService{
		grades:    grades,
		catalog:   catalog,
		audit:     audit,
		trigger:   EvaluationTriggerFunc(func(string, string, string) {}),
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create opens a new draft grade record. Corrections after a return go
// through here again; the fresh row supersedes the returned one by id.
func (s *GradeWorkflowService) Create(ctx context.Context, req dto.CreateGradeRequest, actor models.Actor) (*models.GradeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	subject, err := s.loadSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(actor, authz.ActionGradeSubmit, authz.Target{InstructorID: subject.InstructorID}); err != nil {
		return nil, err
	}
	if req.GradingPeriodID != nil {
		if _, err := s.loadPeriod(ctx, *req.GradingPeriodID); err != nil {
			return nil, err
		}
	}
	record := &models.GradeRecord{
		StudentID:       req.StudentID,
		SubjectID:       req.SubjectID,
		AcademicLevelID: req.AcademicLevelID,
		GradingPeriodID: req.GradingPeriodID,
		SchoolYear:      req.SchoolYear,
		Grade:           req.Grade,
		YearOfStudy:     req.YearOfStudy,
		Status:          models.GradeStatusDraft,
		CreatedBy:       actor.UserID,
	}
	if err := s.grades.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade record")
	}
	return record, nil
}

// Submit moves a draft record into validation.
func (s *GradeWorkflowService) Submit(ctx context.Context, id int64, actor models.Actor) (*models.GradeRecord, error) {
	record, err := s.loadRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != models.GradeStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only draft grades can be submitted")
	}
	subject, err := s.loadSubject(ctx, record.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(actor, authz.ActionGradeSubmit, authz.Target{InstructorID: subject.InstructorID}); err != nil {
		return nil, err
	}
	at := s.now()
	err = s.grades.Transition(ctx, repository.TransitionParams{
		ID:         id,
		FromStatus: models.GradeStatusDraft,
		ToStatus:   models.GradeStatusSubmitted,
		ActorID:    actor.UserID,
		At:         at,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "grade was changed concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit grade")
	}
	record.Status = models.GradeStatusSubmitted
	record.SubmittedAt = &at
	s.emitAudit(ctx, actor, models.AuditActionGradeSubmit, record, nil)
	s.observe("grade", "submit")
	return record, nil
}

// Approve approves a submitted record. Chairpersons are scoped to their own
// department and barred from final-period grades, which only the principal
// may approve. A final approval schedules honor evaluation after the update
// commits; evaluation failures never roll the approval back.
func (s *GradeWorkflowService) Approve(ctx context.Context, id int64, actor models.Actor) (*models.GradeRecord, error) {
	record, subject, final, err := s.loadForDecision(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(actor, authz.ActionGradeApprove, authz.Target{DepartmentID: subject.DepartmentID, FinalPeriod: final}); err != nil {
		return nil, err
	}
	at := s.now()
	err = s.grades.Transition(ctx, repository.TransitionParams{
		ID:         id,
		FromStatus: models.GradeStatusSubmitted,
		ToStatus:   models.GradeStatusApproved,
		ActorID:    actor.UserID,
		At:         at,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "grade was decided concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve grade")
	}
	record.Status = models.GradeStatusApproved
	record.ApprovedAt = &at
	record.ApprovedBy = &actor.UserID
	record.ValidatedAt = &at
	record.ValidatedBy = &actor.UserID
	s.emitAudit(ctx, actor, models.AuditActionGradeApprove, record, nil)
	s.observe("grade", "approve")
	if final {
		s.trigger.TriggerEvaluation(record.StudentID, record.AcademicLevelID, record.SchoolYear)
	}
	return record, nil
}

// Return sends a submitted record back for correction with a mandatory
// reason. Same scope rule as Approve.
func (s *GradeWorkflowService) Return(ctx context.Context, id int64, actor models.Actor, reason string) (*models.GradeRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "return reason is required")
	}
	record, subject, final, err := s.loadForDecision(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(actor, authz.ActionGradeReturn, authz.Target{DepartmentID: subject.DepartmentID, FinalPeriod: final}); err != nil {
		return nil, err
	}
	at := s.now()
	err = s.grades.Transition(ctx, repository.TransitionParams{
		ID:         id,
		FromStatus: models.GradeStatusSubmitted,
		ToStatus:   models.GradeStatusReturned,
		ActorID:    actor.UserID,
		At:         at,
		Reason:     &reason,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "grade was decided concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to return grade")
	}
	record.Status = models.GradeStatusReturned
	record.ReturnedAt = &at
	record.ReturnedBy = &actor.UserID
	record.ReturnReason = &reason
	s.emitAudit(ctx, actor, models.AuditActionGradeReturn, record, nil)
	s.observe("grade", "return")
	return record, nil
}

// List returns grade records for the filter.
func (s *GradeWorkflowService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	records, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return records, nil
}

// ListPending returns the validation queue visible to the actor: principals
// see every department, chairpersons only their own.
func (s *GradeWorkflowService) ListPending(ctx context.Context, actor models.Actor, departmentID string) ([]models.PendingGradeRow, error) {
	switch actor.Role {
	case models.RolePrincipal, models.RoleAdmin:
		// unrestricted; optional filter honoured as-is
	case models.RoleChairperson:
		departmentID = actor.DepartmentID
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "pending grades require chairperson or principal role")
	}
	rows, err := s.grades.ListPending(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending grades")
	}
	return rows, nil
}

func (s *GradeWorkflowService) loadRecord(ctx context.Context, id int64) (*models.GradeRecord, error) {
	record, err := s.grades.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade record")
	}
	return record, nil
}

func (s *GradeWorkflowService) loadSubject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.catalog.SubjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

func (s *GradeWorkflowService) loadPeriod(ctx context.Context, id string) (*models.GradingPeriod, error) {
	period, err := s.catalog.PeriodByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grading period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading period")
	}
	return period, nil
}

// loadForDecision gathers everything approve/return guards need. A record
// without a grading period is a period-independent final average and is
// treated as final for scoping.
func (s *GradeWorkflowService) loadForDecision(ctx context.Context, id int64) (*models.GradeRecord, *models.Subject, bool, error) {
	record, err := s.loadRecord(ctx, id)
	if err != nil {
		return nil, nil, false, err
	}
	if record.Status != models.GradeStatusSubmitted {
		return nil, nil, false, appErrors.Clone(appErrors.ErrInvalidTransition, "only submitted grades can be decided")
	}
	subject, err := s.loadSubject(ctx, record.SubjectID)
	if err != nil {
		return nil, nil, false, err
	}
	final := true
	if record.GradingPeriodID != nil {
		period, err := s.loadPeriod(ctx, *record.GradingPeriodID)
		if err != nil {
			return nil, nil, false, err
		}
		final = period.IsFinal()
	}
	return record, subject, final, nil
}

func (s *GradeWorkflowService) emitAudit(ctx context.Context, actor models.Actor, action string, record *models.GradeRecord, old []byte) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		payload = nil
	}
	resourceID := strconvID(record.ID)
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "grade_record",
		ResourceID: &resourceID,
		OldValues:  old,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "grade-workflow",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func (s *GradeWorkflowService) observe(resource, action string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(resource, action)
	}
}

func strconvID(id int64) string {
	return strconv.FormatInt(id, 10)
}
