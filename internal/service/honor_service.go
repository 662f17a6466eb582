package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
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

type honorStore interface {
	CreateCriterion(ctx context.Context, criterion *models.HonorCriterion) error
	UpdateCriterion(ctx context.Context, criterion *models.HonorCriterion) error
	GetCriterion(ctx context.Context, id string) (*models.HonorCriterion, error)
	ListActiveCriteria(ctx context.Context, academicLevelID string) ([]models.HonorCriterion, error)
	ListAllCriteria(ctx context.Context) ([]models.HonorCriterion, error)
	ReplaceActive(ctx context.Context, studentID, academicLevelID, schoolYear string, result *models.HonorResult) error
	GetResultByID(ctx context.Context, id string) (*models.HonorResult, error)
	ListResults(ctx context.Context, filter models.HonorFilter) ([]models.HonorResult, error)
	Decide(ctx context.Context, params repository.DecideParams) error
}

type gradeHistoryReader interface {
	ListByStudentLevelYear(ctx context.Context, studentID, academicLevelID, schoolYear string) ([]models.GradeRecord, error)
}

type evaluationCatalog interface {
	ListRequiredSubjects(ctx context.Context, academicLevelID string) ([]models.Subject, error)
	PeriodByID(ctx context.Context, id string) (*models.GradingPeriod, error)
}

// EvaluationStatus classifies evaluator outcomes. NOT_YET_ELIGIBLE is a
// normal outcome, not a failure.
type EvaluationStatus string

const (
	EvaluationPendingCreated     EvaluationStatus = "PENDING_CREATED"
	EvaluationNotYetEligible     EvaluationStatus = "NOT_YET_ELIGIBLE"
	EvaluationNoCriterionMatched EvaluationStatus = "NO_CRITERION_MATCHED"
)

// EvaluationOutcome is the evaluator's answer for one student key.
type EvaluationOutcome struct {
	Status          EvaluationStatus    `json:"status"`
	GPA             float64             `json:"gpa,omitempty"`
	MissingSubjects []string            `json:"missing_subjects,omitempty"`
	Honor           *models.HonorResult `json:"honor,omitempty"`
}

// HonorService computes honor eligibility from approved final grades and
// runs the honor approval state machine:
// PENDING_APPROVAL → {APPROVED, REJECTED}, with SUPERSEDED marking results
// retired by a newer evaluation run. Terminal states are never mutated; a
// correction re-runs the evaluator.
type HonorService struct {
	honors    honorStore
	grades    gradeHistoryReader
	catalog   evaluationCatalog
	audit     auditLogger
	metrics   transitionObserver
	validator *validator.Validate
	logger    *zap.Logger
	round     func(float64) float64
	now       func() time.Time
}

// HonorServiceOption configures the service.
type HonorServiceOption func(*HonorService)

// WithHonorTransitionObserver sets the metrics sink.
func WithHonorTransitionObserver(observer transitionObserver) HonorServiceOption {
	return func(s *HonorService) {
		if observer != nil {
			s.metrics = observer
		}
	}
}

// NewHonorService constructs the service.
func NewHonorService(honors honorStore, grades gradeHistoryReader, catalog evaluationCatalog, audit auditLogger, validate *validator.Validate, logger *zap.Logger, opts ...HonorServiceOption) *HonorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &HonorService{
		honors:    honors,
		grades:    grades,
		catalog:   catalog,
		audit:     audit,
		validator: validate,
		logger:    logger,
		round:     func(v float64) float64 { return math.RoundToEven(v*100) / 100 },
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Evaluate computes the honor (if any) the student qualifies for and upserts
// a pending result. Re-running with unchanged grades is idempotent: any
// prior result for the key is superseded before the fresh pending row is
// written, so at most one active result exists per key.
func (s *HonorService) Evaluate(ctx context.Context, req dto.EvaluateHonorsRequest) (*EvaluationOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	records, err := s.grades.ListByStudentLevelYear(ctx, req.StudentID, req.AcademicLevelID, req.SchoolYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade records")
	}
	finals, err := s.approvedFinalGrades(ctx, records)
	if err != nil {
		return nil, err
	}
	required, err := s.catalog.ListRequiredSubjects(ctx, req.AcademicLevelID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list required subjects")
	}
	missing := missingSubjects(required, finals)
	if len(missing) > 0 {
		// Incomplete grades: no result is written and any existing one is
		// left untouched. Normal outcome, not a failure.
		return &EvaluationOutcome{Status: EvaluationNotYetEligible, MissingSubjects: missing}, nil
	}
	if len(finals) == 0 {
		// No required subjects configured and no approved final grades:
		// there is nothing to average, so no honor can be earned yet.
		return &EvaluationOutcome{Status: EvaluationNotYetEligible}, nil
	}

	sum := 0.0
	for _, record := range finals {
		sum += record.Grade
	}
	gpa := s.round(sum / float64(len(finals)))

	criteria, err := s.honors.ListActiveCriteria(ctx, req.AcademicLevelID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load honor criteria")
	}
	criterion := selectCriterion(criteria, gpa, req.AcademicLevelID)
	if criterion == nil {
		// Grades changed and no honor qualifies any more: retire whatever
		// result the previous run produced.
		if err := s.honors.ReplaceActive(ctx, req.StudentID, req.AcademicLevelID, req.SchoolYear, nil); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retire honor results")
		}
		return &EvaluationOutcome{Status: EvaluationNoCriterionMatched, GPA: gpa}, nil
	}

	result := &models.HonorResult{
		StudentID:       req.StudentID,
		HonorTypeID:     criterion.ID,
		HonorType:       criterion.HonorType,
		AcademicLevelID: req.AcademicLevelID,
		SchoolYear:      req.SchoolYear,
		GPA:             gpa,
		Status:          models.HonorStatusPending,
		CreatedAt:       s.now(),
	}
	if err := s.honors.ReplaceActive(ctx, req.StudentID, req.AcademicLevelID, req.SchoolYear, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store honor result")
	}
	s.emitAudit(ctx, nil, models.AuditActionHonorEval, result)
	return &EvaluationOutcome{Status: EvaluationPendingCreated, GPA: gpa, Honor: result}, nil
}

// Approve moves a pending honor to APPROVED. Principal only; chairpersons
// are forbidden regardless of department match.
func (s *HonorService) Approve(ctx context.Context, id string, actor models.Actor) (*models.HonorResult, error) {
	result, err := s.loadPendingResult(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(actor, authz.ActionHonorDecide, authz.Target{}); err != nil {
		return nil, err
	}
	at := s.now()
	err = s.honors.Decide(ctx, repository.DecideParams{
		ID:        id,
		Status:    models.HonorStatusApproved,
		DecidedBy: actor.UserID,
		DecidedAt: at,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "honor was decided concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve honor")
	}
	result.Status = models.HonorStatusApproved
	result.DecidedBy = &actor.UserID
	result.DecidedAt = &at
	s.emitAudit(ctx, &actor, models.AuditActionHonorApprove, result)
	s.observe("honor", "approve")
	return result, nil
}

// Reject moves a pending honor to REJECTED with a mandatory reason.
func (s *HonorService) Reject(ctx context.Context, id string, actor models.Actor, reason string) (*models.HonorResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	result, err := s.loadPendingResult(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(actor, authz.ActionHonorDecide, authz.Target{}); err != nil {
		return nil, err
	}
	at := s.now()
	err = s.honors.Decide(ctx, repository.DecideParams{
		ID:              id,
		Status:          models.HonorStatusRejected,
		DecidedBy:       actor.UserID,
		DecidedAt:       at,
		RejectionReason: &reason,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "honor was decided concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject honor")
	}
	result.Status = models.HonorStatusRejected
	result.DecidedBy = &actor.UserID
	result.DecidedAt = &at
	result.RejectionReason = &reason
	s.emitAudit(ctx, &actor, models.AuditActionHonorReject, result)
	s.observe("honor", "reject")
	return result, nil
}

// List returns honor results visible to the actor. Principals see all;
// chairpersons only students whose course belongs to their department.
func (s *HonorService) List(ctx context.Context, query dto.HonorQuery, actor models.Actor) ([]models.HonorResult, error) {
	filter := models.HonorFilter{
		StudentID:       query.StudentID,
		AcademicLevelID: query.AcademicLevelID,
		SchoolYear:      query.SchoolYear,
		Limit:           query.Limit,
		Offset:          query.Offset,
	}
	if query.Status != "" {
		filter.Status = []models.HonorStatus{models.HonorStatus(query.Status)}
	}
	switch actor.Role {
	case models.RolePrincipal, models.RoleAdmin:
		// unrestricted
	case models.RoleChairperson:
		if actor.DepartmentID == "" {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "chairperson has no department assignment")
		}
		filter.DepartmentID = actor.DepartmentID
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "honors require chairperson or principal role")
	}
	results, err := s.honors.ListResults(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list honors")
	}
	return results, nil
}

// ListPending returns pending honors visible to the actor.
func (s *HonorService) ListPending(ctx context.Context, actor models.Actor) ([]models.HonorResult, error) {
	return s.List(ctx, dto.HonorQuery{Status: string(models.HonorStatusPending)}, actor)
}

// --- criteria administration ---

// CreateCriterion registers a new threshold rule.
func (s *HonorService) CreateCriterion(ctx context.Context, req dto.UpsertCriterionRequest, actor models.Actor) (*models.HonorCriterion, error) {
	if err := authz.Require(actor, authz.ActionCriteriaManage, authz.Target{}); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid criterion payload")
	}
	if req.MaximumGrade != nil && *req.MaximumGrade < req.MinimumGrade {
		return nil, appErrors.Clone(appErrors.ErrValidation, "maximum_grade must not be below minimum_grade")
	}
	criterion := &models.HonorCriterion{
		HonorType:           req.HonorType,
		MinimumGrade:        req.MinimumGrade,
		MaximumGrade:        req.MaximumGrade,
		CriteriaDescription: req.CriteriaDescription,
		AcademicLevelID:     req.AcademicLevelID,
		IsActive:            true,
	}
	if req.IsActive != nil {
		criterion.IsActive = *req.IsActive
	}
	if err := s.honors.CreateCriterion(ctx, criterion); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create criterion")
	}
	return criterion, nil
}

// UpdateCriterion updates an existing threshold rule.
func (s *HonorService) UpdateCriterion(ctx context.Context, id string, req dto.UpsertCriterionRequest, actor models.Actor) (*models.HonorCriterion, error) {
	if err := authz.Require(actor, authz.ActionCriteriaManage, authz.Target{}); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid criterion payload")
	}
	if req.MaximumGrade != nil && *req.MaximumGrade < req.MinimumGrade {
		return nil, appErrors.Clone(appErrors.ErrValidation, "maximum_grade must not be below minimum_grade")
	}
	criterion, err := s.honors.GetCriterion(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "criterion not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criterion")
	}
	criterion.HonorType = req.HonorType
	criterion.MinimumGrade = req.MinimumGrade
	criterion.MaximumGrade = req.MaximumGrade
	criterion.CriteriaDescription = req.CriteriaDescription
	criterion.AcademicLevelID = req.AcademicLevelID
	if req.IsActive != nil {
		criterion.IsActive = *req.IsActive
	}
	if err := s.honors.UpdateCriterion(ctx, criterion); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "criterion not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update criterion")
	}
	return criterion, nil
}

// ListCriteria returns every configured criterion.
func (s *HonorService) ListCriteria(ctx context.Context) ([]models.HonorCriterion, error) {
	criteria, err := s.honors.ListAllCriteria(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list criteria")
	}
	return criteria, nil
}

// approvedFinalGrades applies latest-wins resolution and keeps the approved
// records that carry summative weight: final-period rows plus
// period-independent final averages.
func (s *HonorService) approvedFinalGrades(ctx context.Context, records []models.GradeRecord) ([]models.GradeRecord, error) {
	resolved := ResolveLatestPerKey(records)
	periodTypes := make(map[string]models.PeriodType)
	finals := make([]models.GradeRecord, 0, len(resolved))
	for _, record := range resolved {
		if record.Status != models.GradeStatusApproved {
			continue
		}
		if record.GradingPeriodID == nil {
			finals = append(finals, record)
			continue
		}
		periodID := *record.GradingPeriodID
		periodType, ok := periodTypes[periodID]
		if !ok {
			period, err := s.catalog.PeriodByID(ctx, periodID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "grading period metadata missing")
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading period")
			}
			periodType = period.PeriodType
			periodTypes[periodID] = periodType
		}
		if periodType == models.PeriodTypeFinal {
			finals = append(finals, record)
		}
	}
	return finals, nil
}

func (s *HonorService) loadPendingResult(ctx context.Context, id string) (*models.HonorResult, error) {
	result, err := s.honors.GetResultByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "honor result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load honor result")
	}
	if result.Status != models.HonorStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only pending honors can be decided")
	}
	return result, nil
}

func (s *HonorService) emitAudit(ctx context.Context, actor *models.Actor, action string, result *models.HonorResult) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		payload = nil
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "honor_result",
		ResourceID: &result.ID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "honor-service",
	}
	if actor != nil {
		log.UserID = &actor.UserID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func (s *HonorService) observe(resource, action string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(resource, action)
	}
}

// selectCriterion picks the best-matching criterion: among matches, the one
// with the highest minimum_grade wins, so overlapping misconfigured ranges
// still resolve deterministically to the most exclusive honor.
func selectCriterion(criteria []models.HonorCriterion, gpa float64, academicLevelID string) *models.HonorCriterion {
	var best *models.HonorCriterion
	for i := range criteria {
		criterion := criteria[i]
		if !criterion.AppliesTo(academicLevelID) || !criterion.Matches(gpa) {
			continue
		}
		if best == nil || criterion.MinimumGrade > best.MinimumGrade {
			best = &criteria[i]
		}
	}
	return best
}

// missingSubjects lists required subjects lacking an approved final grade.
func missingSubjects(required []models.Subject, finals []models.GradeRecord) []string {
	graded := make(map[string]bool, len(finals))
	for _, record := range finals {
		graded[record.SubjectID] = true
	}
	var missing []string
	for _, subject := range required {
		if !graded[subject.ID] {
			missing = append(missing, subject.ID)
		}
	}
	return missing
}
