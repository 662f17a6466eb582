package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtrack/approval-api/internal/models"
)

const honorResultColumns = `hr.id, hr.student_id, hr.honor_type_id, hc.honor_type, hr.academic_level_id,
       hr.school_year, hr.gpa, hr.status, hr.decided_by, hr.decided_at, hr.rejection_reason, hr.created_at`

// HonorRepository persists honor criteria and computed honor results.
type HonorRepository struct {
	db *sqlx.DB
}

// NewHonorRepository constructs the repository.
func NewHonorRepository(db *sqlx.DB) *HonorRepository {
	return &HonorRepository{db: db}
}

// --- criteria ---

// CreateCriterion inserts a new honor criterion.
func (r *HonorRepository) CreateCriterion(ctx context.Context, criterion *models.HonorCriterion) error {
	if criterion.ID == "" {
		criterion.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if criterion.CreatedAt.IsZero() {
		criterion.CreatedAt = now
	}
	criterion.UpdatedAt = now
	const query = `INSERT INTO honor_criteria
	(id, honor_type, minimum_grade, maximum_grade, criteria_description, academic_level_id, is_active, created_at, updated_at)
	VALUES (:id, :honor_type, :minimum_grade, :maximum_grade, :criteria_description, :academic_level_id, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, criterion); err != nil {
		return fmt.Errorf("create honor criterion: %w", err)
	}
	return nil
}

// UpdateCriterion updates threshold values and activation state.
func (r *HonorRepository) UpdateCriterion(ctx context.Context, criterion *models.HonorCriterion) error {
	criterion.UpdatedAt = time.Now().UTC()
	const query = `UPDATE honor_criteria SET honor_type = :honor_type, minimum_grade = :minimum_grade,
	maximum_grade = :maximum_grade, criteria_description = :criteria_description,
	academic_level_id = :academic_level_id, is_active = :is_active, updated_at = :updated_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, criterion)
	if err != nil {
		return fmt.Errorf("update honor criterion: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check criterion update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetCriterion fetches one criterion by id.
func (r *HonorRepository) GetCriterion(ctx context.Context, id string) (*models.HonorCriterion, error) {
	const query = `SELECT id, honor_type, minimum_grade, maximum_grade, criteria_description,
       academic_level_id, is_active, created_at, updated_at FROM honor_criteria WHERE id = $1`
	var criterion models.HonorCriterion
	if err := r.db.GetContext(ctx, &criterion, query, id); err != nil {
		return nil, err
	}
	return &criterion, nil
}

// ListActiveCriteria returns active criteria applicable to the level (level
// scoped plus unscoped), most exclusive first.
func (r *HonorRepository) ListActiveCriteria(ctx context.Context, academicLevelID string) ([]models.HonorCriterion, error) {
	const query = `SELECT id, honor_type, minimum_grade, maximum_grade, criteria_description,
       academic_level_id, is_active, created_at, updated_at
	FROM honor_criteria
	WHERE is_active = TRUE AND (academic_level_id IS NULL OR academic_level_id = $1)
	ORDER BY minimum_grade DESC`
	var criteria []models.HonorCriterion
	if err := r.db.SelectContext(ctx, &criteria, query, academicLevelID); err != nil {
		return nil, fmt.Errorf("list honor criteria: %w", err)
	}
	return criteria, nil
}

// ListAllCriteria returns every criterion for administration.
func (r *HonorRepository) ListAllCriteria(ctx context.Context) ([]models.HonorCriterion, error) {
	const query = `SELECT id, honor_type, minimum_grade, maximum_grade, criteria_description,
       academic_level_id, is_active, created_at, updated_at FROM honor_criteria ORDER BY minimum_grade DESC`
	var criteria []models.HonorCriterion
	if err := r.db.SelectContext(ctx, &criteria, query); err != nil {
		return nil, fmt.Errorf("list honor criteria: %w", err)
	}
	return criteria, nil
}

// --- results ---

// ReplaceActive retires any non-superseded result for the key and inserts
// the new pending result inside one transaction, so at most one active
// result per (student, level, year) ever exists. A nil result only retires.
func (r *HonorRepository) ReplaceActive(ctx context.Context, studentID, academicLevelID, schoolYear string, result *models.HonorResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const supersede = `UPDATE honor_results SET status = 'SUPERSEDED'
	WHERE student_id = $1 AND academic_level_id = $2 AND school_year = $3
	AND status IN ('PENDING_APPROVAL', 'APPROVED', 'REJECTED')`
	if _, err := tx.ExecContext(ctx, supersede, studentID, academicLevelID, schoolYear); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("supersede honor results: %w", err)
	}
	if result != nil {
		if result.ID == "" {
			result.ID = uuid.NewString()
		}
		if result.Status == "" {
			result.Status = models.HonorStatusPending
		}
		if result.CreatedAt.IsZero() {
			result.CreatedAt = time.Now().UTC()
		}
		const insert = `INSERT INTO honor_results
		(id, student_id, honor_type_id, academic_level_id, school_year, gpa, status, created_at)
		VALUES (:id, :student_id, :honor_type_id, :academic_level_id, :school_year, :gpa, :status, :created_at)`
		if _, err := tx.NamedExecContext(ctx, insert, result); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert honor result: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit honor replacement: %w", err)
	}
	return nil
}

// GetResultByID fetches one honor result with its honor label.
func (r *HonorRepository) GetResultByID(ctx context.Context, id string) (*models.HonorResult, error) {
	query := fmt.Sprintf(`SELECT %s FROM honor_results hr
	JOIN honor_criteria hc ON hc.id = hr.honor_type_id
	WHERE hr.id = $1`, honorResultColumns)
	var result models.HonorResult
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResults returns honor results matching the filter, newest first.
// DepartmentID joins through the student's course, the chairperson scope rule.
func (r *HonorRepository) ListResults(ctx context.Context, filter models.HonorFilter) ([]models.HonorResult, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM honor_results hr
	JOIN honor_criteria hc ON hc.id = hr.honor_type_id`, honorResultColumns))
	args := make([]interface{}, 0, 6)
	conditions := make([]string, 0, 5)
	if filter.DepartmentID != "" {
		builder.WriteString(`
	JOIN students st ON st.id = hr.student_id
	JOIN courses co ON co.id = st.course_id`)
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("co.department_id = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("hr.student_id = $%d", len(args)))
	}
	if filter.AcademicLevelID != "" {
		args = append(args, filter.AcademicLevelID)
		conditions = append(conditions, fmt.Sprintf("hr.academic_level_id = $%d", len(args)))
	}
	if filter.SchoolYear != "" {
		args = append(args, filter.SchoolYear)
		conditions = append(conditions, fmt.Sprintf("hr.school_year = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("hr.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY hr.created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var results []models.HonorResult
	if err := r.db.SelectContext(ctx, &results, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list honor results: %w", err)
	}
	return results, nil
}

// DecideParams groups the columns an honor decision sets.
type DecideParams struct {
	ID              string
	Status          models.HonorStatus
	DecidedBy       string
	DecidedAt       time.Time
	RejectionReason *string
}

// Decide moves a pending result to a terminal state with an optimistic guard
// on PENDING_APPROVAL. Zero affected rows surface as sql.ErrNoRows.
func (r *HonorRepository) Decide(ctx context.Context, params DecideParams) error {
	setParts := []string{"status = :status", "decided_by = :decided_by", "decided_at = :decided_at"}
	if params.RejectionReason != nil {
		setParts = append(setParts, "rejection_reason = :rejection_reason")
	}
	query := fmt.Sprintf("UPDATE honor_results SET %s WHERE id = :id AND status = '%s'",
		strings.Join(setParts, ", "),
		models.HonorStatusPending,
	)
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":               params.ID,
		"status":           params.Status,
		"decided_by":       params.DecidedBy,
		"decided_at":       params.DecidedAt,
		"rejection_reason": params.RejectionReason,
	})
	if err != nil {
		return fmt.Errorf("decide honor result: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check honor decision rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindApprovedByKey returns the approved result for the key, or
// sql.ErrNoRows when none exists. Consulted by the certificate gate on every
// call so supersession is always observed.
func (r *HonorRepository) FindApprovedByKey(ctx context.Context, studentID, academicLevelID, schoolYear string) (*models.HonorResult, error) {
	query := fmt.Sprintf(`SELECT %s FROM honor_results hr
	JOIN honor_criteria hc ON hc.id = hr.honor_type_id
	WHERE hr.student_id = $1 AND hr.academic_level_id = $2 AND hr.school_year = $3 AND hr.status = 'APPROVED'`,
		honorResultColumns)
	var result models.HonorResult
	if err := r.db.GetContext(ctx, &result, query, studentID, academicLevelID, schoolYear); err != nil {
		return nil, err
	}
	return &result, nil
}

// HonorRoll returns the approved honors for a level and year with student
// names, for reporting.
func (r *HonorRepository) HonorRoll(ctx context.Context, academicLevelID, schoolYear string) ([]models.HonorRollRow, error) {
	const query = `SELECT hr.student_id, st.full_name AS student_name, hc.honor_type, hr.gpa
	FROM honor_results hr
	JOIN honor_criteria hc ON hc.id = hr.honor_type_id
	JOIN students st ON st.id = hr.student_id
	WHERE hr.academic_level_id = $1 AND hr.school_year = $2 AND hr.status = 'APPROVED'
	ORDER BY hr.gpa DESC, st.full_name`
	var rows []models.HonorRollRow
	if err := r.db.SelectContext(ctx, &rows, query, academicLevelID, schoolYear); err != nil {
		return nil, fmt.Errorf("load honor roll: %w", err)
	}
	return rows, nil
}
