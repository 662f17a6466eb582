package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/classtrack/approval-api/internal/models"
)

const gradeColumns = `id, student_id, subject_id, academic_level_id, grading_period_id, school_year,
       grade, year_of_study, status, submitted_at, validated_at, approved_at, returned_at,
       validated_by, approved_by, returned_by, return_reason, created_at, created_by`

// GradeRepository persists grade records. Rows are append-only: corrections
// insert new rows and the monotonic BIGSERIAL id drives latest-wins
// resolution. Transitions only ever flip the status column of one row.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Create inserts a new grade record in DRAFT state.
func (r *GradeRepository) Create(ctx context.Context, record *models.GradeRecord) error {
	if record.Status == "" {
		record.Status = models.GradeStatusDraft
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grade_records
	(student_id, subject_id, academic_level_id, grading_period_id, school_year, grade, year_of_study, status, created_at, created_by)
	VALUES (:student_id, :subject_id, :academic_level_id, :grading_period_id, :school_year, :grade, :year_of_study, :status, :created_at, :created_by)
	RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("create grade record: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&record.ID); err != nil {
			return fmt.Errorf("scan grade record id: %w", err)
		}
	}
	return nil
}

// GetByID fetches one grade record.
func (r *GradeRepository) GetByID(ctx context.Context, id int64) (*models.GradeRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM grade_records WHERE id = $1", gradeColumns)
	var record models.GradeRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns grade records matching the filter, newest first. LatestOnly
// collapses each composite key to its highest-id row via DISTINCT ON, the
// SQL mirror of the in-memory resolver.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	if filter.LatestOnly {
		builder.WriteString(fmt.Sprintf(`SELECT %s FROM (
	SELECT DISTINCT ON (student_id, subject_id, academic_level_id, school_year, grading_period_id) %s
	FROM grade_records`, gradeColumns, gradeColumns))
	} else {
		builder.WriteString(fmt.Sprintf("SELECT %s FROM grade_records", gradeColumns))
	}

	conditions := make([]string, 0, 6)
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if filter.AcademicLevelID != "" {
		args = append(args, filter.AcademicLevelID)
		conditions = append(conditions, fmt.Sprintf("academic_level_id = $%d", len(args)))
	}
	if filter.SchoolYear != "" {
		args = append(args, filter.SchoolYear)
		conditions = append(conditions, fmt.Sprintf("school_year = $%d", len(args)))
	}
	if filter.GradingPeriodID != "" {
		args = append(args, filter.GradingPeriodID)
		conditions = append(conditions, fmt.Sprintf("grading_period_id = $%d", len(args)))
	}
	statusCondition := ""
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		statusCondition = fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ","))
	}
	if !filter.LatestOnly && statusCondition != "" {
		conditions = append(conditions, statusCondition)
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	if filter.LatestOnly {
		builder.WriteString(`
	ORDER BY student_id, subject_id, academic_level_id, school_year, grading_period_id, id DESC
	) latest`)
		// Status applies after resolution. Filtering inside the subquery
		// would let a superseded row of the wanted status pose as latest.
		if statusCondition != "" {
			builder.WriteString(" WHERE " + statusCondition)
		}
	}
	builder.WriteString(" ORDER BY id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var records []models.GradeRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list grade records: %w", err)
	}
	return records, nil
}

// ListByStudentLevelYear returns every record for the key prefix, in id
// order. Latest-wins resolution happens in memory at the call site so the
// reduction stays explicit.
func (r *GradeRepository) ListByStudentLevelYear(ctx context.Context, studentID, academicLevelID, schoolYear string) ([]models.GradeRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM grade_records
	WHERE student_id = $1 AND academic_level_id = $2 AND school_year = $3
	ORDER BY id`, gradeColumns)
	var records []models.GradeRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID, academicLevelID, schoolYear); err != nil {
		return nil, fmt.Errorf("list grade records by key: %w", err)
	}
	return records, nil
}

// TransitionParams groups the columns a status transition may set.
type TransitionParams struct {
	ID         int64
	FromStatus models.GradeStatus
	ToStatus   models.GradeStatus
	ActorID    string
	At         time.Time
	Reason     *string
}

// Transition flips a record's status with an optimistic guard on the current
// status. Zero affected rows surface as sql.ErrNoRows so a losing concurrent
// caller can be told apart from success.
func (r *GradeRepository) Transition(ctx context.Context, params TransitionParams) error {
	setParts := []string{"status = :status"}
	switch params.ToStatus {
	case models.GradeStatusSubmitted:
		setParts = append(setParts, "submitted_at = :at")
	case models.GradeStatusApproved:
		setParts = append(setParts, "approved_at = :at", "approved_by = :actor_id", "validated_at = :at", "validated_by = :actor_id")
	case models.GradeStatusReturned:
		setParts = append(setParts, "returned_at = :at", "returned_by = :actor_id", "return_reason = :reason")
	}
	query := fmt.Sprintf("UPDATE grade_records SET %s WHERE id = :id AND status = '%s'",
		strings.Join(setParts, ", "),
		params.FromStatus,
	)
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":       params.ID,
		"status":   params.ToStatus,
		"actor_id": params.ActorID,
		"at":       params.At,
		"reason":   params.Reason,
	})
	if err != nil {
		return fmt.Errorf("transition grade record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check grade transition rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListPending returns submitted records joined with catalog metadata for the
// validation dashboard. Empty departmentID lifts the department restriction.
func (r *GradeRepository) ListPending(ctx context.Context, departmentID string) ([]models.PendingGradeRow, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s, s.name AS subject_name, s.department_id, COALESCE(gp.period_type, 'final') AS period_type
	FROM grade_records g
	JOIN subjects s ON s.id = g.subject_id
	LEFT JOIN grading_periods gp ON gp.id = g.grading_period_id
	WHERE g.status = 'SUBMITTED'`, prefixColumns("g", gradeColumns)))
	args := make([]interface{}, 0, 1)
	if departmentID != "" {
		args = append(args, departmentID)
		builder.WriteString(fmt.Sprintf(" AND s.department_id = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY g.submitted_at")

	var rows []models.PendingGradeRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list pending grades: %w", err)
	}
	return rows, nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
