package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classtrack/approval-api/internal/models"
)

// CatalogRepository reads the course-catalog and scheduling tables owned by
// external systems: subject→course→department mapping, instructor
// assignments and grading-period metadata. Read-only by design.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// SubjectByID fetches a subject with its department and instructor.
func (r *CatalogRepository) SubjectByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT s.id, s.name, s.course_id, c.department_id, s.academic_level_id, s.instructor_id, s.is_required
	FROM subjects s
	JOIN courses c ON c.id = s.course_id
	WHERE s.id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListRequiredSubjects returns the subjects an academic level requires. The
// evaluator treats a student as not yet eligible until each has an approved
// final grade.
func (r *CatalogRepository) ListRequiredSubjects(ctx context.Context, academicLevelID string) ([]models.Subject, error) {
	const query = `SELECT s.id, s.name, s.course_id, c.department_id, s.academic_level_id, s.instructor_id, s.is_required
	FROM subjects s
	JOIN courses c ON c.id = s.course_id
	WHERE s.academic_level_id = $1 AND s.is_required = TRUE
	ORDER BY s.name`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, academicLevelID); err != nil {
		return nil, fmt.Errorf("list required subjects: %w", err)
	}
	return subjects, nil
}

// PeriodByID fetches grading-period metadata.
func (r *CatalogRepository) PeriodByID(ctx context.Context, id string) (*models.GradingPeriod, error) {
	const query = `SELECT id, name, period_type, sort_order FROM grading_periods WHERE id = $1`
	var period models.GradingPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}
