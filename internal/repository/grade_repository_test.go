package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/approval-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var gradeRowColumns = []string{
	"id", "student_id", "subject_id", "academic_level_id", "grading_period_id", "school_year",
	"grade", "year_of_study", "status", "submitted_at", "validated_at", "approved_at", "returned_at",
	"validated_by", "approved_by", "returned_by", "return_reason", "created_at", "created_by",
}

func gradeRow(id int64, status string, grade float64) []driver.Value {
	return []driver.Value{
		id, "s1", "math", "l1", "q1", "2025-2026",
		grade, nil, status, nil, nil, nil, nil,
		nil, nil, nil, nil, time.Now(), "teach-1",
	}
}

func TestGradeRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO grade_records")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	record := &models.GradeRecord{
		StudentID:       "s1",
		SubjectID:       "math",
		AcademicLevelID: "l1",
		SchoolYear:      "2025-2026",
		Grade:           91.5,
		CreatedBy:       "teach-1",
	}
	require.NoError(t, repo.Create(context.Background(), record))
	require.Equal(t, int64(42), record.ID)
	require.Equal(t, models.GradeStatusDraft, record.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, subject_id")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(gradeRowColumns).AddRow(gradeRow(7, "SUBMITTED", 88)...))

	record, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), record.ID)
	require.Equal(t, models.GradeStatusSubmitted, record.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_records")).
		WithArgs("s1", "2025-2026", "APPROVED").
		WillReturnRows(sqlmock.NewRows(gradeRowColumns).AddRow(gradeRow(3, "APPROVED", 95)...))

	records, err := repo.List(context.Background(), models.GradeFilter{
		StudentID:  "s1",
		SchoolYear: "2025-2026",
		Status:     []models.GradeStatus{models.GradeStatusApproved},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(3), records[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListLatestOnlyUsesDistinctOn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("DISTINCT ON (student_id, subject_id, academic_level_id, school_year, grading_period_id)")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(gradeRowColumns).AddRow(gradeRow(9, "APPROVED", 92)...))

	records, err := repo.List(context.Background(), models.GradeFilter{StudentID: "s1", LatestOnly: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListLatestOnlyStatusAfterResolution(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	// The status filter must apply to the resolved rows, not inside the
	// DISTINCT ON subquery, or a superseded APPROVED row would pose as
	// latest while the true latest row is SUBMITTED.
	repo := NewGradeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta(") latest WHERE status IN ($2)")).
		WithArgs("s1", "APPROVED").
		WillReturnRows(sqlmock.NewRows(gradeRowColumns))

	records, err := repo.List(context.Background(), models.GradeFilter{
		StudentID:  "s1",
		LatestOnly: true,
		Status:     []models.GradeStatus{models.GradeStatusApproved},
	})
	require.NoError(t, err)
	require.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryTransition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grade_records SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Transition(context.Background(), TransitionParams{
		ID:         7,
		FromStatus: models.GradeStatusSubmitted,
		ToStatus:   models.GradeStatusApproved,
		ActorID:    "prin-1",
		At:         time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryTransitionZeroRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grade_records SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Transition(context.Background(), TransitionParams{
		ID:         7,
		FromStatus: models.GradeStatusSubmitted,
		ToStatus:   models.GradeStatusApproved,
		ActorID:    "prin-1",
		At:         time.Now().UTC(),
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListPendingScoped(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	columns := append(append([]string{}, gradeRowColumns...), "subject_name", "department_id", "period_type")
	row := append(gradeRow(5, "SUBMITTED", 89), "Mathematics", "dept-cs", "regular")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN subjects s ON s.id = g.subject_id")).
		WithArgs("dept-cs").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row...))

	rows, err := repo.ListPending(context.Background(), "dept-cs")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "dept-cs", rows[0].DepartmentID)
	require.Equal(t, "Mathematics", rows[0].SubjectName)
	require.NoError(t, mock.ExpectationsWereMet())
}
