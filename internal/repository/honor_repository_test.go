package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/approval-api/internal/models"
)

var honorResultRowColumns = []string{
	"id", "student_id", "honor_type_id", "honor_type", "academic_level_id",
	"school_year", "gpa", "status", "decided_by", "decided_at", "rejection_reason", "created_at",
}

func honorResultRow(id, status string, gpa float64) []driver.Value {
	return []driver.Value{
		id, "s1", "crit-1", "With Honors", "l1",
		"2025-2026", gpa, status, nil, nil, nil, time.Now(),
	}
}

func TestHonorRepositoryCreateCriterion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHonorRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO honor_criteria")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	criterion := &models.HonorCriterion{HonorType: "With Honors", MinimumGrade: 90, IsActive: true}
	require.NoError(t, repo.CreateCriterion(context.Background(), criterion))
	require.NotEmpty(t, criterion.ID, "missing id must be generated")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHonorRepositoryListActiveCriteriaOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHonorRepository(db)
	columns := []string{"id", "honor_type", "minimum_grade", "maximum_grade", "criteria_description", "academic_level_id", "is_active", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY minimum_grade DESC")).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("crit-high", "With High Honors", 95.0, nil, "", nil, true, time.Now(), time.Now()).
			AddRow("crit-honors", "With Honors", 90.0, nil, "", nil, true, time.Now(), time.Now()))

	criteria, err := repo.ListActiveCriteria(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, criteria, 2)
	require.Equal(t, "With High Honors", criteria[0].HonorType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHonorRepositoryReplaceActiveInsertsInTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHonorRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE honor_results SET status = 'SUPERSEDED'")).
		WithArgs("s1", "l1", "2025-2026").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO honor_results")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result := &models.HonorResult{StudentID: "s1", HonorTypeID: "crit-1", AcademicLevelID: "l1", SchoolYear: "2025-2026", GPA: 96.5}
	require.NoError(t, repo.ReplaceActive(context.Background(), "s1", "l1", "2025-2026", result))
	require.NotEmpty(t, result.ID)
	require.Equal(t, models.HonorStatusPending, result.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHonorRepositoryReplaceActiveNilOnlyRetires(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHonorRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE honor_results SET status = 'SUPERSEDED'")).
		WithArgs("s1", "l1", "2025-2026").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceActive(context.Background(), "s1", "l1", "2025-2026", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHonorRepositoryDecideGuardsPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHonorRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE honor_results SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Decide(context.Background(), DecideParams{
		ID:        "h1",
		Status:    models.HonorStatusApproved,
		DecidedBy: "prin-1",
		DecidedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHonorRepositoryFindApprovedByKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHonorRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("hr.status = 'APPROVED'")).
		WithArgs("s1", "l1", "2025-2026").
		WillReturnRows(sqlmock.NewRows(honorResultRowColumns).AddRow(honorResultRow("h1", "APPROVED", 96.5)...))

	result, err := repo.FindApprovedByKey(context.Background(), "s1", "l1", "2025-2026")
	require.NoError(t, err)
	require.Equal(t, "h1", result.ID)
	require.Equal(t, models.HonorStatusApproved, result.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHonorRepositoryListResultsDepartmentScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHonorRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN courses co ON co.id = st.course_id")).
		WithArgs("dept-cs", "PENDING_APPROVAL").
		WillReturnRows(sqlmock.NewRows(honorResultRowColumns).AddRow(honorResultRow("h2", "PENDING_APPROVAL", 91.0)...))

	results, err := repo.ListResults(context.Background(), models.HonorFilter{
		DepartmentID: "dept-cs",
		Status:       []models.HonorStatus{models.HonorStatusPending},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHonorRepositoryHonorRoll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHonorRepository(db)
	columns := []string{"student_id", "student_name", "honor_type", "gpa"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY hr.gpa DESC")).
		WithArgs("l1", "2025-2026").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("s1", "Alice Reyes", "With High Honors", 96.5).
			AddRow("s2", "Ben Cruz", "With Honors", 91.25))

	rows, err := repo.HonorRoll(context.Background(), "l1", "2025-2026")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Alice Reyes", rows[0].StudentName)
	require.NoError(t, mock.ExpectationsWereMet())
}
