package models

import "time"

// GradeStatus is the closed set of grade record states. The lifecycle is
// DRAFT → SUBMITTED → {APPROVED, RETURNED}; a returned record is corrected
// by appending a new record, never by mutating the old one.
type GradeStatus string

const (
	GradeStatusDraft     GradeStatus = "DRAFT"
	GradeStatusSubmitted GradeStatus = "SUBMITTED"
	GradeStatusApproved  GradeStatus = "APPROVED"
	GradeStatusReturned  GradeStatus = "RETURNED"
)

// GradeRecord is one graded assessment instance. Records are append-only:
// the row with the highest ID for a composite key is authoritative.
type GradeRecord struct {
	ID              int64       `db:"id" json:"id"`
	StudentID       string      `db:"student_id" json:"student_id"`
	SubjectID       string      `db:"subject_id" json:"subject_id"`
	AcademicLevelID string      `db:"academic_level_id" json:"academic_level_id"`
	GradingPeriodID *string     `db:"grading_period_id" json:"grading_period_id,omitempty"`
	SchoolYear      string      `db:"school_year" json:"school_year"`
	Grade           float64     `db:"grade" json:"grade"`
	YearOfStudy     *int        `db:"year_of_study" json:"year_of_study,omitempty"`
	Status          GradeStatus `db:"status" json:"status"`
	SubmittedAt     *time.Time  `db:"submitted_at" json:"submitted_at,omitempty"`
	ValidatedAt     *time.Time  `db:"validated_at" json:"validated_at,omitempty"`
	ApprovedAt      *time.Time  `db:"approved_at" json:"approved_at,omitempty"`
	ReturnedAt      *time.Time  `db:"returned_at" json:"returned_at,omitempty"`
	ValidatedBy     *string     `db:"validated_by" json:"validated_by,omitempty"`
	ApprovedBy      *string     `db:"approved_by" json:"approved_by,omitempty"`
	ReturnedBy      *string     `db:"returned_by" json:"returned_by,omitempty"`
	ReturnReason    *string     `db:"return_reason" json:"return_reason,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	CreatedBy       string      `db:"created_by" json:"created_by"`
}

// GradeKey is the composite key that latest-wins resolution groups by.
type GradeKey struct {
	StudentID       string
	SubjectID       string
	AcademicLevelID string
	SchoolYear      string
	GradingPeriodID string // empty when the record is period-independent
}

// Key returns the composite key of the record.
func (g GradeRecord) Key() GradeKey {
	key := GradeKey{
		StudentID:       g.StudentID,
		SubjectID:       g.SubjectID,
		AcademicLevelID: g.AcademicLevelID,
		SchoolYear:      g.SchoolYear,
	}
	if g.GradingPeriodID != nil {
		key.GradingPeriodID = *g.GradingPeriodID
	}
	return key
}

// GradeFilter constrains grade listing queries.
type GradeFilter struct {
	StudentID       string
	SubjectID       string
	AcademicLevelID string
	SchoolYear      string
	GradingPeriodID string
	Status          []GradeStatus
	LatestOnly      bool
	Limit           int
	Offset          int
}

// PendingGradeRow is the department dashboard projection of a submitted grade.
type PendingGradeRow struct {
	GradeRecord
	SubjectName  string `db:"subject_name" json:"subject_name"`
	DepartmentID string `db:"department_id" json:"department_id"`
	PeriodType   string `db:"period_type" json:"period_type"`
}
