package models

import "time"

// HonorStatus is the closed set of honor result states. PENDING results are
// decided by the principal; SUPERSEDED marks results retired by a newer
// evaluation run. Terminal states are never mutated back.
type HonorStatus string

const (
	HonorStatusPending    HonorStatus = "PENDING_APPROVAL"
	HonorStatusApproved   HonorStatus = "APPROVED"
	HonorStatusRejected   HonorStatus = "REJECTED"
	HonorStatusSuperseded HonorStatus = "SUPERSEDED"
)

// HonorCriterion is a configured GPA-range rule mapping to an honor label.
// A nil AcademicLevelID applies the rule to every level.
type HonorCriterion struct {
	ID                  string    `db:"id" json:"id"`
	HonorType           string    `db:"honor_type" json:"honor_type"`
	MinimumGrade        float64   `db:"minimum_grade" json:"minimum_grade"`
	MaximumGrade        *float64  `db:"maximum_grade" json:"maximum_grade,omitempty"`
	CriteriaDescription string    `db:"criteria_description" json:"criteria_description"`
	AcademicLevelID     *string   `db:"academic_level_id" json:"academic_level_id,omitempty"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Matches reports whether gpa falls inside the criterion range.
func (c HonorCriterion) Matches(gpa float64) bool {
	if gpa < c.MinimumGrade {
		return false
	}
	if c.MaximumGrade != nil && gpa > *c.MaximumGrade {
		return false
	}
	return true
}

// AppliesTo reports whether the criterion is scoped to the academic level.
func (c HonorCriterion) AppliesTo(academicLevelID string) bool {
	return c.AcademicLevelID == nil || *c.AcademicLevelID == academicLevelID
}

// HonorResult is a computed honor award for one (student, level, year).
// At most one non-superseded result exists per key at any time.
type HonorResult struct {
	ID              string      `db:"id" json:"id"`
	StudentID       string      `db:"student_id" json:"student_id"`
	HonorTypeID     string      `db:"honor_type_id" json:"honor_type_id"`
	HonorType       string      `db:"honor_type" json:"honor_type"`
	AcademicLevelID string      `db:"academic_level_id" json:"academic_level_id"`
	SchoolYear      string      `db:"school_year" json:"school_year"`
	GPA             float64     `db:"gpa" json:"gpa"`
	Status          HonorStatus `db:"status" json:"status"`
	DecidedBy       *string     `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt       *time.Time  `db:"decided_at" json:"decided_at,omitempty"`
	RejectionReason *string     `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// HonorFilter constrains honor result listing queries.
type HonorFilter struct {
	StudentID       string
	AcademicLevelID string
	SchoolYear      string
	DepartmentID    string // restricts to students whose course belongs to the department
	Status          []HonorStatus
	Limit           int
	Offset          int
}

// HonorRollRow is the reporting projection of an approved honor.
type HonorRollRow struct {
	StudentID   string  `db:"student_id" json:"student_id"`
	StudentName string  `db:"student_name" json:"student_name"`
	HonorType   string  `db:"honor_type" json:"honor_type"`
	GPA         float64 `db:"gpa" json:"gpa"`
}
