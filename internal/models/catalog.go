package models

// The catalog types mirror the external course-catalog and scheduling
// systems. The engine only reads them; it never owns their lifecycle.

// PeriodType distinguishes ordinary periods from the terminal one.
type PeriodType string

const (
	PeriodTypeRegular PeriodType = "regular"
	PeriodTypeFinal   PeriodType = "final"
)

// GradingPeriod is a sub-interval of a school year that grades report against.
type GradingPeriod struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	PeriodType PeriodType `db:"period_type" json:"period_type"`
	SortOrder  int        `db:"sort_order" json:"sort_order"`
}

// IsFinal reports whether the period carries the summative grade.
func (p GradingPeriod) IsFinal() bool {
	return p.PeriodType == PeriodTypeFinal
}

// Subject maps a taught subject to its course, department and assigned
// instructor. DepartmentID drives chairperson scoping.
type Subject struct {
	ID              string `db:"id" json:"id"`
	Name            string `db:"name" json:"name"`
	CourseID        string `db:"course_id" json:"course_id"`
	DepartmentID    string `db:"department_id" json:"department_id"`
	AcademicLevelID string `db:"academic_level_id" json:"academic_level_id"`
	InstructorID    string `db:"instructor_id" json:"instructor_id"`
	IsRequired      bool   `db:"is_required" json:"is_required"`
}
