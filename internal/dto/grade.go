package dto

// CreateGradeRequest opens a new draft grade record. A correction after a
// return is the same request again; the new row supersedes the old one via
// latest-wins resolution.
type CreateGradeRequest struct {
	StudentID       string  `json:"student_id" validate:"required"`
	SubjectID       string  `json:"subject_id" validate:"required"`
	AcademicLevelID string  `json:"academic_level_id" validate:"required"`
	GradingPeriodID *string `json:"grading_period_id,omitempty"`
	SchoolYear      string  `json:"school_year" validate:"required"`
	Grade           float64 `json:"grade" validate:"min=0,max=100"`
	YearOfStudy     *int    `json:"year_of_study,omitempty"`
}

// ReturnGradeRequest returns a submitted grade for correction.
type ReturnGradeRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// GradeQuery filters grade listings.
type GradeQuery struct {
	StudentID       string `form:"studentId"`
	SubjectID       string `form:"subjectId"`
	AcademicLevelID string `form:"academicLevelId"`
	SchoolYear      string `form:"schoolYear"`
	GradingPeriodID string `form:"gradingPeriodId"`
	Status          string `form:"status"`
	LatestOnly      bool   `form:"latestOnly"`
	Limit           int    `form:"limit"`
	Offset          int    `form:"offset"`
}
