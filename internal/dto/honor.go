package dto

// EvaluateHonorsRequest triggers evaluation for one student key.
type EvaluateHonorsRequest struct {
	StudentID       string `json:"student_id" validate:"required"`
	AcademicLevelID string `json:"academic_level_id" validate:"required"`
	SchoolYear      string `json:"school_year" validate:"required"`
}

// RejectHonorRequest rejects a pending honor; the reason is persisted.
type RejectHonorRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// HonorQuery filters honor result listings.
type HonorQuery struct {
	StudentID       string `form:"studentId"`
	AcademicLevelID string `form:"academicLevelId"`
	SchoolYear      string `form:"schoolYear"`
	Status          string `form:"status"`
	Limit           int    `form:"limit"`
	Offset          int    `form:"offset"`
}

// UpsertCriterionRequest creates or updates an honor criterion.
type UpsertCriterionRequest struct {
	HonorType           string   `json:"honor_type" validate:"required"`
	MinimumGrade        float64  `json:"minimum_grade" validate:"min=0,max=100"`
	MaximumGrade        *float64 `json:"maximum_grade,omitempty" validate:"omitempty,min=0,max=100"`
	CriteriaDescription string   `json:"criteria_description"`
	AcademicLevelID     *string  `json:"academic_level_id,omitempty"`
	IsActive            *bool    `json:"is_active,omitempty"`
}

// EligibilityQuery identifies a certificate eligibility check.
type EligibilityQuery struct {
	StudentID       string `form:"studentId" validate:"required"`
	AcademicLevelID string `form:"academicLevelId" validate:"required"`
	SchoolYear      string `form:"schoolYear" validate:"required"`
}
