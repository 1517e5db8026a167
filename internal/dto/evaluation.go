package dto

import "github.com/eteeap/admissions-api/internal/models"

// SectionScores is one rubric section as submitted by an assessor. Bounds are
// enforced per section at validation time.
type SectionScores struct {
	Score     int                    `json:"score" validate:"min=0"`
	Comments  string                 `json:"comments"`
	Breakdown []models.BreakdownItem `json:"breakdown"`
}

// SubmitEvaluationRequest appends a draft evaluation for an applicant.
type SubmitEvaluationRequest struct {
	ApplicantID string `json:"applicantId" validate:"required,uuid"`
	Scores      struct {
		Education    SectionScores `json:"educationalQualification" validate:"required"`
		Work         SectionScores `json:"workExperience" validate:"required"`
		Achievements SectionScores `json:"professionalAchievements" validate:"required"`
		Interview    SectionScores `json:"interview" validate:"required"`
	} `json:"scores" validate:"required"`
}

// FinalizeEvaluationRequest finalizes the applicant's most recent draft.
type FinalizeEvaluationRequest struct {
	ApplicantID string `json:"applicantId" validate:"required,uuid"`
	Comments    string `json:"comments"`
}

// EvaluationResult pairs the stored evaluation with the applicant state that
// resulted from it.
type EvaluationResult struct {
	Evaluation *models.Evaluation `json:"evaluation"`
	Applicant  *ApplicantDetail   `json:"applicant,omitempty"`
}
