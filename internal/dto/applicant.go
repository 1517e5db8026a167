package dto

import (
	"time"

	"github.com/eteeap/admissions-api/internal/models"
)

// UpdatePersonalInfoRequest replaces the applicant's profile block.
type UpdatePersonalInfoRequest struct {
	PersonalInfo models.PersonalInfo `json:"personalInfo" validate:"required"`
}

// RequiredPersonalInfoFields mirrors the profile fields the intake form
// treats as mandatory.
var RequiredPersonalInfoFields = []string{
	"firstname", "lastname", "gender", "age", "occupation", "nationality",
	"civilstatus", "birthDate", "birthplace", "mobileNumber", "emailAddress",
	"country", "province", "city", "street", "zipCode", "firstPriorityCourse",
}

// ApplicantSummary is the roster row shown on admin and assessor listings.
type ApplicantSummary struct {
	ID              string                 `json:"_id"`
	ApplicantNo     string                 `json:"applicantId"`
	Name            string                 `json:"name"`
	Course          string                 `json:"course"`
	ApplicationDate time.Time              `json:"applicationDate"`
	CurrentScore    int                    `json:"currentScore"`
	Status          models.ApplicantStatus `json:"status"`
}

// ApplicantDetail is the full applicant view with assignment and evaluation
// history attached.
type ApplicantDetail struct {
	ID                string                     `json:"_id"`
	ApplicantNo       string                     `json:"applicantId"`
	Email             string                     `json:"email"`
	Name              string                     `json:"name"`
	Course            string                     `json:"course"`
	Status            models.ApplicantStatus     `json:"status"`
	PersonalInfo      models.PersonalInfo        `json:"personalInfo"`
	Files             []models.Document          `json:"files"`
	AssignedAssessors []models.AssignedAssessor  `json:"assignedAssessors"`
	Evaluations       []models.Evaluation        `json:"evaluations,omitempty"`
	FinalComments     []models.EvaluationComment `json:"finalComments,omitempty"`
	FinalScore        *int                       `json:"finalScore,omitempty"`
	IsPassed          *bool                      `json:"isPassed,omitempty"`
	CreatedAt         time.Time                  `json:"createdAt"`
}

// UploadedFile reports one stored blob back to the uploader.
type UploadedFile struct {
	FileID      string `json:"fileId"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}
