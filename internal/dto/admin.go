package dto

import (
	"time"

	"github.com/eteeap/admissions-api/internal/models"
)

// AssignAssessorRequest links an approved assessor to an applicant.
type AssignAssessorRequest struct {
	ApplicantID string `json:"applicantId" validate:"required,uuid"`
	AssessorID  string `json:"assessorId" validate:"required,uuid"`
}

// UpdateAssessorRequest is the admin-side assessor edit payload.
type UpdateAssessorRequest struct {
	FullName     string `json:"fullName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Expertise    string `json:"expertise" validate:"required,oneof=engineering education business information_technology health_sciences arts_sciences architecture industrial_technology hospitality_management other"`
	AssessorType string `json:"assessorType" validate:"required,oneof=external internal"`
	IsApproved   *bool  `json:"isApproved" validate:"required"`
}

// UpdateAdminRequest edits another admin account (super admins only).
type UpdateAdminRequest struct {
	Email        string `json:"email" validate:"required,email"`
	FullName     string `json:"fullName" validate:"required"`
	IsSuperAdmin *bool  `json:"isSuperAdmin"`
}

// AssessorSummary is the admin-side assessor listing row.
type AssessorSummary struct {
	ID              string                     `json:"_id"`
	AssessorNo      string                     `json:"assessorId"`
	Email           string                     `json:"email"`
	FullName        string                     `json:"fullName"`
	Expertise       models.Expertise           `json:"expertise"`
	AssessorType    models.AssessorType        `json:"assessorType"`
	IsApproved      bool                       `json:"isApproved"`
	ApplicantsCount int                        `json:"applicantsCount"`
	Assigned        []models.AssignedApplicant `json:"assignedApplicants,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
	LastLogin       *time.Time                 `json:"lastLogin,omitempty"`
}

// DashboardStats aggregates applicant counts by pipeline status. Cached in
// Redis and invalidated whenever a status transition is written.
type DashboardStats struct {
	TotalApplicants int `json:"totalApplicants"`
	NewApplicants   int `json:"newApplicants"`
	RecentFinalized int `json:"recentFinalized"`
	PendingReview   int `json:"pendingReview"`
	UnderAssessment int `json:"underAssessment"`
	EvaluatedPassed int `json:"evaluatedPassed"`
	EvaluatedFailed int `json:"evaluatedFailed"`
	Rejected        int `json:"rejected"`
	Approved        int `json:"approved"`
}
