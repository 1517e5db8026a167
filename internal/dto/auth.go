package dto

import "time"

// RegisterApplicantRequest is the minimal applicant signup payload. Profile
// data arrives later via the personal-info update.
type RegisterApplicantRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterAssessorRequest captures the full evaluator profile up front.
type RegisterAssessorRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=16"`
	FullName     string `json:"fullName" validate:"required"`
	Expertise    string `json:"expertise" validate:"required,oneof=engineering education business information_technology health_sciences arts_sciences architecture industrial_technology hospitality_management other"`
	AssessorType string `json:"assessorType" validate:"required,oneof=external internal"`
}

// RegisterAdminRequest creates a back-office account. The first registration
// needs no session; later ones require a super-admin token.
type RegisterAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=16"`
	FullName string `json:"fullName" validate:"required"`
}

// LoginRequest authenticates any of the three roles.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the signed token plus the profile summary returned to
// the client. The handler moves Token into an httpOnly cookie.
type LoginResult struct {
	Token     string      `json:"-"`
	ExpiresAt time.Time   `json:"-"`
	Profile   interface{} `json:"profile"`
}

// AuthStatusResponse is always returned with HTTP 200; a missing or invalid
// token yields authenticated=false rather than an error.
type AuthStatusResponse struct {
	Authenticated bool        `json:"authenticated"`
	Message       string      `json:"message,omitempty"`
	User          interface{} `json:"user,omitempty"`
}

// ChangePasswordRequest updates an admin password. Super admins may reset
// others without the current password; self-changes always verify it.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}
