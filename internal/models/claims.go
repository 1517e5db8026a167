package models

import "github.com/golang-jwt/jwt/v5"

// Role identifies which of the three independent session kinds a token
// belongs to. Each role is carried in its own cookie.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleAssessor  Role = "assessor"
	RoleAdmin     Role = "admin"
)

// CookieName returns the session cookie used for the role.
func (r Role) CookieName() string {
	switch r {
	case RoleAssessor:
		return "assessorToken"
	case RoleAdmin:
		return "adminToken"
	default:
		return "applicantToken"
	}
}

// SessionClaims are the JWT claims embedded in every session cookie.
// Validity is signature + expiry only; there is no server-side revocation.
type SessionClaims struct {
	UserID       string `json:"userId"`
	Role         Role   `json:"role"`
	Email        string `json:"email"`
	FullName     string `json:"fullName,omitempty"`
	IsSuperAdmin bool   `json:"isSuperAdmin,omitempty"`
	jwt.RegisteredClaims
}
