package models

import "time"

// Expertise enumerates the assessor specialisations applicants are matched to.
type Expertise string

const (
	ExpertiseEngineering           Expertise = "engineering"
	ExpertiseEducation             Expertise = "education"
	ExpertiseBusiness              Expertise = "business"
	ExpertiseInformationTechnology Expertise = "information_technology"
	ExpertiseHealthSciences        Expertise = "health_sciences"
	ExpertiseArtsSciences          Expertise = "arts_sciences"
	ExpertiseArchitecture          Expertise = "architecture"
	ExpertiseIndustrialTechnology  Expertise = "industrial_technology"
	ExpertiseHospitality           Expertise = "hospitality_management"
	ExpertiseOther                 Expertise = "other"
)

// AssessorType distinguishes institution staff from invited externals.
type AssessorType string

const (
	AssessorTypeExternal AssessorType = "external"
	AssessorTypeInternal AssessorType = "internal"
)

// Assessor is an evaluator account stored in the assessors table.
type Assessor struct {
	ID           string       `db:"id" json:"id"`
	AssessorNo   string       `db:"assessor_no" json:"assessor_no"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	FullName     string       `db:"full_name" json:"full_name"`
	Expertise    Expertise    `db:"expertise" json:"expertise"`
	AssessorType AssessorType `db:"assessor_type" json:"assessor_type"`
	IsApproved   bool         `db:"is_approved" json:"is_approved"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	LastLogin    *time.Time   `db:"last_login" json:"last_login,omitempty"`
}
