package models

import "time"

// Assignment links an applicant to an assessor. The (applicant, assessor)
// pair is unique, so repeated assignment is a no-op on both sides. The
// snapshot columns record the applicant's name, course, and status at the
// moment of assignment.
type Assignment struct {
	ApplicantID string    `db:"applicant_id" json:"applicant_id"`
	AssessorID  string    `db:"assessor_id" json:"assessor_id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Course      string    `db:"course" json:"course"`
	Status      string    `db:"status" json:"status"`
	AssignedAt  time.Time `db:"assigned_at" json:"assigned_at"`
}

// AssignedApplicant is the assessor-side view of an assignment joined with
// live applicant data.
type AssignedApplicant struct {
	ApplicantID  string          `db:"applicant_id" json:"_id"`
	ApplicantNo  string          `db:"applicant_no" json:"applicantId"`
	FullName     string          `db:"full_name" json:"name"`
	Course       string          `db:"course" json:"course"`
	Status       ApplicantStatus `db:"status" json:"status"`
	FinalScore   *int            `db:"final_score" json:"score,omitempty"`
	AssignedAt   time.Time       `db:"assigned_at" json:"dateAssigned"`
	CreatedAt    time.Time       `db:"created_at" json:"applicationDate"`
	PersonalInfo PersonalInfo    `db:"personal_info" json:"-"`
}

// AssignedAssessor is the applicant-side view of an assignment joined with
// live assessor data.
type AssignedAssessor struct {
	AssessorID string    `db:"assessor_id" json:"_id"`
	AssessorNo string    `db:"assessor_no" json:"assessorId"`
	FullName   string    `db:"full_name" json:"fullName"`
	Expertise  Expertise `db:"expertise" json:"expertise"`
	AssignedAt time.Time `db:"assigned_at" json:"dateAssigned"`
}
