package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ApplicantStatus tracks an applicant through the admissions pipeline.
type ApplicantStatus string

const (
	StatusPendingReview   ApplicantStatus = "Pending Review"
	StatusUnderAssessment ApplicantStatus = "Under Assessment"
	StatusEvaluatedPassed ApplicantStatus = "Evaluated - Passed"
	StatusEvaluatedFailed ApplicantStatus = "Evaluated - Failed"
	StatusRejected        ApplicantStatus = "Rejected"
	StatusApproved        ApplicantStatus = "Approved"
)

// AllApplicantStatuses lists every pipeline status, in lifecycle order.
var AllApplicantStatuses = []ApplicantStatus{
	StatusPendingReview,
	StatusUnderAssessment,
	StatusEvaluatedPassed,
	StatusEvaluatedFailed,
	StatusRejected,
	StatusApproved,
}

// Applicant is a candidate account stored in the applicants table.
type Applicant struct {
	ID           string          `db:"id" json:"id"`
	ApplicantNo  string          `db:"applicant_no" json:"applicant_no"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Status       ApplicantStatus `db:"status" json:"status"`
	PersonalInfo PersonalInfo    `db:"personal_info" json:"personal_info"`
	FinalScore   *int            `db:"final_score" json:"final_score,omitempty"`
	IsPassed     *bool           `db:"is_passed" json:"is_passed,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// DisplayName renders "Lastname, Firstname" for roster views.
func (a *Applicant) DisplayName() string {
	name := strings.TrimSpace(fmt.Sprintf("%s, %s", a.PersonalInfo.LastName, a.PersonalInfo.FirstName))
	if name == "," || name == "" {
		return "No name provided"
	}
	return strings.TrimSuffix(strings.TrimPrefix(name, ", "), ",")
}

// Course returns the applicant's first priority course for roster views.
func (a *Applicant) Course() string {
	if a.PersonalInfo.FirstPriorityCourse == "" {
		return "Not specified"
	}
	return a.PersonalInfo.FirstPriorityCourse
}

// PersonalInfo holds the applicant profile block, persisted as JSONB.
type PersonalInfo struct {
	FirstName            string `json:"firstname"`
	MiddleName           string `json:"middlename,omitempty"`
	LastName             string `json:"lastname"`
	Suffix               string `json:"suffix,omitempty"`
	Gender               string `json:"gender"`
	Age                  int    `json:"age"`
	Occupation           string `json:"occupation"`
	Nationality          string `json:"nationality"`
	CivilStatus          string `json:"civilstatus"`
	BirthDate            string `json:"birthDate"`
	BirthPlace           string `json:"birthplace"`
	MobileNumber         string `json:"mobileNumber"`
	TelephoneNumber      string `json:"telephoneNumber,omitempty"`
	EmailAddress         string `json:"emailAddress"`
	Country              string `json:"country"`
	Province             string `json:"province"`
	City                 string `json:"city"`
	Street               string `json:"street"`
	ZipCode              string `json:"zipCode"`
	FirstPriorityCourse  string `json:"firstPriorityCourse"`
	SecondPriorityCourse string `json:"secondPriorityCourse,omitempty"`
	ThirdPriorityCourse  string `json:"thirdPriorityCourse,omitempty"`
}

// Value marshals the profile to JSON for persistence.
func (p PersonalInfo) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal personal info: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB payloads into the profile struct.
func (p *PersonalInfo) Scan(value interface{}) error {
	if value == nil {
		*p = PersonalInfo{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for PersonalInfo", value)
	}
	if len(data) == 0 {
		*p = PersonalInfo{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal personal info: %w", err)
	}
	return nil
}

// ApplicantFilter captures criteria for admin roster listings.
type ApplicantFilter struct {
	Status    string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
