package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PassingScore is the total an evaluation must reach to pass.
const PassingScore = 60

// Section score ceilings. The four sections sum to at most 100.
const (
	MaxEducationScore    = 20
	MaxWorkScore         = 40
	MaxAchievementsScore = 25
	MaxInterviewScore    = 15
)

// EvaluationStatus marks a scoring record as draft or finalized.
type EvaluationStatus string

const (
	EvaluationDraft     EvaluationStatus = "draft"
	EvaluationFinalized EvaluationStatus = "finalized"
)

// BreakdownItem is one rubric criterion inside a section.
type BreakdownItem struct {
	Criteria string `json:"criteria"`
	Points   int    `json:"points"`
}

// Section is one scored rubric section, persisted as JSONB.
type Section struct {
	Score     int             `json:"score"`
	Comments  string          `json:"comments,omitempty"`
	Breakdown []BreakdownItem `json:"breakdown,omitempty"`
}

// Value marshals the section to JSON for persistence.
func (s Section) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal evaluation section: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB payloads into the section struct.
func (s *Section) Scan(value interface{}) error {
	if value == nil {
		*s = Section{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for Section", value)
	}
	if len(data) == 0 {
		*s = Section{}
		return nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("unmarshal evaluation section: %w", err)
	}
	return nil
}

// Evaluation is one assessor's scored judgment of one applicant. Rows are
// append-only; finalization targets the applicant's most recent row.
type Evaluation struct {
	ID            string           `db:"id" json:"id"`
	ApplicantID   string           `db:"applicant_id" json:"applicant_id"`
	AssessorID    string           `db:"assessor_id" json:"assessor_id"`
	Education     Section          `db:"education" json:"educationalQualification"`
	Work          Section          `db:"work" json:"workExperience"`
	Achievements  Section          `db:"achievements" json:"professionalAchievements"`
	Interview     Section          `db:"interview" json:"interview"`
	TotalScore    int              `db:"total_score" json:"totalScore"`
	IsPassed      bool             `db:"is_passed" json:"isPassed"`
	Status        EvaluationStatus `db:"status" json:"status"`
	EvaluatedAt   time.Time        `db:"evaluated_at" json:"evaluatedAt"`
	FinalizedAt   *time.Time       `db:"finalized_at" json:"finalizedAt,omitempty"`
	FinalComments *string          `db:"final_comments" json:"finalComments,omitempty"`
}

// EvaluationComment is the audit record appended when an evaluation is
// finalized.
type EvaluationComment struct {
	ID           string    `db:"id" json:"id"`
	ApplicantID  string    `db:"applicant_id" json:"applicant_id"`
	AssessorID   string    `db:"assessor_id" json:"assessor_id"`
	EvaluationID string    `db:"evaluation_id" json:"evaluation_id"`
	Comments     string    `db:"comments" json:"comments"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
