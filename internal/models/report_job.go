package models

import "time"

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusCompleted  ReportStatus = "COMPLETED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob is a queued evaluation-summary PDF generation job.
type ReportJob struct {
	ID           string       `db:"id" json:"id"`
	ApplicantID  string       `db:"applicant_id" json:"applicant_id"`
	RequestedBy  string       `db:"requested_by" json:"requested_by"`
	Status       ReportStatus `db:"status" json:"status"`
	FilePath     *string      `db:"file_path" json:"-"`
	ErrorMessage *string      `db:"error_message" json:"error,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}
