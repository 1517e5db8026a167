package dto

import (
	"time"

	"github.com/eteeap/admissions-api/internal/models"
)

// ReportJobResponse reports the lifecycle of an evaluation-summary export.
// DownloadToken is only present once the job has completed.
type ReportJobResponse struct {
	ID            string              `json:"id"`
	ApplicantID   string              `json:"applicantId"`
	Status        models.ReportStatus `json:"status"`
	Error         *string             `json:"error,omitempty"`
	DownloadToken string              `json:"downloadToken,omitempty"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}
