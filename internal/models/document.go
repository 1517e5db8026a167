package models

import "time"

// DefaultDocumentLabel groups uploads that arrive with the application.
const DefaultDocumentLabel = "initial-submission"

// Document is the metadata row for one uploaded file. The bytes live in
// document_chunks as an ordered sequence of fixed-size segments.
type Document struct {
	ID          string    `db:"id" json:"_id"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Filename    string    `db:"filename" json:"filename"`
	ContentType string    `db:"content_type" json:"contentType"`
	Label       string    `db:"label" json:"label"`
	SizeBytes   int64     `db:"size_bytes" json:"size"`
	UploadDate  time.Time `db:"upload_date" json:"uploadDate"`
}
