package models

import "time"

// ReportImage is an uploaded photo attached to a report. At most one image
// per report carries is_primary = true.
type ReportImage struct {
	ID         string    `db:"id" json:"id"`
	ReportID   string    `db:"report_id" json:"report_id"`
	FileRef    string    `db:"file_ref" json:"file_ref"`
	Caption    string    `db:"caption" json:"caption"`
	IsPrimary  bool      `db:"is_primary" json:"is_primary"`
	Size       *int64    `db:"size" json:"size,omitempty"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// ReportVideo is an uploaded video attached to a report.
type ReportVideo struct {
	ID         string    `db:"id" json:"id"`
	ReportID   string    `db:"report_id" json:"report_id"`
	FileRef    string    `db:"file_ref" json:"file_ref"`
	Caption    string    `db:"caption" json:"caption"`
	Size       *int64    `db:"size" json:"size,omitempty"`
	Duration   *int      `db:"duration" json:"duration,omitempty"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}
