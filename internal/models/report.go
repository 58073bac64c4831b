package models

import "time"

// ReportStatus enumerates the report lifecycle states.
type ReportStatus string

const (
	StatusPending       ReportStatus = "pending"
	StatusInvestigating ReportStatus = "investigating"
	StatusInProgress    ReportStatus = "in_progress"
	StatusResolved      ReportStatus = "resolved"
	StatusRejected      ReportStatus = "rejected"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInvestigating, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// ReportSeverity enumerates issue severities.
type ReportSeverity string

const (
	SeverityLow      ReportSeverity = "low"
	SeverityMedium   ReportSeverity = "medium"
	SeverityHigh     ReportSeverity = "high"
	SeverityCritical ReportSeverity = "critical"
)

// Valid reports whether the severity is a known value.
func (s ReportSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Report is a submitted civic issue with location, status and severity.
// resolved_at and resolution_time_days are stamped once on the first
// transition into resolved and never recomputed afterwards.
type Report struct {
	ID                 string         `db:"id" json:"id"`
	Title              string         `db:"title" json:"title"`
	Description        string         `db:"description" json:"description"`
	LocationName       string         `db:"location_name" json:"location_name"`
	Latitude           float64        `db:"latitude" json:"latitude"`
	Longitude          float64        `db:"longitude" json:"longitude"`
	CategoryID         *string        `db:"category_id" json:"category_id,omitempty"`
	ReporterID         string         `db:"reporter_id" json:"reporter_id"`
	AssignedToID       *string        `db:"assigned_to_id" json:"assigned_to_id,omitempty"`
	Status             ReportStatus   `db:"status" json:"status"`
	Severity           ReportSeverity `db:"severity" json:"severity"`
	Priority           int            `db:"priority" json:"priority"`
	Verified           bool           `db:"verified" json:"verified"`
	VerificationNotes  string         `db:"verification_notes" json:"verification_notes"`
	IsPublic           bool           `db:"is_public" json:"is_public"`
	ViewsCount         int            `db:"views_count" json:"views_count"`
	EstimatedCost      *float64       `db:"estimated_cost" json:"estimated_cost,omitempty"`
	ResolvedAt         *time.Time     `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolutionTimeDays *int           `db:"resolution_time_days" json:"resolution_time_days,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// ReportFilter captures filtering criteria for listing reports.
type ReportFilter struct {
	Search     string
	Status     *ReportStatus
	Severity   *ReportSeverity
	CategoryID string
	ReporterID string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
