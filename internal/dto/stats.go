package dto

// DashboardStats is the headline rollup with the five newest reports.
type DashboardStats struct {
	TotalReports    int           `json:"totalReports"`
	ResolvedReports int           `json:"resolvedReports"`
	PendingReports  int           `json:"pendingReports"`
	RecentReports   []*ReportView `json:"recentReports"`
}

// CategoryCount is a per-category grouped count.
type CategoryCount struct {
	Name  string `json:"name" db:"name"`
	Count int    `json:"report_count" db:"report_count"`
}

// SeverityCount is a per-severity grouped count.
type SeverityCount struct {
	Severity string `json:"severity" db:"severity"`
	Count    int    `json:"count" db:"count"`
}

// DashboardStatistics covers the trailing 30-day window. Group order carries
// no guarantee.
type DashboardStatistics struct {
	TotalReports      int             `json:"total_reports"`
	RecentReports     int             `json:"recent_reports"`
	ReportsByCategory []CategoryCount `json:"reports_by_category"`
	ReportsBySeverity []SeverityCount `json:"reports_by_severity"`
	UserReports       int             `json:"user_reports"`
}

// ReportStatistics is the scoped rollup with a trailing 7-day count.
type ReportStatistics struct {
	TotalReports    int             `json:"total_reports"`
	PendingReports  int             `json:"pending_reports"`
	ResolvedReports int             `json:"resolved_reports"`
	RecentReports   int             `json:"recent_reports"`
	ByCategory      []CategoryCount `json:"by_category"`
	BySeverity      []SeverityCount `json:"by_severity"`
}
