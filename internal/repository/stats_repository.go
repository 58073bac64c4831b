package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/civiclens/civiclens-api/internal/dto"
	"github.com/civiclens/civiclens-api/internal/models"
)

// StatsRepository serves read-only aggregate queries over reports. It owns no
// state; every call recomputes from current rows.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a new repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountReports returns the total number of reports.
func (r *StatsRepository) CountReports(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports"); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return total, nil
}

// CountReportsByStatus returns the number of reports in the given status.
func (r *StatsRepository) CountReportsByStatus(ctx context.Context, status models.ReportStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports WHERE status = $1", string(status)); err != nil {
		return 0, fmt.Errorf("count reports by status: %w", err)
	}
	return total, nil
}

// CountReportsCreatedSince returns the number of reports created at or after
// the cutoff.
func (r *StatsRepository) CountReportsCreatedSince(ctx context.Context, cutoff time.Time) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports WHERE created_at >= $1", cutoff); err != nil {
		return 0, fmt.Errorf("count recent reports: %w", err)
	}
	return total, nil
}

// CountReportsByReporter returns the number of reports filed by a user.
func (r *StatsRepository) CountReportsByReporter(ctx context.Context, reporterID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports WHERE reporter_id = $1", reporterID); err != nil {
		return 0, fmt.Errorf("count reporter reports: %w", err)
	}
	return total, nil
}

// CountsByCategory returns a row per category with its report count, zero
// counts included.
func (r *StatsRepository) CountsByCategory(ctx context.Context) ([]dto.CategoryCount, error) {
	var counts []dto.CategoryCount
	query := `SELECT c.name AS name, COUNT(rep.id) AS report_count
FROM categories c
LEFT JOIN reports rep ON rep.category_id = c.id
GROUP BY c.name`
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("counts by category: %w", err)
	}
	return counts, nil
}

// ReportCountsByCategory groups reports by category name. Reports without a
// category land in the empty-name group.
func (r *StatsRepository) ReportCountsByCategory(ctx context.Context) ([]dto.CategoryCount, error) {
	var counts []dto.CategoryCount
	query := `SELECT COALESCE(c.name, '') AS name, COUNT(rep.id) AS report_count
FROM reports rep
LEFT JOIN categories c ON c.id = rep.category_id
GROUP BY c.name`
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("report counts by category: %w", err)
	}
	return counts, nil
}

// CountsBySeverity groups reports by severity.
func (r *StatsRepository) CountsBySeverity(ctx context.Context) ([]dto.SeverityCount, error) {
	var counts []dto.SeverityCount
	query := "SELECT severity, COUNT(id) AS count FROM reports GROUP BY severity"
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("counts by severity: %w", err)
	}
	return counts, nil
}

// RecentReports returns the newest reports up to the given limit.
func (r *StatsRepository) RecentReports(ctx context.Context, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 5
	}
	var reports []models.Report
	query := fmt.Sprintf("SELECT %s FROM reports ORDER BY created_at DESC LIMIT %d", reportColumns, limit)
	if err := r.db.SelectContext(ctx, &reports, query); err != nil {
		return nil, fmt.Errorf("recent reports: %w", err)
	}
	return reports, nil
}
