package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/civiclens/civiclens-api/internal/models"
)

const reportColumns = `id, title, description, location_name, latitude, longitude, category_id, reporter_id, assigned_to_id,
status, severity, priority, verified, verification_notes, is_public, views_count, estimated_cost,
resolved_at, resolution_time_days, created_at, updated_at`

// ReportRepository manages persistence for reports and their upvotes.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a new repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// List returns reports per the provided filter.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR location_name ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.Severity != nil {
		where = append(where, fmt.Sprintf("severity = $%d", len(args)+1))
		args = append(args, string(*filter.Severity))
	}
	if filter.CategoryID != "" {
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)+1))
		args = append(args, filter.CategoryID)
	}
	if filter.ReporterID != "" {
		where = append(where, fmt.Sprintf("reporter_id = $%d", len(args)+1))
		args = append(args, filter.ReporterID)
	}
	whereClause := strings.Join(where, " AND ")

	orderBy := "created_at"
	switch filter.SortBy {
	case "updated_at", "severity":
		orderBy = filter.SortBy
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM reports WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		reportColumns, whereClause, orderBy, direction, size, offset)
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM reports WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}
	return reports, total, nil
}

// FindByID returns a report by primary key.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	query := fmt.Sprintf("SELECT %s FROM reports WHERE id = $1 LIMIT 1", reportColumns)
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// Create inserts a new report.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	query := `INSERT INTO reports (id, title, description, location_name, latitude, longitude, category_id, reporter_id, assigned_to_id,
status, severity, priority, verified, verification_notes, is_public, views_count, estimated_cost, resolved_at, resolution_time_days, created_at, updated_at)
VALUES (:id, :title, :description, :location_name, :latitude, :longitude, :category_id, :reporter_id, :assigned_to_id,
:status, :severity, :priority, :verified, :verification_notes, :is_public, :views_count, :estimated_cost, :resolved_at, :resolution_time_days, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// Update persists the mutable fields of an existing report, including the
// resolution stamp columns computed by the service.
func (r *ReportRepository) Update(ctx context.Context, report *models.Report) error {
	report.UpdatedAt = time.Now().UTC()
	query := `UPDATE reports SET title = :title, description = :description, location_name = :location_name,
latitude = :latitude, longitude = :longitude, category_id = :category_id, assigned_to_id = :assigned_to_id,
status = :status, severity = :severity, priority = :priority, verified = :verified,
verification_notes = :verification_notes, is_public = :is_public, estimated_cost = :estimated_cost,
resolved_at = :resolved_at, resolution_time_days = :resolution_time_days, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	return nil
}

// Delete removes a report. Images, videos, comments and subscriptions go with
// it through their owning FKs.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM reports WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter.
func (r *ReportRepository) IncrementViews(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE reports SET views_count = views_count + 1 WHERE id = $1", id); err != nil {
		return fmt.Errorf("increment report views: %w", err)
	}
	return nil
}

// ListUpvoters returns the user ids that upvoted the report.
func (r *ReportRepository) ListUpvoters(ctx context.Context, reportID string) ([]string, error) {
	var voters []string
	query := "SELECT user_id FROM report_upvotes WHERE report_id = $1"
	if err := r.db.SelectContext(ctx, &voters, query, reportID); err != nil {
		return nil, fmt.Errorf("list report upvoters: %w", err)
	}
	return voters, nil
}

// HasUpvote reports whether the user already upvoted the report.
func (r *ReportRepository) HasUpvote(ctx context.Context, reportID, userID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM report_upvotes WHERE report_id = $1 AND user_id = $2)"
	if err := r.db.GetContext(ctx, &exists, query, reportID, userID); err != nil {
		return false, fmt.Errorf("check report upvote: %w", err)
	}
	return exists, nil
}

// AddUpvote records an upvote. Duplicate inserts are ignored.
func (r *ReportRepository) AddUpvote(ctx context.Context, reportID, userID string) error {
	query := `INSERT INTO report_upvotes (report_id, user_id, created_at) VALUES ($1, $2, $3)
ON CONFLICT (report_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, reportID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add report upvote: %w", err)
	}
	return nil
}

// RemoveUpvote deletes an upvote if present.
func (r *ReportRepository) RemoveUpvote(ctx context.Context, reportID, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM report_upvotes WHERE report_id = $1 AND user_id = $2", reportID, userID); err != nil {
		return fmt.Errorf("remove report upvote: %w", err)
	}
	return nil
}
