package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/civiclens/civiclens-api/internal/models"
)

const subscriptionColumns = "id, user_id, report_id, notification_frequency, created_at"

// SubscriptionRepository manages persistence for report subscriptions.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs a new repository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts a new subscription. The (user, report) pair is unique.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.ReportSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO report_subscriptions (id, user_id, report_id, notification_frequency, created_at)
VALUES (:id, :user_id, :report_id, :notification_frequency, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// Exists reports whether the user already subscribes to the report.
func (r *SubscriptionRepository) Exists(ctx context.Context, userID, reportID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM report_subscriptions WHERE user_id = $1 AND report_id = $2)"
	if err := r.db.GetContext(ctx, &exists, query, userID, reportID); err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return exists, nil
}

// Delete removes the user's subscription to a report.
func (r *SubscriptionRepository) Delete(ctx context.Context, userID, reportID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM report_subscriptions WHERE user_id = $1 AND report_id = $2", userID, reportID); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

// ListByUser returns the user's subscriptions, newest first.
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.ReportSubscription, error) {
	var subs []models.ReportSubscription
	query := fmt.Sprintf("SELECT %s FROM report_subscriptions WHERE user_id = $1 ORDER BY created_at DESC", subscriptionColumns)
	if err := r.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, fmt.Errorf("list user subscriptions: %w", err)
	}
	return subs, nil
}

// ListByReport returns subscriptions for a report, optionally narrowed to a
// notification frequency.
func (r *SubscriptionRepository) ListByReport(ctx context.Context, reportID string, frequency *models.NotificationFrequency) ([]models.ReportSubscription, error) {
	query := fmt.Sprintf("SELECT %s FROM report_subscriptions WHERE report_id = $1", subscriptionColumns)
	args := []interface{}{reportID}
	if frequency != nil {
		query += " AND notification_frequency = $2"
		args = append(args, string(*frequency))
	}
	query += " ORDER BY created_at DESC"
	var subs []models.ReportSubscription
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, fmt.Errorf("list report subscriptions: %w", err)
	}
	return subs, nil
}
