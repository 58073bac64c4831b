package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/civiclens/civiclens-api/internal/models"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
)

type subscriptionRepository interface {
	Create(ctx context.Context, sub *models.ReportSubscription) error
	Exists(ctx context.Context, userID, reportID string) (bool, error)
	Delete(ctx context.Context, userID, reportID string) error
	ListByUser(ctx context.Context, userID string) ([]models.ReportSubscription, error)
}

type subscriptionReportReader interface {
	FindByID(ctx context.Context, id string) (*models.Report, error)
}

// SubscribeRequest carries the notification cadence for a subscription.
type SubscribeRequest struct {
	NotificationFrequency models.NotificationFrequency `json:"notification_frequency"`
}

// SubscriptionService manages per-report notification subscriptions.
type SubscriptionService struct {
	subs    subscriptionRepository
	reports subscriptionReportReader
	logger  *zap.Logger
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(subs subscriptionRepository, reports subscriptionReportReader, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{subs: subs, reports: reports, logger: logger}
}

// Subscribe registers the principal for updates on a report. One
// subscription per (user, report) pair.
func (s *SubscriptionService) Subscribe(ctx context.Context, principal *models.Principal, reportID string, req SubscribeRequest) (*models.ReportSubscription, error) {
	frequency := req.NotificationFrequency
	if frequency == "" {
		frequency = models.FrequencyInstant
	}
	if !frequency.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid notification frequency")
	}

	if _, err := s.reports.FindByID(ctx, reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}

	exists, err := s.subs.Exists(ctx, principal.UserID, reportID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subscription")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already subscribed to this report")
	}

	sub := &models.ReportSubscription{
		UserID:                principal.UserID,
		ReportID:              reportID,
		NotificationFrequency: frequency,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subscription")
	}
	s.logger.Info("subscription created",
		zap.String("user_id", principal.UserID),
		zap.String("report_id", reportID),
		zap.String("frequency", string(frequency)),
	)
	return sub, nil
}

// Unsubscribe removes the principal's subscription to a report.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, principal *models.Principal, reportID string) error {
	exists, err := s.subs.Exists(ctx, principal.UserID, reportID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subscription")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "subscription not found")
	}
	if err := s.subs.Delete(ctx, principal.UserID, reportID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subscription")
	}
	return nil
}

// ListMine returns the principal's subscriptions.
func (s *SubscriptionService) ListMine(ctx context.Context, principal *models.Principal) ([]models.ReportSubscription, error) {
	subs, err := s.subs.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}
	return subs, nil
}
