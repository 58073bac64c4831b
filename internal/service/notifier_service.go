package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civiclens/civiclens-api/internal/models"
	"github.com/civiclens/civiclens-api/pkg/jobs"
)

type notifierSubscriptionReader interface {
	ListByReport(ctx context.Context, reportID string, frequency *models.NotificationFrequency) ([]models.ReportSubscription, error)
}

const (
	jobTypeStatusChanged = "report.status_changed"
	jobTypeCommentAdded  = "report.comment_added"
)

// NotificationPayload is the job body for a subscriber notification.
type NotificationPayload struct {
	UserID     string `json:"user_id"`
	ReportID   string `json:"report_id"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	Originator string `json:"originator"`
}

// NotifierService fans report events out to instant subscribers through the
// background queue. Daily and weekly subscribers keep their stored cadence;
// digest assembly happens elsewhere.
type NotifierService struct {
	subs   notifierSubscriptionReader
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotifierService constructs a NotifierService. Call Queue().Start before
// serving traffic.
func NewNotifierService(subs notifierSubscriptionReader, cfg jobs.QueueConfig, logger *zap.Logger) *NotifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotifierService{subs: subs, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, cfg)
	return s
}

// Queue exposes the underlying queue for lifecycle management.
func (s *NotifierService) Queue() *jobs.Queue {
	return s.queue
}

// ReportStatusChanged enqueues a notification per instant subscriber.
func (s *NotifierService) ReportStatusChanged(ctx context.Context, report *models.Report, previous models.ReportStatus) {
	s.fanOut(ctx, report.ID, jobTypeStatusChanged, NotificationPayload{
		ReportID: report.ID,
		Title:    report.Title,
		Detail:   string(previous) + " -> " + string(report.Status),
	})
}

// CommentAdded enqueues a notification per instant subscriber, skipping the
// comment author.
func (s *NotifierService) CommentAdded(ctx context.Context, report *models.Report, comment *models.Comment) {
	s.fanOut(ctx, report.ID, jobTypeCommentAdded, NotificationPayload{
		ReportID:   report.ID,
		Title:      report.Title,
		Detail:     "new comment",
		Originator: comment.UserID,
	})
}

func (s *NotifierService) fanOut(ctx context.Context, reportID, jobType string, payload NotificationPayload) {
	frequency := models.FrequencyInstant
	subs, err := s.subs.ListByReport(ctx, reportID, &frequency)
	if err != nil {
		s.logger.Warn("failed to load subscribers", zap.String("report_id", reportID), zap.Error(err))
		return
	}

	for _, sub := range subs {
		if payload.Originator != "" && sub.UserID == payload.Originator {
			continue
		}
		p := payload
		p.UserID = sub.UserID
		if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: p}); err != nil {
			s.logger.Warn("failed to enqueue notification",
				zap.String("report_id", reportID),
				zap.String("user_id", sub.UserID),
				zap.Error(err),
			)
		}
	}
}

// deliver is the queue handler. There is no external transport in scope, so
// delivery is a structured log record per notification.
func (s *NotifierService) deliver(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(NotificationPayload)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	s.logger.Info("notification delivered",
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.String("user_id", payload.UserID),
		zap.String("report_id", payload.ReportID),
		zap.String("detail", payload.Detail),
	)
	return nil
}
