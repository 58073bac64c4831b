package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civiclens/civiclens-api/internal/dto"
	"github.com/civiclens/civiclens-api/internal/models"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
)

type commentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	ListByReport(ctx context.Context, reportID string) ([]models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	UpdateContent(ctx context.Context, id, content string) error
	UpdateVisibility(ctx context.Context, id string, hidden bool) error
	Delete(ctx context.Context, id string) error
	ListVoters(ctx context.Context, commentID string) ([]string, error)
	ListVotersByReport(ctx context.Context, reportID string) (map[string][]string, error)
	HasVote(ctx context.Context, commentID, userID string) (bool, error)
	AddVote(ctx context.Context, commentID, userID string) error
	RemoveVote(ctx context.Context, commentID, userID string) error
}

type commentReportReader interface {
	FindByID(ctx context.Context, id string) (*models.Report, error)
}

type commentUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

type commentNotifier interface {
	CommentAdded(ctx context.Context, report *models.Report, comment *models.Comment)
}

// CreateCommentRequest is the payload for posting a comment.
type CreateCommentRequest struct {
	ReportID string  `json:"report" validate:"required"`
	Content  string  `json:"content" validate:"required"`
	ParentID *string `json:"parent"`
}

// UpdateCommentRequest carries an edit to an existing comment.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// ReplyRequest is the payload for replying to a comment.
type ReplyRequest struct {
	Content string `json:"content" validate:"required"`
}

// ModerateRequest is the staff visibility toggle payload.
type ModerateRequest struct {
	Action string `json:"action" validate:"required"`
}

// CommentService owns threaded comments, helpfulness voting and staff
// moderation.
type CommentService struct {
	comments  commentRepository
	reports   commentReportReader
	users     commentUserReader
	notifier  commentNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommentService constructs a CommentService.
func NewCommentService(comments commentRepository, reports commentReportReader, users commentUserReader, notifier commentNotifier, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		comments:  comments,
		reports:   reports,
		users:     users,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
	}
}

// Create posts a comment on a report. The staff-response flag is a snapshot
// of the author's staff status at creation and is never recomputed.
func (s *CommentService) Create(ctx context.Context, principal *models.Principal, req CreateCommentRequest) (*dto.CommentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "report id and content are required")
	}

	report, err := s.reports.FindByID(ctx, req.ReportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}

	if req.ParentID != nil && *req.ParentID != "" {
		parent, err := s.comments.FindByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "parent comment not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent comment")
		}
		if parent.ReportID != report.ID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "parent comment belongs to a different report")
		}
	} else {
		req.ParentID = nil
	}

	comment := &models.Comment{
		ReportID:        report.ID,
		UserID:          principal.UserID,
		Content:         req.Content,
		ParentID:        req.ParentID,
		IsStaffResponse: principal.IsStaff,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}

	if s.notifier != nil {
		s.notifier.CommentAdded(ctx, report, comment)
	}
	return s.viewFor(ctx, principal, comment)
}

// Reply posts a comment nested under the given parent, inheriting its report.
func (s *CommentService) Reply(ctx context.Context, principal *models.Principal, parentID string, req ReplyRequest) (*dto.CommentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "content is required")
	}
	parent, err := s.loadComment(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, principal, CreateCommentRequest{
		ReportID: parent.ReportID,
		Content:  req.Content,
		ParentID: &parent.ID,
	})
}

// TreeByReport returns the report's top-level comments newest first, each
// carrying its reply subtree.
func (s *CommentService) TreeByReport(ctx context.Context, principal *models.Principal, reportID string) ([]*dto.CommentView, error) {
	comments, err := s.comments.ListByReport(ctx, reportID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	voters, err := s.comments.ListVotersByReport(ctx, reportID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment votes")
	}

	authorIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.UserID)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment authors")
	}

	views := make(map[string]*dto.CommentView, len(comments))
	for i := range comments {
		c := comments[i]
		var author *models.User
		if u, ok := authors[c.UserID]; ok {
			author = &u
		}
		views[c.ID] = dto.NewCommentView(dto.CommentViewInput{
			Comment: &c,
			Author:  author,
			Voters:  voters[c.ID],
		}, principal)
	}

	// Comments arrive newest first; appending in order keeps both the roots
	// and each reply list in that order.
	roots := make([]*dto.CommentView, 0)
	for i := range comments {
		c := comments[i]
		if c.ParentID == nil {
			roots = append(roots, views[c.ID])
			continue
		}
		if parent, ok := views[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, views[c.ID])
		}
	}
	return roots, nil
}

// ListByReport is TreeByReport behind a report existence check, serving the
// report-scoped comments endpoint.
func (s *CommentService) ListByReport(ctx context.Context, principal *models.Principal, reportID string) ([]*dto.CommentView, error) {
	if _, err := s.reports.FindByID(ctx, reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return s.TreeByReport(ctx, principal, reportID)
}

// Update re-saves a comment's content. Only the author or staff may edit;
// every successful re-save marks the comment edited, even when the content
// is unchanged.
func (s *CommentService) Update(ctx context.Context, principal *models.Principal, id string, req UpdateCommentRequest) (*dto.CommentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "content is required")
	}
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != principal.UserID && !principal.IsStaff {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you don't have permission to edit this comment")
	}
	if err := s.comments.UpdateContent(ctx, id, req.Content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update comment")
	}
	comment.Content = req.Content
	comment.Edited = true
	return s.viewFor(ctx, principal, comment)
}

// Delete removes a comment and, through the parent FK, its entire reply
// subtree. Only the author or staff may delete.
func (s *CommentService) Delete(ctx context.Context, principal *models.Principal, id string) error {
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != principal.UserID && !principal.IsStaff {
		return appErrors.Clone(appErrors.ErrForbidden, "you don't have permission to delete this comment")
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}
	return nil
}

// ToggleHelpful flips the principal's helpful vote. Voting on one's own
// comment is rejected.
func (s *CommentService) ToggleHelpful(ctx context.Context, principal *models.Principal, id string) (*dto.CommentView, error) {
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID == principal.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "you cannot vote on your own comment")
	}
	voted, err := s.comments.HasVote(ctx, id, principal.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check vote")
	}
	if voted {
		err = s.comments.RemoveVote(ctx, id, principal.UserID)
	} else {
		err = s.comments.AddVote(ctx, id, principal.UserID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle vote")
	}
	return s.viewFor(ctx, principal, comment)
}

// Moderate hides or shows a comment. Staff only.
func (s *CommentService) Moderate(ctx context.Context, principal *models.Principal, id string, req ModerateRequest) (*dto.CommentView, error) {
	if !principal.IsStaff {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff members can moderate comments")
	}
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}

	var hidden bool
	switch models.ModerationAction(req.Action) {
	case models.ModerationHide:
		hidden = true
	case models.ModerationShow:
		hidden = false
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid moderation action")
	}

	if err := s.comments.UpdateVisibility(ctx, id, hidden); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to moderate comment")
	}
	comment.IsHidden = hidden
	s.logger.Info("comment moderated",
		zap.String("comment_id", id),
		zap.String("action", req.Action),
		zap.String("actor_id", principal.UserID),
	)
	return s.viewFor(ctx, principal, comment)
}

func (s *CommentService) loadComment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}
	return comment, nil
}

func (s *CommentService) viewFor(ctx context.Context, principal *models.Principal, comment *models.Comment) (*dto.CommentView, error) {
	author, err := s.users.FindByID(ctx, comment.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment author")
	}
	voters, err := s.comments.ListVoters(ctx, comment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment votes")
	}
	return dto.NewCommentView(dto.CommentViewInput{
		Comment: comment,
		Author:  author,
		Voters:  voters,
	}, principal), nil
}
