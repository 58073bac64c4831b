package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/civiclens/civiclens-api/internal/models"
)

const commentColumns = "id, report_id, user_id, content, parent_id, is_staff_response, is_hidden, edited, created_at, updated_at"

// CommentRepository manages persistence for comments and helpful votes.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs a new repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// FindByID returns a comment by primary key.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	query := fmt.Sprintf("SELECT %s FROM comments WHERE id = $1 LIMIT 1", commentColumns)
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByReport returns every comment belonging to a report, newest first.
// The service assembles the reply tree from parent_id.
func (r *CommentRepository) ListByReport(ctx context.Context, reportID string) ([]models.Comment, error) {
	var comments []models.Comment
	query := fmt.Sprintf("SELECT %s FROM comments WHERE report_id = $1 ORDER BY created_at DESC", commentColumns)
	if err := r.db.SelectContext(ctx, &comments, query, reportID); err != nil {
		return nil, fmt.Errorf("list report comments: %w", err)
	}
	return comments, nil
}

// Create inserts a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now
	query := `INSERT INTO comments (id, report_id, user_id, content, parent_id, is_staff_response, is_hidden, edited, created_at, updated_at)
VALUES (:id, :report_id, :user_id, :content, :parent_id, :is_staff_response, :is_hidden, :edited, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// UpdateContent re-saves a comment's content. Every re-save marks the comment
// edited, whether or not the content changed.
func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) error {
	query := "UPDATE comments SET content = $2, edited = true, updated_at = $3 WHERE id = $1"
	if _, err := r.db.ExecContext(ctx, query, id, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// UpdateVisibility flips the moderation hidden flag. Deliberately does not
// touch the edited flag.
func (r *CommentRepository) UpdateVisibility(ctx context.Context, id string, hidden bool) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE comments SET is_hidden = $2 WHERE id = $1", id, hidden); err != nil {
		return fmt.Errorf("update comment visibility: %w", err)
	}
	return nil
}

// Delete removes a comment. Replies go with it through the parent FK.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// ListVoters returns the user ids that marked the comment helpful.
func (r *CommentRepository) ListVoters(ctx context.Context, commentID string) ([]string, error) {
	var voters []string
	query := "SELECT user_id FROM comment_helpful_votes WHERE comment_id = $1"
	if err := r.db.SelectContext(ctx, &voters, query, commentID); err != nil {
		return nil, fmt.Errorf("list comment voters: %w", err)
	}
	return voters, nil
}

// ListVotersByReport returns helpful voter ids for every comment on a report,
// keyed by comment id.
func (r *CommentRepository) ListVotersByReport(ctx context.Context, reportID string) (map[string][]string, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT v.comment_id, v.user_id
FROM comment_helpful_votes v
JOIN comments c ON c.id = v.comment_id
WHERE c.report_id = $1`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list report comment voters: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	voters := make(map[string][]string)
	for rows.Next() {
		var commentID, userID string
		if err := rows.Scan(&commentID, &userID); err != nil {
			return nil, fmt.Errorf("scan comment voter: %w", err)
		}
		voters[commentID] = append(voters[commentID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment voters: %w", err)
	}
	return voters, nil
}

// HasVote reports whether the user already voted on the comment.
func (r *CommentRepository) HasVote(ctx context.Context, commentID, userID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM comment_helpful_votes WHERE comment_id = $1 AND user_id = $2)"
	if err := r.db.GetContext(ctx, &exists, query, commentID, userID); err != nil {
		return false, fmt.Errorf("check comment vote: %w", err)
	}
	return exists, nil
}

// AddVote records a helpful vote. Duplicate inserts are ignored.
func (r *CommentRepository) AddVote(ctx context.Context, commentID, userID string) error {
	query := `INSERT INTO comment_helpful_votes (comment_id, user_id, created_at) VALUES ($1, $2, $3)
ON CONFLICT (comment_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, commentID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add comment vote: %w", err)
	}
	return nil
}

// RemoveVote deletes a helpful vote if present.
func (r *CommentRepository) RemoveVote(ctx context.Context, commentID, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM comment_helpful_votes WHERE comment_id = $1 AND user_id = $2", commentID, userID); err != nil {
		return fmt.Errorf("remove comment vote: %w", err)
	}
	return nil
}
