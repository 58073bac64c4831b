package dto

import (
	"time"

	"github.com/civiclens/civiclens-api/internal/models"
)

// CommentView is the caller-aware projection of a comment. The permission and
// vote fields are computed against the requesting principal at construction,
// never stored.
type CommentView struct {
	ID              string         `json:"id"`
	User            *UserView      `json:"user"`
	Content         string         `json:"content"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ParentID        *string        `json:"parent,omitempty"`
	IsStaffResponse bool           `json:"is_staff_response"`
	HelpfulCount    int            `json:"helpful_count"`
	HasVoted        bool           `json:"has_voted"`
	CanEdit         bool           `json:"can_edit"`
	CanDelete       bool           `json:"can_delete"`
	Edited          bool           `json:"edited"`
	IsHidden        bool           `json:"is_hidden"`
	Replies         []*CommentView `json:"replies"`
}

// CommentViewInput bundles the pieces needed to project one comment.
type CommentViewInput struct {
	Comment *models.Comment
	Author  *models.User
	Voters  []string
}

// NewCommentView builds the projection for the given principal. Replies are
// attached by the caller after construction.
func NewCommentView(in CommentViewInput, principal *models.Principal) *CommentView {
	c := in.Comment
	view := &CommentView{
		ID:              c.ID,
		User:            NewUserView(in.Author),
		Content:         c.Content,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		ParentID:        c.ParentID,
		IsStaffResponse: c.IsStaffResponse,
		HelpfulCount:    len(in.Voters),
		Edited:          c.Edited,
		IsHidden:        c.IsHidden,
		Replies:         []*CommentView{},
	}
	if principal != nil {
		for _, voter := range in.Voters {
			if voter == principal.UserID {
				view.HasVoted = true
				break
			}
		}
		allowed := principal.UserID == c.UserID || principal.IsStaff
		view.CanEdit = allowed
		view.CanDelete = allowed
	}
	return view
}
