package models

import "time"

// Comment is a threaded discussion entry on a report. Replies reference their
// parent by id; deleting a parent removes the subtree via the owning FK.
type Comment struct {
	ID              string    `db:"id" json:"id"`
	ReportID        string    `db:"report_id" json:"report_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Content         string    `db:"content" json:"content"`
	ParentID        *string   `db:"parent_id" json:"parent_id,omitempty"`
	IsStaffResponse bool      `db:"is_staff_response" json:"is_staff_response"`
	IsHidden        bool      `db:"is_hidden" json:"is_hidden"`
	Edited          bool      `db:"edited" json:"edited"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ModerationAction is a staff visibility toggle on a comment.
type ModerationAction string

const (
	ModerationHide ModerationAction = "hide"
	ModerationShow ModerationAction = "show"
)
