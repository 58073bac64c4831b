package models

import "time"

// Category groups reports by issue type. Staff managed; report references are
// nulled when a category is removed, never cascaded.
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Icon        string    `db:"icon" json:"icon"`
	Color       string    `db:"color" json:"color"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CategoryFilter captures criteria for listing categories.
type CategoryFilter struct {
	Active   *bool
	Page     int
	PageSize int
}
