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

const categoryColumns = "id, name, description, icon, color, is_active, created_at"

// CategoryRepository manages persistence for report categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs a new repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns categories per the provided filter.
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	query := fmt.Sprintf("SELECT %s FROM categories WHERE %s ORDER BY name ASC", categoryColumns, strings.Join(where, " AND "))
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListReferencedByReporter returns the distinct categories that appear on the
// given user's own reports. Non-staff listings are scoped this way.
func (r *CategoryRepository) ListReferencedByReporter(ctx context.Context, reporterID string) ([]models.Category, error) {
	query := `SELECT DISTINCT c.id, c.name, c.description, c.icon, c.color, c.is_active, c.created_at
FROM categories c
JOIN reports rep ON rep.category_id = c.id
WHERE rep.reporter_id = $1
ORDER BY c.name ASC`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query, reporterID); err != nil {
		return nil, fmt.Errorf("list reporter categories: %w", err)
	}
	return categories, nil
}

// FindByID returns a category by primary key.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	query := fmt.Sprintf("SELECT %s FROM categories WHERE id = $1 LIMIT 1", categoryColumns)
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, err
	}
	return &category, nil
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	if category.Color == "" {
		category.Color = "#3182CE"
	}
	query := `INSERT INTO categories (id, name, description, icon, color, is_active, created_at)
VALUES (:id, :name, :description, :icon, :color, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update modifies an existing category.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := `UPDATE categories SET name = :name, description = :description, icon = :icon, color = :color, is_active = :is_active
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. Referencing reports keep running with a null
// category via the FK's ON DELETE SET NULL.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
