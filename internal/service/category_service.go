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

type categoryRepository interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error)
	ListReferencedByReporter(ctx context.Context, reporterID string) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

// CreateCategoryRequest is the staff payload for a new category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon" validate:"max=50"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateCategoryRequest is a partial category mutation.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryService owns the report category taxonomy. Mutations are staff
// only; non-staff listing is scoped to categories the caller has reported
// under.
type CategoryService struct {
	categories categoryRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(categories categoryRepository, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{categories: categories, validator: validate, logger: logger}
}

// List returns categories visible to the principal. Staff see every
// category; everyone else sees only the categories their own reports
// reference.
func (s *CategoryService) List(ctx context.Context, principal *models.Principal, filter models.CategoryFilter) ([]*dto.CategoryView, error) {
	var (
		categories []models.Category
		err        error
	)
	if principal.IsStaff {
		categories, err = s.categories.List(ctx, filter)
	} else {
		categories, err = s.categories.ListReferencedByReporter(ctx, principal.UserID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}

	views := make([]*dto.CategoryView, 0, len(categories))
	for i := range categories {
		views = append(views, dto.NewCategoryView(&categories[i]))
	}
	return views, nil
}

// Get returns a single category.
func (s *CategoryService) Get(ctx context.Context, id string) (*dto.CategoryView, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewCategoryView(category), nil
}

// Create adds a category. Staff only.
func (s *CategoryService) Create(ctx context.Context, principal *models.Principal, req CreateCategoryRequest) (*dto.CategoryView, error) {
	if !principal.IsStaff {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff members can manage categories")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		IsActive:    true,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}
	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("name", category.Name))
	return dto.NewCategoryView(category), nil
}

// Update applies a partial mutation. Staff only.
func (s *CategoryService) Update(ctx context.Context, principal *models.Principal, id string, req UpdateCategoryRequest) (*dto.CategoryView, error) {
	if !principal.IsStaff {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff members can manage categories")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}

	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update category")
	}
	return dto.NewCategoryView(category), nil
}

// Delete removes a category. Staff only. Reports referencing it keep a null
// category.
func (s *CategoryService) Delete(ctx context.Context, principal *models.Principal, id string) error {
	if !principal.IsStaff {
		return appErrors.Clone(appErrors.ErrForbidden, "only staff members can manage categories")
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete category")
	}
	return nil
}

func (s *CategoryService) load(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}
