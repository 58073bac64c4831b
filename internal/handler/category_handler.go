package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civiclens/civiclens-api/internal/models"
	"github.com/civiclens/civiclens-api/internal/service"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
	"github.com/civiclens/civiclens-api/pkg/response"
)

// CategoryHandler wires HTTP endpoints to the category service.
type CategoryHandler struct {
	service *service.CategoryService
}

// NewCategoryHandler creates a new handler.
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// List godoc
// @Summary List categories
// @Description Staff see all categories, others only those their reports use
// @Tags Categories
// @Produce json
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	filter := models.CategoryFilter{}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	views, err := h.service.List(c.Request.Context(), principalFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Get godoc
// @Summary Get a category
// @Tags Categories
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Create godoc
// @Summary Create a category
// @Description Add a category; staff only
// @Tags Categories
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid category payload"))
		return
	}

	view, err := h.service.Create(c.Request.Context(), principalFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Update godoc
// @Summary Update a category
// @Description Partially update a category; staff only
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /categories/{id} [patch]
func (h *CategoryHandler) Update(c *gin.Context) {
	var req service.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid category payload"))
		return
	}

	view, err := h.service.Update(c.Request.Context(), principalFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Delete godoc
// @Summary Delete a category
// @Description Remove a category; staff only
// @Tags Categories
// @Param id path string true "Category id"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), principalFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
