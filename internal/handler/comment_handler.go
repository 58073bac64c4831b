package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civiclens/civiclens-api/internal/service"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
	"github.com/civiclens/civiclens-api/pkg/response"
)

// CommentHandler wires HTTP endpoints to the comment service.
type CommentHandler struct {
	service *service.CommentService
	metrics *service.MetricsService
}

// NewCommentHandler creates a new handler.
func NewCommentHandler(svc *service.CommentService, metrics *service.MetricsService) *CommentHandler {
	return &CommentHandler{service: svc, metrics: metrics}
}

// Create godoc
// @Summary Post a comment
// @Description Comment on a report, optionally as a reply
// @Tags Comments
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	view, err := h.service.Create(c.Request.Context(), principalFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CommentCreated()
	response.Created(c, view)
}

// CreateForReport godoc
// @Summary Comment on a report
// @Description Post a comment scoped to the report in the path
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Report id"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/{id}/comments [post]
func (h *CommentHandler) CreateForReport(c *gin.Context) {
	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}
	req.ReportID = c.Param("id")

	view, err := h.service.Create(c.Request.Context(), principalFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CommentCreated()
	response.Created(c, view)
}

// ListForReport godoc
// @Summary List report comments
// @Description Return the report's comment thread, replies nested
// @Tags Comments
// @Produce json
// @Param id path string true "Report id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id}/comments [get]
func (h *CommentHandler) ListForReport(c *gin.Context) {
	views, err := h.service.ListByReport(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Update godoc
// @Summary Edit a comment
// @Description Re-save a comment's content; author or staff only
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Comment id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /comments/{id} [patch]
func (h *CommentHandler) Update(c *gin.Context) {
	var req service.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
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
// @Summary Delete a comment
// @Description Remove a comment and its replies; author or staff only
// @Tags Comments
// @Param id path string true "Comment id"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), principalFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reply godoc
// @Summary Reply to a comment
// @Description Post a nested reply under an existing comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Parent comment id"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id}/reply [post]
func (h *CommentHandler) Reply(c *gin.Context) {
	var req service.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reply payload"))
		return
	}

	view, err := h.service.Reply(c.Request.Context(), principalFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CommentCreated()
	response.Created(c, view)
}

// ToggleHelpful godoc
// @Summary Toggle helpful vote
// @Description Add or withdraw the caller's helpful vote on a comment
// @Tags Comments
// @Produce json
// @Param id path string true "Comment id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /comments/{id}/toggle_helpful [post]
func (h *CommentHandler) ToggleHelpful(c *gin.Context) {
	view, err := h.service.ToggleHelpful(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Moderate godoc
// @Summary Moderate a comment
// @Description Hide or show a comment; staff only
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Comment id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /comments/{id}/moderate [post]
func (h *CommentHandler) Moderate(c *gin.Context) {
	var req service.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid moderation payload"))
		return
	}

	view, err := h.service.Moderate(c.Request.Context(), principalFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
