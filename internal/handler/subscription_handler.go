package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civiclens/civiclens-api/internal/service"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
	"github.com/civiclens/civiclens-api/pkg/response"
)

// SubscriptionHandler wires HTTP endpoints to the subscription service.
type SubscriptionHandler struct {
	service *service.SubscriptionService
}

// NewSubscriptionHandler creates a new handler.
func NewSubscriptionHandler(svc *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: svc}
}

// Subscribe godoc
// @Summary Subscribe to a report
// @Description Register for updates on a report
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Report id"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/{id}/subscribe [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req service.SubscribeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subscription payload"))
			return
		}
	}

	sub, err := h.service.Subscribe(c.Request.Context(), principalFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// Unsubscribe godoc
// @Summary Unsubscribe from a report
// @Tags Subscriptions
// @Param id path string true "Report id"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /reports/{id}/subscribe [delete]
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	if err := h.service.Unsubscribe(c.Request.Context(), principalFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMine godoc
// @Summary List my subscriptions
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListMine(c *gin.Context) {
	subs, err := h.service.ListMine(c.Request.Context(), principalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}
