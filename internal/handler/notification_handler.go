package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sharebite/internal/auth"
	"sharebite/internal/projection"
)

// NotificationHandler serves the per-identity claim notification feed.
type NotificationHandler struct {
	projection *projection.Cache
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(projCache *projection.Cache) *NotificationHandler {
	return &NotificationHandler{projection: projCache}
}

// List godoc
// @Summary List the requester's claim notifications, most recent first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} projection.Notification
// @Failure 401 {object} errors.ErrorResponse
// @Router /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	notes, err := h.projection.ListNotifications(c.Request().Context(), identity.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	if notes == nil {
		notes = []projection.Notification{}
	}
	return c.JSON(http.StatusOK, notes)
}

// ClearAll godoc
// @Summary Clear the requester's claimed-set and notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /notifications [delete]
func (h *NotificationHandler) ClearAll(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	if err := h.projection.ClearAll(c.Request().Context(), identity.ID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "notifications cleared"})
}
