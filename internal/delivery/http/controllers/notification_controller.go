package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventscout/internal/delivery/http/helpers"
	"eventscout/internal/domain"
)

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.NotificationService
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
	}
}

// ListNotificationsSuccessResponse is the success response envelope for GET /api/notifications (200).
type ListNotificationsSuccessResponse struct {
	Data  []*domain.Notification `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListNotifications godoc
// @Summary List notifications
// @Description Returns the new-event notifications recorded for a user, newest first.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param email query string true "User email"
// @Success 200 {object} controllers.ListNotificationsSuccessResponse "data contains the notifications"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/notifications [get]
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "email is required")
		return
	}
	notifications, err := c.Service.ListNotifications(r.Context(), email)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to fetch notifications")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, notifications)
}
