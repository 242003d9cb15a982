package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationDispatcher
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationDispatcher) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread", h.GetUnreadNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.GET("/notifications/:id", h.GetNotification)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
	g.DELETE("/notifications", h.DeleteAllNotifications)
}

// GetNotifications gets all notifications for the current user
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	return h.list(c, h.notifications.List)
}

// GetUnreadNotifications gets the unread notifications for the current user
func (h *NotificationHandler) GetUnreadNotifications(c echo.Context) error {
	return h.list(c, h.notifications.ListUnread)
}

type notificationLister func(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, models.PageMeta, error)

func (h *NotificationHandler) list(c echo.Context, fetch notificationLister) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	page, limit, err := getPaginationParams(c)
	if err != nil {
		return err
	}

	items, meta, err := fetch(c.Request().Context(), userID, page, limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": items},
		"meta":    meta,
	})
}

// GetUnreadCount gets the count of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	count, err := h.notifications.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"count": count})
}

func (h *NotificationHandler) GetNotification(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	n, err := h.notifications.Get(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, n)
}

// MarkAsRead marks a specific notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(c.Request().Context(), c.Param("id"), userID); err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"read": true})
}

// MarkAllAsRead marks all notifications as read for the current user
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	updated, err := h.notifications.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"updated": updated})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.notifications.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}

// DeleteAllNotifications clears the caller's notifications
func (h *NotificationHandler) DeleteAllNotifications(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	removed, err := h.notifications.DeleteAll(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": removed})
}
