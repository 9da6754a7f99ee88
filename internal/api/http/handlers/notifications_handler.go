package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/api/dto"
	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/service"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

const notificationListLimit = 50

// NotificationsHandler exposes the per-user notification ledger.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /api/notifications. Listing marks everything read.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	notifications, err := h.notifications.ListRecent(c.UserContext(), principal.User.ID, notificationListLimit)
	if err != nil {
		return err
	}

	items := make([]dto.NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, dto.NotificationItem{
			ID:        n.ID,
			ReportID:  n.ReportID,
			Message:   n.Message,
			Type:      n.Type,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(timestampLayout),
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": items,
	})
}

// Count handles GET /api/notifications_count.
func (h *NotificationsHandler) Count(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	count, err := h.notifications.UnreadCount(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   count,
	})
}
