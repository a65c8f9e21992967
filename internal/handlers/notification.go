package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ndagijimanapazo/ikaze-backend/internal/middleware"
	"github.com/ndagijimanapazo/ikaze-backend/internal/storage"
)

// NotificationHandler serves the persisted notification inbox.
type NotificationHandler struct {
	store storage.Store
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(store storage.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)

	notifications, err := h.store.GetNotificationsByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch notifications",
		})
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkRead handles PUT /notifications/:id/read. Scoped to the caller:
// someone else's notification id behaves like an unknown id.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)

	if err := h.store.MarkNotificationRead(c.Params("id"), userID); err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Notification not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update notification",
		})
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllRead handles PUT /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)

	if err := h.store.MarkAllNotificationsRead(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update notifications",
		})
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}
