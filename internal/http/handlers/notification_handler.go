package handlers

import (
	"github.com/creatorhub/gateway/internal/http/dto"
	"github.com/creatorhub/gateway/internal/middleware"
	"github.com/creatorhub/gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	log                 *zap.Logger
}

func NewNotificationHandler(notificationService *services.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, log: log}
}

// List loads the user's notification state. A failed fetch still returns the
// cached snapshot with 200 so the client paints something.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	sess := middleware.GetSession(c)
	notifications, unread, err := h.notificationService.Load(c.Context(), sess)
	if err != nil {
		h.log.Warn("notification load degraded to cached state", zap.Error(err))
	}

	return c.JSON(dto.NotificationsResponse{
		OK:            true,
		Notifications: notifications,
		UnreadCount:   unread,
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid notification id"})
	}

	sess := middleware.GetSession(c)
	if err := h.notificationService.MarkAsRead(c.Context(), sess, id); err != nil {
		return respondUpstreamError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	sess := middleware.GetSession(c)
	if err := h.notificationService.MarkAllAsRead(c.Context(), sess); err != nil {
		return respondUpstreamError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid notification id"})
	}

	sess := middleware.GetSession(c)
	if err := h.notificationService.DeleteNotification(c.Context(), sess, id); err != nil {
		return respondUpstreamError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
