package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/creatorhub/gateway/internal/events"
	"github.com/creatorhub/gateway/internal/http/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HookHandler receives push events from the platform backend and fans them
// out over the per-user Redis channels. Publishing instead of dispatching
// directly keeps every gateway instance in sync when more than one is
// running.
type HookHandler struct {
	publisher    events.Publisher
	serviceToken string
	log          *zap.Logger
}

func NewHookHandler(publisher events.Publisher, serviceToken string, log *zap.Logger) *HookHandler {
	return &HookHandler{publisher: publisher, serviceToken: serviceToken, log: log}
}

type hookEventRequest struct {
	UserID uuid.UUID    `json:"user_id"`
	Event  events.Event `json:"event"`
}

func (h *HookHandler) Receive(c *fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if h.serviceToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.serviceToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid service token"})
	}

	var req hookEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.UserID == uuid.Nil || req.Event.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "user_id and event.type are required"})
	}

	if err := h.publisher.Publish(c.Context(), events.UserChannel(req.UserID), req.Event); err != nil {
		h.log.Error("failed to publish push event",
			zap.String("user_id", req.UserID.String()),
			zap.String("type", req.Event.Type),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "publish failed"})
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.SuccessResponse{OK: true})
}
