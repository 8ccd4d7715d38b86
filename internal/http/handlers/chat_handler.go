package handlers

import (
	"strings"

	"github.com/creatorhub/gateway/internal/http/dto"
	"github.com/creatorhub/gateway/internal/middleware"
	"github.com/creatorhub/gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *services.ChatService
	log         *zap.Logger
}

func NewChatHandler(chatService *services.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	sess := middleware.GetSession(c)
	chats, err := h.chatService.LoadChats(c.Context(), sess)
	if err != nil {
		h.log.Warn("chat list degraded to cached state", zap.Error(err))
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: chats})
}

// OpenChat selects a room: the response is the known history, and the
// refreshed one follows over the websocket once the background fetch lands.
func (h *ChatHandler) OpenChat(c *fiber.Ctx) error {
	roomID := c.Params("roomId")
	if roomID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid room id"})
	}

	sess := middleware.GetSession(c)
	messages, err := h.chatService.SelectChat(c.Context(), sess, roomID)
	if err != nil {
		return respondUpstreamError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: messages})
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	roomID := c.Params("roomId")
	if roomID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid room id"})
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "content is required"})
	}

	sess := middleware.GetSession(c)
	msg, err := h.chatService.SendMessage(c.Context(), sess, roomID, req.Content)
	if err != nil {
		return respondUpstreamError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: msg})
}

func (h *ChatHandler) SendFile(c *fiber.Ctx) error {
	roomID := c.Params("roomId")
	if roomID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid room id"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "unreadable file"})
	}
	defer file.Close()

	caption := c.FormValue("caption")

	sess := middleware.GetSession(c)
	msg, err := h.chatService.SendFile(c.Context(), sess, roomID, caption, fileHeader.Filename, file)
	if err != nil {
		return respondUpstreamError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: msg})
}
