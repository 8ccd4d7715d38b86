package handlers

import (
	"errors"

	"github.com/creatorhub/gateway/internal/auth"
	"github.com/creatorhub/gateway/internal/config"
	"github.com/creatorhub/gateway/internal/http/dto"
	"github.com/creatorhub/gateway/internal/repositories"
	"github.com/creatorhub/gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
	log         *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, log: log}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	result, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrMissingCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return respondUpstreamError(c, err)
	}

	return h.issueSession(c, result)
}

// OAuthCallback exchanges a provider authorization code for a session. A
// code that was already processed gets 409 instead of a second exchange.
func (h *AuthHandler) OAuthCallback(c *fiber.Ctx) error {
	var req dto.OAuthCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	result, err := h.authService.HandleOAuthCallback(c.Context(), req.Provider, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCredentials):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "code is required"})
		case errors.Is(err, services.ErrCodeAlreadyUsed):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "authorization code already processed"})
		}
		return respondUpstreamError(c, err)
	}

	return h.issueSession(c, result)
}

func (h *AuthHandler) issueSession(c *fiber.Ctx, result *repositories.LoginResult) error {
	token, err := auth.GenerateJWT(h.cfg.JWTSecret, result.User.ID, result.User.Role, result.Token, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.AuthResponse{
		Token: token,
		User:  result.User,
	})
}
