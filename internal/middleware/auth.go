package middleware

import (
	"strings"

	"github.com/creatorhub/gateway/internal/auth"
	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/config"
	"github.com/creatorhub/gateway/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CtxUserID  = "user_id"
	CtxRole    = "role"
	CtxSession = "backend_session"
)

// AuthMiddleware validates the gateway JWT and assembles the upstream session
// for the request: the user's upstream bearer token from the claims plus the
// X-Socket-ID correlation header the client sends so the platform can skip
// echoing events back to their originator.
func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxRole, claims.Role)
		c.Locals(CtxSession, backend.Session{
			UserID:   claims.UserID,
			Token:    claims.BackendToken,
			SocketID: c.Get("X-Socket-ID"),
		})

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	return id
}

func GetRole(c *fiber.Ctx) string {
	role, _ := c.Locals(CtxRole).(string)
	return role
}

func GetSession(c *fiber.Ctx) backend.Session {
	s, _ := c.Locals(CtxSession).(backend.Session)
	return s
}

// RequirePermission gates a route on the caller's role.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rbac.HasPermission(GetRole(c), permission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permissions"})
		}
		return c.Next()
	}
}
