package http

import (
	"time"

	"github.com/creatorhub/gateway/internal/config"
	"github.com/creatorhub/gateway/internal/http/handlers"
	"github.com/creatorhub/gateway/internal/middleware"
	"github.com/creatorhub/gateway/internal/rbac"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	campaignHandler *handlers.CampaignHandler,
	applicationHandler *handlers.ApplicationHandler,
	notificationHandler *handlers.NotificationHandler,
	chatHandler *handlers.ChatHandler,
	previewHandler *handlers.PreviewHandler,
	hookHandler *handlers.HookHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Socket-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/oauth/callback", authHandler.OAuthCallback)

	// Platform push ingress (service token auth, not user JWT)
	api.Post("/hooks/events", hookHandler.Receive)

	// Rate-limited endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Campaigns
	protected.Get("/campaigns", campaignHandler.ListCampaigns)
	protected.Get("/campaigns/:id", campaignHandler.GetCampaign)
	protected.Post("/campaigns/:id/apply",
		middleware.RequirePermission(rbac.PermApplyToCampaign), campaignHandler.Apply)

	// Applications (brand side)
	protected.Get("/campaigns/:id/applications",
		middleware.RequirePermission(rbac.PermViewApplications), applicationHandler.ListByCampaign)
	protected.Patch("/campaigns/:id/applications/:appId",
		middleware.RequirePermission(rbac.PermDecideApplication), applicationHandler.Decide)

	// Notifications
	protected.Get("/notifications", notificationHandler.List)
	protected.Put("/notifications/read-all", notificationHandler.MarkAllRead)
	protected.Put("/notifications/:id/read", notificationHandler.MarkRead)
	protected.Delete("/notifications/:id", notificationHandler.Delete)

	// Chat
	protected.Get("/chats", chatHandler.ListChats)
	protected.Get("/chats/:roomId/messages", chatHandler.OpenChat)
	protected.Post("/chats/:roomId/messages", chatHandler.SendMessage)
	protected.Post("/chats/:roomId/files", chatHandler.SendFile)

	// Link previews for portfolio cards
	protected.Get("/preview", previewHandler.Preview)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
