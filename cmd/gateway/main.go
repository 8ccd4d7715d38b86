package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/cache"
	"github.com/creatorhub/gateway/internal/config"
	"github.com/creatorhub/gateway/internal/db"
	"github.com/creatorhub/gateway/internal/events"
	apphttp "github.com/creatorhub/gateway/internal/http"
	"github.com/creatorhub/gateway/internal/http/handlers"
	"github.com/creatorhub/gateway/internal/linkpreview"
	"github.com/creatorhub/gateway/internal/outbox"
	"github.com/creatorhub/gateway/internal/repositories"
	"github.com/creatorhub/gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Upstream platform API client and repositories
	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, log)
	authRepo := repositories.NewAuthRepo(client)
	campaignRepo := repositories.NewCampaignRepo(client)
	applicationRepo := repositories.NewApplicationRepo(client)
	contractRepo := repositories.NewContractRepo(client)
	notificationRepo := repositories.NewNotificationRepo(client)
	chatRepo := repositories.NewChatRepo(client)

	// State mirror and push events
	store := cache.NewRedisStore(rdb, cfg.CacheTTL, log)
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	wsHub := handlers.NewWSHub(cfg, log)
	outboxRepo := outbox.NewRepo(pool)
	codeGuard := services.NewRedisCodeGuard(rdb, cfg.OAuthCodeTTL)
	authService := services.NewAuthService(authRepo, codeGuard, log)
	campaignService := services.NewCampaignService(campaignRepo, log)
	applicationService := services.NewApplicationService(applicationRepo, contractRepo, campaignRepo, outboxRepo, log)
	chatService := services.NewChatService(chatRepo, store, wsHub, log)
	notificationService := services.NewNotificationService(notificationRepo, store, chatService, cfg.NotificationsPerPage, log)
	dispatcher := services.NewPushDispatcher(subscriber, notificationService, chatService, wsHub, log)

	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal("failed to subscribe to push channels", zap.Error(err))
	}

	// Handlers
	previewFetcher := linkpreview.NewFetcher(cfg.PreviewFetchTimeoutMS, cfg.PreviewFetchMaxRetries, log)
	authHandler := handlers.NewAuthHandler(authService, cfg, log)
	campaignHandler := handlers.NewCampaignHandler(campaignService, log)
	applicationHandler := handlers.NewApplicationHandler(applicationService, log)
	notificationHandler := handlers.NewNotificationHandler(notificationService, log)
	chatHandler := handlers.NewChatHandler(chatService, log)
	previewHandler := handlers.NewPreviewHandler(previewFetcher, cfg.PreviewAllowedDomains, log)
	hookHandler := handlers.NewHookHandler(publisher, cfg.BackendServiceToken, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb,
		authHandler, campaignHandler, applicationHandler,
		notificationHandler, chatHandler, previewHandler, hookHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting gateway server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
