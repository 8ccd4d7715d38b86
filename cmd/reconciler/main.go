package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/config"
	"github.com/creatorhub/gateway/internal/db"
	"github.com/creatorhub/gateway/internal/outbox"
	"github.com/creatorhub/gateway/internal/repositories"
	"go.uber.org/zap"
)

// The reconciler retries contracts that failed to spawn after an approval.
// It runs on a fixed interval with a service credential; the gateway process
// only records the markers.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, log)
	contractRepo := repositories.NewContractRepo(client)
	outboxRepo := outbox.NewRepo(pool)

	session := backend.Session{Token: cfg.BackendServiceToken}
	reconciler := outbox.NewReconciler(outboxRepo, contractRepo, session, cfg.ReconcileMaxAttempts, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
	}()

	log.Info("reconciler started", zap.Duration("interval", cfg.ReconcileInterval))

	ticker := time.NewTicker(cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		if resolved, err := reconciler.Run(ctx); err != nil {
			log.Error("reconciliation pass failed", zap.Error(err))
		} else if resolved > 0 {
			log.Info("reconciliation pass complete", zap.Int("resolved", resolved))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
