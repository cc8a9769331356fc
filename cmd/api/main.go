package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodeasy/backend/config"
	"github.com/foodeasy/backend/internal/api"
	"github.com/foodeasy/backend/internal/app"
	"github.com/foodeasy/backend/internal/logging"
	"github.com/foodeasy/backend/internal/middleware"
	"github.com/foodeasy/backend/internal/router"
	"github.com/foodeasy/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(config.GetEnvironment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, "migrations")
	if err != nil {
		logger.Fatalw("failed to initialize services", "error", err)
	}
	defer a.Close()

	deps := router.Dependencies{
		Auth:         a.Auth,
		Catalog:      a.Catalog,
		Views:        a.Views,
		Generator:    a.Generator,
		Mutations:    a.Mutations,
		HealthChecks: map[string]api.HealthCheck{"database": a.PingDB},
		CORSOrigins:  cfg.CORSOrigins,
		Log:          logger,
	}
	if a.Redis != nil {
		deps.RateLimiter = middleware.NewPlanMutationRateLimiter(a.Redis, cfg.RateLimitPerHour, logger)
		deps.HealthChecks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}

	if cfg.RolloverInProcess {
		if err := a.Rollover.Start(ctx); err != nil {
			logger.Fatalw("failed to start rollover daemon", "error", err)
		}
	}

	srv := server.New(cfg, router.SetupRouter(deps), logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			logger.Errorw("server error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("server shutdown error", "error", err)
	}
	if err := a.Rollover.Stop(shutdownCtx); err != nil {
		logger.Errorw("rollover shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
