package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/foodeasy/backend/config"
	"github.com/foodeasy/backend/internal/database"
	"github.com/foodeasy/backend/internal/logging"
	"github.com/foodeasy/backend/internal/service"
)

func main() {
	if config.IsProduction() {
		log.Fatal("refusing to seed demo data in production")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(config.GetEnvironment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to open database", "error", err)
	}
	if err := database.RunMigrations(db, "migrations", logger); err != nil {
		logger.Fatalw("migrations failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := database.SeedDemoData(ctx, db, logger)
	if err != nil {
		logger.Fatalw("seeding failed", "error", err)
	}

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set, skipping demo tokens")
		return
	}
	auth := service.NewAuthService(cfg.JWTSecret)
	for _, id := range result.Profiles {
		token, err := auth.GenerateToken(id, service.DefaultTokenTTL)
		if err != nil {
			logger.Fatalw("failed to sign token", "user_id", id, "error", err)
		}
		fmt.Printf("%s %s\n", id, token)
	}
}
