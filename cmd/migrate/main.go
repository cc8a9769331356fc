package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/foodeasy/backend/config"
	"github.com/foodeasy/backend/internal/database"
	"github.com/foodeasy/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	migrationsDir := flag.String("dir", "migrations", "Directory holding the SQL migrations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(config.GetEnvironment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if *rollback {
		if cfg.DatabaseDriver != "postgres" {
			logger.Fatalw("rollback is only supported on postgres", "driver", cfg.DatabaseDriver)
		}
		db, err := database.New(cfg, logger)
		if err != nil {
			logger.Fatalw("failed to connect to database", "error", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		name, err := database.RollbackLast(ctx, db, *migrationsDir, logger)
		if err != nil {
			logger.Fatalw("rollback failed", "error", err)
		}
		logger.Infow("successfully rolled back migration", "name", name)
		return
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to open database", "error", err)
	}
	if err := database.RunMigrations(db, *migrationsDir, logger); err != nil {
		logger.Fatalw("migrations failed", "error", err)
	}
	logger.Info("all migrations applied successfully")
}
