// Package app wires configuration into the services shared by the API
// server and the rollover command.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/foodeasy/backend/config"
	"github.com/foodeasy/backend/internal/database"
	"github.com/foodeasy/backend/internal/events"
	"github.com/foodeasy/backend/internal/service"
)

// App holds every constructed service. Close releases them in reverse order.
type App struct {
	Config *config.Config
	Log    *zap.SugaredLogger
	DB     *gorm.DB
	Redis  *redis.Client

	Auth        *service.AuthService
	Store       *service.PlanStore
	Catalog     *service.CatalogService
	Profiles    *service.ProfileService
	Ingredients service.IngredientLookup
	Views       *service.PlanViewService
	Mutations   *service.MutationService
	Generator   *service.PlanGenerator
	Rollover    *service.RolloverService
	Events      service.EventPublisher

	closers []func() error
}

// New opens the database, runs migrations and builds the services.
// Redis, Kafka and S3 are optional and skipped when not configured.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, migrationsDir string) (*App, error) {
	a := &App{Config: cfg, Log: log}

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if err := database.RunMigrations(db, migrationsDir, log); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg, log)
		if err != nil {
			log.Warnw("redis unavailable, continuing without cache and rate limiting", "error", err)
		} else {
			a.Redis = client
			a.closers = append(a.closers, client.Close)
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(events.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}, log)
		a.Events = publisher
		a.closers = append(a.closers, publisher.Close)
	} else {
		a.Events = events.NoopPublisher{}
	}

	planner, closePlanner, err := service.NewPlanner(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create planner: %w", err)
	}
	a.closers = append(a.closers, closePlanner)

	var archiver service.ReportArchiver
	if cfg.ReportBucket != "" {
		s3Cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			log.Warnw("rollover reports will not be archived", "error", err)
		} else {
			archiver = service.NewS3ReportArchiver(s3Cfg, log)
		}
	}

	a.Auth = service.NewAuthService(cfg.JWTSecret)
	a.Store = service.NewPlanStore(db)
	a.Catalog = service.NewCatalogService(db)
	a.Profiles = service.NewProfileService(db)

	a.Ingredients = service.NewIngredientService(db)
	if a.Redis != nil {
		a.Ingredients = service.NewCachedIngredientLookup(a.Ingredients, a.Redis, cfg.IngredientCacheTTL, log)
	}

	a.Views = service.NewPlanViewService(a.Store, a.Ingredients, cfg.MaxViewDates)
	a.Mutations = service.NewMutationService(db, a.Store, a.Catalog, log)
	a.Generator = service.NewPlanGenerator(a.Store, a.Catalog, a.Profiles, planner, a.Events, log)
	a.Rollover = service.NewRolloverService(a.Store, a.Generator, archiver, service.RolloverConfig{
		Workers:      cfg.RolloverWorkers,
		OwnerTimeout: cfg.RolloverOwnerTimeout,
		Interval:     cfg.RolloverInterval,
	}, log)

	return a, nil
}

// PingDB checks the database connection.
func (a *App) PingDB(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases every resource opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
