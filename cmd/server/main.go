// Package main provides the entry point for the review bot server.
package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/reviewflow/reviewbot/internal/config"
	credentialRepository "github.com/reviewflow/reviewbot/internal/credential/repository"
	credentialService "github.com/reviewflow/reviewbot/internal/credential/service"
	"github.com/reviewflow/reviewbot/internal/database"
	"github.com/reviewflow/reviewbot/internal/database/migrate"
	"github.com/reviewflow/reviewbot/internal/dispatch"
	"github.com/reviewflow/reviewbot/internal/health"
	"github.com/reviewflow/reviewbot/internal/middleware"
	"github.com/reviewflow/reviewbot/internal/oauth"
	"github.com/reviewflow/reviewbot/internal/platform"
	queueRepository "github.com/reviewflow/reviewbot/internal/queue/repository"
	queueService "github.com/reviewflow/reviewbot/internal/queue/service"
	settingsRepository "github.com/reviewflow/reviewbot/internal/settings/repository"
	settingsService "github.com/reviewflow/reviewbot/internal/settings/service"
	"github.com/reviewflow/reviewbot/internal/webhook"
	"github.com/reviewflow/reviewbot/internal/workflow/home"
	"github.com/reviewflow/reviewbot/internal/workflow/pullrequest"
	"github.com/reviewflow/reviewbot/pkg/logger"
)

func main() {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	db, err := database.New()
	if err != nil {
		zapLogger.Fatalw("failed to connect to database", "error", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			zapLogger.Errorw("failed to close database connection", "error", closeErr)
		}
	}()

	if err := migrate.Migrate(db); err != nil {
		zapLogger.Fatalw("failed to apply migrations", "error", err)
	}

	api := platform.NewClient(cfg.Platform, zapLogger)

	creds := credentialService.New(
		credentialRepository.New(db), api, cfg.Review.RotationMargin, zapLogger)
	settings := settingsService.New(
		settingsRepository.New(db), cfg.Review.DefaultBranches)
	queue := queueService.New(queueRepository.New(db), settings, zapLogger)

	prModule := pullrequest.NewModule(api, queue, creds, settings, zapLogger)
	homeModule := home.NewModule(api, queue, creds, settings, zapLogger)
	router := dispatch.NewRouter(zapLogger, prModule.Bindings(), homeModule.Bindings())

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	engine.Use(middleware.Logger(zapLogger))
	engine.Use(middleware.Recovery(zapLogger))

	webhook.RegisterRoutes(engine, router, api, zapLogger)
	engine.GET("/oauth/callback", oauth.New(api, creds, zapLogger).Callback)
	engine.GET("/health", health.New(db, zapLogger).Check)

	address := cfg.Server.GetAddress()
	zapLogger.Infow("starting server", "address", address, "gin_mode", cfg.GinMode)
	if err := engine.Run(address); err != nil {
		zapLogger.Fatalw("failed to start server", "error", err)
	}
}
