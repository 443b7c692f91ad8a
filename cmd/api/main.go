package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/drinkbook/backend/config"
	"github.com/pageza/drinkbook/backend/internal/api"
	"github.com/pageza/drinkbook/backend/internal/database"
	"github.com/pageza/drinkbook/backend/internal/logging"
	"github.com/pageza/drinkbook/backend/internal/middleware"
	"github.com/pageza/drinkbook/backend/internal/router"
	"github.com/pageza/drinkbook/backend/internal/server"
	"github.com/pageza/drinkbook/backend/internal/service"
	"github.com/pageza/drinkbook/backend/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		// No configured logger yet.
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("failed to create logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := database.RunMigrations(ctx, db, logger); err != nil {
		return err
	}
	if err := database.Seed(ctx, db); err != nil {
		return err
	}

	recipes := service.NewRecipeService(db)
	authService := service.NewAuthService(db, cfg.JWTSecret)
	if cfg.AdminEmail != "" {
		if _, err := authService.EnsureUser(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
		logger.Info("bartender account ready", zap.String("email", strings.ToLower(cfg.AdminEmail)))
	}

	deps := api.Deps{
		Recipes: recipes,
		Auth:    authService,
	}

	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg, logger)
		if err != nil {
			logger.Warn("redis unavailable, recipe creation is not rate limited", zap.Error(err))
		} else {
			defer client.Close()
			deps.CreateLimit = middleware.NewRecipeCreationRateLimiter(client, logger).RateLimitMiddleware()
		}
	}

	if cfg.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return err
		}
		deps.Images = service.NewImageService(s3cfg.Client, s3cfg.BucketName, cfg.ImageBaseURL, recipes, logger)
		logger.Info("recipe image uploads enabled", zap.String("bucket", s3cfg.BucketName))
	}

	hub := websocket.NewHub(cfg.CORSOrigins, logger)
	deps.Events = hub
	deps.Socket = hub.ServeWS

	handler := router.SetupRouter(deps, cfg.CORSOrigins, logger)
	srv := server.New(cfg.Addr(), handler, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Start(gctx)
	})
	return g.Wait()
}
