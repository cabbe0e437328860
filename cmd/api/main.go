package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/handler"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/middleware"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/oidc"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/repository"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/storage"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/config"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/logging"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel, "rescue-api")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		logger.Fatal("failed to apply schema", zap.Error(err))
	}
	store := repository.NewStore(db)

	blobs, err := storage.NewAzureBlobStore(cfg.BlobConnectionString, logger)
	if err != nil {
		logger.Fatal("failed to create blob store", zap.Error(err))
	}

	checks := []handler.HealthCheck{{Name: "database", Check: store.Ping}}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// the limiter fails open, so a missing Redis only disables limiting
			logger.Warn("redis unreachable at startup", zap.Error(err))
		}
		limiter = middleware.NewRateLimiter(cfg.RateLimit, rdb, logger)
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	verifier := oidc.NewVerifier(oidc.Config{
		IssuerURL: cfg.AuthIssuerURL,
		Audience:  cfg.AuthAudience,
		CacheTTL:  cfg.AuthJWKSCacheTTL,
	})
	if cfg.AuthIssuerURL == "" || cfg.AuthAudience == "" {
		logger.Warn("AUTH_ISSUER_URL or AUTH_AUDIENCE is not set; protected routes will fail")
	}

	userService := services.NewUserService(store)
	animalService := services.NewAnimalService(store)
	lifecycleService := services.NewLifecycleService(store)
	applicationService := services.NewApplicationService(store)
	fosterService := services.NewFosterService(store)
	mediaService := services.NewMediaService(store, blobs, services.MediaConfig{
		ImagesContainer:    cfg.ImagesContainer,
		DocumentsContainer: cfg.DocumentsContainer,
		UploadTTL:          cfg.SASUploadTTL,
		DownloadTTL:        cfg.SASDownloadTTL,
	}, logger)

	router := handler.NewRouter(handler.RouterDeps{
		Logger:         logger,
		Auth:           middleware.NewAuthMiddleware(verifier, store.Users(), logger),
		RateLimiter:    limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		Health:         handler.NewHealthHandler(logger, checks...),
		Users:          handler.NewUserHandler(userService, logger),
		Animals:        handler.NewAnimalHandler(animalService, logger),
		Lifecycle:      handler.NewLifecycleHandler(lifecycleService, logger),
		Media:          handler.NewMediaHandler(mediaService, logger),
		Applications:   handler.NewApplicationHandler(applicationService, logger),
		Fosters:        handler.NewFosterHandler(fosterService, logger),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errChan:
		logger.Error("server error, shutting down", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
