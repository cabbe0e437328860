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

	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/messaging"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/notify"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/config"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/logging"
)

func main() {
	cfg := config.LoadNotifierConfig()

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel, "notifier")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	mailer, err := notify.NewSMTPMailer(cfg.SMTP, logger)
	if err != nil {
		logger.Fatal("failed to configure mailer", zap.Error(err))
	}
	if cfg.StaffEmail == "" {
		logger.Warn("STAFF_EMAIL is not set; staff notifications are skipped")
	}

	notifications := services.NewNotificationService(mailer, cfg.StaffEmail, logger)
	consumer := messaging.NewConsumer(cfg.RabbitMQURL, cfg.NotificationQueueName, notifications.Handle, logger)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "UP", "component": "notifier"})
	})
	healthMux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if !consumer.Connected() {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "DOWN", "component": "notifier"})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "UP", "component": "notifier"})
	})
	healthServer := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting health server", zap.String("addr", healthServer.Addr))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down health server", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
