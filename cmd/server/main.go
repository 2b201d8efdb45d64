package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/juveboxd-backend/config"
	"github.com/ikkim/juveboxd-backend/internal/app"
	"github.com/ikkim/juveboxd-backend/internal/app/controller"
	"github.com/ikkim/juveboxd-backend/internal/app/service"
	"github.com/ikkim/juveboxd-backend/internal/router"
	"github.com/ikkim/juveboxd-backend/internal/scheduler"
	"github.com/ikkim/juveboxd-backend/internal/storage"
	"github.com/ikkim/juveboxd-backend/internal/websocket"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Log.Level
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: true,
	})

	logger.Info("Starting JUVEBOXD Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"backend":     cfg.Store.Backend,
		"log_level":   logLevel,
	})

	// Open the review backend
	backend, err := app.OpenBackend(cfg)
	if err != nil {
		logger.Fatal("Failed to open review backend", err)
	}
	defer backend.Close()

	// Live feed
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	reviewService := service.NewReviewService(backend.Store, hub)

	// Snapshots are only taken when a bucket is configured
	if cfg.S3.Bucket != "" {
		snapshots := scheduler.NewSnapshotScheduler(cfg.Snapshot.Cron, reviewService, storage.NewS3Storage(cfg.S3))
		if err := snapshots.Start(); err != nil {
			logger.Fatal("Failed to start snapshot scheduler", err)
		}
		defer snapshots.Stop()
	} else {
		logger.Info("AWS_S3_BUCKET not set, review snapshots disabled", nil)
	}

	reviewController := controller.NewReviewController(reviewService, hub, cfg.CORS.AllowedOrigins)
	engine := router.NewRouter(reviewController, cfg).Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
