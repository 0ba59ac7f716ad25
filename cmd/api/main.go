// Command api is the Nudge notification engine server.
//
// Usage:
//
//	nudge-api
//	API_PORT=8080 STORE_DRIVER=sqlite nudge-api

// @title Nudge Notification Engine
// @version 1.0.0
// @description Proactive notification scheduling for the fitness app: hydration pace, meal timing, missed workouts and the evening summary.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Nudge
// @license.name MIT
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/nudge/internal/api"
	"github.com/albapepper/nudge/internal/auth"
	"github.com/albapepper/nudge/internal/cache"
	"github.com/albapepper/nudge/internal/config"
	"github.com/albapepper/nudge/internal/listener"
	"github.com/albapepper/nudge/internal/maintenance"
	"github.com/albapepper/nudge/internal/notifications"
	"github.com/albapepper/nudge/internal/store"

	_ "github.com/albapepper/nudge/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if cfg.CronSecret == "" {
		logger.Warn("CRON_SECRET is not set; /notifications/run will refuse every call")
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; /notifications/check will refuse every call")
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Open store
	logger.Info("Connecting to store...", "driver", cfg.StoreDriver)
	backend, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Engine and batch runner
	engine := notifications.NewEngine(backend, cfg.Location(), logger)
	runner := notifications.NewRunner(engine, notifications.RunnerConfig{
		Workers:      cfg.BatchWorkers,
		UserTimeout:  cfg.UserTimeout,
		BatchTimeout: cfg.BatchTimeout,
	}, logger)

	// Start LISTEN/NOTIFY consumer for profile and log changes
	if cfg.ListenEnabled && cfg.StoreDriver == config.DriverPostgres {
		go listener.Start(ctx, cfg.DatabaseURL, listener.NewDispatcher(engine, cfg.UserTimeout, logger), logger)
	}

	// Start maintenance tickers (cleanup, optional in-process sweep)
	go maintenance.Start(ctx, backend, runner, maintenance.Config{
		CleanupInterval: cfg.CleanupInterval,
		Retention:       time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		SweepInterval:   cfg.SweepInterval,
		OnSweep:         maintenance.CacheLastRun(appCache),
	}, logger)

	// Create router
	router := api.NewRouter(api.Deps{
		Engine:   engine,
		Runner:   runner,
		DB:       backend,
		Cache:    appCache,
		Resolver: auth.NewResolver(cfg.JWTSecret, cfg.JWTIssuer),
		Logger:   logger,
	}, cfg)

	// Create HTTP server. WriteTimeout leaves room for a full batch sweep.
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.BatchTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Nudge API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
