// Command api is the HackHub rounds service: HTTP API, websocket fan-out,
// and the daily round sweep.
//
// Usage:
//
//	hackhub-api
//	API_PORT=8080 hackhub-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/hackhub-dev/hackhub-backend/internal/api"
	"github.com/hackhub-dev/hackhub-backend/internal/auth"
	"github.com/hackhub-dev/hackhub-backend/internal/config"
	"github.com/hackhub-dev/hackhub-backend/internal/db"
	"github.com/hackhub-dev/hackhub-backend/internal/oracle"
	"github.com/hackhub-dev/hackhub-backend/internal/realtime"
	"github.com/hackhub-dev/hackhub-backend/internal/reminder"
	"github.com/hackhub-dev/hackhub-backend/internal/risk"
	"github.com/hackhub-dev/hackhub-backend/internal/store"
	"github.com/hackhub-dev/hackhub-backend/internal/sweep"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	st := store.NewPostgres(pool.Pool)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret, st)

	// Advisory oracle (disabled without an API key)
	oc := oracle.NewClient(cfg.OracleAPIKey, cfg.OracleModel, cfg.OracleTimeout, logger)
	logger.Info("Oracle client initialized", "enabled", oc.Enabled())

	// Core components
	hub := realtime.NewHub(logger)
	engine := risk.NewEngine(st, oc, logger)
	composer := reminder.NewComposer(st, engine, oc, logger)
	sweeper := sweep.New(st, engine, composer, hub, sweep.Config{
		RemindersEnabled: cfg.RemindersEnabled,
		Threshold:        cfg.RiskThreshold,
		Workers:          cfg.SweepWorkers,
		AutoActivate:     cfg.LifecycleAutoActivate,
	}, logger)

	// Daily sweep trigger
	trigger := sweep.NewDailyTrigger(cfg.SweepHourUTC)
	go sweep.Start(ctx, trigger, logger, func(ctx context.Context) {
		sweeper.Run(ctx)
	})
	logger.Info("Daily sweep scheduled", "hour_utc", cfg.SweepHourUTC,
		"reminders_enabled", cfg.RemindersEnabled)

	// Create router
	router := api.NewRouter(pool.Pool, engine, sweeper, hub, verifier, cfg, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting HackHub Rounds API",
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
