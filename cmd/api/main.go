// Command api is the StorePulse analytics API server.
//
// Usage:
//
//	storepulse-api
//	API_PORT=8080 storepulse-api

// @title StorePulse Analytics API
// @version 1.0.0
// @description Retail operations analytics: ingests streaming store sensor readings, scores each for anomaly, cluster membership, and operational risk, persists the derived facts, and pushes results to websocket subscribers in real time.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @license.name MIT
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

	"github.com/storepulse/storepulse/internal/api"
	"github.com/storepulse/storepulse/internal/api/handler"
	"github.com/storepulse/storepulse/internal/cache"
	"github.com/storepulse/storepulse/internal/config"
	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/facts"
	"github.com/storepulse/storepulse/internal/ingest"
	"github.com/storepulse/storepulse/internal/maintenance"
	"github.com/storepulse/storepulse/internal/oracle"
	"github.com/storepulse/storepulse/internal/ws"

	_ "github.com/storepulse/storepulse/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database and ensure fact tables exist
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := facts.NewStore(pool.Pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to ensure schema", "error", err)
		os.Exit(1)
	}
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Scoring oracle sidecar
	oracleClient := oracle.NewClient(cfg.OracleURL, cfg.OracleTimeout)
	if err := oracleClient.Ready(ctx); err != nil {
		// The sidecar may still be loading model artifacts; ingest calls
		// fail with 502 until it comes up.
		logger.Warn("Scoring oracle not ready", "url", cfg.OracleURL, "error", err)
	} else {
		logger.Info("Scoring oracle ready", "url", cfg.OracleURL)
	}

	// Subscriber hub and broadcast dispatcher
	hub := ws.NewHub(cfg.BroadcastQueueSize, logger)
	go hub.Run(ctx)

	dispatcher := ingest.NewDispatcher(hub, cfg.BroadcastQueueSize, logger)
	go dispatcher.Run(ctx)

	// Ingestion pipeline
	pipeline := ingest.NewPipeline(oracleClient, store, dispatcher, logger)

	// Fact log retention sweeper
	go maintenance.Start(ctx, store, maintenance.Config{
		SweepInterval: cfg.RetentionSweepInterval,
		MaxAge:        cfg.RetentionMaxAge,
	}, logger)

	// Cache and router
	appCache := cache.New(cfg.CacheEnabled)
	h := handler.New(pipeline, store, pool, hub, appCache, cfg, logger)
	router := api.NewRouter(h, cfg)

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
		logger.Info("Starting StorePulse API",
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
