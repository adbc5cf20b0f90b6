// Package handler provides HTTP handlers for all API endpoints.
package handler

import (
	"context"
	"log/slog"

	"github.com/storepulse/storepulse/internal/cache"
	"github.com/storepulse/storepulse/internal/config"
	"github.com/storepulse/storepulse/internal/facts"
	"github.com/storepulse/storepulse/internal/ingest"
	"github.com/storepulse/storepulse/internal/ws"
)

// Ingester runs the scoring pipeline for one reading.
type Ingester interface {
	Ingest(ctx context.Context, rec ingest.Record) (ingest.Result, error)
}

// FactReader serves the recent-fact query endpoints.
type FactReader interface {
	RecentAnomalies(ctx context.Context, limit int) ([]facts.AnomalyObservation, error)
	RecentAssignments(ctx context.Context, limit int) ([]facts.ClusterAssignment, error)
	RecentAssessments(ctx context.Context, limit int) ([]facts.RiskAssessment, error)
	RecentAlerts(ctx context.Context, limit int) ([]facts.Alert, error)
}

// DBChecker verifies database connectivity for the health endpoint.
type DBChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	ingester Ingester
	readings FactReader
	dbcheck  DBChecker
	hub      *ws.Hub
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(ing Ingester, readings FactReader, dbcheck DBChecker, hub *ws.Hub, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		ingester: ing,
		readings: readings,
		dbcheck:  dbcheck,
		hub:      hub,
		cache:    c,
		cfg:      cfg,
		logger:   logger,
	}
}
