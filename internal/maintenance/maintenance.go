// Package maintenance runs periodic background tasks as Go tickers. All
// scheduled work is driven from Go since the API is already a persistent,
// long-running service.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Pruner removes fact rows older than a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	SweepInterval time.Duration // retention sweep over the fact logs
	MaxAge        time.Duration // rows older than this are deleted
}

// Start launches the configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, pruner Pruner, cfg Config, logger *slog.Logger) {
	if cfg.SweepInterval <= 0 || cfg.MaxAge <= 0 {
		logger.Info("Retention sweeper disabled")
		return
	}

	logger.Info("Retention sweeper started",
		"interval", cfg.SweepInterval, "max_age", cfg.MaxAge)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweep(ctx, pruner, cfg.MaxAge, logger)
		case <-ctx.Done():
			logger.Info("Retention sweeper stopped")
			return
		}
	}
}

func sweep(ctx context.Context, pruner Pruner, maxAge time.Duration, logger *slog.Logger) {
	cutoff := time.Now().Add(-maxAge)
	removed, err := pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		logger.Warn("Retention sweep failed", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("Retention sweep pruned old facts", "rows", removed, "cutoff", cutoff)
	}
}
