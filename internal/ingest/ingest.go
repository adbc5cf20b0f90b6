// Package ingest implements the scoring pipeline for incoming readings:
// oracle anomaly detection, cluster assignment, risk classification,
// atomic fact persistence, and fire-and-forget broadcast to subscribers.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/storepulse/storepulse/internal/facts"
	"github.com/storepulse/storepulse/internal/oracle"
	"github.com/storepulse/storepulse/internal/risk"
)

// AlertMessage is the human-readable message attached to auto-raised alerts.
const AlertMessage = "High risk detected from IoT update"

// Pipeline failure classes. Both abort the ingest call; nothing is
// persisted or broadcast after either.
var (
	ErrOracle = errors.New("scoring oracle unavailable")
	ErrStore  = errors.New("fact persistence failed")
)

// Record is one incoming reading. Field names on the wire match the
// upstream sensor payload.
type Record struct {
	Timestamp    string  `json:"timestamp"`
	Store        int     `json:"store"`
	Dept         int     `json:"dept"`
	WeeklySales  float64 `json:"Weekly_Sales"`
	Temperature  float64 `json:"Temperature"`
	FuelPrice    float64 `json:"Fuel_Price"`
	CPI          float64 `json:"CPI"`
	Unemployment float64 `json:"Unemployment"`
	IsHoliday    int     `json:"IsHoliday"`
}

// features renames the record into the shape the models were trained on.
// No unit conversion, renaming only.
func (r Record) features() oracle.FeatureRecord {
	return oracle.FeatureRecord{
		WeeklySales:  r.WeeklySales,
		Temperature:  r.Temperature,
		FuelPrice:    r.FuelPrice,
		CPI:          r.CPI,
		Unemployment: r.Unemployment,
		Store:        r.Store,
		Dept:         r.Dept,
		IsHoliday:    r.IsHoliday,
	}
}

// Result is the ingest response summary returned to the caller.
type Result struct {
	Status       string     `json:"status"`
	Anomaly      int        `json:"anomaly"` // raw verdict code: -1 outlier, 1 normal
	AnomalyScore float64    `json:"anomaly_score"`
	Cluster      int        `json:"cluster"`
	RiskLevel    risk.Level `json:"risk_level"`
	RiskScore    int        `json:"risk_score"`
}

// AlertNotice is the broadcast-side alert notification derived from a
// HIGH assessment. Distinct from facts.Alert: it is never persisted.
type AlertNotice struct {
	Store     int    `json:"store"`
	Dept      int    `json:"dept"`
	Message   string `json:"message"`
	RiskScore int    `json:"risk_score"`
}

// FactStore appends one ingest call's facts as a single atomic unit.
type FactStore interface {
	AppendFacts(ctx context.Context, b facts.Batch) error
}

// Broadcaster accepts a broadcast task without blocking the caller and
// without being able to fail the ingest call.
type Broadcaster interface {
	Dispatch(record Record, result Result, alert *AlertNotice)
}

// Pipeline orchestrates one ingest call. Safe for concurrent use.
type Pipeline struct {
	oracle    oracle.Oracle
	store     FactStore
	broadcast Broadcaster
	logger    *slog.Logger
}

// NewPipeline wires the pipeline's collaborators.
func NewPipeline(o oracle.Oracle, store FactStore, broadcast Broadcaster, logger *slog.Logger) *Pipeline {
	return &Pipeline{oracle: o, store: store, broadcast: broadcast, logger: logger}
}

// Ingest scores one reading, persists the derived facts, and hands the
// summary to the broadcaster. The return is not gated on broadcast
// delivery; the dispatched task owns nothing from the caller's context.
func (p *Pipeline) Ingest(ctx context.Context, rec Record) (Result, error) {
	feat := rec.features()

	verdicts, err := p.oracle.DetectAnomalies(ctx, []oracle.FeatureRecord{feat})
	if err != nil {
		ingestTotal.WithLabelValues("oracle_error").Inc()
		return Result{}, fmt.Errorf("%w: %w", ErrOracle, err)
	}
	verdict := verdicts[0]

	cluster, err := p.oracle.AssignCluster(ctx, feat)
	if err != nil {
		ingestTotal.WithLabelValues("oracle_error").Inc()
		return Result{}, fmt.Errorf("%w: %w", ErrOracle, err)
	}

	score, level := risk.Classify(verdict.IsOutlier(), verdict.Score, cluster)

	snapshot, err := json.Marshal(rec)
	if err != nil {
		return Result{}, fmt.Errorf("snapshot features: %w", err)
	}

	batch := facts.Batch{
		Observation: facts.AnomalyObservation{
			Timestamp: rec.Timestamp,
			Value:     rec.WeeklySales,
			Score:     verdict.Score,
			IsAnomaly: verdict.IsOutlier(),
		},
		Assignment: facts.ClusterAssignment{
			Store:    rec.Store,
			Dept:     rec.Dept,
			Cluster:  cluster,
			Features: snapshot,
		},
		Assessment: facts.RiskAssessment{
			Store:   rec.Store,
			Dept:    rec.Dept,
			Score:   score,
			Level:   level,
			Anomaly: verdict.Anomaly,
			Cluster: cluster,
		},
	}
	if level == risk.LevelHigh {
		batch.Alert = &facts.Alert{
			Store:     rec.Store,
			Dept:      rec.Dept,
			Message:   AlertMessage,
			RiskScore: score,
		}
	}

	if err := p.store.AppendFacts(ctx, batch); err != nil {
		ingestTotal.WithLabelValues("store_error").Inc()
		return Result{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	result := Result{
		Status:       "success",
		Anomaly:      verdict.Anomaly,
		AnomalyScore: verdict.Score,
		Cluster:      cluster,
		RiskLevel:    level,
		RiskScore:    score,
	}

	var notice *AlertNotice
	if level == risk.LevelHigh {
		alertsRaised.Inc()
		notice = &AlertNotice{
			Store:     rec.Store,
			Dept:      rec.Dept,
			Message:   AlertMessage,
			RiskScore: score,
		}
	}
	p.broadcast.Dispatch(rec, result, notice)

	ingestTotal.WithLabelValues("success").Inc()
	p.logger.Info("Reading ingested",
		"store", rec.Store,
		"dept", rec.Dept,
		"risk_level", level,
		"risk_score", score,
		"cluster", cluster)
	return result, nil
}
