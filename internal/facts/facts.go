// Package facts defines the immutable facts the ingestion pipeline derives
// from each reading, and a Postgres store that appends one ingest call's
// facts as a single transaction.
package facts

import (
	"encoding/json"
	"time"

	"github.com/storepulse/storepulse/internal/risk"
)

// AnomalyObservation records the anomaly verdict for one reading.
type AnomalyObservation struct {
	ID        int64     `json:"id,omitempty"`
	Timestamp string    `json:"timestamp"` // caller-supplied, stored as-is
	Value     float64   `json:"value"`     // the observed weekly sales
	Score     float64   `json:"score"`
	IsAnomaly bool      `json:"is_anomaly"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ClusterAssignment records which trained cluster a reading fell into,
// with a snapshot of the full feature set for audit/replay.
type ClusterAssignment struct {
	ID        int64           `json:"id,omitempty"`
	Store     int             `json:"store"`
	Dept      int             `json:"dept"`
	Cluster   int             `json:"cluster"`
	Features  json.RawMessage `json:"features"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

// RiskAssessment records the derived risk classification. Its anomaly and
// cluster fields mirror the observation and assignment from the same call.
type RiskAssessment struct {
	ID        int64      `json:"id,omitempty"`
	Store     int        `json:"store"`
	Dept      int        `json:"dept"`
	Score     int        `json:"risk_score"`
	Level     risk.Level `json:"risk_level"`
	Anomaly   int        `json:"anomaly"` // raw verdict code
	Cluster   int        `json:"cluster"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
}

// Alert is raised when an assessment comes back HIGH. Repeated HIGH
// readings raise repeated alerts; there is no deduplication.
type Alert struct {
	ID        int64     `json:"id,omitempty"`
	Store     int       `json:"store"`
	Dept      int       `json:"dept"`
	Message   string    `json:"message"`
	RiskScore int       `json:"risk_score"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Batch is the complete set of facts derived from one ingest call.
// Alert is nil unless the assessment level is HIGH.
type Batch struct {
	Observation AnomalyObservation
	Assignment  ClusterAssignment
	Assessment  RiskAssessment
	Alert       *Alert
}
