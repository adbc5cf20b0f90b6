package facts

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists and queries facts in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a fact store on an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// schema creates the fact tables. Executed at startup; idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS anomaly_log (
		id         BIGSERIAL PRIMARY KEY,
		ts         TEXT NOT NULL,
		value      DOUBLE PRECISION NOT NULL,
		score      DOUBLE PRECISION NOT NULL,
		is_anomaly BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cluster_log (
		id         BIGSERIAL PRIMARY KEY,
		store      INT NOT NULL,
		dept       INT NOT NULL,
		cluster    INT NOT NULL,
		features   JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS risk_log (
		id         BIGSERIAL PRIMARY KEY,
		store      INT NOT NULL,
		dept       INT NOT NULL,
		risk_score INT NOT NULL,
		risk_level TEXT NOT NULL,
		anomaly    INT NOT NULL,
		cluster    INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id         BIGSERIAL PRIMARY KEY,
		store      INT NOT NULL,
		dept       INT NOT NULL,
		message    TEXT NOT NULL,
		risk_score INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the fact tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// AppendFacts writes one ingest call's facts in a single transaction:
// either all of them are durably recorded or none are.
func (s *Store) AppendFacts(ctx context.Context, b Batch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin fact transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO anomaly_log (ts, value, score, is_anomaly)
		VALUES ($1, $2, $3, $4)`,
		b.Observation.Timestamp, b.Observation.Value, b.Observation.Score, b.Observation.IsAnomaly,
	); err != nil {
		return fmt.Errorf("insert anomaly observation: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO cluster_log (store, dept, cluster, features)
		VALUES ($1, $2, $3, $4)`,
		b.Assignment.Store, b.Assignment.Dept, b.Assignment.Cluster, b.Assignment.Features,
	); err != nil {
		return fmt.Errorf("insert cluster assignment: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO risk_log (store, dept, risk_score, risk_level, anomaly, cluster)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		b.Assessment.Store, b.Assessment.Dept, b.Assessment.Score,
		string(b.Assessment.Level), b.Assessment.Anomaly, b.Assessment.Cluster,
	); err != nil {
		return fmt.Errorf("insert risk assessment: %w", err)
	}

	if b.Alert != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO alerts (store, dept, message, risk_score)
			VALUES ($1, $2, $3, $4)`,
			b.Alert.Store, b.Alert.Dept, b.Alert.Message, b.Alert.RiskScore,
		); err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit fact transaction: %w", err)
	}
	return nil
}

// PruneBefore deletes fact rows created before the cutoff. The fact tables
// are append-only logs; this is the only path that removes rows from them.
// Returns the total number of rows removed across all tables.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tables := []string{"anomaly_log", "cluster_log", "risk_log", "alerts"}

	var total int64
	for _, table := range tables {
		tag, err := s.pool.Exec(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE created_at < $1", table), cutoff)
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

// RecentAnomalies returns the newest anomaly observations, newest first.
func (s *Store) RecentAnomalies(ctx context.Context, limit int) ([]AnomalyObservation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ts, value, score, is_anomaly, created_at
		FROM anomaly_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query anomalies: %w", err)
	}
	defer rows.Close()

	var out []AnomalyObservation
	for rows.Next() {
		var o AnomalyObservation
		if err := rows.Scan(&o.ID, &o.Timestamp, &o.Value, &o.Score, &o.IsAnomaly, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan anomaly: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// RecentAssignments returns the newest cluster assignments, newest first.
func (s *Store) RecentAssignments(ctx context.Context, limit int) ([]ClusterAssignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, store, dept, cluster, features, created_at
		FROM cluster_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var out []ClusterAssignment
	for rows.Next() {
		var a ClusterAssignment
		if err := rows.Scan(&a.ID, &a.Store, &a.Dept, &a.Cluster, &a.Features, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecentAssessments returns the newest risk assessments, newest first.
func (s *Store) RecentAssessments(ctx context.Context, limit int) ([]RiskAssessment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, store, dept, risk_score, risk_level, anomaly, cluster, created_at
		FROM risk_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []RiskAssessment
	for rows.Next() {
		var a RiskAssessment
		if err := rows.Scan(&a.ID, &a.Store, &a.Dept, &a.Score, &a.Level, &a.Anomaly, &a.Cluster, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecentAlerts returns the newest alerts, newest first.
func (s *Store) RecentAlerts(ctx context.Context, limit int) ([]Alert, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, store, dept, message, risk_score, created_at
		FROM alerts ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.Store, &a.Dept, &a.Message, &a.RiskScore, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
