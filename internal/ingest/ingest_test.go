package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/storepulse/internal/facts"
	"github.com/storepulse/storepulse/internal/oracle"
	"github.com/storepulse/storepulse/internal/risk"
)

// fakeOracle returns canned verdicts keyed by store id, or errors.
type fakeOracle struct {
	verdict    oracle.Verdict
	cluster    int
	detectErr  error
	clusterErr error

	mu          sync.Mutex
	detectCalls int
}

func (f *fakeOracle) DetectAnomalies(_ context.Context, records []oracle.FeatureRecord) ([]oracle.Verdict, error) {
	f.mu.Lock()
	f.detectCalls++
	f.mu.Unlock()
	if f.detectErr != nil {
		return nil, f.detectErr
	}
	out := make([]oracle.Verdict, len(records))
	for i := range records {
		out[i] = f.verdict
	}
	return out, nil
}

func (f *fakeOracle) AssignCluster(_ context.Context, _ oracle.FeatureRecord) (int, error) {
	if f.clusterErr != nil {
		return 0, f.clusterErr
	}
	return f.cluster, nil
}

// fakeStore records appended batches; optionally fails.
type fakeStore struct {
	mu      sync.Mutex
	batches []facts.Batch
	err     error
}

func (f *fakeStore) AppendFacts(_ context.Context, b facts.Batch) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.batches = append(f.batches, b)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) all() []facts.Batch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]facts.Batch(nil), f.batches...)
}

// fakeBroadcaster records dispatched tasks synchronously.
type fakeBroadcaster struct {
	mu    sync.Mutex
	tasks []broadcastJob
}

func (f *fakeBroadcaster) Dispatch(record Record, result Result, alert *AlertNotice) {
	f.mu.Lock()
	f.tasks = append(f.tasks, broadcastJob{record: record, result: result, alert: alert})
	f.mu.Unlock()
}

func (f *fakeBroadcaster) all() []broadcastJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]broadcastJob(nil), f.tasks...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func sampleRecord() Record {
	return Record{
		Timestamp:    "2024-11-08T14:30:00Z",
		Store:        4,
		Dept:         12,
		WeeklySales:  24500.50,
		Temperature:  21.3,
		FuelPrice:    3.12,
		CPI:          211.4,
		Unemployment: 6.5,
		IsHoliday:    0,
	}
}

func TestIngestHighRisk(t *testing.T) {
	o := &fakeOracle{verdict: oracle.Verdict{Anomaly: oracle.VerdictOutlier, Score: 0.20}, cluster: 7}
	store := &fakeStore{}
	bc := &fakeBroadcaster{}
	p := NewPipeline(o, store, bc, testLogger())

	result, err := p.Ingest(context.Background(), sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, oracle.VerdictOutlier, result.Anomaly)
	assert.Equal(t, 0.20, result.AnomalyScore)
	assert.Equal(t, 7, result.Cluster)
	assert.Equal(t, 70, result.RiskScore)
	assert.Equal(t, risk.LevelHigh, result.RiskLevel)

	batches := store.all()
	require.Len(t, batches, 1)
	b := batches[0]

	assert.Equal(t, "2024-11-08T14:30:00Z", b.Observation.Timestamp)
	assert.Equal(t, 24500.50, b.Observation.Value)
	assert.True(t, b.Observation.IsAnomaly)

	assert.Equal(t, 4, b.Assignment.Store)
	assert.Equal(t, 12, b.Assignment.Dept)
	assert.Equal(t, 7, b.Assignment.Cluster)
	assert.Contains(t, string(b.Assignment.Features), `"Weekly_Sales":24500.5`)

	// The assessment must mirror the observation and assignment.
	assert.Equal(t, oracle.VerdictOutlier, b.Assessment.Anomaly)
	assert.Equal(t, b.Assignment.Cluster, b.Assessment.Cluster)
	assert.Equal(t, risk.LevelHigh, b.Assessment.Level)
	assert.Equal(t, 70, b.Assessment.Score)

	require.NotNil(t, b.Alert)
	assert.Equal(t, AlertMessage, b.Alert.Message)
	assert.Equal(t, 70, b.Alert.RiskScore)

	tasks := bc.all()
	require.Len(t, tasks, 1)
	assert.Equal(t, result, tasks[0].result)
	require.NotNil(t, tasks[0].alert)
	assert.Equal(t, AlertMessage, tasks[0].alert.Message)
	assert.Equal(t, 70, tasks[0].alert.RiskScore)
}

func TestIngestLowRisk(t *testing.T) {
	o := &fakeOracle{verdict: oracle.Verdict{Anomaly: oracle.VerdictNormal, Score: 0.05}, cluster: 1}
	store := &fakeStore{}
	bc := &fakeBroadcaster{}
	p := NewPipeline(o, store, bc, testLogger())

	result, err := p.Ingest(context.Background(), sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, 0, result.RiskScore)
	assert.Equal(t, risk.LevelLow, result.RiskLevel)

	batches := store.all()
	require.Len(t, batches, 1)
	assert.False(t, batches[0].Observation.IsAnomaly)
	assert.Nil(t, batches[0].Alert, "no alert fact below HIGH")

	tasks := bc.all()
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].alert, "no alert notification below HIGH")
}

func TestIngestMediumRisk(t *testing.T) {
	o := &fakeOracle{verdict: oracle.Verdict{Anomaly: oracle.VerdictOutlier, Score: 0.05}, cluster: 1}
	p := NewPipeline(o, &fakeStore{}, &fakeBroadcaster{}, testLogger())

	result, err := p.Ingest(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, 40, result.RiskScore)
	assert.Equal(t, risk.LevelMedium, result.RiskLevel)
}

func TestIngestOracleFailure(t *testing.T) {
	tests := []struct {
		name   string
		oracle *fakeOracle
	}{
		{"detect fails", &fakeOracle{detectErr: errors.New("connection refused")}},
		{"cluster fails", &fakeOracle{verdict: oracle.Verdict{Anomaly: oracle.VerdictNormal}, clusterErr: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			bc := &fakeBroadcaster{}
			p := NewPipeline(tt.oracle, store, bc, testLogger())

			_, err := p.Ingest(context.Background(), sampleRecord())
			require.ErrorIs(t, err, ErrOracle)

			assert.Empty(t, store.all(), "no facts persisted on oracle failure")
			assert.Empty(t, bc.all(), "no broadcast on oracle failure")
		})
	}
}

func TestIngestPersistenceFailure(t *testing.T) {
	o := &fakeOracle{verdict: oracle.Verdict{Anomaly: oracle.VerdictNormal, Score: 0.05}, cluster: 1}
	store := &fakeStore{err: errors.New("connection reset")}
	bc := &fakeBroadcaster{}
	p := NewPipeline(o, store, bc, testLogger())

	_, err := p.Ingest(context.Background(), sampleRecord())
	require.ErrorIs(t, err, ErrStore)
	assert.Empty(t, bc.all(), "no broadcast when the summary is never produced")
}

// Concurrent calls for different store/department pairs must produce
// independent, correctly-attributed fact sets.
func TestIngestConcurrentAttribution(t *testing.T) {
	o := &fakeOracle{verdict: oracle.Verdict{Anomaly: oracle.VerdictNormal, Score: 0.05}, cluster: 1}
	store := &fakeStore{}
	bc := &fakeBroadcaster{}
	p := NewPipeline(o, store, bc, testLogger())

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := sampleRecord()
			rec.Store = i + 1
			rec.Dept = 100 + i
			rec.WeeklySales = float64(1000 * (i + 1))
			_, err := p.Ingest(context.Background(), rec)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	batches := store.all()
	require.Len(t, batches, n)

	seen := make(map[string]bool)
	for _, b := range batches {
		key := fmt.Sprintf("%d/%d", b.Assignment.Store, b.Assignment.Dept)
		assert.False(t, seen[key], "duplicate fact set for %s", key)
		seen[key] = true

		// No cross-talk: the assessment and assignment of one call must
		// carry the same attribution, and the observation must carry that
		// call's sales value.
		assert.Equal(t, b.Assignment.Store, b.Assessment.Store)
		assert.Equal(t, b.Assignment.Dept, b.Assessment.Dept)
		assert.Equal(t, float64(1000*b.Assignment.Store), b.Observation.Value)
	}
	assert.Len(t, bc.all(), n)
}
