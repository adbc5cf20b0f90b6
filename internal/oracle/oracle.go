// Package oracle defines the interface to the externally-trained scoring
// models and an HTTP client for the model-serving sidecar. The models are
// opaque from the pipeline's perspective: one call returns an anomaly
// verdict and score, another assigns a cluster from a fixed partition.
package oracle

import "context"

// Verdict codes returned by the anomaly detector. The detector emits -1
// for records it considers outliers and 1 for normal records.
const (
	VerdictOutlier = -1
	VerdictNormal  = 1
)

// FeatureRecord is the normalized feature shape the models were trained
// on. Field names match the training frame, so JSON tags are capitalized
// the same way.
type FeatureRecord struct {
	WeeklySales  float64 `json:"Weekly_Sales"`
	Temperature  float64 `json:"Temperature"`
	FuelPrice    float64 `json:"Fuel_Price"`
	CPI          float64 `json:"CPI"`
	Unemployment float64 `json:"Unemployment"`
	Store        int     `json:"Store"`
	Dept         int     `json:"Dept"`
	IsHoliday    int     `json:"IsHoliday"`
}

// Verdict is one anomaly-detection result.
type Verdict struct {
	Anomaly int     `json:"anomaly"`       // VerdictOutlier or VerdictNormal
	Score   float64 `json:"anomaly_score"` // signed; magnitude is deviation
}

// IsOutlier reports whether the verdict marks the record an outlier.
func (v Verdict) IsOutlier() bool { return v.Anomaly == VerdictOutlier }

// Oracle scores normalized records. Implementations are stateless per
// call; model loading happens once at construction/readiness time.
type Oracle interface {
	// DetectAnomalies returns one verdict per input record, in order.
	DetectAnomalies(ctx context.Context, records []FeatureRecord) ([]Verdict, error)
	// AssignCluster returns the cluster id for a single record.
	AssignCluster(ctx context.Context, record FeatureRecord) (int, error)
}
