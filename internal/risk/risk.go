// Package risk derives an operational risk classification from scoring
// oracle outputs. Pure functions only — no state, no I/O — so the scoring
// rules can be tested exhaustively.
package risk

import "math"

// Level is a three-bucket risk classification.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Additive score contributions. The maximum attainable score is 70.
const (
	outlierWeight  = 40 // oracle flagged the record an outlier
	deviationWeight = 10 // |anomaly score| above deviationCutoff
	clusterWeight  = 20 // record fell into a high-risk cluster
)

// Minimum absolute anomaly score that counts as a large deviation.
const deviationCutoff = 0.15

// Classification thresholds partition [0, 70] without gaps.
const (
	highMin   = 60
	mediumMin = 30
)

// highRiskClusters is the fixed set of cluster ids from the trained
// partition that historically correlate with operational incidents.
var highRiskClusters = map[int]bool{6: true, 7: true}

// Classify combines the anomaly verdict, continuous anomaly score, and
// cluster assignment into a risk score and level. The rules are additive
// and order-independent.
func Classify(anomalyFlag bool, anomalyScore float64, clusterID int) (int, Level) {
	score := 0
	if anomalyFlag {
		score += outlierWeight
	}
	if math.Abs(anomalyScore) > deviationCutoff {
		score += deviationWeight
	}
	if highRiskClusters[clusterID] {
		score += clusterWeight
	}
	return score, LevelFor(score)
}

// LevelFor buckets a risk score: >= 60 HIGH, >= 30 MEDIUM, else LOW.
func LevelFor(score int) Level {
	switch {
	case score >= highMin:
		return LevelHigh
	case score >= mediumMin:
		return LevelMedium
	default:
		return LevelLow
	}
}
