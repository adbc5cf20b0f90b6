package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		flag      bool
		score     float64
		cluster   int
		wantScore int
		wantLevel Level
	}{
		{"all clear", false, 0.05, 1, 0, LevelLow},
		{"outlier only", true, 0.05, 1, 40, LevelMedium},
		{"deviation only", false, 0.20, 1, 10, LevelLow},
		{"high-risk cluster only", false, 0.05, 6, 20, LevelLow},
		{"outlier plus deviation", true, 0.16, 1, 50, LevelMedium},
		{"outlier plus cluster", true, 0.05, 7, 60, LevelHigh},
		{"deviation plus cluster", false, 0.30, 6, 30, LevelMedium},
		{"everything", true, 0.20, 7, 70, LevelHigh},
		{"negative score counts by magnitude", false, -0.20, 1, 10, LevelLow},
		{"negative score at cutoff is not a deviation", false, -0.15, 1, 0, LevelLow},
		{"cutoff is exclusive", true, 0.15, 1, 40, LevelMedium},
		{"cluster 8 is not high risk", true, 0.20, 8, 50, LevelMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, level := Classify(tt.flag, tt.score, tt.cluster)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

// The three rules are independent, so the score must always equal the sum
// of the individual contributions and stay within [0, 70].
func TestClassifyAdditive(t *testing.T) {
	flags := []bool{false, true}
	scores := []float64{-0.5, -0.15, 0, 0.1, 0.15, 0.151, 0.5}
	clusters := []int{0, 1, 5, 6, 7, 8, 42}

	for _, flag := range flags {
		for _, s := range scores {
			for _, c := range clusters {
				got, level := Classify(flag, s, c)

				want := 0
				if flag {
					want += 40
				}
				if s > 0.15 || s < -0.15 {
					want += 10
				}
				if c == 6 || c == 7 {
					want += 20
				}
				assert.Equal(t, want, got, "flag=%v score=%v cluster=%d", flag, s, c)
				assert.GreaterOrEqual(t, got, 0)
				assert.LessOrEqual(t, got, 70)
				assert.Equal(t, LevelFor(got), level)
			}
		}
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  Level
	}{
		{0, LevelLow},
		{29, LevelLow},
		{30, LevelMedium}, // lower MEDIUM boundary is inclusive
		{59, LevelMedium},
		{60, LevelHigh}, // lower HIGH boundary is inclusive
		{70, LevelHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), "score=%d", tt.score)
	}
}
