package flashcard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/wordflash/internal/flashcard"
)

func TestEstimateQuality(t *testing.T) {
	tests := []struct {
		name        string
		accuracy    float64
		responseMs  float64
		referenceMs float64
		expected    int
	}{
		{name: "perfect accuracy", accuracy: 1.0, responseMs: 1000, referenceMs: 1000, expected: 5},
		{name: "accuracy threshold 0.95", accuracy: 0.95, responseMs: 1000, referenceMs: 1000, expected: 5},
		{name: "good accuracy", accuracy: 0.9, responseMs: 1000, referenceMs: 1000, expected: 4},
		{name: "pass accuracy", accuracy: 0.7, responseMs: 1000, referenceMs: 1000, expected: 3},
		{name: "hard accuracy", accuracy: 0.5, responseMs: 1000, referenceMs: 1000, expected: 2},
		{name: "failed accuracy", accuracy: 0.2, responseMs: 1000, referenceMs: 1000, expected: 1},
		{name: "fast and accurate bumps to perfect", accuracy: 0.86, responseMs: 700, referenceMs: 1000, expected: 5},
		{name: "fast but inaccurate is not bumped", accuracy: 0.75, responseMs: 200, referenceMs: 1000, expected: 3},
		{name: "slow pass is penalized", accuracy: 0.75, responseMs: 2000, referenceMs: 1000, expected: 2},
		{name: "slow failure floors at one", accuracy: 0.1, responseMs: 5000, referenceMs: 1000, expected: 1},
		{name: "slow but accurate is not penalized", accuracy: 0.9, responseMs: 5000, referenceMs: 1000, expected: 4},
		{name: "zero reference skips speed", accuracy: 0.75, responseMs: 9000, referenceMs: 0, expected: 3},
		{name: "negative reference skips speed", accuracy: 0.9, responseMs: 10, referenceMs: -1, expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, flashcard.EstimateQuality(tt.accuracy, tt.responseMs, tt.referenceMs))
		})
	}
}

func TestEstimateQuality_MonotonicInAccuracy(t *testing.T) {
	for _, ratio := range []float64{0, 0.5, 0.7, 1.0, 1.5, 2.0, 3.0} {
		prev := flashcard.MinQuality
		for acc := 0.0; acc <= 1.0; acc += 0.01 {
			q := flashcard.EstimateQuality(acc, ratio*1000, 1000)
			assert.GreaterOrEqual(t, q, prev, "accuracy %.2f ratio %.1f", acc, ratio)
			assert.GreaterOrEqual(t, q, flashcard.MinQuality)
			assert.LessOrEqual(t, q, flashcard.MaxQuality)
			prev = q
		}
	}
}
