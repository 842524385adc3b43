package nav

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"
)

func TestSigmaClipMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single", []float64{3}, 3},
		{"identical", []float64{2, 2, 2}, 2},
		{"outlier dropped", []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 10}, 1},
		{"symmetric", []float64{1, 2, 3}, 2},
		// 10 sits 7.17 from the mean: outside 2 population σ (6.87),
		// inside 2 sample σ (7.53).
		{"population window", []float64{0, 0, 1, 3, 3, 10}, 1.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sigmaClipMean(tt.values, 2); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("sigmaClipMean = %v, want %v", got, tt.want)
			}
		})
	}

	if !math.IsNaN(sigmaClipMean(nil, 2)) {
		t.Error("empty input should give NaN")
	}
}

func TestTrimmedMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		fraction float64
		want     float64
	}{
		{"no trim", []float64{1, 2, 3, 10}, 0, 4},
		{"quarter", []float64{100, 1, 2, 3, 4, 5, 6, -100}, 0.25, 3.5},
		{"keeps middle", []float64{5, 1, 9}, 0.49, 5},
		{"one value", []float64{7}, 0.25, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimmedMean(tt.values, tt.fraction); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("trimmedMean = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBandMean(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	// Ranks 3..6 of the sorted values: 4, 5, 6, 7.
	if got := bandMean(values, 0.3, 0.7, 4); got != 5.5 {
		t.Errorf("bandMean = %v, want 5.5", got)
	}
	// Below the minimum size everything is averaged.
	if got := bandMean([]float64{1, 2, 9}, 0.3, 0.7, 4); got != 4 {
		t.Errorf("bandMean small = %v, want 4", got)
	}
}

func TestCircularTrimmedMean(t *testing.T) {
	angles := []unit.Angle{
		unit.AngleFromDeg(358),
		unit.AngleFromDeg(359),
		unit.AngleFromDeg(1),
		unit.AngleFromDeg(2),
	}
	got := circularTrimmedMean(angles, 0.25)
	if d := math.Abs(math.Remainder(got.Deg(), 360)); d > 1e-9 {
		t.Errorf("circularTrimmedMean = %v°, want 0°", got.Deg())
	}
	if got < 0 || got.Rad() >= 2*math.Pi {
		t.Errorf("result %v outside [0, 2π)", got)
	}
}
