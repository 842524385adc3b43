package nav

import (
	"math"
	"sort"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/stat"

	"github.com/DanLyss/AstroNavigation/internal/astro"
)

// sigmaClipMean averages the values lying strictly within k population
// standard deviations of their mean. If none do, the plain mean is
// returned. It returns NaN for empty input.
func sigmaClipMean(values []float64, k float64) float64 {
	switch len(values) {
	case 0:
		return math.NaN()
	case 1:
		return values[0]
	}

	mean, std := stat.PopMeanStdDev(values, nil)
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if math.Abs(v-mean) < k*std {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return mean
	}
	return stat.Mean(kept, nil)
}

// trimmedMean sorts values and averages them after dropping the given
// fraction from each end. At least one value is always kept.
func trimmedMean(values []float64, fraction float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	cut := int(fraction * float64(len(sorted)))
	if 2*cut >= len(sorted) {
		cut = (len(sorted) - 1) / 2
	}
	return stat.Mean(sorted[cut:len(sorted)-cut], nil)
}

// bandMean sorts values and averages those whose rank falls in
// [low·n, high·n). Fewer than minSize values are averaged whole.
func bandMean(values []float64, low, high float64, minSize int) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	if len(values) < minSize {
		return stat.Mean(values, nil)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	lo, hi := int(low*n), int(high*n)
	if hi <= lo {
		return stat.Mean(sorted, nil)
	}
	return stat.Mean(sorted[lo:hi], nil)
}

// circularTrimmedMean applies trimmedMean to angles unwrapped around their
// circular mean, returning a result in [0, 2π).
func circularTrimmedMean(angles []unit.Angle, fraction float64) unit.Angle {
	center := astro.CircularMean(angles)
	return astro.NormalizeAngle(unit.Angle(trimmedMean(astro.Unwrap(angles, center), fraction)))
}
