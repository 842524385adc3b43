// Package astro provides the spherical-astronomy primitives used by the
// navigation solver: angle normalization, sidereal time, coordinate
// transforms, the Sun's right ascension and the equation of time.
package astro

import (
	"math"

	"github.com/soniakeys/unit"
)

// Normalize maps x into the half-open interval [lower, upper).
// Applying it twice gives the same result as applying it once.
func Normalize(x, lower, upper float64) float64 {
	width := upper - lower
	if width <= 0 {
		return x
	}
	r := math.Mod(x-lower, width)
	if r < 0 {
		r += width
	}
	// Mod can round up to width for tiny negative inputs.
	if r >= width {
		r = 0
	}
	return lower + r
}

// NormalizeAngle maps an angle into [0, 2π).
func NormalizeAngle(a unit.Angle) unit.Angle {
	return unit.Angle(Normalize(a.Rad(), 0, 2*math.Pi))
}

// WrapAngle maps an angle into [-π, π).
func WrapAngle(a unit.Angle) unit.Angle {
	return unit.Angle(Normalize(a.Rad(), -math.Pi, math.Pi))
}

// ClampTolerance is how far outside [-1, 1] an asin/acos argument may drift
// from rounding before it is treated as invalid.
const ClampTolerance = 1e-9

// ClampUnit clamps v into [-1, 1]. The second result is false when v lies
// outside the interval by more than ClampTolerance, or is not finite.
func ClampUnit(v float64) (float64, bool) {
	switch {
	case math.IsNaN(v):
		return v, false
	case v > 1:
		return 1, v-1 <= ClampTolerance
	case v < -1:
		return -1, -1-v <= ClampTolerance
	}
	return v, true
}

// Asin is math.Asin with its argument clamped to [-1, 1].
func Asin(v float64) unit.Angle {
	c, _ := ClampUnit(v)
	return unit.Angle(math.Asin(c))
}

// Acos is math.Acos with its argument clamped to [-1, 1].
func Acos(v float64) unit.Angle {
	c, _ := ClampUnit(v)
	return unit.Angle(math.Acos(c))
}

// AngularSeparation returns the great-circle distance between two points on
// the celestial sphere. The haversine form stays accurate for small angles.
func AngularSeparation(ra1, dec1, ra2, dec2 unit.Angle) unit.Angle {
	dRA := ra2.Rad() - ra1.Rad()
	dDec := dec2.Rad() - dec1.Rad()

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		dec1.Cos()*dec2.Cos()*math.Sin(dRA/2)*math.Sin(dRA/2)

	// Clamp to avoid numerical errors with asin
	if a > 1 {
		a = 1
	}

	return unit.Angle(2 * math.Asin(math.Sqrt(a)))
}

// CircularMean returns the mean direction of a set of angles, in [0, 2π).
func CircularMean(angles []unit.Angle) unit.Angle {
	var s, c float64
	for _, a := range angles {
		s += a.Sin()
		c += a.Cos()
	}
	return NormalizeAngle(unit.Angle(math.Atan2(s, c)))
}

// Unwrap returns the angles shifted by whole turns so that each lies within
// π of center. Arithmetic statistics on the result are then meaningful.
func Unwrap(angles []unit.Angle, center unit.Angle) []float64 {
	out := make([]float64, len(angles))
	for i, a := range angles {
		out[i] = center.Rad() + WrapAngle(a-center).Rad()
	}
	return out
}
