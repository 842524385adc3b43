package nav

import (
	"math"
	"time"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/astro"
)

// LongitudeResult holds the aggregated longitude and the per-star estimates
// it was built from.
type LongitudeResult struct {
	Longitude unit.Angle // [-π, π), east positive
	Estimates []unit.Angle
	Skipped   int
}

// HourAngle returns the star's local hour angle, in [0, 2π), from its
// altitude, declination and the observer latitude. Azimuth is measured from
// north, so a star in the eastern half of the sky has not yet transited and
// its hour angle is negative. ok is false when the geometry is inconsistent
// beyond rounding.
func HourAngle(s ProjectedStar, lat unit.Angle) (unit.Angle, bool) {
	den := lat.Cos() * s.Dec.Cos()
	if math.Abs(den) < 1e-12 {
		return 0, false
	}
	cosH, ok := astro.ClampUnit((s.Alt.Sin() - lat.Sin()*s.Dec.Sin()) / den)
	if !ok {
		return 0, false
	}
	h := math.Acos(cosH)
	if astro.NormalizeAngle(s.Az) < math.Pi {
		h = 2*math.Pi - h
	}
	return unit.Angle(h), true
}

// LongitudeEstimate converts one star's hour angle into an observer
// longitude using the Sun's right ascension and the equation of time at t.
func LongitudeEstimate(h, ra, sunRA unit.Angle, eotHours float64, t time.Time) unit.Angle {
	lst := h + ra
	apparent := astro.Normalize(12+(lst-sunRA).Rad()*12/math.Pi, 0, 24)
	mean := apparent - eotHours
	lonDeg := astro.Normalize(15*(mean-astro.UTCHours(t)), -180, 180)
	return unit.AngleFromDeg(lonDeg)
}

// SolveLongitude estimates longitude from every star with absolute azimuth
// and averages the central band of the sorted estimates.
func SolveLongitude(stars []ProjectedStar, lat unit.Angle, t time.Time, cfg Config) (LongitudeResult, error) {
	t = t.UTC()
	sunRA := astro.SunRA(t)
	eot := astro.EquationOfTime(t, cfg.EquationOfTime)

	var result LongitudeResult
	for _, s := range stars {
		h, ok := HourAngle(s, lat)
		if !ok {
			result.Skipped++
			continue
		}
		result.Estimates = append(result.Estimates, LongitudeEstimate(h, s.RA, sunRA, eot, t))
	}
	if len(result.Estimates) == 0 {
		return result, ErrNoLongitude
	}

	center := astro.CircularMean(result.Estimates)
	unwrapped := astro.Unwrap(result.Estimates, center)
	mean := bandMean(unwrapped, cfg.BandLow, cfg.BandHigh, cfg.MinBandSize)
	result.Longitude = astro.WrapAngle(unit.Angle(mean))
	return result, nil
}
