package nav

import (
	"math"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/mat"

	"github.com/DanLyss/AstroNavigation/internal/astro"
)

// azScale converts the fitted azimuth parameter to radians: az0 = s/azScale.
// It keeps both parameters on comparable scales inside the LM solve.
const azScale = 1 / (2 * math.Pi)

// AstroSolution is one accepted latitude fit.
type AstroSolution struct {
	Latitude      unit.Angle
	AzimuthOffset unit.Angle // azimuth of the anchor star, [0, 2π)
	Residuals     []float64
}

// MaxResidual returns the largest absolute residual.
func (a AstroSolution) MaxResidual() float64 {
	var m float64
	for _, r := range a.Residuals {
		m = math.Max(m, math.Abs(r))
	}
	return m
}

// LatitudeResult aggregates the bootstrap resamples.
type LatitudeResult struct {
	Latitude  unit.Angle
	AzStar0   unit.Angle
	Solutions []AstroSolution
	Failed    int
}

// latitudeResiduals returns the residuals of
//
//	sin dec = cos θ·sin Alt + sin θ·cos Alt·cos(Az + az0)
//
// for parameters x = (s, θ), where θ is the colatitude and az0 = s/azScale.
func latitudeResiduals(stars []ProjectedStar) ResidualFunc {
	return func(x, r []float64, jac *mat.Dense) {
		az0 := x[0] / azScale
		sinT, cosT := math.Sincos(x[1])
		for k, s := range stars {
			sinAlt, cosAlt := math.Sincos(s.Alt.Rad())
			sinA, cosA := math.Sincos(s.Az.Rad() + az0)
			r[k] = cosT*sinAlt + sinT*cosAlt*cosA - s.Dec.Sin()
			if jac != nil {
				jac.Set(k, 0, -sinT*cosAlt*sinA/azScale)
				jac.Set(k, 1, -sinT*sinAlt+cosT*cosAlt*cosA)
			}
		}
	}
}

// FitLatitude runs the LM fit from a grid of starting points and returns
// the accepted fit with the smallest maximum residual.
func FitLatitude(stars []ProjectedStar, cfg Config) (AstroSolution, error) {
	if len(stars) < 2 {
		return AstroSolution{}, &GeometryError{Reason: "latitude fit needs at least two stars"}
	}

	f := latitudeResiduals(stars)
	g := cfg.GridSize
	best := AstroSolution{}
	found := false

	for i := 0; i < g; i++ {
		az0 := 2 * math.Pi * float64(i) / float64(g)
		for j := 1; j <= g; j++ {
			colat := math.Pi * (float64(j) - 0.5) / float64(g)

			res := LevenbergMarquardt(f, len(stars), []float64{az0 * azScale, colat}, cfg.LM)
			if !res.Converged {
				continue
			}
			sol, ok := acceptFit(res.X, f, len(stars), cfg.Hemisphere)
			if !ok {
				continue
			}
			if !found || sol.MaxResidual() < best.MaxResidual() {
				best = sol
				found = true
			}
		}
	}

	if !found {
		return AstroSolution{}, ErrSolveDivergence
	}
	return best, nil
}

// acceptFit folds the fitted colatitude into [0, π], checks the hemisphere
// and evaluates the final residuals.
func acceptFit(x []float64, f ResidualFunc, m int, h Hemisphere) (AstroSolution, bool) {
	az0 := x[0] / azScale
	colat := astro.Normalize(x[1], 0, 2*math.Pi)
	if colat > math.Pi {
		// (2π-θ, az0+π) describes the same sky.
		colat = 2*math.Pi - colat
		az0 += math.Pi
	}
	if math.IsNaN(colat) || math.IsNaN(az0) || math.IsInf(az0, 0) {
		return AstroSolution{}, false
	}

	lat := math.Pi/2 - colat
	switch {
	case h == HemisphereNorth && lat <= 0:
		return AstroSolution{}, false
	case h == HemisphereSouth && lat >= 0:
		return AstroSolution{}, false
	}

	r := make([]float64, m)
	f([]float64{az0 * azScale, colat}, r, nil)
	for _, v := range r {
		if math.IsNaN(v) {
			return AstroSolution{}, false
		}
	}

	return AstroSolution{
		Latitude:      unit.Angle(lat),
		AzimuthOffset: astro.NormalizeAngle(unit.Angle(az0)),
		Residuals:     r,
	}, true
}

// SolveLatitude bootstraps FitLatitude over random subsets that always
// contain the anchor star, then takes trimmed means of latitude and of the
// anchor's azimuth.
func SolveLatitude(stars []ProjectedStar, cfg Config, rnd Rand) (LatitudeResult, error) {
	if len(stars) < 3 {
		return LatitudeResult{}, &GeometryError{Reason: "latitude solve needs at least three stars"}
	}

	anchor := anchorIndex(stars)
	others := make([]ProjectedStar, 0, len(stars)-1)
	for i, s := range stars {
		if i != anchor {
			others = append(others, s)
		}
	}

	k := int(math.Round(cfg.SubsetFraction * float64(len(others))))
	if k < 2 {
		k = 2
	}
	if k > len(others) {
		k = len(others)
	}

	var result LatitudeResult
	subset := make([]ProjectedStar, k+1)
	for n := 0; n < cfg.Resamples; n++ {
		subset[0] = stars[anchor]
		for i, p := range rnd.Perm(len(others))[:k] {
			subset[i+1] = others[p]
		}

		sol, err := FitLatitude(subset, cfg)
		if err != nil {
			result.Failed++
			continue
		}
		result.Solutions = append(result.Solutions, sol)
	}

	if len(result.Solutions) == 0 {
		return result, ErrSolveDivergence
	}

	lats := make([]float64, len(result.Solutions))
	azs := make([]unit.Angle, len(result.Solutions))
	for i, s := range result.Solutions {
		lats[i] = s.Latitude.Rad()
		azs[i] = s.AzimuthOffset
	}
	result.Latitude = unit.Angle(trimmedMean(lats, cfg.TrimFraction))
	result.AzStar0 = circularTrimmedMean(azs, cfg.TrimFraction)
	return result, nil
}
