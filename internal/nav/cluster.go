package nav

import (
	"fmt"
	"time"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/logging"
)

// Observation describes how and when the photograph was taken.
type Observation struct {
	// PositionalAngle is the tilt of the camera from the local vertical,
	// equal to the altitude of the optical axis.
	PositionalAngle unit.Angle
	// RotationAngle is the camera roll about the optical axis.
	RotationAngle unit.Angle
	Time          time.Time
}

// Solution is the result of a full solve.
type Solution struct {
	Latitude  unit.Angle
	Longitude unit.Angle
	AzStar0   unit.Angle // azimuth of the anchor star
	Scale     Scale
	Stars     []ProjectedStar // absolute azimuths

	Resamples          []AstroSolution
	FailedResamples    int
	LongitudeEstimates []unit.Angle
	SkippedStars       int

	Observation Observation
}

// Solver runs the navigation pipeline.
type Solver struct {
	cfg Config
	log *logging.Logger
}

// NewSolver creates a solver. A nil logger discards output.
func NewSolver(cfg Config, logger *logging.Logger) *Solver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Solver{cfg: cfg, log: logger.With("nav")}
}

// Config returns the solver configuration.
func (s *Solver) Config() Config {
	return s.cfg
}

// Solve runs the pipeline with a generator chosen by the configuration.
func (s *Solver) Solve(stars []Star, obs Observation) (*Solution, error) {
	return s.SolveWithRand(stars, obs, randFor(s.cfg))
}

// SolveWithRand runs the pipeline drawing bootstrap subsets from rnd.
// rnd must not be shared with concurrent solves.
func (s *Solver) SolveWithRand(stars []Star, obs Observation, rnd Rand) (*Solution, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid solver config: %w", err)
	}

	normalized := NormalizeAll(stars, obs.RotationAngle)
	if err := checkGeometry(normalized); err != nil {
		return nil, err
	}

	scale, err := SolveScale(normalized, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("angular scale: %w", err)
	}
	s.log.Debug("angular scale x=%.4f° (%d pairs) y=%.4f° (%d pairs)",
		scale.X.Deg(), scale.PairsX, scale.Y.Deg(), scale.PairsY)

	projected := ProjectAll(normalized, scale, obs.PositionalAngle, s.cfg)

	lat, err := SolveLatitude(projected, s.cfg, rnd)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	if lat.Failed > 0 {
		s.log.Warn("%d of %d resamples did not converge", lat.Failed, s.cfg.Resamples)
	}
	s.log.Debug("latitude %.4f° anchor azimuth %.4f° from %d resamples",
		lat.Latitude.Deg(), lat.AzStar0.Deg(), len(lat.Solutions))

	absolute := MakeAzimuthAbsolute(projected, lat.AzStar0)

	lon, err := SolveLongitude(absolute, lat.Latitude, obs.Time, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	if lon.Skipped > 0 {
		s.log.Warn("%d stars gave no valid hour angle", lon.Skipped)
	}
	s.log.Debug("longitude %.4f° from %d estimates", lon.Longitude.Deg(), len(lon.Estimates))

	return &Solution{
		Latitude:           lat.Latitude,
		Longitude:          lon.Longitude,
		AzStar0:            lat.AzStar0,
		Scale:              scale,
		Stars:              absolute,
		Resamples:          lat.Solutions,
		FailedResamples:    lat.Failed,
		LongitudeEstimates: lon.Estimates,
		SkippedStars:       lon.Skipped,
		Observation:        obs,
	}, nil
}
