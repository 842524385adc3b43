package nav

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DanLyss/AstroNavigation/internal/astro"
)

// Hemisphere restricts accepted latitude fits to one side of the equator.
type Hemisphere int

const (
	HemisphereNorth Hemisphere = iota
	HemisphereSouth
	HemisphereAny
)

func (h Hemisphere) String() string {
	switch h {
	case HemisphereNorth:
		return "north"
	case HemisphereSouth:
		return "south"
	case HemisphereAny:
		return "any"
	default:
		return "unknown"
	}
}

// ParseHemisphere parses "north", "south" or "any" (also "n", "s").
func ParseHemisphere(s string) (Hemisphere, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n", "north":
		return HemisphereNorth, nil
	case "s", "south":
		return HemisphereSouth, nil
	case "any", "both":
		return HemisphereAny, nil
	default:
		return HemisphereNorth, fmt.Errorf("unknown hemisphere %q", s)
	}
}

// Config holds solver tuning parameters.
type Config struct {
	// PixelLengthX and PixelLengthY are the nominal frame lengths the
	// angular scale is expressed against. Results do not depend on them.
	PixelLengthX float64
	PixelLengthY float64

	// SigmaClip is the half-width, in standard deviations, of the window
	// pair estimates must fall in to be averaged into the angular scale.
	SigmaClip float64
	// MinScalePairs is the minimum number of valid same-side star pairs
	// per axis.
	MinScalePairs int

	GridSize       int     // starting points per parameter
	Resamples      int     // bootstrap resamples
	SubsetFraction float64 // share of non-anchor stars per resample
	TrimFraction   float64 // dropped from each end before averaging
	Hemisphere     Hemisphere
	LM             LMSettings

	// BandLow and BandHigh bound the sorted longitude estimates that are
	// averaged once at least MinBandSize estimates exist.
	BandLow        float64
	BandHigh       float64
	MinBandSize    int
	EquationOfTime astro.EoTMode

	// Seed fixes the resampling sequence when Repeatable is set.
	Seed       uint64
	Repeatable bool
}

// DefaultConfig returns the standard solver configuration.
func DefaultConfig() Config {
	return Config{
		PixelLengthX:   100,
		PixelLengthY:   100,
		SigmaClip:      2,
		MinScalePairs:  1,
		GridSize:       10,
		Resamples:      50,
		SubsetFraction: 0.8,
		TrimFraction:   0.25,
		Hemisphere:     HemisphereNorth,
		LM:             DefaultLMSettings(),
		BandLow:        0.3,
		BandHigh:       0.7,
		MinBandSize:    4,
		EquationOfTime: astro.EoTEmpirical,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.PixelLengthX <= 0 || c.PixelLengthY <= 0:
		return errors.New("pixel lengths must be positive")
	case c.SigmaClip <= 0:
		return errors.New("sigma clip must be positive")
	case c.MinScalePairs < 1:
		return errors.New("min scale pairs must be at least 1")
	case c.GridSize < 1:
		return errors.New("grid size must be at least 1")
	case c.Resamples < 1:
		return errors.New("resamples must be at least 1")
	case c.SubsetFraction <= 0 || c.SubsetFraction > 1:
		return errors.New("subset fraction must be in (0, 1]")
	case c.TrimFraction < 0 || c.TrimFraction >= 0.5:
		return errors.New("trim fraction must be in [0, 0.5)")
	case c.BandLow < 0 || c.BandHigh > 1 || c.BandLow >= c.BandHigh:
		return errors.New("longitude band must satisfy 0 <= low < high <= 1")
	case c.LM.MaxIterations < 1:
		return errors.New("LM max iterations must be at least 1")
	}
	return nil
}
