package nav

import (
	"math"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/astro"
)

// Project converts a normalized star position to altitude and azimuth
// relative to the anchor. positional is the camera's tilt from the local
// vertical, which equals the altitude of the optical axis.
func Project(s Star, scale Scale, positional unit.Angle, cfg Config) ProjectedStar {
	halfX, halfY := cfg.PixelLengthX/2, cfg.PixelLengthY/2

	alpha := math.Atan(s.Normal.X * math.Tan(scale.X.Rad()) / halfX)
	beta := math.Atan(s.Normal.Y * math.Tan(scale.Y.Rad()) / halfY)
	c := math.Pi/2 - beta

	sinC, cosC := math.Sincos(c)
	sinP, cosP := math.Sincos(positional.Rad())
	alt := astro.Asin(cosC*cosP + sinC*sinP*math.Cos(alpha))
	az := astro.Asin(sinC * math.Sin(alpha) / alt.Cos())

	return ProjectedStar{Star: s, Alt: alt, Az: az}
}

// ProjectAll applies Project to every star.
func ProjectAll(stars []Star, scale Scale, positional unit.Angle, cfg Config) []ProjectedStar {
	out := make([]ProjectedStar, len(stars))
	for i, s := range stars {
		out[i] = Project(s, scale, positional, cfg)
	}
	return out
}
