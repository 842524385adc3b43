// Package nav recovers an observer's latitude and longitude from plate-solved
// star positions in a single photograph and the capture time.
//
// The pipeline runs in a fixed order: de-rotate pixel coordinates, recover
// the angular scale of the frame, project every star to altitude and
// relative azimuth, fit latitude and the frame's azimuth offset, then derive
// longitude from hour angles and the Sun's right ascension.
package nav

import (
	"math"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/astro"
)

// Point is a pixel position with y pointing up.
type Point struct {
	X, Y float64
}

// Norm returns the distance from the origin.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Star is a detected star: its pixel position relative to the anchor star
// and its catalogue coordinates.
type Star struct {
	Measured Point // as detected
	Normal   Point // after removing camera roll
	RA       unit.Angle
	Dec      unit.Angle
}

// NewStar creates a star at pixel (x, y) with no roll applied yet.
func NewStar(x, y float64, ra, dec unit.Angle) Star {
	p := Point{X: x, Y: y}
	return Star{Measured: p, Normal: p, RA: ra, Dec: dec}
}

// Normalize returns the star with its measured position rotated by the
// camera roll so the frame's x axis is level.
func (s Star) Normalize(roll unit.Angle) Star {
	sin, cos := math.Sincos(roll.Rad())
	s.Normal = Point{
		X: cos*s.Measured.X + sin*s.Measured.Y,
		Y: -sin*s.Measured.X + cos*s.Measured.Y,
	}
	return s
}

// NormalizeAll applies Normalize to every star.
func NormalizeAll(stars []Star, roll unit.Angle) []Star {
	out := make([]Star, len(stars))
	for i, s := range stars {
		out[i] = s.Normalize(roll)
	}
	return out
}

// AngularDistance is the great-circle separation of two stars.
func (s Star) AngularDistance(o Star) unit.Angle {
	return astro.AngularSeparation(s.RA, s.Dec, o.RA, o.Dec)
}

// PlanarDistance is the separation of the normalized pixel positions.
func (s Star) PlanarDistance(o Star) float64 {
	return math.Hypot(s.Normal.X-o.Normal.X, s.Normal.Y-o.Normal.Y)
}

// ProjectedStar is a star with horizontal coordinates. Az is relative to the
// anchor star until MakeAzimuthAbsolute is applied.
type ProjectedStar struct {
	Star
	Alt unit.Angle
	Az  unit.Angle
}

// MakeAzimuthAbsolute adds the fitted azimuth of the anchor star to every
// relative azimuth, giving azimuths in [0, 2π) measured from north.
func MakeAzimuthAbsolute(stars []ProjectedStar, azStar0 unit.Angle) []ProjectedStar {
	out := make([]ProjectedStar, len(stars))
	for i, s := range stars {
		s.Az = astro.NormalizeAngle(s.Az + azStar0)
		out[i] = s
	}
	return out
}

// anchorIndex returns the index of the star at the pixel origin, or 0.
func anchorIndex(stars []ProjectedStar) int {
	for i, s := range stars {
		if s.Normal.Norm() < 1e-9 {
			return i
		}
	}
	return 0
}

// checkGeometry rejects inputs with fewer than three stars or with every
// star on one line.
func checkGeometry(stars []Star) error {
	if len(stars) < 3 {
		return &GeometryError{Reason: "at least three stars are required"}
	}

	var mx, my float64
	for _, s := range stars {
		mx += s.Normal.X
		my += s.Normal.Y
	}
	n := float64(len(stars))
	mx /= n
	my /= n

	var sxx, syy, sxy float64
	for _, s := range stars {
		dx, dy := s.Normal.X-mx, s.Normal.Y-my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	// Eigenvalues of the 2x2 scatter matrix.
	mid := (sxx + syy) / 2
	rad := math.Hypot((sxx-syy)/2, sxy)
	hi, lo := mid+rad, mid-rad
	if hi <= 0 || lo <= 1e-10*hi {
		return &GeometryError{Reason: "stars are collinear"}
	}
	return nil
}
