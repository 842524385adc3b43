// Package simulate renders synthetic star fields for a known observer, time
// and camera pointing through an ideal pinhole camera. The output feeds the
// same filter and solver as real plate-solver output.
package simulate

import (
	"fmt"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/astro"
	"github.com/DanLyss/AstroNavigation/internal/corr"
	"github.com/DanLyss/AstroNavigation/internal/nav"
)

// Pointing is the camera attitude: optical axis altitude and azimuth, and
// roll about the axis (positive turns the image counter-clockwise).
type Pointing struct {
	Alt  unit.Angle
	Az   unit.Angle
	Roll unit.Angle
}

// Scene fixes everything needed to render a frame.
type Scene struct {
	Observer astro.Observer
	Time     time.Time
	Pointing Pointing
	FocalPx  float64 // focal length in pixels
}

// Detection is a rendered star. X and Y are raw pixel offsets from the
// optical axis with y up, roll included.
type Detection struct {
	Name string
	X, Y float64
	astro.Equatorial
	True astro.Horizontal
}

// basis returns the camera's right, up and forward unit vectors in the
// local east-north-up frame, before roll.
func (sc Scene) basis() (right, up, fwd r3.Vector) {
	alt, az := sc.Pointing.Alt.Rad(), sc.Pointing.Az.Rad()
	fwd = r3.Vector{
		X: math.Sin(az) * math.Cos(alt),
		Y: math.Cos(az) * math.Cos(alt),
		Z: math.Sin(alt),
	}
	right = r3.Vector{X: math.Cos(az), Y: -math.Sin(az), Z: 0}
	up = right.Cross(fwd)
	return right, up, fwd
}

// roll turns level camera coordinates into raw sensor coordinates.
func (sc Scene) roll(x, y float64) (float64, float64) {
	sin, cos := math.Sincos(sc.Pointing.Roll.Rad())
	return cos*x - sin*y, sin*x + cos*y
}

// FromOffsets renders one star per level pixel offset (y up, relative to
// the optical axis), deriving each star's RA/Dec from the scene.
func (sc Scene) FromOffsets(offsets []nav.Point) []Detection {
	right, up, fwd := sc.basis()
	out := make([]Detection, len(offsets))
	for i, p := range offsets {
		dir := right.Mul(p.X).Add(up.Mul(p.Y)).Add(fwd.Mul(sc.FocalPx)).Normalize()
		h := astro.Horizontal{
			Alt: astro.Asin(dir.Z),
			Az:  astro.NormalizeAngle(unit.Angle(math.Atan2(dir.X, dir.Y))),
		}
		x, y := sc.roll(p.X, p.Y)
		out[i] = Detection{
			Name:       fmt.Sprintf("S%02d", i),
			X:          x,
			Y:          y,
			Equatorial: astro.HorizontalToEquatorial(h, sc.Observer, sc.Time),
			True:       h,
		}
	}
	return out
}

// Project returns the raw pixel offset of a horizontal direction. ok is
// false for directions behind the camera.
func (sc Scene) Project(h astro.Horizontal) (x, y float64, ok bool) {
	right, up, fwd := sc.basis()
	dir := r3.Vector{
		X: h.Alt.Cos() * h.Az.Sin(),
		Y: h.Alt.Cos() * h.Az.Cos(),
		Z: h.Alt.Sin(),
	}
	z := dir.Dot(fwd)
	if z <= 0 {
		return 0, 0, false
	}
	x, y = sc.roll(sc.FocalPx*dir.Dot(right)/z, sc.FocalPx*dir.Dot(up)/z)
	return x, y, true
}

// FromCatalog renders the catalogue stars that land within the frame of the
// given half-width and half-height in pixels.
func (sc Scene) FromCatalog(cat astro.Catalog, halfWidth, halfHeight float64) []Detection {
	var out []Detection
	for _, s := range cat.Stars {
		h := astro.EquatorialToHorizontal(s.Equatorial, sc.Observer, sc.Time)
		x, y, ok := sc.Project(h)
		if !ok || math.Abs(x) > halfWidth || math.Abs(y) > halfHeight {
			continue
		}
		out = append(out, Detection{Name: s.Name, X: x, Y: y, Equatorial: s.Equatorial, True: h})
	}
	return out
}

// PointAt aims the optical axis at a star.
func PointAt(target astro.Equatorial, obs astro.Observer, t time.Time, roll unit.Angle) Pointing {
	h := astro.EquatorialToHorizontal(target, obs, t)
	return Pointing{Alt: h.Alt, Az: h.Az, Roll: roll}
}

// Stars converts detections to solver input. The detection at the optical
// axis becomes the anchor at the pixel origin.
func Stars(dets []Detection) []nav.Star {
	out := make([]nav.Star, len(dets))
	for i, d := range dets {
		out[i] = nav.NewStar(d.X, d.Y, d.RA, d.Dec)
	}
	return out
}

// Rows converts detections to correspondence rows for an image of the given
// size with the optical axis at its centre.
func Rows(dets []Detection, width, height, weight float64) []corr.Row {
	cx, cy := width/2, height/2
	out := make([]corr.Row, len(dets))
	for i, d := range dets {
		out[i] = corr.Row{
			FieldX:      cx + d.X,
			FieldY:      cy - d.Y,
			FieldRA:     d.RA.Deg(),
			FieldDec:    d.Dec.Deg(),
			MatchWeight: weight,
		}
	}
	return out
}

// Observation returns the solver observation matching the scene.
func (sc Scene) Observation() nav.Observation {
	return nav.Observation{
		PositionalAngle: sc.Pointing.Alt,
		RotationAngle:   sc.Pointing.Roll,
		Time:            sc.Time,
	}
}

// SymmetricOffsets returns a field of 2n+1 level offsets: the axis plus n
// point-symmetric pairs spread over the frame, so the centroid lies on the
// axis. radius bounds the offsets in pixels.
func SymmetricOffsets(n int, radius float64) []nav.Point {
	out := []nav.Point{{}}
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 1; i <= n; i++ {
		r := radius * math.Sqrt(float64(i)/float64(n))
		a := float64(i) * golden
		p := nav.Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
		out = append(out, p, nav.Point{X: -p.X, Y: -p.Y})
	}
	return out
}
