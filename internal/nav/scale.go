package nav

import (
	"math"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/astro"
)

// Axis selects a frame axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

func (a Axis) coord(p Point) float64 {
	if a == AxisY {
		return p.Y
	}
	return p.X
}

// Scale is the angle subtended by half the nominal frame length on each
// axis, as seen from the lens.
type Scale struct {
	X, Y           unit.Angle
	PairsX, PairsY int
}

// Quadruple describes one same-side star pair along an axis: the near star's
// offset A, the gap B to the far star, the remainder C to the half-length,
// and the pair's angular separation Beta projected onto the axis.
type Quadruple struct {
	A, B, C float64
	Beta    unit.Angle
}

// Quadruples builds the quadruple for every unordered pair of stars lying on
// the same side of the origin along axis.
func Quadruples(stars []Star, axis Axis, halfLength float64) []Quadruple {
	var out []Quadruple
	for i := 0; i < len(stars); i++ {
		for j := i + 1; j < len(stars); j++ {
			c1, c2 := axis.coord(stars[i].Normal), axis.coord(stars[j].Normal)
			if c1*c2 <= 0 {
				continue
			}
			near, far := math.Abs(c1), math.Abs(c2)
			if near > far {
				near, far = far, near
			}

			planar := stars[i].PlanarDistance(stars[j])
			if planar == 0 {
				continue
			}
			sinD := stars[i].AngularDistance(stars[j]).Sin()
			beta := astro.Asin(sinD * math.Abs(c1-c2) / planar)

			out = append(out, Quadruple{
				A:    near,
				B:    far - near,
				C:    halfLength - far,
				Beta: beta,
			})
		}
	}
	return out
}

// Estimate solves the pair's quadratic for the tangent of the near star's
// off-axis angle and converts it to the half-length angle. Of the two roots
// the smaller is used, which is correct while the pair's combined off-axis
// angle stays under 90°.
func (q Quadruple) Estimate() (unit.Angle, bool) {
	tanB := math.Tan(q.Beta.Rad())
	if q.A <= 0 || q.B <= 0 || tanB <= 0 || math.IsInf(tanB, 0) {
		return 0, false
	}
	d := q.B*q.B - 4*(q.A+q.B)*tanB*tanB*q.A
	if d < 0 {
		return 0, false
	}
	sq := math.Sqrt(d)
	den := 2 * (q.A + q.B) * tanB
	x1 := (q.B + sq) / den
	x2 := (q.B - sq) / den

	half := q.A + q.B + q.C
	e1 := math.Atan(half * x1 / q.A)
	e2 := math.Atan(half * x2 / q.A)
	est := math.Min(e1, e2)
	if math.IsNaN(est) || est <= 0 {
		return 0, false
	}
	return unit.Angle(est), true
}

// SolveScale recovers the angular size of both axes from the normalized
// stars.
func SolveScale(stars []Star, cfg Config) (Scale, error) {
	x, nx, err := solveAxis(stars, AxisX, cfg.PixelLengthX/2, cfg)
	if err != nil {
		return Scale{}, err
	}
	y, ny, err := solveAxis(stars, AxisY, cfg.PixelLengthY/2, cfg)
	if err != nil {
		return Scale{}, err
	}
	return Scale{X: x, Y: y, PairsX: nx, PairsY: ny}, nil
}

func solveAxis(stars []Star, axis Axis, halfLength float64, cfg Config) (unit.Angle, int, error) {
	var estimates []float64
	for _, q := range Quadruples(stars, axis, halfLength) {
		if e, ok := q.Estimate(); ok {
			estimates = append(estimates, e.Rad())
		}
	}
	if len(estimates) < cfg.MinScalePairs {
		return 0, len(estimates), &GeometryError{
			Axis:   axis.String(),
			Reason: "not enough same-side star pairs to recover the angular scale",
		}
	}

	angle := sigmaClipMean(estimates, cfg.SigmaClip)
	if math.IsNaN(angle) || angle <= 0 || angle >= math.Pi/2 {
		return 0, len(estimates), &GeometryError{
			Axis:   axis.String(),
			Reason: "angular scale is not finite",
		}
	}
	return unit.Angle(angle), len(estimates), nil
}
