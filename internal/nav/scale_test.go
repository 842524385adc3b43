package nav

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"
)

func TestQuadrupleEstimate_Pinhole(t *testing.T) {
	// Two stars on one side of a pinhole frame at known off-axis angles.
	tests := []struct {
		name           string
		focal          float64
		theta1, theta2 float64 // degrees
	}{
		{"narrow", 800, 1.5, 6},
		{"wide", 300, 4, 20},
		{"close pair", 1200, 2, 2.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.focal * math.Tan(tt.theta1*math.Pi/180)
			b := tt.focal*math.Tan(tt.theta2*math.Pi/180) - a
			q := Quadruple{
				A:    a,
				B:    b,
				C:    50 - a - b,
				Beta: unit.AngleFromDeg(tt.theta2 - tt.theta1),
			}

			got, ok := q.Estimate()
			if !ok {
				t.Fatal("Estimate rejected a valid pair")
			}
			want := math.Atan(50 / tt.focal)
			if math.Abs(got.Rad()-want) > 1e-9 {
				t.Errorf("Estimate = %v°, want %v°", got.Deg(), want*180/math.Pi)
			}
		})
	}
}

func TestQuadrupleEstimate_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		q    Quadruple
	}{
		{"zero gap", Quadruple{A: 10, B: 0, C: 40, Beta: unit.AngleFromDeg(1)}},
		{"zero beta", Quadruple{A: 10, B: 5, C: 35, Beta: 0}},
		{"negative discriminant", Quadruple{A: 10, B: 1, C: 39, Beta: unit.AngleFromDeg(60)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.q.Estimate(); ok {
				t.Error("Estimate accepted a degenerate pair")
			}
		})
	}
}

func TestQuadruples_SameSideOnly(t *testing.T) {
	stars := []Star{
		NewStar(0, 0, 0, 0),
		NewStar(10, 5, unit.AngleFromDeg(1), 0),
		NewStar(30, -5, unit.AngleFromDeg(3), 0),
		NewStar(-20, 8, unit.AngleFromDeg(-2), 0),
	}

	qx := Quadruples(stars, AxisX, 50)
	if len(qx) != 1 {
		t.Fatalf("x axis: %d quadruples, want 1", len(qx))
	}
	if qx[0].A != 10 || qx[0].B != 20 || qx[0].C != 20 {
		t.Errorf("x quadruple = %+v, want A=10 B=20 C=20", qx[0])
	}

	qy := Quadruples(stars, AxisY, 50)
	if len(qy) != 1 {
		t.Errorf("y axis: %d quadruples, want 1", len(qy))
	}
}

func TestSolveScale_NotEnoughPairs(t *testing.T) {
	// Only one star on each side of both axes.
	stars := []Star{
		NewStar(0, 0, 0, 0),
		NewStar(10, 10, unit.AngleFromDeg(1), unit.AngleFromDeg(1)),
		NewStar(-10, -12, unit.AngleFromDeg(-1), unit.AngleFromDeg(-1.2)),
	}

	_, err := SolveScale(stars, DefaultConfig())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsGeometryError(err) {
		t.Errorf("error %T is not a *GeometryError", err)
	}
}

func TestSolveScale_SmallField(t *testing.T) {
	// Stars on a pinhole frame with focal length 1000 px, one degree apart
	// on the sky per 17.455 px along each axis.
	const focal = 1000.0
	pix := func(deg float64) float64 { return focal * math.Tan(deg*math.Pi/180) }

	var stars []Star
	for _, p := range [][2]float64{{0, 0}, {1, 2}, {2, 1}, {-1, -2}, {-2, -1}, {1.5, -1}, {-1.5, 1}} {
		// A star at small offsets (dx, dy) degrees from the axis at the
		// celestial equator.
		stars = append(stars, NewStar(pix(p[0]), pix(p[1]), unit.AngleFromDeg(p[0]), unit.AngleFromDeg(p[1])))
	}

	scale, err := SolveScale(stars, DefaultConfig())
	if err != nil {
		t.Fatalf("SolveScale: %v", err)
	}
	want := math.Atan(50/focal) * 180 / math.Pi
	for axis, got := range map[string]float64{"x": scale.X.Deg(), "y": scale.Y.Deg()} {
		if math.Abs(got-want)/want > 0.05 {
			t.Errorf("%s scale = %v°, want %v° (±5%%)", axis, got, want)
		}
	}
	if scale.PairsX == 0 || scale.PairsY == 0 {
		t.Errorf("pair counts = %d, %d", scale.PairsX, scale.PairsY)
	}
}
