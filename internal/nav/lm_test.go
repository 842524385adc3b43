package nav

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLevenbergMarquardt_Exponential(t *testing.T) {
	// y = 2·exp(-0.5·t) sampled without noise.
	ts := []float64{0, 0.5, 1, 1.5, 2, 3, 4, 5}
	ys := make([]float64, len(ts))
	for i, x := range ts {
		ys[i] = 2 * math.Exp(-0.5*x)
	}

	f := func(p, r []float64, jac *mat.Dense) {
		for i, x := range ts {
			e := math.Exp(p[1] * x)
			r[i] = p[0]*e - ys[i]
			if jac != nil {
				jac.Set(i, 0, e)
				jac.Set(i, 1, p[0]*x*e)
			}
		}
	}

	res := LevenbergMarquardt(f, len(ts), []float64{1, -0.1}, DefaultLMSettings())
	if !res.Converged {
		t.Fatalf("did not converge after %d iterations", res.Iterations)
	}
	if math.Abs(res.X[0]-2) > 1e-6 || math.Abs(res.X[1]+0.5) > 1e-6 {
		t.Errorf("X = %v, want [2 -0.5]", res.X)
	}
	if res.Cost > 1e-12 {
		t.Errorf("Cost = %v, want ~0", res.Cost)
	}
}

func TestLevenbergMarquardt_LinearLeastSquares(t *testing.T) {
	// Fit a line through points that do not lie on one: the minimum has a
	// non-zero cost and must still be reported as converged.
	xs := []float64{0, 1, 2, 3}
	ys := []float64{1, 3, 2, 5}

	f := func(p, r []float64, jac *mat.Dense) {
		for i, x := range xs {
			r[i] = p[0] + p[1]*x - ys[i]
			if jac != nil {
				jac.Set(i, 0, 1)
				jac.Set(i, 1, x)
			}
		}
	}

	res := LevenbergMarquardt(f, len(xs), []float64{0, 0}, DefaultLMSettings())
	if !res.Converged {
		t.Fatal("did not converge")
	}
	// Ordinary least squares: slope 1.1, intercept 1.1.
	if math.Abs(res.X[0]-1.1) > 1e-6 || math.Abs(res.X[1]-1.1) > 1e-6 {
		t.Errorf("X = %v, want [1.1 1.1]", res.X)
	}
}

func TestLevenbergMarquardt_NaNStart(t *testing.T) {
	f := func(p, r []float64, jac *mat.Dense) {
		r[0] = math.NaN()
		if jac != nil {
			jac.Set(0, 0, 1)
		}
	}
	res := LevenbergMarquardt(f, 1, []float64{0}, DefaultLMSettings())
	if res.Converged {
		t.Error("a NaN residual must not converge")
	}
}
