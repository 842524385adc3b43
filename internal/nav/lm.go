package nav

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ResidualFunc evaluates the residual vector r and, when jac is non-nil,
// the Jacobian dr/dx at x.
type ResidualFunc func(x, r []float64, jac *mat.Dense)

// LMSettings controls the Levenberg–Marquardt iteration.
type LMSettings struct {
	MaxIterations int
	InitialLambda float64
	MaxLambda     float64
	XTol          float64 // relative step size
	FTol          float64 // relative cost reduction
	GTol          float64 // gradient infinity norm
}

// DefaultLMSettings returns settings suitable for small, well-scaled fits.
func DefaultLMSettings() LMSettings {
	return LMSettings{
		MaxIterations: 200,
		InitialLambda: 1e-3,
		MaxLambda:     1e16,
		XTol:          1e-10,
		FTol:          1e-14,
		GTol:          1e-14,
	}
}

// LMResult is the outcome of one Levenberg–Marquardt run.
type LMResult struct {
	X          []float64
	Cost       float64 // sum of squared residuals
	Iterations int
	Converged  bool
}

// LevenbergMarquardt minimizes the sum of squares of m residuals starting
// from x0. Each step solves (JᵀJ + λ·diag(JᵀJ))δ = Jᵀr with gonum.
func LevenbergMarquardt(f ResidualFunc, m int, x0 []float64, s LMSettings) LMResult {
	n := len(x0)
	x := append([]float64(nil), x0...)
	r := make([]float64, m)
	jac := mat.NewDense(m, n, nil)
	f(x, r, jac)
	cost := floats.Dot(r, r)

	trial := make([]float64, n)
	rTrial := make([]float64, m)
	jTrial := mat.NewDense(m, n, nil)
	lambda := s.InitialLambda

	result := func(iter int, ok bool) LMResult {
		return LMResult{X: x, Cost: cost, Iterations: iter, Converged: ok}
	}

	for iter := 1; iter <= s.MaxIterations; iter++ {
		if math.IsNaN(cost) || math.IsInf(cost, 0) {
			return result(iter, false)
		}
		if cost == 0 {
			return result(iter, true)
		}

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var grad mat.VecDense
		grad.MulVec(jac.T(), mat.NewVecDense(m, r))
		if mat.Norm(&grad, math.Inf(1)) <= s.GTol {
			return result(iter, true)
		}

		for {
			damped := mat.DenseCopyOf(&jtj)
			for i := 0; i < n; i++ {
				d := jtj.At(i, i)
				if d == 0 {
					d = 1
				}
				damped.Set(i, i, jtj.At(i, i)+lambda*d)
			}

			var step mat.VecDense
			if err := step.SolveVec(damped, &grad); err == nil {
				for i := range trial {
					trial[i] = x[i] - step.AtVec(i)
				}
				f(trial, rTrial, jTrial)
				trialCost := floats.Dot(rTrial, rTrial)

				if trialCost < cost {
					reduction := (cost - trialCost) / cost
					stepNorm := mat.Norm(&step, 2)
					xNorm := floats.Norm(x, 2)

					copy(x, trial)
					copy(r, rTrial)
					jac.Copy(jTrial)
					cost = trialCost
					lambda = math.Max(lambda/10, 1e-15)

					if stepNorm <= s.XTol*(xNorm+s.XTol) || reduction <= s.FTol {
						return result(iter, true)
					}
					break
				}
			}

			lambda *= 10
			if lambda > s.MaxLambda {
				// No descent direction is left: x is a numerical minimum.
				return result(iter, true)
			}
		}
	}
	return result(s.MaxIterations, false)
}
