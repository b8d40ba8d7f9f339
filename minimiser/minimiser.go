// Package minimiser implements the quasi-Newton line-search minimiser
// operating on bound-scaled parameters (spec §2 component K, §4.5):
// a BFGS Hessian approximation, Armijo-style backtracking line search,
// and Hessian-based covariance recovery via gonum/mat's LU inversion.
package minimiser

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/popdyn/casalcore/gradient"
)

// Outcome names why a minimisation run stopped (spec §4.5).
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSuccessStepTooSmall
	OutcomeTooManyIterations
	OutcomeTooManyEvaluations
	OutcomeStepTooSmallNoConvergence
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSuccessStepTooSmall:
		return "success-step-too-small"
	case OutcomeTooManyIterations:
		return "too-many-iterations"
	case OutcomeTooManyEvaluations:
		return "too-many-evaluations"
	case OutcomeStepTooSmallNoConvergence:
		return "step-too-small-no-convergence"
	default:
		return "error"
	}
}

// Config groups the minimiser's stopping criteria and step sizes.
type Config struct {
	GradientTolerance  float64 // stop when gradient norm falls below this
	ObjectiveTolerance float64 // stop when per-step objective change falls below this
	MaxIterations      int
	MaxEvaluations     int
	GradientStepSize   float64
	MinStepSize        float64 // line-search backtracking floor
}

func DefaultConfig() Config {
	return Config{
		GradientTolerance:  1e-6,
		ObjectiveTolerance: 1e-8,
		MaxIterations:      500,
		MaxEvaluations:     5000,
		GradientStepSize:   gradient.DefaultStepSize,
		MinStepSize:        1e-12,
	}
}

// Result is the outcome of one Minimise call.
type Result struct {
	Scaled      []float64
	Objective   float64
	Outcome     Outcome
	Iterations  int
	Evaluations int
	Hessian     *mat.Dense
}

// ObjectiveFunc returns the objective at a single scaled point; used for
// the line search's decision points (one evaluation at a time, as
// opposed to the batch-dispatched gradient evaluation).
type ObjectiveFunc func(scaled []float64) float64

// Minimise runs the quasi-Newton minimiser from initial, using objective
// for single-point evaluations and evaluate for the batch-dispatched
// finite-difference gradient (spec §4.4, §4.5).
func Minimise(initial []float64, cfg Config, objective ObjectiveFunc, evaluate gradient.Evaluator) Result {
	n := len(initial)
	x := append([]float64(nil), initial...)
	h := identity(n)

	fx := objective(x)
	evaluations := 1
	g := gradient.At(x, cfg.GradientStepSize, evaluate)
	evaluations += n

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		if evaluations >= cfg.MaxEvaluations {
			return Result{Scaled: x, Objective: fx, Outcome: OutcomeTooManyEvaluations, Iterations: iter, Evaluations: evaluations, Hessian: h}
		}
		if gradient.Norm(g) < cfg.GradientTolerance {
			return Result{Scaled: x, Objective: fx, Outcome: OutcomeSuccess, Iterations: iter, Evaluations: evaluations, Hessian: h}
		}

		delta, ok := solveDescentDirection(h, g)
		if !ok {
			return Result{Scaled: x, Objective: fx, Outcome: OutcomeError, Iterations: iter, Evaluations: evaluations, Hessian: h}
		}

		step := 1.0
		var xNext []float64
		var fNext float64
		accepted := false
		for step > cfg.MinStepSize {
			xNext = addScaled(x, delta, step)
			fNext = objective(xNext)
			evaluations++
			if fNext < fx {
				accepted = true
				break
			}
			step *= 0.5
		}
		if !accepted {
			return Result{Scaled: x, Objective: fx, Outcome: OutcomeStepTooSmallNoConvergence, Iterations: iter, Evaluations: evaluations, Hessian: h}
		}

		objectiveChange := math.Abs(fx - fNext)
		gNext := gradient.At(xNext, cfg.GradientStepSize, evaluate)
		evaluations += n

		updateBFGS(h, x, xNext, g, gNext)

		x, fx, g = xNext, fNext, gNext

		if objectiveChange < cfg.ObjectiveTolerance {
			return Result{Scaled: x, Objective: fx, Outcome: OutcomeSuccessStepTooSmall, Iterations: iter + 1, Evaluations: evaluations, Hessian: h}
		}
	}
	return Result{Scaled: x, Objective: fx, Outcome: OutcomeTooManyIterations, Iterations: cfg.MaxIterations, Evaluations: evaluations, Hessian: h}
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func addScaled(x, delta []float64, step float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] + step*delta[i]
	}
	return out
}

// solveDescentDirection solves H·Δ = −g via gonum's LU-backed dense
// solver (spec §4.5). Returns ok=false if H is singular to working
// precision.
func solveDescentDirection(h *mat.Dense, g []float64) ([]float64, bool) {
	n := len(g)
	negG := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		negG.SetVec(i, -g[i])
	}
	var delta mat.VecDense
	if err := delta.SolveVec(h, negG); err != nil {
		return nil, false
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = delta.AtVec(i)
	}
	return out, true
}

// updateBFGS applies the BFGS update to the Hessian approximation h in
// place (spec §4.5: "a quasi-Newton Hessian approximation updated from
// successive gradients"):
//
//	s = x1 - x0, y = g1 - g0
//	H' = H - (H s sᵀ H)/(sᵀ H s) + (y yᵀ)/(yᵀ s)
//
// Skipped (h left unchanged) when yᵀs is not positive, preserving
// positive-definiteness.
func updateBFGS(h *mat.Dense, x0, x1, g0, g1 []float64) {
	n := len(x0)
	s := mat.NewVecDense(n, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		s.SetVec(i, x1[i]-x0[i])
		y.SetVec(i, g1[i]-g0[i])
	}
	yDotS := mat.Dot(y, s)
	if yDotS <= 1e-12 {
		return
	}

	hs := mat.NewVecDense(n, nil)
	hs.MulVec(h, s)
	sHs := mat.Dot(s, hs)
	if sHs <= 1e-12 {
		return
	}

	var hssh mat.Dense
	hssh.Outer(1/sHs, hs, hs)

	var yyT mat.Dense
	yyT.Outer(1/yDotS, y, y)

	h.Sub(h, &hssh)
	h.Add(h, &yyT)
}

// Covariance inverts the terminal Hessian via LU with pivoting to
// recover the scaled-space covariance (spec §4.5). Zero rows (an
// estimate the Hessian update never touched) are pinned to the identity
// before inversion to guarantee invertibility; callers re-transform to
// unscaled space via boundscale.DScaledDUnscaled.
func Covariance(h *mat.Dense) (*mat.Dense, error) {
	n, _ := h.Dims()
	pinned := mat.DenseCopyOf(h)
	for i := 0; i < n; i++ {
		isZeroRow := true
		for j := 0; j < n; j++ {
			if pinned.At(i, j) != 0 {
				isZeroRow = false
				break
			}
		}
		if isZeroRow {
			pinned.Set(i, i, 1)
		}
	}

	var cov mat.Dense
	if err := cov.Inverse(pinned); err != nil {
		return nil, err
	}
	return &cov, nil
}
