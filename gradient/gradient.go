// Package gradient computes the numerical finite-difference gradient of
// an objective function at a scaled point, dispatching every perturbed
// evaluation to the thread pool as a single batch (spec §2 component J,
// §4.4).
package gradient

import "math"

// DefaultStepSize is the default gradient-step-size h (spec §4.4).
const DefaultStepSize = 1e-7

// Evaluator runs one scaled-parameter vector through the model and
// returns its objective score; threadpool.Pool.RunCandidates's caller
// typically supplies this by closing over a Pool.
type Evaluator func(candidates [][]float64) []float64

// At computes the single-sided finite-difference gradient of an
// objective at the scaled point s, per spec §4.4: for component i,
// s'_i = s_i + h*sign(s_i) (h·1 when s_i == 0, so the perturbation is
// never zero in floating point), gradient_i = (f(s') - f(s)) / (s'_i -
// s_i). All n perturbed evaluations plus the base point are dispatched
// to evaluate as one batch.
func At(s []float64, stepSize float64, evaluate Evaluator) []float64 {
	if stepSize <= 0 {
		stepSize = DefaultStepSize
	}
	n := len(s)
	batch := make([][]float64, n+1)
	batch[0] = append([]float64(nil), s...)
	deltas := make([]float64, n)
	for i := 0; i < n; i++ {
		perturbed := append([]float64(nil), s...)
		sign := 1.0
		if s[i] < 0 {
			sign = -1.0
		}
		perturbed[i] = s[i] + stepSize*sign
		deltas[i] = perturbed[i] - s[i]
		batch[i+1] = perturbed
	}

	scores := evaluate(batch)
	base := scores[0]
	grad := make([]float64, n)
	for i := 0; i < n; i++ {
		if deltas[i] == 0 {
			grad[i] = 0
			continue
		}
		grad[i] = (scores[i+1] - base) / deltas[i]
	}
	return grad
}

// Norm returns the Euclidean norm of a gradient vector, used by the
// minimiser's convergence test (spec §4.5: "gradient norm below
// tolerance").
func Norm(g []float64) float64 {
	var sumSq float64
	for _, v := range g {
		sumSq += v * v
	}
	return math.Sqrt(sumSq)
}
