package gradient

import (
	"math"
	"testing"
)

// quadratic f(s) = sum(s_i^2), whose analytic gradient is 2*s_i.
func quadraticEvaluator(batch [][]float64) []float64 {
	scores := make([]float64, len(batch))
	for i, s := range batch {
		var sum float64
		for _, v := range s {
			sum += v * v
		}
		scores[i] = sum
	}
	return scores
}

func TestAtApproximatesAnalyticGradient(t *testing.T) {
	s := []float64{3, -2, 0}
	g := At(s, 1e-6, quadraticEvaluator)
	want := []float64{6, -4, 0}
	for i, w := range want {
		if math.Abs(g[i]-w) > 1e-3 {
			t.Errorf("component %d: got %v want ~%v", i, g[i], w)
		}
	}
}

func TestAtNeverPerturbsByZero(t *testing.T) {
	s := []float64{0, 0}
	calls := 0
	eval := func(batch [][]float64) []float64 {
		calls = len(batch)
		for k, candidate := range batch[1:] {
			if candidate[k] == s[k] {
				t.Errorf("expected a nonzero perturbation at component %d", k)
			}
		}
		return quadraticEvaluator(batch)
	}
	At(s, 1e-7, eval)
	if calls != 3 {
		t.Errorf("expected 1 base + 2 perturbed evaluations, got %d", calls)
	}
}

func TestNorm(t *testing.T) {
	if got := Norm([]float64{3, 4}); math.Abs(got-5) > 1e-9 {
		t.Errorf("got %v want 5", got)
	}
}
