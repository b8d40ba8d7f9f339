package mcmc

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RWMH is the adaptive random-walk Metropolis-Hastings proposal
// mechanism (spec §4.7): draws Δ ∼ MVN(0, step²·Σ) or a Student-t
// analogue, adapts step size on a configured schedule, and optionally
// recomputes Σ from the in-chain samples.
type RWMH struct {
	StepSize             float64
	TargetAcceptance      float64
	AdaptEvery            int
	AdaptCovarianceAfter  int
	DegreesOfFreedom      float64 // 0 selects the Gaussian proposal

	cov  *mat.Dense
	chol *mat.Cholesky
	rng  *rand.Rand

	acceptedSinceAdapt int
	triesSinceAdapt    int
}

func NewRWMH(cov *mat.Dense, rng *rand.Rand) *RWMH {
	r := &RWMH{
		StepSize:         1.0,
		TargetAcceptance: 0.234,
		AdaptEvery:       100,
		cov:              cov,
		rng:              rng,
	}
	return r
}

func (r *RWMH) choleskyOf(cov *mat.Dense) *mat.Cholesky {
	n, _ := cov.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, cov.At(i, j))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil
	}
	return &chol
}

// Propose draws a candidate step from the current point, lazily
// Cholesky-factorising the covariance on first use (spec §4.7:
// "Cholesky-factorised lazily").
func (r *RWMH) Propose(current []float64) []float64 {
	if r.chol == nil {
		r.chol = r.choleskyOf(r.cov)
	}
	n := len(current)
	z := make([]float64, n)
	for i := range z {
		z[i] = r.rng.NormFloat64()
	}
	if r.DegreesOfFreedom > 0 {
		scale := studentTScale(r.rng, r.DegreesOfFreedom)
		for i := range z {
			z[i] *= scale
		}
	}

	zVec := mat.NewVecDense(n, z)
	lower := r.chol.LTo(nil)
	var delta mat.VecDense
	delta.MulVec(lower, zVec)

	out := make([]float64, n)
	for i := range out {
		out[i] = current[i] + r.StepSize*delta.AtVec(i)
	}
	return out
}

// studentTScale draws a scale multiplier turning a standard normal draw
// into a Student-t draw with the given degrees of freedom, via the
// standard normal-over-sqrt(chi2/dof) construction.
func studentTScale(rng *rand.Rand, dof float64) float64 {
	// Sum of dof squared standard normals approximates a chi-squared(dof)
	// draw; dof is typically small (3-10) in MCMC proposals so this is
	// cheap and avoids pulling in a separate gamma sampler.
	var sumSq float64
	n := int(math.Max(1, dof))
	for i := 0; i < n; i++ {
		v := rng.NormFloat64()
		sumSq += v * v
	}
	chi2 := sumSq
	return math.Sqrt(dof / chi2)
}

// RecordTry updates the running acceptance counters the adaptation
// schedule watches.
func (r *RWMH) RecordTry(accepted bool) {
	r.triesSinceAdapt++
	if accepted {
		r.acceptedSinceAdapt++
	}
}

// MaybeAdapt scales StepSize on the configured schedule (spec §4.7: "if
// acceptance-rate-since-adapt < target, scale step by x0.8, else by
// x1.25"), called once every AdaptEvery iterations.
func (r *RWMH) MaybeAdapt(iteration int) (adapted bool, rateSinceAdapt float64) {
	if r.AdaptEvery <= 0 || iteration == 0 || iteration%r.AdaptEvery != 0 {
		return false, r.rateSinceAdapt()
	}
	rate := r.rateSinceAdapt()
	if rate < r.TargetAcceptance {
		r.StepSize *= 0.8
	} else {
		r.StepSize *= 1.25
	}
	r.acceptedSinceAdapt = 0
	r.triesSinceAdapt = 0
	return true, rate
}

func (r *RWMH) rateSinceAdapt() float64 {
	if r.triesSinceAdapt == 0 {
		return 0
	}
	return float64(r.acceptedSinceAdapt) / float64(r.triesSinceAdapt)
}

// RecomputeCovariance replaces Σ with the sample covariance of the given
// in-chain parameter vectors (spec §4.7: "optionally recompute Σ from
// the in-chain samples after adapt_covariance_matrix iterations"),
// invalidating the cached Cholesky factor.
func (r *RWMH) RecomputeCovariance(samples [][]float64) {
	if len(samples) == 0 {
		return
	}
	n := len(samples[0])
	data := mat.NewDense(len(samples), n, nil)
	for i, s := range samples {
		data.SetRow(i, s)
	}
	sym := stat.CovarianceMatrix(nil, data, nil)

	cov := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cov.Set(i, j, sym.At(i, j))
		}
	}
	r.cov = cov
	r.chol = nil
}
