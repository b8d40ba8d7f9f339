package mcmc

import (
	"math"
	"math/rand"

	"github.com/popdyn/casalcore/gradient"
)

// LogPosterior returns the log-posterior density (the negative of the
// objective score) at a scaled point q, used as both the HMC potential
// and, via its gradient, the leap-frog force.
type LogPosterior func(q []float64) float64

// HMC implements leap-frog Hamiltonian Monte Carlo operating entirely in
// scaled space (spec §4.7): momentum p and position q both updated by
// leap-frog steps, q unscaled only to invoke the model for scoring.
type HMC struct {
	LeapfrogSteps int
	LeapfrogDelta float64
	rng           *rand.Rand
}

func NewHMC(leapfrogSteps int, leapfrogDelta float64, rng *rand.Rand) *HMC {
	return &HMC{LeapfrogSteps: leapfrogSteps, LeapfrogDelta: leapfrogDelta, rng: rng}
}

// Propose runs LeapfrogSteps leap-frog updates from q, using
// gradientStepSize/evaluate to compute ∇log π at each half-step (spec
// §4.4, §4.7):
//
//	p ← p + (δ/2)·∇log π(q); q ← q + δ·p; p ← p + (δ/2)·∇log π(q)
//
// Returns the proposed position and the final momentum. Discards the
// initial momentum draw; callers that need the acceptance ratio's
// kinetic-energy term (both endpoints of the trajectory) should use
// ProposeWithMomentum instead.
func (h *HMC) Propose(q []float64, gradientStepSize float64, evaluate gradient.Evaluator, objective LogPosterior) (qNew, p []float64) {
	qNew, _, p = h.ProposeWithMomentum(q, gradientStepSize, evaluate, objective)
	return qNew, p
}

// ProposeWithMomentum is Propose but also returns the initial momentum
// draw the trajectory started from. AcceptanceRatio needs both endpoints
// of the same trajectory's momentum, not a fresh draw, to compare
// Hamiltonians correctly (spec §4.7).
func (h *HMC) ProposeWithMomentum(q []float64, gradientStepSize float64, evaluate gradient.Evaluator, objective LogPosterior) (qNew, pInitial, pFinal []float64) {
	n := len(q)
	pInitial = make([]float64, n)
	for i := range pInitial {
		pInitial[i] = h.rng.NormFloat64()
	}
	p := append([]float64(nil), pInitial...)

	qCur := append([]float64(nil), q...)
	grad := gradLogPosterior(qCur, gradientStepSize, evaluate)

	for step := 0; step < h.LeapfrogSteps; step++ {
		for i := range p {
			p[i] += (h.LeapfrogDelta / 2) * grad[i]
		}
		for i := range qCur {
			qCur[i] += h.LeapfrogDelta * p[i]
		}
		grad = gradLogPosterior(qCur, gradientStepSize, evaluate)
		for i := range p {
			p[i] += (h.LeapfrogDelta / 2) * grad[i]
		}
	}
	return qCur, pInitial, p
}

// gradLogPosterior turns the objective's finite-difference gradient
// (which descends the objective, i.e. ascends -log π) into ∇log π by
// negating it.
func gradLogPosterior(q []float64, stepSize float64, evaluate gradient.Evaluator) []float64 {
	g := gradient.At(q, stepSize, evaluate)
	out := make([]float64, len(g))
	for i, v := range g {
		out[i] = -v
	}
	return out
}

// AcceptanceRatio computes min(1, exp(prevScore - newScore +
// kineticPrev - kineticNew)) (spec §4.7): prevScore/newScore are
// objective values (−log π), so the Hamiltonian's potential-energy
// difference is newScore − prevScore and must be combined with the
// leap-frog momentum's kinetic-energy difference.
func AcceptanceRatio(prevScore, newScore float64, pPrev, pNew []float64) float64 {
	kineticPrev := kineticEnergy(pPrev)
	kineticNew := kineticEnergy(pNew)
	logRatio := (prevScore + kineticPrev) - (newScore + kineticNew)
	return math.Min(1, math.Exp(logRatio))
}

func kineticEnergy(p []float64) float64 {
	var sum float64
	for _, v := range p {
		sum += v * v
	}
	return 0.5 * sum
}

// Accept draws U(0,1) and compares it to ratio, the shared RWMH/HMC
// acceptance test (spec §4.7: "rejection policy identical to RWMH").
func (h *HMC) Accept(ratio float64) bool {
	return h.rng.Float64() < ratio
}
