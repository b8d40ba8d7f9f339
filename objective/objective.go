// Package objective assembles the scalar the minimiser and MCMC driver
// optimise/sample (spec §2 component H): the sum of likelihood scores,
// estimate priors, additional priors, bound-scaling penalties, and
// reparameterisation Jacobians.
package objective

import (
	"math"

	"github.com/popdyn/casalcore/boundscale"
	"github.com/popdyn/casalcore/estimate"
)

// ScoredObservation is the minimal view of an observation's contribution
// the objective needs; observation.Observation satisfies it.
type ScoredObservation interface {
	Score() float64
}

// AdditionalPrior is a user-configured prior not tied to a single
// estimate (e.g. a penalty on a derived quantity); evaluated once per
// objective pass.
type AdditionalPrior func() (float64, error)

// Components breaks an objective evaluation down into the named terms
// spec §3's Chain link records: {total-score, likelihood, prior,
// penalty, additional-priors, jacobians}.
type Components struct {
	Likelihood        float64
	Prior             float64
	Penalty           float64
	AdditionalPriors  float64
	Jacobians         float64
	Total             float64
}

// Evaluate sums every term of the objective function for the current
// estimate values and observation scores (spec data flow: "collects F,
// sums H"). scaledValues/estimates must correspond positionally;
// includeJacobian is true only for HMC, which needs the log-Jacobian of
// the tan/atan reparameterisation (§4.7: "q held in scaled space").
func Evaluate(observations []ScoredObservation, estimates []*estimate.Estimate, scaledValues []float64, additionalPriors []AdditionalPrior, includeJacobian bool) (Components, error) {
	var c Components

	for _, obs := range observations {
		s := obs.Score()
		if math.IsInf(s, 1) || math.IsNaN(s) {
			return Components{Total: math.Inf(1)}, nil
		}
		c.Likelihood += s
	}

	for _, e := range estimates {
		if !e.IsInObjective {
			continue
		}
		p, err := e.PriorScore()
		if err != nil {
			return Components{}, err
		}
		if math.IsInf(p, 1) {
			return Components{Total: math.Inf(1)}, nil
		}
		c.Prior += p
	}

	for _, prior := range additionalPriors {
		p, err := prior()
		if err != nil {
			return Components{}, err
		}
		c.AdditionalPriors += p
	}

	for i, e := range estimates {
		if i >= len(scaledValues) {
			break
		}
		s := scaledValues[i]
		c.Penalty += boundscale.BoundaryPenalty(s)
		if includeJacobian {
			dpds := boundscale.DScaledDUnscaled(e.Value, e.Lower, e.Upper)
			if !math.IsNaN(dpds) && dpds > 0 {
				c.Jacobians -= math.Log(dpds)
			}
		}
	}

	c.Total = c.Likelihood + c.Prior + c.Penalty + c.AdditionalPriors + c.Jacobians
	return c, nil
}
