// Package estimate implements the registry of addressable scalar
// parameters estimation and MCMC mutate (spec §2 component G): bounds,
// phase assignment, priors, and the optional reparameterisation a
// component exposes for them.
package estimate

import (
	"fmt"
	"math"
)

// PriorKind selects the prior density used by the objective function's
// additional-priors term.
type PriorKind int

const (
	PriorNone PriorKind = iota
	PriorUniform
	PriorNormal
	PriorLognormal
	PriorBeta
)

// Estimate is a parameter handle (spec §3 Data Model "Estimate"):
// {label, current-value, lower-bound, upper-bound, phase, is-estimated,
// is-in-objective, prior-kind, prior-parameters}. Bounds are immutable
// after Build; Value is the sole field the estimation/MCMC drivers
// mutate.
type Estimate struct {
	Label         string
	Value         float64
	Lower         float64
	Upper         float64
	Phase         int
	IsEstimated   bool
	IsInObjective bool
	Prior         PriorKind
	PriorParams   []float64

	// target is where Value is applied back into the owning component;
	// set by whatever registers this Estimate (selectivity.Registry etc).
	target *float64
}

// Bind connects this Estimate's current value to a component's live
// field, e.g. a selectivity's *float64 addressable. SetValue pushes
// through to it immediately.
func (e *Estimate) Bind(target *float64) {
	e.target = target
	if target != nil {
		*target = e.Value
	}
}

// SetValue updates the estimate's current value and, if bound, the
// underlying component field.
func (e *Estimate) SetValue(v float64) {
	e.Value = v
	if e.target != nil {
		*e.target = v
	}
}

// PriorScore evaluates the negative-log prior density at the estimate's
// current value, part of the objective function's additional-priors
// term (spec §2 component H).
func (e *Estimate) PriorScore() (float64, error) {
	switch e.Prior {
	case PriorNone, PriorUniform:
		return 0, nil
	case PriorNormal:
		if len(e.PriorParams) < 2 {
			return 0, fmt.Errorf("estimate %q: normal prior requires mean and sigma", e.Label)
		}
		mu, sigma := e.PriorParams[0], e.PriorParams[1]
		if sigma <= 0 {
			return 0, fmt.Errorf("estimate %q: normal prior sigma must be > 0", e.Label)
		}
		z := (e.Value - mu) / sigma
		return 0.5*z*z + math.Log(sigma), nil
	case PriorLognormal:
		if len(e.PriorParams) < 2 {
			return 0, fmt.Errorf("estimate %q: lognormal prior requires mu and cv", e.Label)
		}
		if e.Value <= 0 {
			return math.Inf(1), nil
		}
		muLog, cv := e.PriorParams[0], e.PriorParams[1]
		sigma2 := math.Log(1 + cv*cv)
		sigma := math.Sqrt(sigma2)
		z := (math.Log(e.Value) - muLog) / sigma
		return 0.5*z*z + math.Log(sigma) + math.Log(e.Value), nil
	case PriorBeta:
		if len(e.PriorParams) < 2 {
			return 0, fmt.Errorf("estimate %q: beta prior requires alpha and beta", e.Label)
		}
		alpha, beta := e.PriorParams[0], e.PriorParams[1]
		if e.Value <= 0 || e.Value >= 1 {
			return math.Inf(1), nil
		}
		logB, _ := math.Lgamma(alpha)
		lb, _ := math.Lgamma(beta)
		lab, _ := math.Lgamma(alpha + beta)
		logBeta := logB + lb - lab
		return -((alpha-1)*math.Log(e.Value) + (beta-1)*math.Log(1-e.Value)) + logBeta, nil
	default:
		return 0, fmt.Errorf("estimate %q: unknown prior kind %v", e.Label, e.Prior)
	}
}

// Manager is the registry of addressable estimates, the sole state
// mutated by the estimation and MCMC drivers (spec §3 Ownership).
type Manager struct {
	order     []string
	estimates map[string]*Estimate
}

func NewManager() *Manager {
	return &Manager{estimates: make(map[string]*Estimate)}
}

// Add registers an estimate under its label. Adding a second estimate
// with a label already present replaces the earlier one and keeps its
// position in registration order; Validate does not detect duplicates.
func (m *Manager) Add(e *Estimate) {
	if _, exists := m.estimates[e.Label]; !exists {
		m.order = append(m.order, e.Label)
	}
	m.estimates[e.Label] = e
}

func (m *Manager) Get(label string) (*Estimate, bool) {
	e, ok := m.estimates[label]
	return e, ok
}

// Estimated returns, in registration order, every estimate flagged
// IsEstimated — the vector the bound-scaling core and minimiser operate
// on.
func (m *Manager) Estimated() []*Estimate {
	out := make([]*Estimate, 0, len(m.order))
	for _, label := range m.order {
		e := m.estimates[label]
		if e.IsEstimated {
			out = append(out, e)
		}
	}
	return out
}

// ForPhase returns the estimated estimates whose Phase is <= the given
// phase (spec §4.6: estimation proceeds phase by phase, accumulating
// estimable parameters as phases increase).
func (m *Manager) ForPhase(phase int) []*Estimate {
	out := make([]*Estimate, 0, len(m.order))
	for _, label := range m.order {
		e := m.estimates[label]
		if e.IsEstimated && e.Phase <= phase {
			out = append(out, e)
		}
	}
	return out
}

// MaxPhase returns the highest phase assigned to any estimated estimate.
func (m *Manager) MaxPhase() int {
	max := 0
	for _, label := range m.order {
		e := m.estimates[label]
		if e.IsEstimated && e.Phase > max {
			max = e.Phase
		}
	}
	return max
}

// Values returns the current values of the given estimates, in order.
func Values(estimates []*Estimate) []float64 {
	out := make([]float64, len(estimates))
	for i, e := range estimates {
		out[i] = e.Value
	}
	return out
}

// SetValues pushes vals into estimates in order; lengths must match.
func SetValues(estimates []*Estimate, vals []float64) error {
	if len(estimates) != len(vals) {
		return fmt.Errorf("estimate/value count mismatch: %d vs %d", len(estimates), len(vals))
	}
	for i, e := range estimates {
		e.SetValue(vals[i])
	}
	return nil
}

// Validate checks every estimate's bounds and current value for basic
// consistency (spec §3: bounds immutable after Build).
func (m *Manager) Validate() error {
	for _, label := range m.order {
		e := m.estimates[label]
		if e.Lower > e.Upper {
			return fmt.Errorf("estimate %q: lower bound %.6g exceeds upper bound %.6g", e.Label, e.Lower, e.Upper)
		}
		if e.IsEstimated && (e.Value < e.Lower || e.Value > e.Upper) {
			return fmt.Errorf("estimate %q: initial value %.6g outside bounds [%.6g, %.6g]", e.Label, e.Value, e.Lower, e.Upper)
		}
	}
	return nil
}

// Labels returns the registration-order labels of the given estimates.
func Labels(estimates []*Estimate) []string {
	out := make([]string, len(estimates))
	for i, e := range estimates {
		out[i] = e.Label
	}
	return out
}
