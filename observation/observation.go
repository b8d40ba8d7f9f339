// Package observation binds a model prediction function to observed
// data and a likelihood, yielding a single comparison the objective
// function can sum (spec §2 component F).
package observation

import (
	"fmt"
	"math"

	"github.com/popdyn/casalcore/likelihood"
	"github.com/popdyn/casalcore/model"
)

// Predictor computes the model's predicted vector for an observation
// from the current partition state, in the same order/length as
// Observation.Observed.
type Predictor func(ctx *model.Context, p *model.Partition) ([]float64, error)

// Observation is one configured comparison between model predictions and
// data (spec §2 component F, spec §4.1 "observations attached to time
// step k see the partition state immediately after that step's
// processes").
type Observation struct {
	label           string
	TimeStep        int
	Likelihood      likelihood.Likelihood
	Observed        []float64
	ErrorValues     []float64
	Predict         Predictor
	LikelihoodWeight float64

	lastPredicted []float64
	lastScore     float64
}

func NewObservation(label string, timeStep int, lik likelihood.Likelihood, observed, errorValues []float64, predict Predictor) *Observation {
	return &Observation{
		label: label, TimeStep: timeStep, Likelihood: lik,
		Observed: observed, ErrorValues: errorValues, Predict: predict,
		LikelihoodWeight: 1,
	}
}

// CollectionTimeStep satisfies model.ObservationSink.
func (o *Observation) CollectionTimeStep() int { return o.TimeStep }

// Snapshot computes and caches this observation's predicted vector and
// likelihood score for the partition state right after its time step.
func (o *Observation) Snapshot(ctx *model.Context, p *model.Partition) {
	predicted, err := o.Predict(ctx, p)
	if err != nil {
		o.lastPredicted = nil
		o.lastScore = math.Inf(1)
		return
	}
	o.lastPredicted = predicted
	score, err := o.Likelihood.NegLogLikelihood(o.Observed, predicted, o.ErrorValues)
	if err != nil {
		o.lastScore = math.Inf(1)
		return
	}
	o.lastScore = score * o.LikelihoodWeight
}

// Score returns the weighted negative-log-likelihood score computed by
// the most recent Snapshot.
func (o *Observation) Score() float64 { return o.lastScore }

// Predicted returns the predicted vector computed by the most recent
// Snapshot, for reporting.
func (o *Observation) Predicted() []float64 { return o.lastPredicted }

func (o *Observation) Label() string { return o.label }

func (o *Observation) validate() error {
	if o.Predict == nil {
		return fmt.Errorf("observation %q has no predictor", o.label)
	}
	if o.Likelihood == nil {
		return fmt.Errorf("observation %q has no likelihood", o.label)
	}
	if len(o.Observed) == 0 {
		return fmt.Errorf("observation %q has no observed data", o.label)
	}
	return nil
}

// Validate reports a configuration error for this observation, e.g. a
// missing predictor or likelihood; called once during Build.
func (o *Observation) Validate() error { return o.validate() }
