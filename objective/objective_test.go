package objective

import (
	"math"
	"testing"

	"github.com/popdyn/casalcore/estimate"
)

type constScore struct{ v float64 }

func (c constScore) Score() float64 { return c.v }

func TestEvaluateSumsLikelihoodAndPenalty(t *testing.T) {
	estimates := []*estimate.Estimate{{Label: "a", Value: 5, Lower: 0, Upper: 10, IsInObjective: false}}
	scaled := []float64{0}
	c, err := Evaluate([]ScoredObservation{constScore{v: 1.5}, constScore{v: 2.5}}, estimates, scaled, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if math.Abs(c.Likelihood-4) > 1e-9 {
		t.Errorf("likelihood: got %v want 4", c.Likelihood)
	}
	if c.Penalty != 0 {
		t.Errorf("expected zero penalty for interior scaled value, got %v", c.Penalty)
	}
	if math.Abs(c.Total-4) > 1e-9 {
		t.Errorf("total: got %v want 4", c.Total)
	}
}

func TestEvaluateInfiniteOnInfiniteObservationScore(t *testing.T) {
	c, err := Evaluate([]ScoredObservation{constScore{v: math.Inf(1)}}, nil, nil, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !math.IsInf(c.Total, 1) {
		t.Errorf("expected an infinite total, got %v", c.Total)
	}
}

func TestEvaluateAppliesBoundaryPenaltyOutsideInterior(t *testing.T) {
	estimates := []*estimate.Estimate{{Label: "a", Value: 9.999, Lower: 0, Upper: 10}}
	c, err := Evaluate(nil, estimates, []float64{5}, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if c.Penalty <= 0 {
		t.Errorf("expected a positive penalty for a scaled value outside the interior, got %v", c.Penalty)
	}
}
