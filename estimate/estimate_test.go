package estimate

import (
	"math"
	"testing"
)

func TestBindPushesValueToTarget(t *testing.T) {
	var target float64
	e := &Estimate{Label: "a50", Value: 8}
	e.Bind(&target)
	if target != 8 {
		t.Errorf("got %v want 8", target)
	}
	e.SetValue(10)
	if target != 10 {
		t.Errorf("SetValue did not propagate: got %v want 10", target)
	}
}

func TestManagerForPhaseAccumulates(t *testing.T) {
	m := NewManager()
	m.Add(&Estimate{Label: "a", IsEstimated: true, Phase: 1, Lower: 0, Upper: 10, Value: 5})
	m.Add(&Estimate{Label: "b", IsEstimated: true, Phase: 2, Lower: 0, Upper: 10, Value: 5})
	m.Add(&Estimate{Label: "c", IsEstimated: false, Phase: 1, Lower: 0, Upper: 10, Value: 5})

	if got := len(m.ForPhase(1)); got != 1 {
		t.Errorf("phase 1: got %d want 1", got)
	}
	if got := len(m.ForPhase(2)); got != 2 {
		t.Errorf("phase 2: got %d want 2", got)
	}
	if got := m.MaxPhase(); got != 2 {
		t.Errorf("MaxPhase: got %d want 2", got)
	}
}

func TestNormalPriorZeroAtMean(t *testing.T) {
	e := &Estimate{Label: "p", Value: 5, Prior: PriorNormal, PriorParams: []float64{5, 1}}
	score, err := e.PriorScore()
	if err != nil {
		t.Fatalf("PriorScore: %v", err)
	}
	if math.Abs(score) > 1e-9 {
		t.Errorf("expected zero penalty at the prior mean, got %v", score)
	}
}

func TestValidateCatchesOutOfBoundsValue(t *testing.T) {
	m := NewManager()
	m.Add(&Estimate{Label: "a", IsEstimated: true, Lower: 0, Upper: 10, Value: 20})
	if err := m.Validate(); err == nil {
		t.Errorf("expected a validation error for an out-of-bounds value")
	}
}

func TestSetValuesRequiresMatchingLength(t *testing.T) {
	estimates := []*Estimate{{Label: "a"}, {Label: "b"}}
	if err := SetValues(estimates, []float64{1}); err == nil {
		t.Errorf("expected a length-mismatch error")
	}
}
