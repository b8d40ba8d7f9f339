package testutil

import "testing"

func TestLoadScenarioParsesAgeLengthFixture(t *testing.T) {
	s := LoadScenario(t, "agelength_vonbert")
	if s.AgeLength.Linf != 80 {
		t.Errorf("Linf = %v, want 80", s.AgeLength.Linf)
	}
	if s.AgeLength.Age != 5 {
		t.Errorf("Age = %v, want 5", s.AgeLength.Age)
	}
	if s.Expected.PeakBinIndex != 6 {
		t.Errorf("PeakBinIndex = %v, want 6", s.Expected.PeakBinIndex)
	}
}

func TestLoadScenarioParsesMinimiserFixture(t *testing.T) {
	s := LoadScenario(t, "minimiser_twosex")
	if len(s.Expected.ConvergedParameters) != 4 {
		t.Fatalf("expected 4 converged parameters, got %d", len(s.Expected.ConvergedParameters))
	}
	AssertFloat64Equal(t, "objective", 1978.519, s.Expected.Objective, 1e-6)
}

func TestAssertFloat64WithinCatchesDivergence(t *testing.T) {
	fake := &testing.T{}
	AssertFloat64Within(fake, "check", 1.0, 1.0+1e-3, 1e-9)
	if !fake.Failed() {
		t.Errorf("expected AssertFloat64Within to flag a difference larger than tolerance")
	}
}
