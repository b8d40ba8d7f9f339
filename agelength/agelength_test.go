package agelength

import (
	"math"
	"testing"

	"github.com/popdyn/casalcore/model"
)

// TestTransitionRowSumsToOne matches spec §8's Age-length transition
// scenario: Linf=80, k=0.2, t0=0, cv=0.1, age 5, length bins 20..60 step
// 5 with a plus group. Mu(5) = 80*(1-exp(-1)) ≈ 50.57, so the row should
// peak at the bin containing that mean and sum to 1 within 1e-9.
func TestTransitionRowSumsToOne(t *testing.T) {
	growth := NewVonBertalanffy(VonBertalanffyConfig{Linf: 80, K: 0.2, T0: 0})
	al := NewAgeLength(Config{
		Label:        "al",
		Growth:       growth,
		CVFirst:      0.1,
		CVLast:       0.1,
		MinAge:       5,
		MaxAge:       5,
		Distribution: DistributionNormal,
		CDFVariant:   CDFPrecise,
	})

	grid := model.Grid{
		Kind:          model.GridLength,
		Lengths:       []float64{20, 25, 30, 35, 40, 45, 50, 55, 60},
		LengthPlusGrp: true,
	}

	rows, err := al.Transition(grid, 2020, 0)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 age row, got %d", len(rows))
	}
	row := rows[0]

	var sum float64
	peakIdx := 0
	peakVal := -1.0
	for i, p := range row {
		sum += p
		if p > peakVal {
			peakVal = p
			peakIdx = i
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("row does not sum to 1: got %v", sum)
	}

	mu := vonBertalanffyMean(80, 0.2, 0, 5)
	if mu < 50 || mu > 51 {
		t.Fatalf("sanity check on mu failed: %v", mu)
	}
	// mu ≈ 50.57 falls in the 50..55 bin, index 6.
	if peakIdx != 6 {
		t.Errorf("expected peak at bin index 6 (50..55), got %d (value %v)", peakIdx, peakVal)
	}
}

// TestCachedTransitionReused verifies the second call for the same
// (year, timeStep) returns the cached matrix rather than recomputing
// from a mutated growth curve.
func TestCachedTransitionReused(t *testing.T) {
	growth := NewVonBertalanffy(VonBertalanffyConfig{Linf: 80, K: 0.2, T0: 0})
	al := NewAgeLength(Config{
		Growth: growth, CVFirst: 0.1, CVLast: 0.1, MinAge: 5, MaxAge: 5,
		Distribution: DistributionNormal, CDFVariant: CDFPrecise,
	})
	grid := model.Grid{Kind: model.GridLength, Lengths: []float64{20, 40, 60}, LengthPlusGrp: true}

	first, err := al.Transition(grid, 2020, 0)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	growth.Linf = 200 // mutate without MarkDirty
	second, err := al.Transition(grid, 2020, 0)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if second[0][0] != first[0][0] {
		t.Errorf("expected cached row to be reused, got different values")
	}

	al.MarkDirty()
	third, err := al.Transition(grid, 2020, 0)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if third[0][0] == first[0][0] {
		t.Errorf("expected MarkDirty to force a rebuild reflecting the mutated growth curve")
	}
}

// TestCVInterpolationByAge checks CVAt linearly interpolates between
// CVFirst and CVLast across the age range.
func TestCVInterpolationByAge(t *testing.T) {
	growth := NewVonBertalanffy(VonBertalanffyConfig{Linf: 80, K: 0.2, T0: 0})
	al := NewAgeLength(Config{
		Growth: growth, CVFirst: 0.1, CVLast: 0.2, MinAge: 0, MaxAge: 10,
	})
	if got := al.CVAt(2020, 0, 0); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("CV at MinAge: got %v want 0.1", got)
	}
	if got := al.CVAt(2020, 0, 10); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("CV at MaxAge: got %v want 0.2", got)
	}
	if got := al.CVAt(2020, 0, 5); math.Abs(got-0.15) > 1e-9 {
		t.Errorf("CV at midpoint: got %v want 0.15", got)
	}
}

// TestPopulateNumbersAtLengthConservesMass checks that, with no
// selectivity factor, the total numbers-at-length equals the total
// numbers-at-age (mass is redistributed, not created or destroyed).
func TestPopulateNumbersAtLengthConservesMass(t *testing.T) {
	rows := [][]float64{
		{0.2, 0.3, 0.5},
		{0.1, 0.4, 0.5},
	}
	numbersAtAge := []float64{100, 200}
	out := make([]float64, 3)
	if err := PopulateNumbersAtLength(rows, numbersAtAge, out, nil, 0, nil); err != nil {
		t.Fatalf("PopulateNumbersAtLength: %v", err)
	}
	var total float64
	for _, v := range out {
		total += v
	}
	if math.Abs(total-300) > 1e-9 {
		t.Errorf("mass not conserved: got %v want 300", total)
	}
}

// TestPopulateNumbersAtLengthAppliesSelectivity checks the selectivity
// factor scales each age's contribution before distributing it.
func TestPopulateNumbersAtLengthAppliesSelectivity(t *testing.T) {
	rows := [][]float64{{1.0}}
	numbersAtAge := []float64{100}
	out := make([]float64, 1)
	sel := func(age int) float64 { return 0.5 }
	if err := PopulateNumbersAtLength(rows, numbersAtAge, out, sel, 5, nil); err != nil {
		t.Fatalf("PopulateNumbersAtLength: %v", err)
	}
	if out[0] != 50 {
		t.Errorf("got %v want 50", out[0])
	}
}

func TestPowerLengthWeight(t *testing.T) {
	lw := NewPowerLengthWeight("lw", 0.00001, 3.0)
	got := lw.MeanWeight(50)
	want := 0.00001 * math.Pow(50, 3)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("got %v want %v", got, want)
	}
	if got := lw.MeanWeight(0); got != 0 {
		t.Errorf("zero length should give zero weight, got %v", got)
	}
}
