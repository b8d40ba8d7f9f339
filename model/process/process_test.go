package process

import (
	"math"
	"testing"

	"github.com/popdyn/casalcore/model"
)

func newTestContext() *model.Context {
	ctx := model.NewContext(0, 42)
	return ctx.At(2020, 0)
}

func TestAgeingShiftsAndAccumulatesPlusGroup(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 4, PlusGroup: true}
	p := model.Build(grid, []string{"adult"}, nil)
	cat := p.Category("adult")
	copy(cat.Data, []float64{10, 20, 30, 40})

	a := NewAgeing("ageing", nil)
	if err := model.RunProcess(newTestContext(), p, a); err != nil {
		t.Fatalf("ageing: %v", err)
	}
	want := []float64{0, 10, 20, 70} // 10 and 20 shift up one bin; 30 joins 40 in the plus group
	for i, w := range want {
		if cat.Data[i] != w {
			t.Errorf("bin %d: got %v want %v", i, cat.Data[i], w)
		}
	}
}

func TestMaturationMovesBetweenCategoriesConservingTotal(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 3}
	p := model.Build(grid, []string{"immature", "mature"}, nil)
	copy(p.Category("immature").Data, []float64{100, 100, 100})

	m := NewMaturation("maturation", "immature", "mature", nil)
	before := p.Total()
	if err := model.RunProcess(newTestContext(), p, m); err != nil {
		t.Fatalf("maturation: %v", err)
	}
	after := p.Total()
	if math.Abs(after-before) > 1e-9 {
		t.Errorf("total not conserved: before=%v after=%v", before, after)
	}
	// With a nil selectivity (rate 1), everything should have moved.
	if p.Category("immature").Total() != 0 {
		t.Errorf("expected immature category fully drained, got %v", p.Category("immature").Total())
	}
	if p.Category("mature").Total() != 300 {
		t.Errorf("expected mature category to hold 300, got %v", p.Category("mature").Total())
	}
}

func TestRecruitmentAddsNumbersAtMinAge(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 5}
	p := model.Build(grid, []string{"juvenile"}, nil)

	r := NewRecruitment("recruitment", RecruitmentConstant, 1000, []Proportion{{Category: "juvenile", Share: 1}})
	if err := model.RunProcess(newTestContext(), p, r); err != nil {
		t.Fatalf("recruitment: %v", err)
	}
	if p.Category("juvenile").Data[0] != 1000 {
		t.Errorf("got %v want 1000 at min age", p.Category("juvenile").Data[0])
	}
}

func TestMortalityReducesNumbers(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 5}
	p := model.Build(grid, []string{"adult"}, nil)
	cat := p.Category("adult")
	for i := range cat.Data {
		cat.Data[i] = 1000
	}

	m := NewMortality("mortality", 0.2, nil, false)
	if err := model.RunProcess(newTestContext(), p, m); err != nil {
		t.Fatalf("mortality: %v", err)
	}
	want := 1000 * math.Exp(-0.2)
	if math.Abs(cat.Data[0]-want) > 1e-9 {
		t.Errorf("got %v want %v", cat.Data[0], want)
	}
}

type fakeSSB struct{ v float64 }

func (f fakeSSB) Value(year int) float64 { return f.v }

func TestBevertonHoltRecruitmentIsNonNegative(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 3}
	p := model.Build(grid, []string{"juvenile"}, nil)

	r := NewRecruitment("bh", RecruitmentBevertonHolt, 1e6, []Proportion{{Category: "juvenile", Share: 1}})
	r.Steepness = 0.75
	r.SSBAtR0 = 5000
	r.SSB = fakeSSB{v: 3000}
	if err := model.RunProcess(newTestContext(), p, r); err != nil {
		t.Fatalf("recruitment: %v", err)
	}
	if p.Category("juvenile").Data[0] <= 0 {
		t.Errorf("expected positive recruitment, got %v", p.Category("juvenile").Data[0])
	}
}
