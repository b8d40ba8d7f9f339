package initphase

import (
	"testing"

	"github.com/popdyn/casalcore/model"
)

func newCycle(proc model.Process) *model.AnnualCycle {
	return model.NewAnnualCycle([]*model.TimeStep{{Label: "step", Processes: []model.Process{proc}}})
}

type addOneProcess struct{}

func (addOneProcess) Label() string        { return "add-one" }
func (addOneProcess) MassPreserving() bool { return false }
func (addOneProcess) DoExecute(ctx *model.Context, p *model.Partition) error {
	cat := p.Category("adult")
	cat.Data[0]++
	return nil
}

func TestIterativeRunsFixedIterations(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 3}
	p := model.Build(grid, []string{"adult"}, nil)
	cycle := newCycle(addOneProcess{})
	ctx := model.NewContext(0, 1)

	phase := NewIterative("equilibrium", 5)
	if err := phase.Run(ctx, p, cycle); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := p.Category("adult").Data[0]; got != 5 {
		t.Errorf("got %v want 5", got)
	}
}

type fakeQuantity struct{ calls int }

func (f *fakeQuantity) Value(year int) float64 {
	f.calls++
	if f.calls > 3 {
		return 100
	}
	return float64(f.calls) * 100
}

func TestDerivedQuantityStopsOnConvergence(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 3}
	p := model.Build(grid, []string{"adult"}, nil)
	cycle := newCycle(addOneProcess{})
	ctx := model.NewContext(0, 1)

	q := &fakeQuantity{}
	phase := NewDerivedQuantity("dq", q, 2020, 1e-6, 100)
	if err := phase.Run(ctx, p, cycle); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if q.calls > 10 {
		t.Errorf("expected early convergence, ran %d iterations", q.calls)
	}
}

func TestCInitialSeedsFromProportions(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 3}
	p := model.Build(grid, []string{"adult"}, nil)
	cycle := newCycle(addOneProcess{})
	ctx := model.NewContext(0, 1)

	phase := NewCInitial("cinit", "adult", map[int]float64{1: 0.2, 2: 0.3, 3: 0.5}, 1000, "")
	if err := phase.Run(ctx, p, cycle); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []float64{200, 300, 500}
	for i, w := range want {
		if got := p.Category("adult").Data[i]; got != w {
			t.Errorf("bin %d: got %v want %v", i, got, w)
		}
	}
}

func TestCInitialValidatesPhaseDependency(t *testing.T) {
	c := NewCInitial("cinit", "adult", nil, 0, "equilibrium")
	if err := c.ValidatePhaseDependency([]string{"equilibrium", "cinit"}); err != nil {
		t.Errorf("expected dependency to validate, got %v", err)
	}
	if err := c.ValidatePhaseDependency([]string{"cinit"}); err == nil {
		t.Errorf("expected missing dependency to error")
	}
}
