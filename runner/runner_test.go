package runner

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/popdyn/casalcore/estimate"
	"github.com/popdyn/casalcore/likelihood"
	"github.com/popdyn/casalcore/mcmc"
	"github.com/popdyn/casalcore/minimiser"
	"github.com/popdyn/casalcore/model"
	"github.com/popdyn/casalcore/model/process"
	"github.com/popdyn/casalcore/objective"
	"github.com/popdyn/casalcore/observation"
)

// newTestSession builds a minimal single-category age-structured session:
// constant recruitment feeding a natural-mortality-only cycle, with one
// observation comparing total abundance against a fixed target.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 5, PlusGroup: true}
	partition := model.Build(grid, []string{"all"}, nil)
	ctx := model.NewContext(0, 11)

	recruit := process.NewRecruitment("recruitment", process.RecruitmentConstant, 1000,
		[]process.Proportion{{Category: "all", Share: 1}})
	mortality := process.NewMortality("natural_mortality", 0.2, nil, false)

	step := &model.TimeStep{Label: "annual", Processes: []model.Process{recruit, mortality}}
	cycle := model.NewAnnualCycle([]*model.TimeStep{step})

	mgr := estimate.NewManager()
	m := &estimate.Estimate{Label: "M", Value: 0.2, Lower: 0.01, Upper: 1.0, Phase: 1, IsEstimated: true, IsInObjective: false}
	m.Bind(&mortality.NaturalRate)
	mgr.Add(m)

	predict := func(_ *model.Context, p *model.Partition) ([]float64, error) {
		return []float64{p.Total()}, nil
	}
	obs := observation.NewObservation("total_abundance", 0, likelihood.NewNormal("total_abundance"),
		[]float64{3000}, []float64{100}, predict)
	cycle.Subscribe(obs)

	return &Session{
		Cycle:        cycle,
		Partition:    partition,
		Ctx:          ctx,
		StartYear:    2000,
		EndYear:      2004,
		Estimates:    mgr,
		Observations: []objective.ScoredObservation{obs},
		Minimiser:    minimiser.DefaultConfig(),
	}
}

func TestRunBasicAdvancesPartition(t *testing.T) {
	s := newTestSession(t)
	if err := RunBasic(s); err != nil {
		t.Fatalf("RunBasic: %v", err)
	}
	if s.Partition.Total() <= 0 {
		t.Errorf("expected positive total abundance after a basic run, got %v", s.Partition.Total())
	}
}

func TestRunProjectionExtendsBeyondEndYear(t *testing.T) {
	s := newTestSession(t)
	if err := RunProjection(s, 3); err != nil {
		t.Fatalf("RunProjection: %v", err)
	}
	if s.Partition.Total() <= 0 {
		t.Errorf("expected positive total abundance after projection, got %v", s.Partition.Total())
	}
}

func TestRunProfilingReturnsNonNegativeDuration(t *testing.T) {
	s := newTestSession(t)
	d, err := RunProfiling(s, 3)
	if err != nil {
		t.Fatalf("RunProfiling: %v", err)
	}
	if d < 0 {
		t.Errorf("expected a non-negative average duration, got %v", d)
	}
}

func TestRunEstimationConvergesSingleParameter(t *testing.T) {
	s := newTestSession(t)
	result, err := RunEstimation(s)
	if err != nil {
		t.Fatalf("RunEstimation: %v", err)
	}
	if result.Evaluations == 0 {
		t.Errorf("expected at least one evaluation")
	}
	m, _ := s.Estimates.Get("M")
	if m.Value < m.Lower || m.Value > m.Upper {
		t.Errorf("estimated M %v left its declared bounds [%v, %v]", m.Value, m.Lower, m.Upper)
	}
}

func TestRunMCMCKeepsEveryLinkInScaledSpace(t *testing.T) {
	s := newTestSession(t)
	cov := mat.NewDense(1, 1, []float64{1})
	rng := rand.New(rand.NewSource(5))
	s.RWMH = mcmc.NewRWMH(cov, rng)
	s.RWMH.StepSize = 0.05
	s.ChainLength = 10
	s.Keep = 1
	s.BurnIn = 2

	chain, err := RunMCMC(s)
	if err != nil {
		t.Fatalf("RunMCMC: %v", err)
	}
	if chain.Len() != 11 {
		t.Fatalf("expected 11 kept links (0..10 with keep=1), got %d", chain.Len())
	}
	for _, link := range chain.Links {
		if len(link.ParameterValues) != 1 {
			t.Fatalf("expected one parameter value per link, got %d", len(link.ParameterValues))
		}
	}
	if chain.Links[2].StateTag != mcmc.StateMCMC {
		t.Errorf("iteration 2 with BurnIn=2 should already be tagged mcmc, got %v", chain.Links[2].StateTag)
	}
	if chain.Links[0].StateTag != mcmc.StateBurnIn {
		t.Errorf("iteration 0 with BurnIn=2 should be tagged burn_in, got %v", chain.Links[0].StateTag)
	}
}

func TestParseModeRejectsUnknownMode(t *testing.T) {
	if _, err := ParseMode("bogus"); err == nil {
		t.Errorf("expected an error for an unknown run mode")
	}
	for _, m := range []string{"basic", "estimation", "mcmc", "profiling", "projection", "simulation", "testing"} {
		if _, err := ParseMode(m); err != nil {
			t.Errorf("ParseMode(%q): %v", m, err)
		}
	}
}
