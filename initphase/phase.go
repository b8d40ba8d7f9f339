package initphase

import (
	"fmt"

	"github.com/popdyn/casalcore/model"
)

// Phase is the shared contract for all initialisation-phase variants
// (spec §2 component E).
type Phase interface {
	Label() string
	Run(ctx *model.Context, p *model.Partition, cycle *model.AnnualCycle) error
}

// Iterative runs the annual cycle a fixed number of times against the
// partition without advancing the model year (spec §4.1
// ExecuteForInitialisation).
type Iterative struct {
	label      string
	Iterations int
}

func NewIterative(label string, iterations int) *Iterative {
	return &Iterative{label: label, Iterations: iterations}
}

func (i *Iterative) Label() string { return i.label }

func (i *Iterative) Run(ctx *model.Context, p *model.Partition, cycle *model.AnnualCycle) error {
	return cycle.ExecuteForInitialisation(ctx, p, i.label, i.Iterations)
}

// ConvergenceQuantity is the minimal view of a derived quantity a
// DerivedQuantity phase watches for convergence; derivedquantity.SSB
// satisfies it.
type ConvergenceQuantity interface {
	Value(year int) float64
}

// DerivedQuantity iterates the annual cycle, re-checking a watched
// quantity (typically SSB) after every pass, until its change between
// passes is less than Tolerance·max(|value|, 1) or MaxIterations is
// reached (spec §2
// component E: "derived-quantity" initialisation phase).
type DerivedQuantity struct {
	label         string
	Quantity      ConvergenceQuantity
	WatchYear     int
	Tolerance     float64
	MaxIterations int
}

func NewDerivedQuantity(label string, quantity ConvergenceQuantity, watchYear int, tolerance float64, maxIterations int) *DerivedQuantity {
	if tolerance <= 0 {
		tolerance = 1e-6
	}
	if maxIterations <= 0 {
		maxIterations = 1000
	}
	return &DerivedQuantity{label: label, Quantity: quantity, WatchYear: watchYear, Tolerance: tolerance, MaxIterations: maxIterations}
}

func (d *DerivedQuantity) Label() string { return d.label }

func (d *DerivedQuantity) Run(ctx *model.Context, p *model.Partition, cycle *model.AnnualCycle) error {
	prev := d.Quantity.Value(d.WatchYear)
	for iter := 0; iter < d.MaxIterations; iter++ {
		if err := cycle.ExecuteForInitialisation(ctx, p, d.label, 1); err != nil {
			return err
		}
		cur := d.Quantity.Value(d.WatchYear)
		if iter > 0 && absDiff(cur, prev) < d.Tolerance*max1(absDiff(cur, 0), 1) {
			return nil
		}
		prev = cur
	}
	return nil
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

func max1(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// CInitial seeds the partition directly from an observed age
// composition, scaled to a total abundance, rather than iterating the
// annual cycle (spec §2 component E: "C-initial (observed age
// composition)"). Run scales ProportionsAge directly. DependsOnPhase
// optionally names an earlier phase; it is checked once, at Validate
// time, by ValidatePhaseDependency (spec §9's IsPhaseDefined open
// question), and neither NewCInitial nor Run checks it.
type CInitial struct {
	label          string
	Category       string
	ProportionsAge map[int]float64
	Total          float64
	DependsOnPhase string
}

func NewCInitial(label, category string, proportionsAge map[int]float64, total float64, dependsOnPhase string) *CInitial {
	return &CInitial{label: label, Category: category, ProportionsAge: proportionsAge, Total: total, DependsOnPhase: dependsOnPhase}
}

func (c *CInitial) Label() string { return c.label }

func (c *CInitial) Run(ctx *model.Context, p *model.Partition, cycle *model.AnnualCycle) error {
	cat := p.Category(c.Category)
	if cat == nil {
		return fmt.Errorf("c-initial phase %q: unknown category %q", c.label, c.Category)
	}
	var sum float64
	for _, v := range c.ProportionsAge {
		sum += v
	}
	if sum <= 0 {
		return fmt.Errorf("c-initial phase %q: proportions-at-age sum to zero", c.label)
	}
	for age, prop := range c.ProportionsAge {
		idx, err := p.Grid.IndexOfAge(age)
		if err != nil {
			continue
		}
		cat.Data[idx] = c.Total * prop / sum
	}
	return nil
}

// ValidatePhaseDependency checks DependsOnPhase names a phase present in
// order — the sole check site for the IsPhaseDefined question (spec §9),
// run once at Validate time rather than re-checked at Build.
func (c *CInitial) ValidatePhaseDependency(order []string) error {
	if c.DependsOnPhase == "" {
		return nil
	}
	for _, label := range order {
		if label == c.DependsOnPhase {
			return nil
		}
	}
	return fmt.Errorf("c-initial phase %q depends on undefined phase %q", c.label, c.DependsOnPhase)
}
