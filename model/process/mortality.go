package process

import (
	"math"

	"github.com/popdyn/casalcore/model"
	"github.com/popdyn/casalcore/selectivity"
)

// FishingSource is one named source of fishing mortality (e.g. a
// fishery), each with its own selectivity and exploitation/catch input.
type FishingSource struct {
	Label       string
	Selectivity selectivity.Selectivity
	// CatchByYear holds this source's fishing input for a given year: an
	// instantaneous fishing mortality rate F when UseBaranov is set,
	// otherwise a direct exploitation rate in [0,1]. Both are multiplied
	// by the source's selectivity at age.
	CatchByYear map[int]float64
}

// Mortality removes individuals via natural mortality (an instantaneous
// rate M) and zero or more fishing sources (spec §2 component D:
// "mortality (incl. Baranov)"). With UseBaranov, natural and fishing
// mortality act together as one total rate Z = M + ΣF·sel and survivors
// are N·exp(-Z); the catch equation itself is not solved, so catches are
// not converted to rates. Without it, M is applied first and each
// source's exploitation rate then removes its share in turn. Not
// mass-preserving.
type Mortality struct {
	label          string
	NaturalRate    float64 // instantaneous natural mortality M, per year
	Sources        []FishingSource
	UseBaranov     bool
	TimeStepFraction float64 // fraction of the annual M applied this time step, default 1
}

func NewMortality(label string, naturalRate float64, sources []FishingSource, useBaranov bool) *Mortality {
	return &Mortality{label: label, NaturalRate: naturalRate, Sources: sources, UseBaranov: useBaranov, TimeStepFraction: 1}
}

func (m *Mortality) Label() string        { return m.label }
func (m *Mortality) MassPreserving() bool { return false }

func (m *Mortality) DoExecute(ctx *model.Context, p *model.Partition) error {
	if p.Grid.Kind != model.GridAge {
		return &model.RangeError{Process: m.label, Reason: "mortality requires an age-indexed partition"}
	}
	mFraction := m.NaturalRate * m.TimeStepFraction
	if mFraction < 0 {
		return &model.RangeError{Process: m.label, Reason: "negative natural mortality rate"}
	}

	for _, cat := range p.Categories() {
		for i := range cat.Data {
			n := cat.Data[i]
			if n <= 0 {
				continue
			}
			age := float64(cat.MinAge + i)

			if m.UseBaranov {
				fSum := m.totalFishingRate(ctx.Year, age)
				z := mFraction + fSum
				if z <= 0 {
					continue
				}
				survival := math.Exp(-z)
				cat.Data[i] = n * survival
				continue
			}

			survival := math.Exp(-mFraction)
			remaining := n * survival
			for _, src := range m.Sources {
				rate, ok := src.CatchByYear[ctx.Year]
				if !ok {
					continue
				}
				sel := 1.0
				if src.Selectivity != nil {
					sel = src.Selectivity.Value(age)
				}
				exploitation := rate * sel
				if exploitation < 0 || exploitation > 1 {
					return &model.RangeError{Process: m.label, Reason: "exploitation rate outside [0,1]"}
				}
				remaining *= 1 - exploitation
			}
			cat.Data[i] = remaining
		}
		cat.ClampNonNegative()
	}
	return nil
}

// totalFishingRate sums instantaneous fishing mortality F across sources
// at the given age for the Baranov form: each source contributes its
// CatchByYear rate for the year times its selectivity at age.
func (m *Mortality) totalFishingRate(year int, age float64) float64 {
	var total float64
	for _, src := range m.Sources {
		rate, ok := src.CatchByYear[year]
		if !ok {
			continue
		}
		sel := 1.0
		if src.Selectivity != nil {
			sel = src.Selectivity.Value(age)
		}
		total += rate * sel
	}
	return total
}
