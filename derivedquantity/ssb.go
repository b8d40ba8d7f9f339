package derivedquantity

import (
	"github.com/popdyn/casalcore/agelength"
	"github.com/popdyn/casalcore/model"
	"github.com/popdyn/casalcore/selectivity"
)

// WeightLookup returns a mean weight at a given age or length, used to
// turn numbers into biomass. agelength.PowerLengthWeight and the adapter
// returned by NewWeightAtAgeFromGrowth both satisfy it.
type WeightLookup interface {
	MeanWeight(length float64) float64
}

// SSB computes spawning-stock biomass at a configured time step each
// year: Σ over categories, ages of N[age] * Proportion(age) *
// MeanWeight(age), where Proportion is typically a maturity ogive
// (spec §3 "derived quantities ... e.g. SSB").
type SSB struct {
	Label        string
	Categories   []string
	Selectivity  selectivity.Selectivity // maturity-at-age proportion, nil means 1.0
	WeightAtAge  WeightLookup
	Multiplier   float64 // e.g. 0.5 for a single-sex-equivalent convention
	TimeStep     int     // annual-cycle time step at which SSB is snapshotted

	values map[int]float64
}

func NewSSB(label string, categories []string, maturity selectivity.Selectivity, weight WeightLookup, timeStep int) *SSB {
	return &SSB{Label: label, Categories: categories, Selectivity: maturity, WeightAtAge: weight, Multiplier: 1, TimeStep: timeStep, values: map[int]float64{}}
}

// CollectionTimeStep satisfies model.ObservationSink: SSB is snapshotted
// at a single configured point in the annual cycle.
func (s *SSB) CollectionTimeStep() int { return s.TimeStep }

// Snapshot computes and stores SSB for the partition's current year; call
// it as an ObservationSink-style hook at the configured collection time
// step within the annual cycle.
func (s *SSB) Snapshot(ctx *model.Context, p *model.Partition) {
	var total float64
	for _, label := range s.Categories {
		cat := p.Category(label)
		if cat == nil {
			continue
		}
		for i, n := range cat.Data {
			if n == 0 {
				continue
			}
			age := cat.MinAge + i
			prop := 1.0
			if s.Selectivity != nil {
				prop = s.Selectivity.Value(float64(age))
			}
			w := 1.0
			if s.WeightAtAge != nil {
				w = s.WeightAtAge.MeanWeight(float64(age))
			}
			total += n * prop * w
		}
	}
	s.values[ctx.Year] = total * s.Multiplier
}

// Value returns the SSB recorded for year, or 0 if no snapshot was taken
// (e.g. a lag reaching before the model's first year).
func (s *SSB) Value(year int) float64 {
	return s.values[year]
}

// weightAtAgeAdapter lets a length-weight object stand in for an
// age-indexed WeightLookup, via its growth curve's mean length.
type weightAtAgeAdapter struct {
	Growth agelength.GrowthCurve
	Weight agelength.LengthWeight
}

func NewWeightAtAgeFromGrowth(growth agelength.GrowthCurve, weight agelength.LengthWeight) WeightLookup {
	return &weightAtAgeAdapter{Growth: growth, Weight: weight}
}

func (w *weightAtAgeAdapter) MeanWeight(age float64) float64 {
	length := w.Growth.Mean(0, 0, int(age))
	return w.Weight.MeanWeight(length)
}
