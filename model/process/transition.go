package process

import (
	"github.com/popdyn/casalcore/agelength"
	"github.com/popdyn/casalcore/model"
	"github.com/popdyn/casalcore/selectivity"
)

// Transition converts an age-structured source category into a
// length-structured destination category using a cached age-length
// transition matrix (spec §2 component D, §4.2's
// populate_numbers_at_length). Mass-preserving: every individual in the
// source age bins is redistributed into exactly one destination length
// bin, none created or destroyed.
type Transition struct {
	label string
	From  string
	To    string

	AgeLength   *agelength.AgeLength
	Selectivity selectivity.Selectivity // optional; nil applies no factor
	Remap       []int                   // optional coarser length-grid remap
}

// Selectivity should stay nil for a mass-preserving annual-cycle
// transition; the selectivity-weighted form of populate_numbers_at_length
// is for observation/likelihood predictions, which call
// agelength.PopulateNumbersAtLength directly rather than through this
// Process.

func NewTransition(label, from, to string, al *agelength.AgeLength) *Transition {
	return &Transition{label: label, From: from, To: to, AgeLength: al}
}

func (t *Transition) Label() string        { return t.label }
func (t *Transition) MassPreserving() bool  { return true }

func (t *Transition) DoExecute(ctx *model.Context, p *model.Partition) error {
	from := p.Category(t.From)
	to := p.Category(t.To)
	if from == nil || to == nil {
		return &model.RangeError{Process: t.label, Reason: "unknown transition category pair " + t.From + "/" + t.To}
	}
	if p.Grid.Kind != model.GridLength {
		return &model.RangeError{Process: t.label, Reason: "transition destination grid must be length-indexed"}
	}

	rows, err := t.AgeLength.Transition(p.Grid, ctx.Year, ctx.TimeStep)
	if err != nil {
		return &model.DomainError{Process: t.label, Reason: err.Error()}
	}

	var sel func(age int) float64
	if t.Selectivity != nil {
		sel = func(age int) float64 { return t.Selectivity.Value(float64(age)) }
	}

	out := make([]float64, len(to.Data))
	if err := agelength.PopulateNumbersAtLength(rows, from.Data, out, sel, from.MinAge, t.Remap); err != nil {
		return &model.DomainError{Process: t.label, Reason: err.Error()}
	}

	for i := range from.Data {
		from.Data[i] = 0
	}
	copy(to.Data, out)
	return nil
}
