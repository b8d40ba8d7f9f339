package process

import (
	"github.com/popdyn/casalcore/model"
	"github.com/popdyn/casalcore/selectivity"
)

// Maturation moves a selectivity-determined proportion of each age bin
// from an immature category to its corresponding mature category
// (spec §2 component D). Mass-preserving across the partition: numbers
// are relocated between categories, never created or destroyed.
type Maturation struct {
	label       string
	From        string
	To          string
	Selectivity selectivity.Selectivity
}

func NewMaturation(label, from, to string, sel selectivity.Selectivity) *Maturation {
	return &Maturation{label: label, From: from, To: to, Selectivity: sel}
}

func (m *Maturation) Label() string        { return m.label }
func (m *Maturation) MassPreserving() bool { return true }

func (m *Maturation) DoExecute(ctx *model.Context, p *model.Partition) error {
	from := p.Category(m.From)
	to := p.Category(m.To)
	if from == nil || to == nil {
		return &model.RangeError{Process: m.label, Reason: "unknown maturation category pair " + m.From + "/" + m.To}
	}
	if len(from.Data) != len(to.Data) {
		return &model.RangeError{Process: m.label, Reason: "maturation categories have mismatched bin counts"}
	}
	for i := range from.Data {
		age := from.MinAge + i
		rate := 1.0
		if m.Selectivity != nil {
			rate = m.Selectivity.Value(float64(age))
		}
		if rate < 0 || rate > 1 {
			return &model.RangeError{Process: m.label, Reason: "maturation rate outside [0,1]"}
		}
		moving := from.Data[i] * rate
		from.Data[i] -= moving
		to.Data[i] += moving
	}
	return nil
}
