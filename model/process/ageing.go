package process

import (
	"github.com/popdyn/casalcore/model"
)

// Ageing shifts every category's numbers up by one age bin, with the
// plus-group bin (if the grid declares one) accumulating individuals
// that would age beyond it. Mass-preserving: it only moves numbers
// between bins of the same category, never creates or destroys them.
type Ageing struct {
	label string
	// Categories restricts ageing to the named categories; empty means
	// every category in the partition.
	Categories []string
}

func NewAgeing(label string, categories []string) *Ageing {
	return &Ageing{label: label, Categories: categories}
}

func (a *Ageing) Label() string        { return a.label }
func (a *Ageing) MassPreserving() bool { return true }

func (a *Ageing) DoExecute(ctx *model.Context, p *model.Partition) error {
	if p.Grid.Kind != model.GridAge {
		return &model.RangeError{Process: a.label, Reason: "ageing requires an age-indexed partition"}
	}
	targets := a.Categories
	if len(targets) == 0 {
		targets = p.Labels()
	}
	for _, label := range targets {
		cat := p.Category(label)
		if cat == nil {
			return &model.RangeError{Process: a.label, Reason: "unknown ageing category " + label}
		}
		ageOneCategory(cat, p.Grid.PlusGroup)
	}
	return nil
}

func ageOneCategory(cat *model.Category, plusGroup bool) {
	n := len(cat.Data)
	if n < 2 {
		return
	}
	if plusGroup {
		// The top bin receives both its own survivors and everyone
		// shifting up into it.
		incoming := cat.Data[n-2]
		cat.Data[n-1] += incoming
		for i := n - 2; i > 0; i-- {
			cat.Data[i] = cat.Data[i-1]
		}
		cat.Data[0] = 0
		return
	}
	for i := n - 1; i > 0; i-- {
		cat.Data[i] = cat.Data[i-1]
	}
	cat.Data[0] = 0
}
