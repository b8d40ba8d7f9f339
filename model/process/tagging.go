package process

import (
	"github.com/popdyn/casalcore/model"
	"github.com/popdyn/casalcore/selectivity"
)

// Tagging releases tagged fish into a destination category at a given
// year, selectivity-weighted across ages, and/or applies an ongoing
// tag-shedding rate to an already-tagged category (spec §2 component D).
// Not mass-preserving: a release year adds external numbers to the
// partition.
type Tagging struct {
	label string

	// Release, if non-nil, injects numbers at Year into Category,
	// distributed across ages by Selectivity (defaulting to uniform).
	ReleaseYear  int
	ReleaseTotal float64
	Category     string
	Selectivity  selectivity.Selectivity

	// ShedRate, applied every execution, removes a constant fraction of
	// tagged individuals representing tag loss, independent of release.
	ShedRate float64
}

func NewTagging(label, category string, releaseYear int, releaseTotal float64, sel selectivity.Selectivity, shedRate float64) *Tagging {
	return &Tagging{label: label, Category: category, ReleaseYear: releaseYear, ReleaseTotal: releaseTotal, Selectivity: sel, ShedRate: shedRate}
}

func (t *Tagging) Label() string        { return t.label }
func (t *Tagging) MassPreserving() bool { return false }

func (t *Tagging) DoExecute(ctx *model.Context, p *model.Partition) error {
	cat := p.Category(t.Category)
	if cat == nil {
		return &model.RangeError{Process: t.label, Reason: "unknown tagging category " + t.Category}
	}

	if t.ShedRate < 0 || t.ShedRate > 1 {
		return &model.RangeError{Process: t.label, Reason: "tag shed rate outside [0,1]"}
	}
	if t.ShedRate > 0 {
		for i := range cat.Data {
			cat.Data[i] *= 1 - t.ShedRate
		}
	}

	if ctx.Year != t.ReleaseYear || t.ReleaseTotal == 0 {
		return nil
	}

	weights := make([]float64, len(cat.Data))
	var total float64
	for i := range cat.Data {
		age := float64(cat.MinAge + i)
		w := 1.0
		if t.Selectivity != nil {
			w = t.Selectivity.Value(age)
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return &model.RangeError{Process: t.label, Reason: "tag release selectivity sums to zero"}
	}
	for i, w := range weights {
		cat.Data[i] += t.ReleaseTotal * w / total
	}
	return nil
}
