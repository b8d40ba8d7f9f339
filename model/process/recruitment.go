package process

import (
	"fmt"

	"github.com/popdyn/casalcore/model"
)

// Proportion is a destination category plus its share of a recruitment
// event, e.g. a 50/50 sex split across "immature.male"/"immature.female".
type Proportion struct {
	Category string
	Share    float64 // fraction of total recruits directed to Category
}

// SSBProvider supplies the spawning-stock-biomass value a
// stock-recruitment relationship needs; derivedquantity.SSB implements
// it. Declared locally to avoid process depending on derivedquantity.
type SSBProvider interface {
	Value(year int) float64
}

// RecruitmentKind selects the stock-recruitment relationship.
type RecruitmentKind int

const (
	// RecruitmentConstant recruits R0 * YCS[year] every year, ignoring
	// spawning biomass (a "constant recruitment" configuration).
	RecruitmentConstant RecruitmentKind = iota
	// RecruitmentBevertonHolt applies the Beverton-Holt stock-recruit
	// curve against the SSB of a prior year (steepness-parameterised).
	RecruitmentBevertonHolt
)

// Recruitment adds new individuals at the minimum age of each
// destination category every time step it runs in (spec §2 component D).
// It is not mass-preserving: it is the process that creates numbers.
type Recruitment struct {
	label string
	Kind  RecruitmentKind

	R0         float64
	Steepness  float64 // Beverton-Holt steepness, (0.2, 1]
	SSBAtR0    float64 // B0, spawning biomass that produced R0
	SSB        SSBProvider
	SSBYearLag int // years between spawning and recruitment

	// YCS is the year-class-strength multiplier by year; a missing entry
	// defaults to 1.
	YCS map[int]float64

	Proportions []Proportion
}

func NewRecruitment(label string, kind RecruitmentKind, r0 float64, proportions []Proportion) *Recruitment {
	return &Recruitment{label: label, Kind: kind, R0: r0, Proportions: proportions, YCS: map[int]float64{}}
}

func (r *Recruitment) Label() string        { return r.label }
func (r *Recruitment) MassPreserving() bool { return false }

func (r *Recruitment) DoExecute(ctx *model.Context, p *model.Partition) error {
	var total float64
	switch r.Kind {
	case RecruitmentBevertonHolt:
		if r.SSB == nil {
			return &model.RangeError{Process: r.label, Reason: "Beverton-Holt recruitment configured without an SSB provider"}
		}
		ssb := r.SSB.Value(ctx.Year - r.SSBYearLag)
		total = bevertonHolt(r.R0, r.Steepness, r.SSBAtR0, ssb) * r.ycs(ctx.Year)
	default:
		total = r.R0 * r.ycs(ctx.Year)
	}
	if total < 0 {
		return &model.RangeError{Process: r.label, Reason: fmt.Sprintf("computed negative recruitment %.6g", total)}
	}

	var shareSum float64
	for _, pr := range r.Proportions {
		shareSum += pr.Share
	}
	if shareSum <= 0 {
		return &model.RangeError{Process: r.label, Reason: "recruitment proportions sum to zero"}
	}

	for _, pr := range r.Proportions {
		cat := p.Category(pr.Category)
		if cat == nil {
			return &model.RangeError{Process: r.label, Reason: "unknown recruitment destination category " + pr.Category}
		}
		idx, err := p.Grid.IndexOfAge(cat.MinAge)
		if err != nil {
			return &model.DomainError{Process: r.label, Reason: err.Error()}
		}
		cat.Data[idx] += total * pr.Share / shareSum
	}
	return nil
}

func (r *Recruitment) ycs(year int) float64 {
	if v, ok := r.YCS[year]; ok {
		return v
	}
	return 1
}

// bevertonHolt evaluates the steepness-parameterised Beverton-Holt
// stock-recruitment curve: R = 4*h*R0*SSB / (SSBAtR0*(1-h) + (5h-1)*SSB).
func bevertonHolt(r0, steepness, ssbAtR0, ssb float64) float64 {
	if ssbAtR0 <= 0 {
		return 0
	}
	denom := ssbAtR0*(1-steepness) + (5*steepness-1)*ssb
	if denom <= 0 {
		return 0
	}
	return 4 * steepness * r0 * ssb / denom
}
