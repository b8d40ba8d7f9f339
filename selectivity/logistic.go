package selectivity

import (
	"math"

	"github.com/popdyn/casalcore/model"
)

// Logistic is the standard CASAL-style logistic ogive:
//
//	value(x) = alpha * ( (1-amin) / (1 + 19^((a50-x)/ato95)) + amin )
//
// By construction value(a50) = alpha*(1-amin)/2 + alpha*amin and
// value(a50+ato95) = alpha*(1-amin)*19/20 + alpha*amin (95% of the
// asymptote one ato95 above the inflection point, hence the name).
type Logistic struct {
	cache
	label string
	A50   float64
	Ato95 float64
	Amin  float64
	Alpha float64
}

// NewLogistic constructs a Logistic selectivity. Alpha defaults to 1 if
// zero is passed, matching the engine-wide convention that alpha is "the
// maximum value of the selectivity" and is rarely configured explicitly.
func NewLogistic(label string, a50, ato95, amin, alpha float64) *Logistic {
	if alpha == 0 {
		alpha = 1
	}
	return &Logistic{label: label, A50: a50, Ato95: ato95, Amin: amin, Alpha: alpha}
}

func (l *Logistic) Label() string { return l.label }

func (l *Logistic) Value(x float64) float64 {
	if l.Ato95 <= 0 {
		return 0
	}
	threshold := (l.A50 - x) / l.Ato95
	var frac float64
	switch {
	case threshold > 5:
		frac = 0
	case threshold < -5:
		frac = 1
	default:
		frac = 1 / (1 + math.Pow(19, threshold))
	}
	return l.Alpha * ((1-l.Amin)*frac + l.Amin)
}

func (l *Logistic) ValueAt(index int) float64 { return l.valueAt(index) }

func (l *Logistic) BuildCache(grid model.Grid) { l.cache.build(grid, l.Value) }

func (l *Logistic) Addressable(name string) (*float64, bool) {
	switch name {
	case "a50":
		return &l.A50, true
	case "a_to95", "ato95":
		return &l.Ato95, true
	case "amin":
		return &l.Amin, true
	case "alpha":
		return &l.Alpha, true
	default:
		return nil, false
	}
}

// InverseLogistic mirrors Logistic but decreases from alpha to 0 as x
// increases past a50 (grounded on CASAL2's InverseLogistic.cpp, which
// omits the amin term present in Logistic):
//
//	value(x) = alpha - alpha/(1 + 19^((a50-x)/ato95))
type InverseLogistic struct {
	cache
	label string
	A50   float64
	Ato95 float64
	Alpha float64
}

func NewInverseLogistic(label string, a50, ato95, alpha float64) *InverseLogistic {
	if alpha == 0 {
		alpha = 1
	}
	return &InverseLogistic{label: label, A50: a50, Ato95: ato95, Alpha: alpha}
}

func (l *InverseLogistic) Label() string { return l.label }

func (l *InverseLogistic) Value(x float64) float64 {
	if l.Ato95 <= 0 {
		return 0
	}
	threshold := (l.A50 - x) / l.Ato95
	switch {
	case threshold > 5:
		return l.Alpha
	case threshold < -5:
		return 0
	default:
		return l.Alpha - l.Alpha/(1+math.Pow(19, threshold))
	}
}

func (l *InverseLogistic) ValueAt(index int) float64 { return l.valueAt(index) }

func (l *InverseLogistic) BuildCache(grid model.Grid) { l.cache.build(grid, l.Value) }

func (l *InverseLogistic) Addressable(name string) (*float64, bool) {
	switch name {
	case "a50":
		return &l.A50, true
	case "a_to95", "ato95":
		return &l.Ato95, true
	case "alpha":
		return &l.Alpha, true
	default:
		return nil, false
	}
}
