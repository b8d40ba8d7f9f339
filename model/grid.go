package model

import "fmt"

// GridKind selects whether the partition's bins index age or length.
type GridKind int

const (
	// GridAge indexes bins by single year of age, [MinAge, MaxAge] plus an
	// optional accumulating plus group at MaxAge.
	GridAge GridKind = iota
	// GridLength indexes bins by length class, [0, NumBins()).
	GridLength
)

// Grid describes the shared bin structure every category in a Partition
// is built against.
type Grid struct {
	Kind GridKind

	// Age grid fields.
	MinAge    int
	MaxAge    int
	PlusGroup bool // MaxAge accumulates all individuals at or beyond it

	// Length grid fields: Lengths holds the lower edge of each length bin
	// plus one sentinel upper edge, so len(Lengths) == NumBins+1 unless
	// the final bin is a plus group, in which case the last edge is +Inf
	// conceptually and is not stored.
	Lengths        []float64
	LengthPlusGrp  bool
}

// NumBins returns the number of dense bins this grid allocates per
// category.
func (g Grid) NumBins() int {
	switch g.Kind {
	case GridAge:
		return g.MaxAge - g.MinAge + 1
	case GridLength:
		if len(g.Lengths) == 0 {
			return 0
		}
		if g.LengthPlusGrp {
			return len(g.Lengths)
		}
		return len(g.Lengths) - 1
	default:
		return 0
	}
}

// AgeAt returns the age represented by bin index i, valid only for age
// grids.
func (g Grid) AgeAt(i int) int {
	return g.MinAge + i
}

// IndexOfAge returns the bin index for a given age, clamping to the plus
// group when enabled and age exceeds MaxAge.
func (g Grid) IndexOfAge(age int) (int, error) {
	if g.Kind != GridAge {
		return 0, fmt.Errorf("IndexOfAge called on a %v grid", g.Kind)
	}
	if age < g.MinAge {
		return 0, fmt.Errorf("age %d below grid minimum %d", age, g.MinAge)
	}
	if age > g.MaxAge {
		if g.PlusGroup {
			return g.NumBins() - 1, nil
		}
		return 0, fmt.Errorf("age %d above grid maximum %d and no plus group", age, g.MaxAge)
	}
	return age - g.MinAge, nil
}
