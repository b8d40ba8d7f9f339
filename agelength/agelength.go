package agelength

import (
	"fmt"
	"math"

	"github.com/popdyn/casalcore/model"
)

// Distribution names the per-age length distribution shape used to turn
// a mean length and CV into a transition row (spec §4.2).
type Distribution int

const (
	DistributionNormal Distribution = iota
	DistributionLognormal
)

// Config groups the per-category parameters of an AgeLength object.
type Config struct {
	Label        string
	Growth       GrowthCurve
	CVFirst      float64
	CVLast       float64
	CVByLength   bool // interpolate CV by length rather than by age
	MinAge       int
	MaxAge       int
	Distribution Distribution
	CDFVariant   CDFVariant
}

// AgeLength is the per-category growth curve plus cached age→length
// transition matrix (spec §4.2). It is the engine's age–length
// relationship object: Build subscribes it to a length-weight object by
// calling SetLengthWeight.
type AgeLength struct {
	Config

	lengthWeight LengthWeight

	// transitions[year][timeStep] -> transition matrix [age-index][length-bin]
	// keyed by the age index 0..(MaxAge-MinAge), matching spec §3's
	// T[year-index][time-step][age-index][length-bin].
	transitions map[int]map[int][][]float64
	dirty       bool
}

// LengthWeight converts a length to a mean weight; AgeLength subscribes
// to one via Build (spec §3: "Build establishes all cross-references,
// e.g. subscribing an age-length object to its length-weight object").
type LengthWeight interface {
	MeanWeight(length float64) float64
}

// NewAgeLength constructs an AgeLength object with an empty transition
// cache; the cache is populated lazily by Transition.
func NewAgeLength(cfg Config) *AgeLength {
	return &AgeLength{
		Config:      cfg,
		transitions: make(map[int]map[int][][]float64),
		dirty:       true,
	}
}

// SetLengthWeight subscribes this age-length object to a length-weight
// relationship, per the Build-time wiring spec §3 describes.
func (a *AgeLength) SetLengthWeight(lw LengthWeight) { a.lengthWeight = lw }

// MarkDirty flags that a growth or CV parameter changed, forcing the
// transition matrix to be rebuilt for any year subsequently requested
// (spec §4.2 caching rule).
func (a *AgeLength) MarkDirty() {
	a.dirty = true
	a.transitions = make(map[int]map[int][][]float64)
}

// MeanLengthAt returns mu(year=0, timeStep, age) — the growth curve's
// mean length, ignoring year (see VonBertalanffy.Mean doc). Satisfies
// selectivity.GrowthProvider.
func (a *AgeLength) MeanLengthAt(timeStep, age int) float64 {
	return a.Growth.Mean(0, timeStep, age)
}

// CVAt returns the CV at (year, timeStep, age), linearly interpolated
// between CVFirst and CVLast across [MinAge, MaxAge] — by age, or by the
// growth curve's mean length at each age, depending on CVByLength (spec
// §4.2).
func (a *AgeLength) CVAt(year, timeStep, age int) float64 {
	if a.MaxAge <= a.MinAge {
		return a.CVFirst
	}
	if !a.CVByLength {
		frac := float64(age-a.MinAge) / float64(a.MaxAge-a.MinAge)
		return clampedLerp(a.CVFirst, a.CVLast, frac)
	}
	lMin := a.Growth.Mean(year, timeStep, a.MinAge)
	lMax := a.Growth.Mean(year, timeStep, a.MaxAge)
	lAge := a.Growth.Mean(year, timeStep, age)
	if lMax == lMin {
		return a.CVFirst
	}
	frac := (lAge - lMin) / (lMax - lMin)
	return clampedLerp(a.CVFirst, a.CVLast, frac)
}

func clampedLerp(first, last, frac float64) float64 {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return first + (last-first)*frac
}

// Transition returns the cached age-index→length-bin transition matrix
// for (year, timeStep), building it if absent or if MarkDirty was called
// since the last build. Rows are indexed by age-index (0-based from
// MinAge). With a length plus group the last bin absorbs the remainder,
// so entries within a row sum to 1; without one, the mass beyond the
// last edge is not assigned to any bin and the row sums to less than 1.
func (a *AgeLength) Transition(grid model.Grid, year, timeStep int) ([][]float64, error) {
	if grid.Kind != model.GridLength {
		return nil, fmt.Errorf("Transition requires a length grid, got %v", grid.Kind)
	}
	if byTS, ok := a.transitions[year]; ok {
		if rows, ok := byTS[timeStep]; ok {
			return rows, nil
		}
	}

	numAges := a.MaxAge - a.MinAge + 1
	rows := make([][]float64, numAges)
	for i := 0; i < numAges; i++ {
		age := a.MinAge + i
		row, err := a.buildRow(grid, year, timeStep, age)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}

	if a.transitions[year] == nil {
		a.transitions[year] = make(map[int][][]float64)
	}
	a.transitions[year][timeStep] = rows
	return rows, nil
}

func (a *AgeLength) buildRow(grid model.Grid, year, timeStep, age int) ([]float64, error) {
	mu := a.Growth.Mean(year, timeStep, age)
	cv := a.CVAt(year, timeStep, age)
	n := grid.NumBins()
	row := make([]float64, n)

	if mu <= 0 {
		return nil, fmt.Errorf("non-positive mean length %.6g at age %d: cannot build transition row", mu, age)
	}

	switch a.Distribution {
	case DistributionLognormal:
		sigma2 := math.Log(1 + cv*cv)
		sigma := math.Sqrt(sigma2)
		muLog := math.Log(mu) - sigma2/2
		edge := func(l float64) float64 {
			if l <= 0 {
				l = 0.0001
			}
			return (math.Log(l) - muLog) / sigma
		}
		fillRow(row, grid, edge, a.CDFVariant)
	default: // DistributionNormal
		sigma := cv * mu
		if sigma <= 0 {
			return nil, fmt.Errorf("non-positive sigma at age %d: cv=%.6g mu=%.6g", age, cv, mu)
		}
		edge := func(l float64) float64 { return (l - mu) / sigma }
		fillRow(row, grid, edge, a.CDFVariant)
	}
	return row, nil
}

// fillRow computes Φ(edge(upper)) - Φ(edge(lower)) per bin, with the
// plus-group bin (if enabled) absorbing 1 - sum(previous) instead of
// using its own upper edge (spec §4.2).
func fillRow(row []float64, grid model.Grid, edge func(float64) float64, variant CDFVariant) {
	n := len(row)
	var cumBefore float64
	for j := 0; j < n; j++ {
		isLast := j == n-1
		if isLast && grid.LengthPlusGrp {
			row[j] = 1 - cumBefore
			continue
		}
		lower := grid.Lengths[j]
		upper := grid.Lengths[j+1]
		cdfUpper := NormalCDF(edge(upper), variant)
		cdfLower := NormalCDF(edge(lower), variant)
		p := cdfUpper - cdfLower
		if p < 0 {
			p = 0
		}
		row[j] = p
		cumBefore += p
	}
}

// PopulateNumbersAtLength implements spec §4.2's key operation: for each
// age i and length bin j, adds S(age_i)*N_age[i]*T[y][t][i][j] to
// out[j]. selectivity may be nil to omit the selectivity factor. remap,
// if non-nil, redirects bin j to remap[j] and skips bins with a negative
// remap entry (coarser-length-grid remap).
func PopulateNumbersAtLength(rows [][]float64, numbersAtAge []float64, out []float64, selectivity func(age int) float64, minAge int, remap []int) error {
	if len(rows) != len(numbersAtAge) {
		return fmt.Errorf("transition has %d age rows but %d ages in partition", len(rows), len(numbersAtAge))
	}
	for i, row := range rows {
		n := numbersAtAge[i]
		if n == 0 {
			continue
		}
		s := 1.0
		if selectivity != nil {
			s = selectivity(minAge + i)
		}
		weight := s * n
		if weight == 0 {
			continue
		}
		for j, p := range row {
			if p == 0 {
				continue
			}
			target := j
			if remap != nil {
				if j >= len(remap) || remap[j] < 0 {
					continue
				}
				target = remap[j]
			}
			if target >= len(out) {
				continue
			}
			out[target] += weight * p
		}
	}
	return nil
}
