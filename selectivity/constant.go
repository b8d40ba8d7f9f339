package selectivity

import "github.com/popdyn/casalcore/model"

// Constant returns the same value c for every age or length.
type Constant struct {
	cache
	label string
	C     float64
}

func NewConstant(label string, c float64) *Constant { return &Constant{label: label, C: c} }

func (s *Constant) Label() string                { return s.label }
func (s *Constant) Value(x float64) float64      { return s.C }
func (s *Constant) ValueAt(index int) float64    { return s.valueAt(index) }
func (s *Constant) BuildCache(grid model.Grid)   { s.cache.build(grid, s.Value) }
func (s *Constant) Addressable(name string) (*float64, bool) {
	if name == "c" || name == "v" {
		return &s.C, true
	}
	return nil, false
}

// KnifeEdge is 0 below the edge E and alpha at or above it.
type KnifeEdge struct {
	cache
	label string
	E     float64
	Alpha float64
}

func NewKnifeEdge(label string, e, alpha float64) *KnifeEdge {
	if alpha == 0 {
		alpha = 1
	}
	return &KnifeEdge{label: label, E: e, Alpha: alpha}
}

func (s *KnifeEdge) Label() string { return s.label }
func (s *KnifeEdge) Value(x float64) float64 {
	if x < s.E {
		return 0
	}
	return s.Alpha
}
func (s *KnifeEdge) ValueAt(index int) float64 { return s.valueAt(index) }
func (s *KnifeEdge) BuildCache(grid model.Grid) { s.cache.build(grid, s.Value) }
func (s *KnifeEdge) Addressable(name string) (*float64, bool) {
	switch name {
	case "e":
		return &s.E, true
	case "alpha":
		return &s.Alpha, true
	default:
		return nil, false
	}
}

// Increasing is a piecewise-linear interpolation across a set of
// (x, v) control points, clamped to the boundary values outside the
// range — used for selectivities that monotonically increase across a
// hand-specified shape without committing to a parametric family.
type Increasing struct {
	cache
	label string
	X     []float64
	V     []float64
}

func NewIncreasing(label string, x, v []float64) *Increasing {
	return &Increasing{label: label, X: x, V: v}
}

func (s *Increasing) Label() string { return s.label }
func (s *Increasing) Value(x float64) float64 {
	n := len(s.X)
	if n == 0 {
		return 0
	}
	if x <= s.X[0] {
		return s.V[0]
	}
	if x >= s.X[n-1] {
		return s.V[n-1]
	}
	for i := 0; i < n-1; i++ {
		if x >= s.X[i] && x <= s.X[i+1] {
			span := s.X[i+1] - s.X[i]
			if span == 0 {
				return s.V[i]
			}
			frac := (x - s.X[i]) / span
			return s.V[i] + frac*(s.V[i+1]-s.V[i])
		}
	}
	return s.V[n-1]
}
func (s *Increasing) ValueAt(index int) float64  { return s.valueAt(index) }
func (s *Increasing) BuildCache(grid model.Grid) { s.cache.build(grid, s.Value) }
func (s *Increasing) Addressable(name string) (*float64, bool) { return nil, false }
