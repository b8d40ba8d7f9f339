package selectivity

import "github.com/popdyn/casalcore/model"

// AllValues is a direct vector lookup over the full grid: V must have
// exactly grid.NumBins() entries, one explicit value per age or length
// bin.
type AllValues struct {
	cache
	label string
	V     []float64
}

func NewAllValues(label string, v []float64) *AllValues {
	return &AllValues{label: label, V: v}
}

func (s *AllValues) Label() string { return s.label }

// Value is only meaningful at integer grid indices for AllValues; a
// continuous age/length not on the grid returns 0.
func (s *AllValues) Value(x float64) float64 {
	idx := int(x)
	if float64(idx) != x || idx < 0 || idx >= len(s.V) {
		return 0
	}
	return s.V[idx]
}
func (s *AllValues) ValueAt(index int) float64 {
	if index < 0 || index >= len(s.V) {
		return 0
	}
	return s.V[index]
}
func (s *AllValues) BuildCache(grid model.Grid) { s.values = append([]float64(nil), s.V...) }
func (s *AllValues) Addressable(name string) (*float64, bool) { return nil, false }

// AllValuesBounded is a vector lookup over [L,H] only: ages below L map
// to 0, ages at or above H clamp to the bound's last value, and V must
// have H-L+1 entries (spec §8 SEL-all-values-bounded).
type AllValuesBounded struct {
	cache
	label string
	L, H  float64
	V     []float64
}

func NewAllValuesBounded(label string, l, h float64, v []float64) *AllValuesBounded {
	return &AllValuesBounded{label: label, L: l, H: h, V: v}
}

func (s *AllValuesBounded) Label() string { return s.label }
func (s *AllValuesBounded) Value(x float64) float64 {
	if len(s.V) == 0 {
		return 0
	}
	if x < s.L {
		return 0
	}
	if x > s.H {
		return s.V[len(s.V)-1]
	}
	idx := int(x - s.L)
	if idx < 0 || idx >= len(s.V) {
		return 0
	}
	return s.V[idx]
}
func (s *AllValuesBounded) ValueAt(index int) float64  { return s.valueAt(index) }
func (s *AllValuesBounded) BuildCache(grid model.Grid) { s.cache.build(grid, s.Value) }
func (s *AllValuesBounded) Addressable(name string) (*float64, bool) {
	switch name {
	case "l":
		return &s.L, true
	case "h":
		return &s.H, true
	default:
		return nil, false
	}
}
