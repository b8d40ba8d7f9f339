package selectivity

import "github.com/popdyn/casalcore/model"

// CompoundMode names which half of the component selectivities a
// Compound applies across the grid (spec §4.3: "compound left/middle/
// right/all").
type CompoundMode int

const (
	// CompoundLeft takes component A below the switch point, component B
	// at or above it.
	CompoundLeft CompoundMode = iota
	// CompoundRight is the mirror of CompoundLeft.
	CompoundRight
	// CompoundMiddle multiplies the two components together everywhere.
	CompoundMiddle
	// CompoundAll takes the maximum of the two components everywhere.
	CompoundAll
)

// Compound combines two component selectivities into one, as the source
// model's "compound" selectivity family does for gear/process
// combinations that can't be expressed as a single parametric shape.
type Compound struct {
	cache
	label       string
	Mode        CompoundMode
	SwitchPoint float64
	A, B        Selectivity
}

func NewCompound(label string, mode CompoundMode, switchPoint float64, a, b Selectivity) *Compound {
	return &Compound{label: label, Mode: mode, SwitchPoint: switchPoint, A: a, B: b}
}

func (c *Compound) Label() string { return c.label }

func (c *Compound) Value(x float64) float64 {
	switch c.Mode {
	case CompoundLeft:
		if x < c.SwitchPoint {
			return c.A.Value(x)
		}
		return c.B.Value(x)
	case CompoundRight:
		if x >= c.SwitchPoint {
			return c.A.Value(x)
		}
		return c.B.Value(x)
	case CompoundMiddle:
		return c.A.Value(x) * c.B.Value(x)
	default: // CompoundAll
		av, bv := c.A.Value(x), c.B.Value(x)
		if av > bv {
			return av
		}
		return bv
	}
}

func (c *Compound) ValueAt(index int) float64  { return c.valueAt(index) }
func (c *Compound) BuildCache(grid model.Grid) { c.cache.build(grid, c.Value) }
func (c *Compound) Addressable(name string) (*float64, bool) {
	if name == "switch_point" {
		return &c.SwitchPoint, true
	}
	return nil, false
}

// MigrationRate is a constant pass-through rate used by the migration
// process's exchange fraction — kept deliberately minimal, mirroring its
// one-line role in the source model.
type MigrationRate struct {
	cache
	label string
	Rate  float64
}

func NewMigrationRate(label string, rate float64) *MigrationRate {
	return &MigrationRate{label: label, Rate: rate}
}

func (m *MigrationRate) Label() string                { return m.label }
func (m *MigrationRate) Value(x float64) float64      { return m.Rate }
func (m *MigrationRate) ValueAt(index int) float64    { return m.valueAt(index) }
func (m *MigrationRate) BuildCache(grid model.Grid)   { m.cache.build(grid, m.Value) }
func (m *MigrationRate) Addressable(name string) (*float64, bool) {
	if name == "rate" {
		return &m.Rate, true
	}
	return nil, false
}

// Multi indirects to another selectivity by current year, falling back
// to a default for years with no explicit entry and optionally to a
// projection override beyond the configured years (spec §4.3
// "multi-selectivity").
type Multi struct {
	cache
	label      string
	ByYear     map[int]Selectivity
	Default    Selectivity
	Projection Selectivity // used for years beyond the max configured year, if set
	maxYear    int
	currentYear int
}

func NewMulti(label string, byYear map[int]Selectivity, def, projection Selectivity) *Multi {
	max := 0
	for y := range byYear {
		if y > max {
			max = y
		}
	}
	return &Multi{label: label, ByYear: byYear, Default: def, Projection: projection, maxYear: max}
}

// SetYear selects which year's underlying selectivity subsequent Value
// calls resolve to.
func (m *Multi) SetYear(year int) { m.currentYear = year }

func (m *Multi) resolve() Selectivity {
	if m.Projection != nil && m.currentYear > m.maxYear {
		return m.Projection
	}
	if sel, ok := m.ByYear[m.currentYear]; ok {
		return sel
	}
	return m.Default
}

func (m *Multi) Label() string { return m.label }
func (m *Multi) Value(x float64) float64 {
	sel := m.resolve()
	if sel == nil {
		return 0
	}
	return sel.Value(x)
}
func (m *Multi) ValueAt(index int) float64 {
	sel := m.resolve()
	if sel == nil {
		return 0
	}
	return sel.ValueAt(index)
}
func (m *Multi) BuildCache(grid model.Grid) { m.cache.build(grid, m.Value) }
func (m *Multi) Addressable(name string) (*float64, bool) { return nil, false }
