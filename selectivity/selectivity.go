// Package selectivity implements the pure age-or-length to [0,alpha]
// functions used throughout the engine to scale numbers-at-age/length by
// vulnerability to a process or observation gear.
package selectivity

import (
	"fmt"
	"math"

	"github.com/popdyn/casalcore/model"
)

// Selectivity maps a continuous age-or-length value, or an integer grid
// index, to a vulnerability in [0, alpha]. Every selectivity also exposes
// its parameters as named addressables so @estimate and @time_varying
// blocks can target them (spec §6).
type Selectivity interface {
	Label() string
	// Value evaluates the selectivity at a continuous age or length.
	Value(x float64) float64
	// ValueAt evaluates the selectivity at an integer grid index, using
	// the cached dense vector built by BuildCache.
	ValueAt(index int) float64
	// BuildCache (re)computes the dense cache over the grid; called once
	// at Build time and again whenever a parameter affecting this
	// selectivity changes.
	BuildCache(grid model.Grid)
	// Addressable returns a pointer to the named parameter so the
	// estimate manager or time-varying subsystem can read/write it
	// directly, and ok=false if this selectivity has no such parameter.
	Addressable(name string) (ptr *float64, ok bool)
}

// cache is embedded by every selectivity implementation to provide the
// dense-vector-over-the-grid behaviour described in spec §3 ("Selectivity
// value cache: for each selectivity, a dense vector over the age or
// length grid").
type cache struct {
	values []float64
}

func (c *cache) valueAt(index int) float64 {
	if index < 0 || index >= len(c.values) {
		return 0
	}
	return c.values[index]
}

func (c *cache) build(grid model.Grid, value func(x float64) float64) {
	n := grid.NumBins()
	c.values = make([]float64, n)
	for i := 0; i < n; i++ {
		var x float64
		switch grid.Kind {
		case model.GridAge:
			x = float64(grid.AgeAt(i))
		case model.GridLength:
			if i < len(grid.Lengths) {
				x = grid.Lengths[i]
			}
		}
		c.values[i] = value(x)
	}
}

// Registry indexes selectivities by label for process/observation lookup
// and for the §6 dotted-name addressable resolution
// ("selectivity[FishingSel].a50").
type Registry struct {
	byLabel map[string]Selectivity
}

// NewRegistry creates an empty selectivity registry.
func NewRegistry() *Registry {
	return &Registry{byLabel: make(map[string]Selectivity)}
}

// Add registers sel under its own label, erroring on duplicates.
func (r *Registry) Add(sel Selectivity) error {
	if _, exists := r.byLabel[sel.Label()]; exists {
		return fmt.Errorf("selectivity %q already registered", sel.Label())
	}
	r.byLabel[sel.Label()] = sel
	return nil
}

// Get returns the named selectivity, or nil if absent.
func (r *Registry) Get(label string) Selectivity {
	return r.byLabel[label]
}

// Resolve resolves the addressable param of the selectivity registered
// under label into a pointer to the underlying float64, for the estimate
// manager and time-varying subsystem. It takes the two parts already
// split; it does not parse a dotted path string.
func (r *Registry) Resolve(label, param string) (*float64, error) {
	sel, ok := r.byLabel[label]
	if !ok {
		return nil, fmt.Errorf("unknown selectivity %q", label)
	}
	ptr, ok := sel.Addressable(param)
	if !ok {
		return nil, fmt.Errorf("selectivity %q has no addressable %q", label, param)
	}
	return ptr, nil
}

// BuildAll rebuilds every registered selectivity's cache over grid, in no
// particular order — callers do this once at Build and again whenever
// any selectivity parameter mutates.
func (r *Registry) BuildAll(grid model.Grid) {
	for _, sel := range r.byLabel {
		sel.BuildCache(grid)
	}
}

// clamp01Alpha clamps v into [0, alpha], guarding against NaN inputs from
// degenerate parameter combinations.
func clamp01Alpha(v, alpha float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > alpha {
		return alpha
	}
	return v
}
