package model

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// MassTolerance bounds how much a clamp-to-zero pass is allowed to move
// the partition's total before a penalty is reported (spec §4.1: "clamp
// at zero, report a penalty if clamping would change the sum by more
// than a configured tolerance").
const MassTolerance = 1e-9

// Partition is the mutable population state: an ordered mapping from
// category label to its numbers-at-bin vector, plus the grid every
// category shares.
type Partition struct {
	Grid       Grid
	order      []string
	categories map[string]*Category
}

// Build allocates dense, zero-initialised vectors for each requested
// category over the shared grid.
func Build(grid Grid, categoryLabels []string, minMaxAge map[string][2]int) *Partition {
	p := &Partition{
		Grid:       grid,
		order:      append([]string(nil), categoryLabels...),
		categories: make(map[string]*Category, len(categoryLabels)),
	}
	for _, label := range categoryLabels {
		minAge, maxAge := grid.MinAge, grid.MaxAge
		if mm, ok := minMaxAge[label]; ok {
			minAge, maxAge = mm[0], mm[1]
		}
		p.categories[label] = NewCategory(label, minAge, maxAge, grid.NumBins())
	}
	return p
}

// Category returns the named category, or nil if it was never built.
func (p *Partition) Category(label string) *Category {
	return p.categories[label]
}

// Categories returns all categories in declaration order.
func (p *Partition) Categories() []*Category {
	out := make([]*Category, 0, len(p.order))
	for _, label := range p.order {
		out = append(out, p.categories[label])
	}
	return out
}

// Labels returns category labels in declaration order.
func (p *Partition) Labels() []string {
	return append([]string(nil), p.order...)
}

// Total sums numbers across every category.
func (p *Partition) Total() float64 {
	var sum float64
	for _, c := range p.categories {
		sum += c.Total()
	}
	return sum
}

// Reset zeroes every category's data, e.g. before re-running a build from
// a fresh candidate's estimate values.
func (p *Partition) Reset() {
	for _, c := range p.categories {
		c.Reset()
	}
}

// Clone deep-copies the partition, used to give each thread-pool worker
// an independent instance.
func (p *Partition) Clone() *Partition {
	out := &Partition{
		Grid:       p.Grid,
		order:      append([]string(nil), p.order...),
		categories: make(map[string]*Category, len(p.categories)),
	}
	for label, c := range p.categories {
		out.categories[label] = c.Clone()
	}
	return out
}

// ClampNonNegative enforces the non-negativity invariant (spec §4.1): any
// bin driven below zero by a process is clamped to zero. If the total
// change in the category's sum exceeds MassTolerance, a kWarning-level
// penalty amount is returned so the caller (a Process) can report it to
// the objective function's penalty term.
func (c *Category) ClampNonNegative() (penalty float64) {
	before := c.Total()
	for i, v := range c.Data {
		if v < 0 {
			c.Data[i] = 0
		}
	}
	after := c.Total()
	diff := math.Abs(after - before)
	if diff > MassTolerance {
		penalty = diff * diff
		logrus.WithFields(logrus.Fields{
			"category": c.Label,
			"diff":     diff,
		}).Warn("clamping negative abundance changed category total beyond tolerance")
	}
	return penalty
}

// CheckMassPreserved verifies the mass-preservation invariant (spec §4.1
// invariant 2) for a process declared mass-preserving: total numbers
// before and after must agree to within MassTolerance of the larger
// value. It never mutates state; callers pass the totals they captured
// before/after Process.DoExecute.
func CheckMassPreserved(before, after float64) error {
	larger := math.Max(math.Abs(before), math.Abs(after))
	if larger == 0 {
		return nil
	}
	if math.Abs(after-before) > MassTolerance*larger {
		return fmt.Errorf("mass not preserved: before=%.12g after=%.12g diff=%.3g", before, after, after-before)
	}
	return nil
}
