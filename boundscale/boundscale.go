// Package boundscale implements the bijection between a bounded
// parameter space and ℝⁿ used by the minimiser and HMC (spec §2
// component I, §4.4): a tan/atan scale/unscale pair plus a boundary
// penalty that is zero in the interior and grows quadratically outside
// it.
package boundscale

import "math"

// BoundaryLimit is the scaled-space threshold beyond which the mild
// boundary penalty activates (spec §4.4: "P += (s+0.9999)² if s < -0.9999").
const BoundaryLimit = 0.9999

// HardLimit is the scaled-space threshold beyond which the steep
// order-1e5 penalty activates, on top of the mild one (spec §4.4: "an
// order-10⁵ quadratic added outside [-1,1]").
const HardLimit = 1.0

// HardPenaltyScale is the coefficient of the steep penalty outside
// [-HardLimit, HardLimit].
const HardPenaltyScale = 1e5

// Scale maps a bounded value p in [L,H] to an unconstrained real s via
// s = tan(((p-L)/(H-L) - 0.5)*π). When L == H the scaled value is
// defined as 0 (spec §4.4).
func Scale(p, lower, upper float64) float64 {
	if lower == upper {
		return 0
	}
	frac := (p-lower)/(upper-lower) - 0.5
	return math.Tan(frac * math.Pi)
}

// Unscale is Scale's inverse: p = ((atan(s)/π) + 0.5)*(H-L) + L.
func Unscale(s, lower, upper float64) float64 {
	if lower == upper {
		return lower
	}
	frac := math.Atan(s)/math.Pi + 0.5
	return frac*(upper-lower) + lower
}

// BoundaryPenalty evaluates the two-tier quadratic penalty on the scaled
// value s (spec §4.4): a mild (s∓BoundaryLimit)² term outside
// [-BoundaryLimit, BoundaryLimit], plus a steep 1e5*(s∓HardLimit)² term
// outside [-HardLimit, HardLimit], both additive.
func BoundaryPenalty(s float64) float64 {
	var penalty float64
	if s < -BoundaryLimit {
		d := s + BoundaryLimit
		penalty += d * d
	} else if s > BoundaryLimit {
		d := s - BoundaryLimit
		penalty += d * d
	}
	if s < -HardLimit {
		d := s + HardLimit
		penalty += HardPenaltyScale * d * d
	} else if s > HardLimit {
		d := s - HardLimit
		penalty += HardPenaltyScale * d * d
	}
	return penalty
}

// DScaledDUnscaled returns dp/ds at unscaled value p within [L,H], the
// Jacobian the minimiser uses to re-transform a scaled-space covariance
// into unscaled units (spec §4.5): (4/π)/((H-L)*sqrt(1-(2(p-L)/(H-L)-1)^2)).
// Returns NaN where the argument of the square root is non-positive
// (p at or outside a bound), which callers replace with a zero row.
func DScaledDUnscaled(p, lower, upper float64) float64 {
	if lower == upper {
		return math.NaN()
	}
	x := 2*(p-lower)/(upper-lower) - 1
	inner := 1 - x*x
	if inner <= 0 {
		return math.NaN()
	}
	return (4 / math.Pi) / ((upper - lower) * math.Sqrt(inner))
}
