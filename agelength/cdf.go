// Package agelength implements the age-length relationship: a
// per-category growth curve yielding mean length and CV at
// (year, time step, age), and the cached age-to-length-bin transition
// matrix built from it.
package agelength

import "math"

// CDFVariant selects between the two cumulative-normal approximations
// spec §9 calls out as an open compatibility question: "the legacy CDF
// approximation (pnorm vs pnorm2) is selectable via a compatibility
// flag; which is the authoritative default is configuration-dependent —
// preserve both and do not guess." Both are implemented; neither is
// hard-wired as the default here, the caller (agelength.Config) chooses.
type CDFVariant int

const (
	// CDFLegacy is the classic Abramowitz & Stegun 7.1.26 rational
	// approximation to the standard normal CDF (~1.5e-7 max error).
	CDFLegacy CDFVariant = iota
	// CDFPrecise evaluates the standard normal CDF via math.Erf, which
	// is accurate to full float64 precision.
	CDFPrecise
)

// NormalCDF evaluates Φ(z) under the selected variant.
func NormalCDF(z float64, variant CDFVariant) float64 {
	if variant == CDFPrecise {
		return 0.5 * math.Erfc(-z/math.Sqrt2)
	}
	return pnormLegacy(z)
}

// pnormLegacy is the Abramowitz & Stegun 7.1.26 approximation, the
// "legacy" CDF variant.
func pnormLegacy(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)
	t := 1.0 / (1.0 + p*x/math.Sqrt2)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x/2)
	return 0.5 * (1.0 + sign*y)
}
