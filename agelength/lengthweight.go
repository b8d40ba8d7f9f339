package agelength

import "math"

// PowerLengthWeight is the standard W = a*L^b length-weight relationship
// (spec §4.2's length-weight object that an AgeLength subscribes to).
type PowerLengthWeight struct {
	Label string
	A     float64
	B     float64
	// UnitsMultiplier rescales the output, e.g. converting kg to tonnes.
	UnitsMultiplier float64
}

func NewPowerLengthWeight(label string, a, b float64) *PowerLengthWeight {
	return &PowerLengthWeight{Label: label, A: a, B: b, UnitsMultiplier: 1}
}

func (lw *PowerLengthWeight) MeanWeight(length float64) float64 {
	if length <= 0 {
		return 0
	}
	return lw.A * math.Pow(length, lw.B) * lw.UnitsMultiplier
}
