package agelength

import "math"

// GrowthCurve yields the mean length at a given year, time step and age.
// VonBertalanffy is the only concrete implementation the engine ships;
// the interface exists so other growth models (Schnute, seasonal) can be
// added without touching AgeLength.
type GrowthCurve interface {
	Mean(year, timeStep, age int) float64
}

// VonBertalanffyConfig groups the parameters of the classic growth curve
// Linf*(1-exp(-K*(age-T0))).
type VonBertalanffyConfig struct {
	Linf float64
	K    float64
	T0   float64
}

// VonBertalanffy is the standard growth curve used throughout the
// engine's reference scenarios (spec §8's Age–length transition
// scenario: Linf=80, k=0.2, t0=0).
type VonBertalanffy struct {
	VonBertalanffyConfig
}

func NewVonBertalanffy(cfg VonBertalanffyConfig) *VonBertalanffy {
	return &VonBertalanffy{VonBertalanffyConfig: cfg}
}

// Mean ignores year/time-step by default (a plain von Bertalanffy curve
// is constant across the annual cycle); time-varying overlays adjust
// Linf/K/T0 directly between years via their addressables, which this
// method picks up automatically since it reads the struct's current
// field values.
func (v *VonBertalanffy) Mean(year, timeStep, age int) float64 {
	return vonBertalanffyMean(v.Linf, v.K, v.T0, float64(age))
}

func vonBertalanffyMean(linf, k, t0, age float64) float64 {
	return linf * (1 - math.Exp(-k*(age-t0)))
}
