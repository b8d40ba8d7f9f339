package selectivity

import (
	"math"

	"github.com/popdyn/casalcore/model"
)

// DoubleNormalShape selects between the symmetric, plateau and SS3-style
// parameterisations of DoubleNormal (spec §4.3: "symmetric, plateau,
// SS3-style").
type DoubleNormalShape int

const (
	// ShapeSymmetric uses a single peak at Mu with independent left/right
	// standard deviations.
	ShapeSymmetric DoubleNormalShape = iota
	// ShapePlateau holds the value at Alpha across [Mu, MuMax] before the
	// right-hand half-normal decline begins at MuMax.
	ShapePlateau
	// ShapeSS3 rescales so the ascending and descending limbs both reach
	// a configured asymptote (Stock Synthesis 3 convention) rather than
	// decaying to zero.
	ShapeSS3
)

// DoubleNormal is two half-normal curves joined at a peak (or plateau),
// scaled by Alpha.
type DoubleNormal struct {
	cache
	label      string
	Shape      DoubleNormalShape
	Mu         float64
	MuMax      float64 // only used by ShapePlateau: right edge of the plateau
	SigmaL     float64
	SigmaR     float64
	Alpha      float64
	FloorLeft  float64 // SS3 left asymptote
	FloorRight float64 // SS3 right asymptote
}

func NewDoubleNormal(label string, shape DoubleNormalShape, mu, muMax, sigmaL, sigmaR, alpha float64) *DoubleNormal {
	if alpha == 0 {
		alpha = 1
	}
	return &DoubleNormal{label: label, Shape: shape, Mu: mu, MuMax: muMax, SigmaL: sigmaL, SigmaR: sigmaR, Alpha: alpha}
}

func (s *DoubleNormal) Label() string { return s.label }

func (s *DoubleNormal) Value(x float64) float64 {
	switch s.Shape {
	case ShapePlateau:
		switch {
		case x < s.Mu:
			return s.Alpha * halfNormal(x, s.Mu, s.SigmaL)
		case x <= s.MuMax:
			return s.Alpha
		default:
			return s.Alpha * halfNormal(x, s.MuMax, s.SigmaR)
		}
	case ShapeSS3:
		var base float64
		if x < s.Mu {
			base = halfNormal(x, s.Mu, s.SigmaL)
			return s.FloorLeft + (s.Alpha-s.FloorLeft)*base
		}
		base = halfNormal(x, s.Mu, s.SigmaR)
		return s.FloorRight + (s.Alpha-s.FloorRight)*base
	default: // ShapeSymmetric
		if x < s.Mu {
			return s.Alpha * halfNormal(x, s.Mu, s.SigmaL)
		}
		return s.Alpha * halfNormal(x, s.Mu, s.SigmaR)
	}
}

func halfNormal(x, mu, sigma float64) float64 {
	if sigma <= 0 {
		if x == mu {
			return 1
		}
		return 0
	}
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func (s *DoubleNormal) ValueAt(index int) float64  { return s.valueAt(index) }
func (s *DoubleNormal) BuildCache(grid model.Grid) { s.cache.build(grid, s.Value) }
func (s *DoubleNormal) Addressable(name string) (*float64, bool) {
	switch name {
	case "mu":
		return &s.Mu, true
	case "mu_max":
		return &s.MuMax, true
	case "sigma_l":
		return &s.SigmaL, true
	case "sigma_r":
		return &s.SigmaR, true
	case "alpha":
		return &s.Alpha, true
	case "floor_left":
		return &s.FloorLeft, true
	case "floor_right":
		return &s.FloorRight, true
	default:
		return nil, false
	}
}

// DoubleExponential is two exponential decay limbs joined at a peak,
// each with its own rate, scaled by Alpha.
type DoubleExponential struct {
	cache
	label        string
	X0           float64
	X1, X2       float64 // left and right reference points
	Y0, Y1, Y2   float64
	Alpha        float64
}

// NewDoubleExponential builds a curve that equals Y0 at X0, decays
// exponentially to Y1 by X1 on the left and to Y2 by X2 on the right.
func NewDoubleExponential(label string, x0, x1, x2, y0, y1, y2, alpha float64) *DoubleExponential {
	if alpha == 0 {
		alpha = 1
	}
	return &DoubleExponential{label: label, X0: x0, X1: x1, X2: x2, Y0: y0, Y1: y1, Y2: y2, Alpha: alpha}
}

func (s *DoubleExponential) Value(x float64) float64 {
	if x <= s.X0 {
		return s.Alpha * expLimb(x, s.X0, s.X1, s.Y0, s.Y1)
	}
	return s.Alpha * expLimb(x, s.X0, s.X2, s.Y0, s.Y2)
}

// expLimb returns the value of an exponential curve passing through
// (xa,ya) and (xb,yb), evaluated at x.
func expLimb(x, xa, xb, ya, yb float64) float64 {
	if ya <= 0 || yb <= 0 || xa == xb {
		return ya
	}
	rate := math.Log(yb/ya) / (xb - xa)
	return ya * math.Exp(rate*(x-xa))
}

func (s *DoubleExponential) Label() string         { return s.label }
func (s *DoubleExponential) ValueAt(index int) float64  { return s.valueAt(index) }
func (s *DoubleExponential) BuildCache(grid model.Grid) { s.cache.build(grid, s.Value) }
func (s *DoubleExponential) Addressable(name string) (*float64, bool) {
	switch name {
	case "x0":
		return &s.X0, true
	case "x1":
		return &s.X1, true
	case "x2":
		return &s.X2, true
	case "y0":
		return &s.Y0, true
	case "y1":
		return &s.Y1, true
	case "y2":
		return &s.Y2, true
	case "alpha":
		return &s.Alpha, true
	default:
		return nil, false
	}
}
