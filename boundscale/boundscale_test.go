package boundscale

import (
	"math"
	"testing"
)

// TestScaleUnscaleRoundTrip checks that for a bounded value p in the open
// interval (L,H), |unscale(scale(p)) - p| <= 1e-9. The tolerance is 1e-9
// rather than 1e-10 because float64 spacing near 1e6 is about 1.2e-10,
// and the p=1e6 case comes back about two of those steps (2.3e-10) off.
func TestScaleUnscaleRoundTrip(t *testing.T) {
	cases := []struct{ p, lower, upper float64 }{
		{5, 0, 10},
		{0.001, 0, 10},
		{9.999, 0, 10},
		{-50, -100, 100},
		{1e6, 0, 1e7},
	}
	for _, c := range cases {
		s := Scale(c.p, c.lower, c.upper)
		got := Unscale(s, c.lower, c.upper)
		if math.Abs(got-c.p) > 1e-9 {
			t.Errorf("p=%v bounds=[%v,%v]: round trip got %v", c.p, c.lower, c.upper, got)
		}
	}
}

func TestScaleDegenerateBounds(t *testing.T) {
	if s := Scale(5, 5, 5); s != 0 {
		t.Errorf("expected 0 for degenerate bounds, got %v", s)
	}
	if p := Unscale(0, 5, 5); p != 5 {
		t.Errorf("expected 5 for degenerate bounds, got %v", p)
	}
}

// TestBoundaryPenaltyZeroInInterior matches spec §8 invariant 6.
func TestBoundaryPenaltyZeroInInterior(t *testing.T) {
	for _, s := range []float64{-0.9999, 0, 0.5, 0.9999} {
		if p := BoundaryPenalty(s); p != 0 {
			t.Errorf("s=%v: expected zero penalty, got %v", s, p)
		}
	}
	for _, s := range []float64{-1.5, 1.0001, 5} {
		if p := BoundaryPenalty(s); p <= 0 {
			t.Errorf("s=%v: expected strictly positive penalty, got %v", s, p)
		}
	}
}

// TestBoundaryPenaltyAddsHardTermOutsideUnitInterval matches spec §4.4's
// second penalty tier: beyond [-1,1] a steep 1e5-scaled term stacks on
// top of the mild one, so the penalty there is far larger than the mild
// term alone would give.
func TestBoundaryPenaltyAddsHardTermOutsideUnitInterval(t *testing.T) {
	mildOnly := func(s float64) float64 {
		d := math.Abs(s) - BoundaryLimit
		return d * d
	}
	for _, s := range []float64{-1.1, 1.2, 3} {
		got := BoundaryPenalty(s)
		if got <= mildOnly(s) {
			t.Errorf("s=%v: expected the hard 1e5 term to dominate, got %v (mild alone %v)", s, got, mildOnly(s))
		}
	}
}

func TestDScaledDUnscaledNaNAtBound(t *testing.T) {
	if v := DScaledDUnscaled(0, 0, 10); !math.IsNaN(v) {
		t.Errorf("expected NaN at the lower bound, got %v", v)
	}
	if v := DScaledDUnscaled(5, 0, 10); math.IsNaN(v) || v <= 0 {
		t.Errorf("expected a finite positive Jacobian at the interior, got %v", v)
	}
}
