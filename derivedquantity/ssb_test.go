package derivedquantity

import (
	"math"
	"testing"

	"github.com/popdyn/casalcore/model"
)

type constWeight struct{ w float64 }

func (c constWeight) MeanWeight(length float64) float64 { return c.w }

func TestSSBSnapshotSumsNumbersTimesWeight(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 3}
	p := model.Build(grid, []string{"adult"}, nil)
	copy(p.Category("adult").Data, []float64{10, 20, 30})

	s := NewSSB("ssb", []string{"adult"}, nil, constWeight{w: 2}, 0)
	ctx := model.NewContext(0, 1).At(2020, 0)
	s.Snapshot(ctx, p)

	want := (10 + 20 + 30) * 2.0
	if got := s.Value(2020); math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v want %v", got, want)
	}
	if s.Value(1999) != 0 {
		t.Errorf("expected zero for a year with no snapshot, got %v", s.Value(1999))
	}
	if s.CollectionTimeStep() != 0 {
		t.Errorf("got %v want 0", s.CollectionTimeStep())
	}
}
