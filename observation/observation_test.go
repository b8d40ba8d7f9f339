package observation

import (
	"math"
	"testing"

	"github.com/popdyn/casalcore/likelihood"
	"github.com/popdyn/casalcore/model"
)

func TestObservationComputesScoreFromPredictor(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 2}
	p := model.Build(grid, []string{"adult"}, nil)
	copy(p.Category("adult").Data, []float64{10, 20})

	predict := func(ctx *model.Context, p *model.Partition) ([]float64, error) {
		return append([]float64(nil), p.Category("adult").Data...), nil
	}

	obs := NewObservation("obs", 0, likelihood.NewNormal("n"), []float64{10, 20}, []float64{1, 1}, predict)
	ctx := model.NewContext(0, 1).At(2020, 0)
	obs.Snapshot(ctx, p)

	if math.IsInf(obs.Score(), 1) {
		t.Fatalf("expected a finite score for an exact prediction match")
	}
	if len(obs.Predicted()) != 2 {
		t.Errorf("expected 2 predicted values, got %d", len(obs.Predicted()))
	}
}

func TestObservationScoresInfinityOnPredictorError(t *testing.T) {
	grid := model.Grid{Kind: model.GridAge, MinAge: 1, MaxAge: 1}
	p := model.Build(grid, []string{"adult"}, nil)
	predict := func(ctx *model.Context, p *model.Partition) ([]float64, error) {
		return nil, errSentinel
	}
	obs := NewObservation("obs", 0, likelihood.NewNormal("n"), []float64{1}, []float64{1}, predict)
	ctx := model.NewContext(0, 1).At(2020, 0)
	obs.Snapshot(ctx, p)
	if !math.IsInf(obs.Score(), 1) {
		t.Errorf("expected infinite score on predictor error, got %v", obs.Score())
	}
}

func TestObservationValidateCatchesMissingPredictor(t *testing.T) {
	obs := NewObservation("obs", 0, likelihood.NewNormal("n"), []float64{1}, []float64{1}, nil)
	if err := obs.Validate(); err == nil {
		t.Errorf("expected a validation error for a missing predictor")
	}
}

var errSentinel = &sentinelError{"predictor failed"}

type sentinelError struct{ msg string }

func (e *sentinelError) Error() string { return e.msg }
