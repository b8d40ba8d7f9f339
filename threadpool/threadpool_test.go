package threadpool

import (
	"context"
	"fmt"
	"testing"
)

type sumEngine struct{ index int }

func (s *sumEngine) Evaluate(ctx context.Context, candidate []float64) (float64, error) {
	var sum float64
	for _, v := range candidate {
		sum += v
	}
	return sum, nil
}

type errorEngine struct{}

func (errorEngine) Evaluate(ctx context.Context, candidate []float64) (float64, error) {
	return 0, fmt.Errorf("boom")
}

func TestRunCandidatesReturnsScoresInSubmissionOrder(t *testing.T) {
	pool := New(3, func(i int) Engine { return &sumEngine{index: i} })
	defer pool.Shutdown()

	candidates := [][]float64{{1, 2}, {10, 20}, {100}}
	scores := pool.RunCandidates(candidates)
	want := []float64{3, 30, 100}
	for i, w := range want {
		if scores[i] != w {
			t.Errorf("candidate %d: got %v want %v", i, scores[i], w)
		}
	}
}

func TestRunCandidatesTreatsErrorAsInfiniteObjective(t *testing.T) {
	pool := New(2, func(i int) Engine { return errorEngine{} })
	defer pool.Shutdown()

	scores := pool.RunCandidates([][]float64{{1}})
	if scores[0] < 1e300 {
		t.Errorf("expected an effectively infinite score, got %v", scores[0])
	}
}

func TestRunCandidatesHandlesMoreJobsThanWorkers(t *testing.T) {
	pool := New(2, func(i int) Engine { return &sumEngine{index: i} })
	defer pool.Shutdown()

	candidates := make([][]float64, 20)
	want := make([]float64, 20)
	for i := range candidates {
		candidates[i] = []float64{float64(i)}
		want[i] = float64(i)
	}
	scores := pool.RunCandidates(candidates)
	for i, w := range want {
		if scores[i] != w {
			t.Errorf("candidate %d: got %v want %v", i, scores[i], w)
		}
	}
}
