// Package threadpool implements the pool of replicated engine instances
// that evaluate candidate parameter vectors in parallel (spec §2
// component M, §4.8, §5): one worker per thread, each owning an
// independent Engine (model, partition, estimate handles, caches), fed
// candidates and drained of scores by the master via channels rather
// than the original design's explicit busy-loop/yield — Go's scheduler
// already cooperatively multiplexes goroutines onto OS threads, so a
// buffered work channel plus a completion channel reproduces the same
// happens-before guarantee (§5: "the master imposes a happens-before
// between submitting a candidate batch and reading its score vector")
// without hand-rolled spinning.
package threadpool

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// Engine is one worker's replicated model instance (spec §3 Ownership:
// "the thread pool shares engine instances by index, one per worker").
// Evaluate runs the full Validate→Build→Reset→Execute cycle for one
// candidate and returns its objective score.
type Engine interface {
	Evaluate(ctx context.Context, candidate []float64) (float64, error)
}

// EngineFactory builds one Engine replica per worker index, so each
// worker's RNG and caches are independent (spec §5: "each worker's
// partition and caches are private and not shared").
type EngineFactory func(workerIndex int) Engine

type job struct {
	index     int
	candidate []float64
	result    chan<- result
}

type result struct {
	index int
	score float64
}

// Pool is a fixed-size set of workers, each wrapping one Engine replica.
// Workers are long-lived goroutines that read jobs from a shared channel
// until Shutdown closes it.
type Pool struct {
	engines []Engine
	jobs    chan job
	wg      sync.WaitGroup
}

// New builds a Pool of numWorkers replicas from factory. numWorkers <= 0
// defaults to GOMAXPROCS (spec §5: "a fixed pool of worker threads, ≥1").
func New(numWorkers int, factory EngineFactory) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		engines: make([]Engine, numWorkers),
		jobs:    make(chan job, numWorkers*2),
	}
	for i := range p.engines {
		p.engines[i] = factory(i)
	}
	for i := range p.engines {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(index int) {
	defer p.wg.Done()
	engine := p.engines[index]
	for j := range p.jobs {
		score, err := engine.Evaluate(context.Background(), j.candidate)
		if err != nil {
			logrus.WithFields(logrus.Fields{"worker": index, "candidate": j.index}).
				WithError(err).Warn("candidate evaluation failed, treating as infinite objective")
			score = math.Inf(1)
		}
		j.result <- result{index: j.index, score: score}
	}
}

// RunCandidates dispatches each candidate to an idle worker, round-
// robining via the shared job channel until all finish, then returns
// scores in submission order (spec §4.8). A candidate whose engine
// returns an error is scored as an infinite objective rather than
// aborting the batch.
func (p *Pool) RunCandidates(candidates [][]float64) []float64 {
	n := len(candidates)
	results := make(chan result, n)
	for i, c := range candidates {
		p.jobs <- job{index: i, candidate: c, result: results}
	}

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		r := <-results
		scores[r.index] = r.score
	}
	return scores
}

// Shutdown closes the job channel and joins every worker (spec §5: "the
// master joins all workers on shutdown").
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}
