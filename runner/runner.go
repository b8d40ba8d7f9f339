// Package runner implements the seven top-level run-mode routines the
// driver invokes after build (spec §6 "Run modes"): basic, estimation,
// mcmc, profiling, projection, simulation, testing. Each routine operates
// on an already-built Session; assembling a Session from a parsed
// configuration is the collaborator's responsibility (spec §1/§6) and is
// not implemented here.
package runner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/popdyn/casalcore/boundscale"
	"github.com/popdyn/casalcore/errs"
	"github.com/popdyn/casalcore/estimate"
	"github.com/popdyn/casalcore/gradient"
	"github.com/popdyn/casalcore/mcmc"
	"github.com/popdyn/casalcore/minimiser"
	"github.com/popdyn/casalcore/model"
	"github.com/popdyn/casalcore/objective"
	"github.com/popdyn/casalcore/threadpool"
)

// Mode names one of the seven run modes consumed by the core (spec §6).
type Mode string

const (
	ModeBasic      Mode = "basic"
	ModeEstimation Mode = "estimation"
	ModeMCMC       Mode = "mcmc"
	ModeProfiling  Mode = "profiling"
	ModeProjection Mode = "projection"
	ModeSimulation Mode = "simulation"
	ModeTesting    Mode = "testing"
)

// ParseMode validates a run-mode string from the command line.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBasic, ModeEstimation, ModeMCMC, ModeProfiling, ModeProjection, ModeSimulation, ModeTesting:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown run mode %q", s)
	}
}

// Session bundles everything a run-mode routine needs once Build has
// produced it: the cycle and its starting partition, the addressable
// estimates, the observations scored against it, and the thread pool used
// to replicate the engine for estimation/MCMC candidate scoring.
type Session struct {
	Cycle     *model.AnnualCycle
	Partition *model.Partition
	Ctx       *model.Context

	StartYear int
	EndYear   int // inclusive

	Estimates    *estimate.Manager
	Observations []objective.ScoredObservation

	// EngineFactory builds one fully independent worker replica (its own
	// AnnualCycle, Partition and Observations, all freshly constructed so
	// Snapshot's mutation of Observation state never crosses goroutines)
	// for estimation/MCMC candidate scoring (spec §5: "each worker's
	// partition and caches are private and not shared"). Building that
	// replica from a parsed configuration is the collaborator's
	// responsibility. If nil, RunEstimation/RunMCMC fall back to a single
	// worker wrapping this Session's own Cycle/Partition/Observations
	// directly — correct only because the pool is then forced to exactly
	// one worker, so there is no concurrent access to share.
	EngineFactory threadpool.EngineFactory
	NumWorkers    int

	Minimiser minimiser.Config
	RWMH      *mcmc.RWMH
	HMC       *mcmc.HMC

	ChainLength int
	BurnIn      int
	Keep        int

	// Covariance is the unscaled-space parameter covariance matrix built
	// at the end of RunEstimation (spec §4.6: "build the covariance
	// matrix" after the phase loop converges), ready for mpdio output or
	// as an RWMH proposal covariance.
	Covariance *mat.Dense

	Errors *errs.Batch
}

// Years returns the inclusive [StartYear, EndYear] range advanced by one
// annual-cycle execution per iteration.
func (s *Session) Years() []int {
	years := make([]int, 0, s.EndYear-s.StartYear+1)
	for y := s.StartYear; y <= s.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// RunBasic advances the partition through the historical period once and
// reports the final state (spec §6 "basic" run mode: build, run, report).
func RunBasic(s *Session) error {
	for _, year := range s.Years() {
		if err := s.Cycle.Execute(s.Ctx, s.Partition, year); err != nil {
			return fmt.Errorf("basic run: %w", err)
		}
	}
	s.Ctx.Log.Infof("basic run complete: final total abundance %.6g", s.Partition.Total())
	return nil
}

// RunSimulation is identical to RunBasic in mechanics but is the mode a
// collaborator invokes when the configuration includes stochastic
// recruitment deviations (spec §6 "simulation"): the distinction lives
// entirely in how Build wired the recruitment process's YCS source, not
// in how the cycle is driven.
func RunSimulation(s *Session) error {
	return RunBasic(s)
}

// RunProjection extends the partition forward beyond EndYear for the
// given number of additional years, without scoring against observations
// (spec §6 "projection": forward projection past the estimation period).
func RunProjection(s *Session, additionalYears int) error {
	if err := RunBasic(s); err != nil {
		return err
	}
	for y := s.EndYear + 1; y <= s.EndYear+additionalYears; y++ {
		if err := s.Cycle.Execute(s.Ctx, s.Partition, y); err != nil {
			return fmt.Errorf("projection run, year %d: %w", y, err)
		}
	}
	return nil
}

// RunTesting runs the basic cycle but promotes every recorded warning to a
// fatal error (spec §7: "kWarning... except in test mode where warnings
// are promoted").
func RunTesting(s *Session) error {
	if err := RunBasic(s); err != nil {
		return err
	}
	if s.Errors != nil && len(s.Errors.Warnings()) > 0 {
		return fmt.Errorf("testing mode: %d warnings promoted to errors", len(s.Errors.Warnings()))
	}
	return nil
}

// RunProfiling repeats the basic annual-cycle run iterations times against
// fresh partition clones and returns the average per-run wall-clock
// duration (spec §6 "profiling").
func RunProfiling(s *Session, iterations int) (time.Duration, error) {
	if iterations <= 0 {
		iterations = 1
	}
	start := time.Now()
	years := s.Years()
	for i := 0; i < iterations; i++ {
		p := s.Partition.Clone()
		for _, year := range years {
			if err := s.Cycle.Execute(s.Ctx, p, year); err != nil {
				return 0, fmt.Errorf("profiling run %d: %w", i, err)
			}
		}
	}
	return time.Since(start) / time.Duration(iterations), nil
}

// engine adapts a Session into a threadpool.Engine: each Evaluate call
// unscales a bound-scaled candidate into estimate values, re-runs the
// annual cycle from a fresh partition clone, and returns the resulting
// objective total.
type engine struct {
	session   *Session
	estimated []*estimate.Estimate
	partition *model.Partition
	workerCtx *model.Context

	// lastComponents is the objective breakdown from the most recent
	// Evaluate call. Safe without synchronization because this engine is
	// only ever handed to a single-worker pool (see buildPool): the pool
	// serializes every call through one job channel, so there is never a
	// concurrent writer.
	lastComponents objective.Components
}

func newEngine(s *Session, workerIndex int) *engine {
	return &engine{
		session:   s,
		estimated: s.Estimates.Estimated(),
		partition: s.Partition.Clone(),
		workerCtx: model.NewContext(workerIndex, int64(workerIndex)+1),
	}
}

func (e *engine) Evaluate(_ context.Context, candidate []float64) (float64, error) {
	estimated := e.estimated
	unscaled := make([]float64, len(candidate))
	for i, scaled := range candidate {
		unscaled[i] = boundscale.Unscale(scaled, estimated[i].Lower, estimated[i].Upper)
	}
	if err := estimate.SetValues(estimated, unscaled); err != nil {
		return math.Inf(1), err
	}

	e.partition.Reset()
	for _, year := range e.session.Years() {
		if err := e.session.Cycle.Execute(e.workerCtx, e.partition, year); err != nil {
			return math.Inf(1), err
		}
	}

	comps, err := objective.Evaluate(e.session.Observations, estimated, candidate, nil, false)
	if err != nil {
		return math.Inf(1), err
	}
	e.lastComponents = comps
	return comps.Total, nil
}

// LastComponents returns the objective breakdown from the most recent
// Evaluate call.
func (e *engine) LastComponents() objective.Components {
	return e.lastComponents
}

// buildPool spins up the thread pool of replicated engines used for
// candidate scoring (spec §2 component M, §4.8). When the session
// supplies an EngineFactory (a collaborator-built, per-worker-isolated
// replica), the pool runs at the configured worker count and the second
// return value is nil (the replica's internals, including its objective
// breakdown, are opaque to the core); otherwise it falls back to a
// single worker wrapping the session's own Cycle/Partition/Observations,
// safe because the pool is then forced to one worker and there is no
// concurrent writer of shared estimate state (spec §5: "estimate
// metadata... written by one thread at a time"), and the second return
// value is that worker's own *engine, letting callers read its
// objective-component breakdown after a score.
func buildPool(s *Session) (*threadpool.Pool, *engine) {
	if s.EngineFactory != nil {
		return threadpool.New(s.NumWorkers, s.EngineFactory), nil
	}
	e := newEngine(s, 0)
	pool := threadpool.New(1, func(workerIndex int) threadpool.Engine {
		return e
	})
	return pool, e
}

// componentsOf returns e's last objective breakdown, or the zero value
// if e is nil (an external EngineFactory replica, whose internals the
// core cannot see).
func componentsOf(e *engine) objective.Components {
	if e == nil {
		return objective.Components{}
	}
	return e.LastComponents()
}

// RunEstimation locates the point estimate by minimisation (spec §6
// "estimation", §4.6): builds a thread pool of replicated engines, then
// loops phase k from 1 to the highest phase any estimate declares,
// minimising only the parameters active by phase k at each step while
// holding later-phase parameters fixed at their starting values. Once
// the final phase (which by construction includes every estimated
// parameter) converges, builds the unscaled-space covariance from its
// terminal Hessian and runs one final non-estimation pass to leave the
// model's cached state consistent with the converged values.
func RunEstimation(s *Session) (minimiser.Result, error) {
	fullEstimated := s.Estimates.Estimated()
	maxPhase := s.Estimates.MaxPhase()
	if len(fullEstimated) == 0 || maxPhase == 0 {
		return minimiser.Result{}, fmt.Errorf("estimation run: no estimated parameters registered")
	}

	pool, _ := buildPool(s)
	defer pool.Shutdown()

	positionOf := make(map[*estimate.Estimate]int, len(fullEstimated))
	for i, e := range fullEstimated {
		positionOf[e] = i
	}
	currentFullScaled := func() []float64 {
		out := make([]float64, len(fullEstimated))
		for i, e := range fullEstimated {
			out[i] = boundscale.Scale(e.Value, e.Lower, e.Upper)
		}
		return out
	}

	var result minimiser.Result
	for phase := 1; phase <= maxPhase; phase++ {
		phaseEstimated := s.Estimates.ForPhase(phase)
		if len(phaseEstimated) == 0 {
			continue
		}
		positions := make([]int, len(phaseEstimated))
		for i, e := range phaseEstimated {
			positions[i] = positionOf[e]
		}

		toFullBatch := func(phaseBatch [][]float64) [][]float64 {
			base := currentFullScaled()
			full := make([][]float64, len(phaseBatch))
			for b, row := range phaseBatch {
				fullRow := append([]float64(nil), base...)
				for i, pos := range positions {
					fullRow[pos] = row[i]
				}
				full[b] = fullRow
			}
			return full
		}
		evaluate := func(phaseBatch [][]float64) []float64 {
			return pool.RunCandidates(toFullBatch(phaseBatch))
		}
		objectiveFunc := func(phaseScaled []float64) float64 {
			return evaluate([][]float64{phaseScaled})[0]
		}

		initial := make([]float64, len(phaseEstimated))
		for i, e := range phaseEstimated {
			initial[i] = boundscale.Scale(e.Value, e.Lower, e.Upper)
		}

		result = minimiser.Minimise(initial, s.Minimiser, objectiveFunc, evaluate)

		for i, e := range phaseEstimated {
			e.SetValue(boundscale.Unscale(result.Scaled[i], e.Lower, e.Upper))
		}
		logrus.Infof("estimation phase %d/%d complete: outcome=%s objective=%.6g iterations=%d",
			phase, maxPhase, result.Outcome, result.Objective, result.Iterations)
	}

	// The final phase's ForPhase(maxPhase) includes every estimated
	// parameter by definition of MaxPhase, so result.Hessian already has
	// full dimension here.
	if cov, err := minimiser.Covariance(result.Hessian); err == nil {
		s.Covariance = unscaleCovariance(cov, fullEstimated)
	} else {
		logrus.WithError(err).Warn("estimation run: covariance matrix could not be built from the terminal Hessian")
	}

	pool.RunCandidates([][]float64{currentFullScaled()})
	return result, nil
}

// unscaleCovariance re-transforms a scaled-space covariance into
// unscaled units via the bound-scaling Jacobian (spec §4.5):
// Cov(p)_ij = (dp/ds)_i · Cov(s)_ij · (dp/ds)_j. An estimate sitting at
// or outside its bound has an undefined Jacobian (DScaledDUnscaled
// returns NaN), treated as zero so it contributes nothing rather than
// poisoning the whole row/column with NaN.
func unscaleCovariance(scaledCov *mat.Dense, estimated []*estimate.Estimate) *mat.Dense {
	n := len(estimated)
	jacobian := make([]float64, n)
	for i, e := range estimated {
		d := boundscale.DScaledDUnscaled(e.Value, e.Lower, e.Upper)
		if math.IsNaN(d) {
			d = 0
		}
		jacobian[i] = d
	}
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, scaledCov.At(i, j)*jacobian[i]*jacobian[j])
		}
	}
	return out
}

// RunMCMC explores the posterior with the session's configured proposal
// mechanism — random-walk Metropolis-Hastings or leap-frog HMC (spec §2
// component L, §6 "mcmc", §4.7) — scoring each candidate through the
// session's thread pool, and returns the kept chain. Exactly one of
// s.RWMH/s.HMC must be set; RWMH proposes via its adaptive covariance,
// HMC proposes via a leap-frog trajectory through the batch-dispatched
// gradient.
func RunMCMC(s *Session) (*mcmc.Chain, error) {
	if s.RWMH == nil && s.HMC == nil {
		return nil, fmt.Errorf("mcmc run: no proposal mechanism configured (set either RWMH or HMC)")
	}
	if s.RWMH != nil && s.HMC != nil {
		return nil, fmt.Errorf("mcmc run: RWMH and HMC are mutually exclusive proposal mechanisms")
	}
	estimated := s.Estimates.Estimated()
	if len(estimated) == 0 {
		return nil, fmt.Errorf("mcmc run: no estimated parameters registered")
	}

	pool, fallbackEngine := buildPool(s)
	defer pool.Shutdown()
	score := func(candidate []float64) float64 {
		return pool.RunCandidates([][]float64{candidate})[0]
	}
	batchEvaluate := func(candidates [][]float64) []float64 {
		return pool.RunCandidates(candidates)
	}
	gradStepSize := s.Minimiser.GradientStepSize
	if gradStepSize <= 0 {
		gradStepSize = gradient.DefaultStepSize
	}
	logPosterior := func(q []float64) float64 { return -score(q) }

	current := make([]float64, len(estimated))
	lower := make([]float64, len(estimated))
	upper := make([]float64, len(estimated))
	for i, e := range estimated {
		current[i] = boundscale.Scale(e.Value, e.Lower, e.Upper)
		lower[i], upper[i] = e.Lower, e.Upper
	}
	currentScore := score(current)
	currentComponents := componentsOf(fallbackEngine)

	chain := &mcmc.Chain{}
	var accepted int
	var rateSinceAdapt float64
	for iter := 0; iter <= s.ChainLength; iter++ {
		if mcmc.KeepRule(iter, s.Keep) {
			rate := 0.0
			if iter > 0 {
				rate = float64(accepted) / float64(iter)
			}
			stepSize := 0.0
			if s.RWMH != nil {
				stepSize = s.RWMH.StepSize
			} else {
				stepSize = s.HMC.LeapfrogDelta
			}
			chain.Append(mcmc.ChainLink{
				Iteration:                iter,
				StateTag:                 mcmc.TagForIteration(iter, s.BurnIn),
				TotalScore:               currentScore,
				Likelihood:               currentComponents.Likelihood,
				Prior:                    currentComponents.Prior,
				Penalty:                  currentComponents.Penalty,
				AdditionalPriors:         currentComponents.AdditionalPriors,
				Jacobians:                currentComponents.Jacobians,
				AcceptanceRate:           rate,
				AcceptanceRateSinceAdapt: rateSinceAdapt,
				StepSize:                 stepSize,
				ParameterValues:          append([]float64(nil), current...),
			})
		}
		if iter == s.ChainLength {
			break
		}

		var proposed []float64
		var ratio float64
		var proposedScore float64
		computeRatio := func() {}

		switch {
		case s.RWMH != nil:
			proposed = s.RWMH.Propose(current)
			computeRatio = func() {
				ratio = math.Min(1, math.Exp(currentScore-proposedScore))
			}
		case s.HMC != nil:
			var pInitial, pFinal []float64
			proposed, pInitial, pFinal = s.HMC.ProposeWithMomentum(current, gradStepSize, batchEvaluate, logPosterior)
			computeRatio = func() {
				ratio = mcmc.AcceptanceRatio(currentScore, proposedScore, pInitial, pFinal)
			}
		}

		unscaledProposed := make([]float64, len(proposed))
		for i := range proposed {
			unscaledProposed[i] = boundscale.Unscale(proposed[i], lower[i], upper[i])
		}
		accept := false
		if mcmc.WithinBounds(unscaledProposed, lower, upper) {
			proposedScore = score(proposed)
			computeRatio()
			accept = s.Ctx.RNG.Float64() < ratio
			if accept {
				current = proposed
				currentScore = proposedScore
				currentComponents = componentsOf(fallbackEngine)
			}
		}
		if accept {
			accepted++
		}
		if s.RWMH != nil {
			s.RWMH.RecordTry(accept)
			_, rateSinceAdapt = s.RWMH.MaybeAdapt(iter + 1)
		}
	}
	return chain, nil
}
