package model

import "fmt"

// ObservationSink receives a snapshot of the partition immediately after
// a time step's processes complete, if that time step is the
// observation's declared collection point (spec §4.1 ordering rules).
type ObservationSink interface {
	// CollectionTimeStep returns the index of the time step this sink
	// wants a snapshot after.
	CollectionTimeStep() int
	// Snapshot is called with the partition state right after that time
	// step's processes finish.
	Snapshot(ctx *Context, p *Partition)
}

// TimeStep is an ordered list of Processes executed once per year, in
// declaration order (spec §4.1 ordering rules).
type TimeStep struct {
	Label     string
	Processes []Process
}

// AnnualCycle is the ordered sequence of TimeSteps making up one year of
// the simulation, plus any observation sinks subscribed to a time step's
// output.
type AnnualCycle struct {
	TimeSteps []*TimeStep
	sinks     map[int][]ObservationSink
}

// NewAnnualCycle builds a cycle from the given time steps in declaration
// order.
func NewAnnualCycle(steps []*TimeStep) *AnnualCycle {
	return &AnnualCycle{TimeSteps: steps, sinks: make(map[int][]ObservationSink)}
}

// Subscribe registers an observation sink against the time step it wants
// a post-execution snapshot from.
func (a *AnnualCycle) Subscribe(sink ObservationSink) {
	a.sinks[sink.CollectionTimeStep()] = append(a.sinks[sink.CollectionTimeStep()], sink)
}

// Execute runs one full annual cycle against p for the given year: for
// each time step in declared order, every process runs in sequence, and
// after the step completes any subscribed observation sinks receive a
// snapshot. Between time steps, all processes of step k complete before
// those of k+1 start — this function enforces that simply by not
// starting step k+1's loop until step k's has returned.
func (a *AnnualCycle) Execute(ctx *Context, p *Partition, year int) error {
	for stepIdx, step := range a.TimeSteps {
		stepCtx := ctx.At(year, stepIdx)
		for _, proc := range step.Processes {
			if err := RunProcess(stepCtx, p, proc); err != nil {
				return fmt.Errorf("time step %q (%d), process %q: %w", step.Label, stepIdx, proc.Label(), err)
			}
		}
		for _, sink := range a.sinks[stepIdx] {
			sink.Snapshot(stepCtx, p)
		}
	}
	return nil
}

// ExecuteForInitialisation loops the annual cycle against p, iterations
// times, without advancing a model year and without firing observation
// sinks — this is the equilibrium-seeking loop run before the historical
// period (spec §4.1 ExecuteForInitialisation, elaborated by the
// initphase package).
func (a *AnnualCycle) ExecuteForInitialisation(ctx *Context, p *Partition, phaseLabel string, iterations int) error {
	phaseCtx := ctx.ForInitialisation(phaseLabel)
	for i := 0; i < iterations; i++ {
		for stepIdx, step := range a.TimeSteps {
			stepCtx := phaseCtx.At(0, stepIdx)
			stepCtx.InitialisationPhase = phaseLabel
			for _, proc := range step.Processes {
				if err := RunProcess(stepCtx, p, proc); err != nil {
					return fmt.Errorf("initialisation phase %q iteration %d, time step %q, process %q: %w",
						phaseLabel, i, step.Label, proc.Label(), err)
				}
			}
		}
	}
	return nil
}
