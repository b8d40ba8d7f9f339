// Package model provides the partition and annual-cycle evaluator at the
// core of the population-dynamics engine: the state container holding
// numbers-at-(category,age-or-length) and the deterministic process
// pipeline that advances it one year at a time.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - category.go: Category, the per-cohort dense numbers-at-bin vector
//   - partition.go: Partition, the set of all categories sharing a grid
//   - annualcycle.go: the time-step loop and process dispatch
//
// # Architecture
//
// model defines the Process and Grid contracts; concrete process
// implementations (recruitment, mortality, ageing, maturation, tagging,
// transition) live in model/process and register no global state — they
// are constructed directly by the configuration collaborator and handed
// to a TimeStep. This mirrors the engine's age-length and selectivity
// packages, which are likewise constructed explicitly rather than
// discovered through a plug-in mechanism (no runtime-loaded process code
// is supported; see spec Non-goals).
//
// # Key Interfaces
//
// Process is the single extension point for annual-cycle behaviour:
// DoExecute receives the partition and the current (year, time step) via
// an injected Context and mutates category data in place.
package model
