// Package process implements the concrete biological operations an
// annual-cycle time step composes (spec §2 component D): recruitment,
// mortality (including the Baranov instantaneous-rates form), ageing,
// maturation, tagging, and age-length transition. Each type satisfies
// model.Process and is built directly from validated configuration —
// there is no runtime plug-in mechanism.
package process
