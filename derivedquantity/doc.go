// Package derivedquantity computes summary quantities from a partition,
// e.g. spawning-stock biomass (spec §2 component F), recorded once per
// year so that recruitment relationships and reports can reference a
// time series of values rather than the instantaneous partition state.
package derivedquantity
