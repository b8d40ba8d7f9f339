// Package initphase implements the sequences of processes run before the
// historical period to produce an equilibrium starting partition (spec
// §2 component E): a fixed-iteration phase, a derived-quantity
// convergence phase, and a C-initial phase that seeds the partition
// directly from an observed age composition.
package initphase
