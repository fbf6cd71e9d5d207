// Package engine implements the correction loop controller for Crucible.
// The Engine sequences verification, failure analysis, correction, and
// re-verification as an explicit finite state machine with a bounded
// attempt budget, escalating deterministically when correction does not
// converge. The external corrector is reached through the Corrector
// interface; optional capabilities (attempt ledger) use nil-safe
// composition for graceful degradation.
package engine
