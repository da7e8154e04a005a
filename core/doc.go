// Package core contains the domain contracts for the InCube client: the fixed
// agent roster, the per-run participant records, the timeline event union,
// the decoded stream frame types and the RunStore that holds live run state.
//
// The package is deliberately free of transport or interpretation logic so it
// can be shared between the protocol controller, the presentation layer and
// tests without import cycles.
package core
