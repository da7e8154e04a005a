// Package boomerang implements the execution client for a multi-agent
// analysis run: it opens the streaming endpoint for a perspective, interprets
// the server-pushed frame sequence (parallel specialists, Axiom challenge
// flow, verdicts, completion), reconstructs incremental per-agent state in a
// core.RunStore, detects stalls, classifies fatal versus per-agent errors and
// reconciles the final state with the persistence API.
//
// The Controller is the single writer of run state. Frames are applied in
// arrival order; each frame's effects are atomic with respect to View reads.
// Frames, errors and closes from a superseded stream are identified by a
// per-run generation id and dropped, so an abort still in flight can never
// write into a freshly started run.
package boomerang
