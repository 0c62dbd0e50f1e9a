// Package anim implements the animation engine (C4): immutable animation
// definitions keyed by id, and the pure function state_at(id, tick) that
// every other component in this module is ultimately built to serve.
//
// state_at depends only on the animation's definition and the lifecycle
// events recorded for it (start/stop/pause/resume, each itself stamped
// with the tick at which it was applied) — never on wall-clock time and
// never on any other animation's state. That is what lets workers in
// package framepool compute frames for future ticks on a cloned snapshot,
// in parallel, and have every worker agree byte-for-byte with the
// orchestrator's own synchronous fallback computation.
package anim
