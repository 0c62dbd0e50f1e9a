// Package coordination evaluates coordination primitives (sync, barrier,
// sequence, progress trigger, data trigger) against an animation engine
// snapshot and emits ordered CoordinationEvents.
//
// EvaluateAt advances every registered primitive's state machine to a
// tick; callers drive it with monotonically non-decreasing ticks, the
// same assumption the orchestrator makes of the animation engine.
// Predict runs the same state machines over a tick range against a
// private clone of the live state so frame-pool lookahead never
// disturbs what the orchestrator will see.
package coordination
