// Package timeline groups coordination primitives into plans and drives
// them tick by tick: EvaluateAt appends every emitted event to a bounded
// in-memory ring and forwards them to a caller-supplied side-effect
// callback, while Predict runs the same primitives over a tick range
// against a private clone, purely, for frame-pool lookahead.
package timeline
