// Package orchestrator drives the engine's per-tick pulse: drain ring
// buffer samples, notify the dependency manager, evaluate coordination
// primitives, apply their side effects, fetch or synchronously compute
// the tick's FrameState, hand it to the renderer, extend the frame pool's
// lookahead coverage, and asynchronously persist events and periodic
// checkpoints. OnTickPulse is the engine's only entry point driven by an
// external clock; nothing inside this package reads the wall clock.
package orchestrator
