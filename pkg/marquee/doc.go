// Package marquee compiles an imperative per-widget movement program
// (MOVE/LOOP/SYNC/WAIT_FOR/PAUSE) into a dense, segment-encoded
// PositionTimeline.
//
// Resolution is a pure function of the set of programs and their start
// ticks: widgets that only wait on events emitted earlier in the
// dependency order are resolved in one bottom-up pass; widgets whose
// WAIT_FOR/SYNC pairs form a cycle are resolved by bounded fixed-point
// iteration (see Resolver.Resolve). Programs are compiled once through
// the validating ProgramBuilder; a built Program is immutable and safe
// to resolve repeatedly against different start ticks.
package marquee
