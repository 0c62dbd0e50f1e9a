// Package expr implements the sandboxed expression evaluator used for
// trigger conditions and data-binding parameter mappings.
//
// Expressions are compiled once into an immutable [AST] over a closed,
// whitelisted node set: arithmetic, comparison, boolean, conditional,
// record field access, and calls into a fixed function library (min, max,
// abs, round, floor, ceil, sqrt, sin, cos, tan, log, exp, pow). There is no
// dynamic name binding, no loops, no function definitions, no attribute
// lookup on opaque Go values, and no imports — the language simply has no
// syntax for any of these, so there is nothing to sandbox against at
// evaluation time beyond the time budget (the node-count budget is
// enforced by Compile).
//
// Compile validates identifiers against an explicit allow-list supplied by
// the caller; any other identifier is rejected at compile time with a
// [CompileError]. Eval never panics: a runtime problem (division by zero,
// missing binding, exceeded time budget) returns an [EvalError], and at
// call sites on the determinism-critical render path (trigger conditions,
// parameter mappings) the caller is expected to substitute a type-appropriate
// zero value and record a metric rather than propagate the error, per the
// engine's render-path error policy.
package expr
