// Package tderrors provides the structured error taxonomy and metric
// plumbing shared by every package in the tick-based animation and
// coordination engine.
//
// The render path (state_at, coordination evaluation, expression
// evaluation) never returns an error to its caller: failures there are
// recorded as metrics and the engine degrades to a well-defined fallback
// value, per the propagation policy in the engine specification. Only
// initialization and registration calls (RegisterAnimation, Compile,
// engine construction) return errors directly.
package tderrors

import (
	"fmt"
	"time"
)

// Kind categorizes an error raised by the engine.
type Kind int

const (
	// KindUnknown is an error of unclassified origin.
	KindUnknown Kind = iota
	// KindValidation indicates a malformed definition: bad animation
	// ranges, an unknown easing name, an invalid coordination primitive.
	KindValidation
	// KindExprCompile indicates an expression failed to compile.
	KindExprCompile
	// KindExprEval indicates an expression failed during evaluation.
	KindExprEval
	// KindMarqueeNotConverged indicates the marquee fixed-point resolver
	// exhausted its iteration budget without converging.
	KindMarqueeNotConverged
	// KindSampleDropped indicates a ring buffer overflow dropped a sample.
	KindSampleDropped
	// KindFrameMissed indicates synchronous frame computation overran the
	// frame budget.
	KindFrameMissed
	// KindSnapshotMismatch indicates a worker result arrived tagged with a
	// stale snapshot id and was discarded.
	KindSnapshotMismatch
	// KindPersistenceLagging indicates the persistence queue depth crossed
	// its back-pressure threshold.
	KindPersistenceLagging
	// KindFatal indicates a failure the engine could not absorb: a failed
	// sequence-step start, a failed trigger action, or a failed
	// persistence write. It is reported to the Handler; the orchestrator
	// keeps pulsing and has no quiesced mode.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExprCompile:
		return "expr_compile"
	case KindExprEval:
		return "expr_eval"
	case KindMarqueeNotConverged:
		return "marquee_not_converged"
	case KindSampleDropped:
		return "sample_dropped"
	case KindFrameMissed:
		return "frame_missed"
	case KindSnapshotMismatch:
		return "snapshot_mismatch"
	case KindPersistenceLagging:
		return "persistence_lagging"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a structured error carrying the operation, kind, tick, and
// underlying cause. It implements Unwrap so callers can test with
// errors.Is/errors.As against sentinel and wrapped errors alike.
type Error struct {
	// Op is the operation that failed, e.g. "anim.Register" or "expr.Compile".
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error, if any.
	Err error
	// Tick is the tick at which the error occurred, if applicable (0 if N/A).
	Tick uint64
	// StackTrace is populated only for recovered panics.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Tick != 0 {
		return fmt.Sprintf("%s [%s] tick=%d: %v", e.Op, e.Kind, e.Tick, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error, stamping Timestamp if it is zero.
func New(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}

// ValidationError is returned by validating builders (AnimationDef,
// CoordinationPrimitive, Config) for a single malformed field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: field %q (value %v): %s", e.Field, e.Value, e.Message)
}

// PanicError represents a recovered panic from a worker goroutine or a
// trigger action callback.
type PanicError struct {
	Op         string
	Value      any
	StackTrace string
	Timestamp  time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}
