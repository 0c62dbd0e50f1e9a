package anim

import (
	"sort"
	"sync"

	"github.com/go-drift/tinydisplay/pkg/tderrors"
)

// Engine stores immutable animation definitions keyed by id and computes
// StateAt for any of them. All public methods are safe for concurrent use;
// StateAt itself takes only a read lock and touches no field any other
// method writes without holding the write lock, so concurrent StateAt
// calls from multiple frame-pool workers never race with each other.
type Engine struct {
	mu        sync.RWMutex
	instances map[string]*instance
}

// NewEngine returns an empty Engine.
func NewEngine() *Engine {
	return &Engine{instances: make(map[string]*instance)}
}

// Register validates and stores def, returning its id. Registering the
// same id twice returns an error; defs are immutable once registered.
func (e *Engine) Register(def *AnimationDef) (string, error) {
	if def == nil {
		return "", &tderrors.ValidationError{Field: "def", Value: nil, Message: "must not be nil"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.instances[def.id]; exists {
		return "", &tderrors.ValidationError{Field: "id", Value: def.id, Message: "already registered"}
	}
	e.instances[def.id] = &instance{def: def}
	return def.id, nil
}

// Def returns the registered definition for id, or nil if unregistered.
func (e *Engine) Def(id string) *AnimationDef {
	e.mu.RLock()
	defer e.mu.RUnlock()
	in, ok := e.instances[id]
	if !ok {
		return nil
	}
	return in.def
}

// IDs returns every registered animation id, sorted for deterministic
// iteration order (used by FrameState and Snapshot).
func (e *Engine) IDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.instances))
	for id := range e.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *Engine) mutate(id string, tick uint64, kind lifecycleKind) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	in, ok := e.instances[id]
	if !ok {
		return &tderrors.ValidationError{Field: "id", Value: id, Message: "not registered"}
	}
	in.record(tick, kind)
	return nil
}

// Start marks id as started at startTick (origin = startTick + delay).
// Idempotent: a second Start call while already running is a no-op at the
// lifecycle-replay level (resolvedAt ignores it).
func (e *Engine) Start(id string, startTick uint64) error {
	return e.mutate(id, startTick, evStart)
}

// Stop marks id as stopped at tick; StateAt returns nil for t >= tick
// afterward.
func (e *Engine) Stop(id string, tick uint64) error {
	return e.mutate(id, tick, evStop)
}

// Pause freezes progress at tick until a matching Resume.
func (e *Engine) Pause(id string, tick uint64) error {
	return e.mutate(id, tick, evPause)
}

// Resume unfreezes an animation paused at an earlier tick.
func (e *Engine) Resume(id string, tick uint64) error {
	return e.mutate(id, tick, evResume)
}

// StateAt computes the pure function state_at(id, t). Returns nil if the
// animation is not registered, not yet started by t, or — when
// PreStartBehavior is the default PreStartNone — queried before its
// origin tick.
func (e *Engine) StateAt(id string, t uint64) *AnimationState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	in, ok := e.instances[id]
	if !ok {
		return nil
	}
	return stateAt(in, t)
}

// stateAt implements the six-step algorithm. It reads only in.def and
// in.events (a snapshot taken under the engine's read lock by the caller),
// so it has no dependency on engine-wide mutable state and is safe to run
// concurrently from many goroutines against their own instance snapshots.
func stateAt(in *instance, t uint64) *AnimationState {
	def := in.def

	started, origin, stopped, pausedTicks := in.resolvedAt(t)
	if !started {
		return nil
	}
	if stopped {
		return nil
	}

	if t < origin {
		if def.preStart == PreStartFrozen {
			return &AnimationState{
				AnimationID: def.id,
				Tick:        t,
				Progress:    0,
				Active:      false,
				Completed:   false,
				Values:      def.startValues.clone(),
			}
		}
		return nil
	}

	rawElapsed := (t - origin)
	var elapsed uint64
	if pausedTicks < rawElapsed {
		elapsed = rawElapsed - pausedTicks
	}

	nonRepeating := def.repeatCount == 1
	if nonRepeating && elapsed >= def.durationTicks {
		return finalState(def, t)
	}

	cycle := elapsed / def.durationTicks
	if def.repeatCount > 0 && cycle >= def.repeatCount {
		return finalState(def, t)
	}

	phase := float64(elapsed%def.durationTicks) / float64(def.durationTicks)
	if def.durationTicks == 1 {
		// Single-tick animation: active tick itself reads as complete
		// progress per the duration==1 edge case.
		phase = 1
	}
	if def.reverseOnRepeat && cycle%2 == 1 {
		phase = 1 - phase
	}

	p, evalErr := applyMode(def, phase)
	if evalErr != nil {
		p = 0
	}

	fn := evaluators[def.kind]
	values := fn(def, p)

	return &AnimationState{
		AnimationID: def.id,
		Tick:        t,
		Progress:    p,
		Active:      true,
		Completed:   false,
		Values:      values,
	}
}

// finalState computes the sticky completed state. Progress always reads 1
// (completion is binary), but the written Values reflect the direction
// the last cycle actually ran in: a repeat_count whose final cycle was
// reversed ends back at start_values, matching the engine's phase
// convention rather than always snapping to end_values.
func finalState(def *AnimationDef, t uint64) *AnimationState {
	finalPhase := 1.0
	if def.repeatCount > 1 && def.reverseOnRepeat {
		lastCycle := def.repeatCount - 1
		if lastCycle%2 == 1 {
			finalPhase = 0.0
		}
	}
	p, evalErr := applyMode(def, finalPhase)
	if evalErr != nil {
		p = finalPhase
	}
	fn := evaluators[def.kind]
	values := fn(def, p)
	return &AnimationState{
		AnimationID: def.id,
		Tick:        t,
		Progress:    1.0,
		Active:      false,
		Completed:   true,
		Values:      values,
	}
}

// FrameState is the per-tick fold over every registered animation.
type FrameState struct {
	Tick   uint64
	States map[string]*AnimationState
}

// FrameState folds StateAt across every registered id at tick t. Only ids
// with a non-nil state are included.
func (e *Engine) FrameState(t uint64) *FrameState {
	ids := e.IDs()
	out := &FrameState{Tick: t, States: make(map[string]*AnimationState, len(ids))}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, id := range ids {
		in := e.instances[id]
		if st := stateAt(in, t); st != nil {
			out.States[id] = st
		}
	}
	return out
}

// Clone returns a deep, independent copy of the engine suitable for
// handing to a frame-pool worker: defs are immutable and shared by
// reference, but lifecycle event slices are copied so a worker's later
// reads never race with the orchestrator recording new mutations.
func (e *Engine) Clone() *Engine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := NewEngine()
	for id, in := range e.instances {
		events := make([]lifecycleEvent, len(in.events))
		copy(events, in.events)
		out.instances[id] = &instance{def: in.def, events: events}
	}
	return out
}
