package coordination

import (
	"sort"
	"sync"

	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/expr"
	"github.com/go-drift/tinydisplay/pkg/tderrors"
)

// syncState tracks whether a Sync has already fired.
type syncState struct {
	def   *Sync
	fired bool
}

// barrierStatus mirrors spec §4.6's Barrier state machine.
type barrierStatus int

const (
	barrierWaiting barrierStatus = iota
	barrierResolved
	barrierTimedOut
)

type barrierState struct {
	def    *Barrier
	status barrierStatus
}

// sequenceStatus mirrors spec §4.6's Sequence state machine.
type sequenceStatus int

const (
	sequenceIdle sequenceStatus = iota
	sequenceRunning
	sequenceCompleted
)

type sequenceState struct {
	def       *Sequence
	status    sequenceStatus
	nextIndex int
}

type progressTriggerState struct {
	def    *ProgressTrigger
	fired  bool
	lastP  float64
	seenOK bool
}

type dataTriggerState struct {
	def   *DataTrigger
	ast   *expr.AST
	fired bool
}

// Engine evaluates registered coordination primitives against an
// anim.Engine snapshot and emits ordered Events.
type Engine struct {
	mu sync.Mutex

	anims   *anim.Engine
	cache   *expr.Cache
	metrics *tderrors.Metrics

	syncs       map[string]*syncState
	barriers    map[string]*barrierState
	sequences   map[string]*sequenceState
	progress    map[string]*progressTriggerState
	dataTrigger map[string]*dataTriggerState
}

// NewEngine returns an Engine driving its triggers off anims and compiling
// DataTrigger expressions through cache. metrics may be nil; when set, a
// DataTrigger whose condition fails to evaluate increments
// MetricExprEvalFallback instead of propagating the error.
func NewEngine(anims *anim.Engine, cache *expr.Cache, metrics *tderrors.Metrics) *Engine {
	if cache == nil {
		cache = expr.NewCache(expr.DefaultCacheSize)
	}
	return &Engine{
		anims:       anims,
		cache:       cache,
		metrics:     metrics,
		syncs:       make(map[string]*syncState),
		barriers:    make(map[string]*barrierState),
		sequences:   make(map[string]*sequenceState),
		progress:    make(map[string]*progressTriggerState),
		dataTrigger: make(map[string]*dataTriggerState),
	}
}

// RegisterSync registers a Sync primitive.
func (e *Engine) RegisterSync(s *Sync) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncs[s.id] = &syncState{def: s}
}

// RegisterBarrier registers a Barrier primitive.
func (e *Engine) RegisterBarrier(b *Barrier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.barriers[b.id] = &barrierState{def: b, status: barrierWaiting}
}

// RegisterSequence registers a Sequence primitive.
func (e *Engine) RegisterSequence(s *Sequence) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sequences[s.id] = &sequenceState{def: s, status: sequenceIdle}
}

// RegisterProgressTrigger registers a ProgressTrigger primitive.
func (e *Engine) RegisterProgressTrigger(p *ProgressTrigger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress[p.id] = &progressTriggerState{def: p}
}

// RegisterDataTrigger compiles d's condition expression against
// d.variables and registers the primitive. Returns the compile error, if
// any, instead of panicking at evaluation time.
func (e *Engine) RegisterDataTrigger(d *DataTrigger) error {
	ast, err := e.cache.Compile(d.conditionExpr, d.variables)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dataTrigger[d.id] = &dataTriggerState{def: d, ast: ast}
	return nil
}

// ActionRef returns the action_ref configured for a ProgressTrigger or
// DataTrigger primitive, for hosts that want to dispatch a named action
// when that primitive's TRIGGER_ACTIVATED event arrives. ok is false for
// any other primitive kind or unknown id.
func (e *Engine) ActionRef(primitiveID string) (ref string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, found := e.progress[primitiveID]; found {
		return st.def.actionRef, true
	}
	if st, found := e.dataTrigger[primitiveID]; found {
		return st.def.actionRef, true
	}
	return "", false
}

// EvaluateAt advances every registered primitive's state machine to tick
// t and returns the events produced, in spec-mandated order. bindings
// supplies variable values for DataTrigger conditions; callers pass a nil
// map when no DataTrigger is registered.
func (e *Engine) EvaluateAt(t uint64, bindings map[string]expr.Value) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluateLocked(t, bindings)
}

func (e *Engine) evaluateLocked(t uint64, bindings map[string]expr.Value) ([]Event, error) {
	var events []Event

	for _, id := range sortedSyncIDs(e.syncs) {
		st := e.syncs[id]
		if st.fired || t < st.def.syncTick {
			continue
		}
		allStarted := true
		for _, aid := range st.def.animationIDs {
			if e.anims.StateAt(aid, t) == nil {
				allStarted = false
				break
			}
		}
		if allStarted {
			st.fired = true
			events = append(events, Event{Tick: t, Kind: SyncTriggered, PrimitiveID: id})
		}
	}

	for _, id := range sortedSequenceIDs(e.sequences) {
		st := e.sequences[id]
		if st.status == sequenceCompleted || t < st.def.startTick {
			continue
		}
		if st.status == sequenceIdle {
			st.status = sequenceRunning
		}
		for st.nextIndex < len(st.def.steps) {
			step := st.def.steps[st.nextIndex]
			due := st.def.startTick + step.OffsetTicks
			if due > t {
				break
			}
			events = append(events, Event{Tick: t, Kind: SequenceStepStarted, PrimitiveID: id, Payload: step.AnimationID})
			st.nextIndex++
		}
		if st.nextIndex >= len(st.def.steps) {
			st.status = sequenceCompleted
			events = append(events, Event{Tick: t, Kind: SequenceCompleted, PrimitiveID: id})
		}
	}

	for _, id := range sortedProgressIDs(e.progress) {
		st := e.progress[id]
		as := e.anims.StateAt(st.def.animationID, t)
		if as == nil {
			continue
		}
		crossed := as.Progress >= st.def.threshold && (!st.seenOK || st.lastP < st.def.threshold)
		st.lastP = as.Progress
		st.seenOK = true
		if crossed && !st.fired {
			st.fired = true
			events = append(events, Event{Tick: t, Kind: TriggerActivated, PrimitiveID: id})
		} else if st.fired && st.def.autoReset && as.Progress < st.def.threshold {
			st.fired = false
			events = append(events, Event{Tick: t, Kind: TriggerReset, PrimitiveID: id})
		}
	}

	for _, id := range sortedDataTriggerIDs(e.dataTrigger) {
		st := e.dataTrigger[id]
		ok := false
		if v, err := expr.Eval(st.ast, bindings); err != nil {
			if e.metrics != nil {
				e.metrics.Inc(tderrors.MetricExprEvalFallback)
			}
		} else if b, err := v.AsBool(); err != nil {
			if e.metrics != nil {
				e.metrics.Inc(tderrors.MetricExprEvalFallback)
			}
		} else {
			ok = b
		}
		if ok && !st.fired {
			st.fired = true
			events = append(events, Event{Tick: t, Kind: TriggerActivated, PrimitiveID: id})
		} else if !ok && st.fired && st.def.autoReset {
			st.fired = false
			events = append(events, Event{Tick: t, Kind: TriggerReset, PrimitiveID: id})
		}
	}

	for _, id := range sortedBarrierIDs(e.barriers) {
		st := e.barriers[id]
		if st.status != barrierWaiting || t < st.def.barrierTick {
			continue
		}
		allDone := true
		for _, aid := range st.def.waitingIDs {
			as := e.anims.StateAt(aid, t)
			if as == nil || !as.Completed {
				allDone = false
				break
			}
		}
		timedOut := st.def.timeoutTicks != nil && t >= st.def.barrierTick+*st.def.timeoutTicks
		switch {
		case allDone:
			st.status = barrierResolved
			events = append(events, Event{Tick: t, Kind: BarrierResolved, PrimitiveID: id, Payload: map[string]bool{"timeout": false}})
		case timedOut && st.def.onTimeout == Release:
			st.status = barrierResolved
			events = append(events, Event{Tick: t, Kind: BarrierResolved, PrimitiveID: id, Payload: map[string]bool{"timeout": true}})
		case timedOut && st.def.onTimeout == Cancel:
			st.status = barrierTimedOut
			events = append(events, Event{Tick: t, Kind: TriggerReset, PrimitiveID: id, Payload: map[string]bool{"cancelled": true}})
		}
	}

	Order(events)
	return events, nil
}

// Predict runs EvaluateAt over [t0,t1] against a private clone of the
// animation engine and a deep copy of every primitive's state, so
// look-ahead never disturbs what the live Engine will later observe at
// those same ticks.
func (e *Engine) Predict(t0, t1 uint64, bindingsAt func(tick uint64) map[string]expr.Value) ([]Event, error) {
	e.mu.Lock()
	clone := &Engine{
		anims:       e.anims.Clone(),
		cache:       e.cache,
		metrics:     e.metrics,
		syncs:       cloneSyncs(e.syncs),
		barriers:    cloneBarriers(e.barriers),
		sequences:   cloneSequences(e.sequences),
		progress:    cloneProgress(e.progress),
		dataTrigger: cloneDataTriggers(e.dataTrigger),
	}
	e.mu.Unlock()

	var all []Event
	for t := t0; t <= t1; t++ {
		var bindings map[string]expr.Value
		if bindingsAt != nil {
			bindings = bindingsAt(t)
		}
		evs, err := clone.evaluateLocked(t, bindings)
		if err != nil {
			return nil, err
		}
		all = append(all, evs...)
		if t == t1 {
			break
		}
	}
	return all, nil
}

func cloneSyncs(m map[string]*syncState) map[string]*syncState {
	out := make(map[string]*syncState, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneBarriers(m map[string]*barrierState) map[string]*barrierState {
	out := make(map[string]*barrierState, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneSequences(m map[string]*sequenceState) map[string]*sequenceState {
	out := make(map[string]*sequenceState, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneProgress(m map[string]*progressTriggerState) map[string]*progressTriggerState {
	out := make(map[string]*progressTriggerState, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneDataTriggers(m map[string]*dataTriggerState) map[string]*dataTriggerState {
	out := make(map[string]*dataTriggerState, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func sortedSyncIDs(m map[string]*syncState) []string                 { return sortedKeys(m) }
func sortedSequenceIDs(m map[string]*sequenceState) []string         { return sortedKeys(m) }
func sortedProgressIDs(m map[string]*progressTriggerState) []string  { return sortedKeys(m) }
func sortedDataTriggerIDs(m map[string]*dataTriggerState) []string   { return sortedKeys(m) }
func sortedBarrierIDs(m map[string]*barrierState) []string           { return sortedKeys(m) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
