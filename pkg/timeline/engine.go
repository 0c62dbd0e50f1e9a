package timeline

import (
	"sync"

	"github.com/go-drift/tinydisplay/pkg/coordination"
	"github.com/go-drift/tinydisplay/pkg/expr"
)

// DefaultRingCapacity bounds the in-memory event ring when a caller does
// not pick one.
const DefaultRingCapacity = 4096

// SideEffect is invoked once per emitted event during EvaluateAt. The
// engine itself never interprets events; applying them (starting or
// stopping animations, running trigger actions) is entirely the
// orchestrator's job, driven through this callback.
type SideEffect func(coordination.Event)

// Engine groups coordination plans and drives the shared
// coordination.Engine one tick at a time, retaining recent events in a
// bounded ring.
type Engine struct {
	mu    sync.Mutex
	coord *coordination.Engine
	ring  *eventRing
	plans map[string]*Plan
}

// NewEngine returns an Engine driving coord, retaining up to
// ringCapacity recent events (DefaultRingCapacity if <= 0).
func NewEngine(coord *coordination.Engine, ringCapacity int) *Engine {
	if ringCapacity <= 0 {
		ringCapacity = DefaultRingCapacity
	}
	return &Engine{
		coord: coord,
		ring:  newEventRing(ringCapacity),
		plans: make(map[string]*Plan),
	}
}

// RegisterPlan records a grouping label. It does not affect evaluation.
func (e *Engine) RegisterPlan(p *Plan) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plans[p.id] = p
}

// PlanOwning returns the plan that claims primitiveID, or nil.
func (e *Engine) PlanOwning(primitiveID string) *Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Owner(e.plans, primitiveID)
}

// EvaluateAt evaluates every active primitive at tick t, appends the
// resulting events to the ring (already in spec order, since
// coordination.Engine.EvaluateAt calls Order before returning), and
// invokes effect once per event in that same order. effect may be nil.
func (e *Engine) EvaluateAt(t uint64, bindings map[string]expr.Value, effect SideEffect) ([]coordination.Event, error) {
	evs, err := e.coord.EvaluateAt(t, bindings)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.ring.push(evs...)
	e.mu.Unlock()
	if effect != nil {
		for _, ev := range evs {
			effect(ev)
		}
	}
	return evs, nil
}

// Predict returns events over [t0,t1] ordered by (tick, kind_rank,
// primitive_id) without mutating primitive state or touching the ring;
// it exists solely to let the frame pool warm its cache.
func (e *Engine) Predict(t0, t1 uint64, bindingsAt func(tick uint64) map[string]expr.Value) ([]coordination.Event, error) {
	return e.coord.Predict(t0, t1, bindingsAt)
}

// RecentEvents returns the ring's current contents, oldest first.
func (e *Engine) RecentEvents() []coordination.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ring.snapshot()
}
