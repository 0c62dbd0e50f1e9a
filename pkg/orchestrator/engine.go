package orchestrator

import (
	"sync"

	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/coordination"
	"github.com/go-drift/tinydisplay/pkg/databind"
	"github.com/go-drift/tinydisplay/pkg/depgraph"
	"github.com/go-drift/tinydisplay/pkg/expr"
	"github.com/go-drift/tinydisplay/pkg/framepool"
	"github.com/go-drift/tinydisplay/pkg/ringbuf"
	"github.com/go-drift/tinydisplay/pkg/store"
	"github.com/go-drift/tinydisplay/pkg/tdconfig"
	"github.com/go-drift/tinydisplay/pkg/tderrors"
	"github.com/go-drift/tinydisplay/pkg/timeline"
)

// Renderer hands a FrameState to the (external) display pipeline.
type Renderer func(*anim.FrameState)

// Engine drives the per-tick pulse across every other component.
// Nothing inside it ever reads a wall clock: the only time source is the
// tick argument to OnTickPulse.
type Engine struct {
	cfg tdconfig.Config

	ring      *ringbuf.Registry
	cursorsMu sync.Mutex
	cursors   map[string]*ringbuf.Cursor
	dep       *depgraph.Graph

	anims    *anim.Engine
	coord    *coordination.Engine
	timeline *timeline.Engine
	pool     *framepool.Pool
	writer   *store.Writer
	metrics  *tderrors.Metrics
	actions  *Registry
	binder   *databind.Registry

	renderer Renderer

	latest map[string]expr.Value

	tick               uint64
	lookahead          uint64
	minLookahead       uint64
	consecutiveMisses  int
	missThreshold      int
	sinceCheckpoint    uint64
	checkpointInterval uint64
}

// New wires an Engine from its already-constructed components. cfg's
// lookahead_ticks seeds the adaptive lookahead window.
func New(cfg tdconfig.Config, ring *ringbuf.Registry, dep *depgraph.Graph, anims *anim.Engine,
	coord *coordination.Engine, tl *timeline.Engine, pool *framepool.Pool, writer *store.Writer,
	metrics *tderrors.Metrics, actions *Registry, binder *databind.Registry, renderer Renderer) *Engine {
	return &Engine{
		cfg:                cfg,
		ring:               ring,
		cursors:            make(map[string]*ringbuf.Cursor),
		dep:                dep,
		anims:              anims,
		coord:              coord,
		timeline:           tl,
		pool:               pool,
		writer:             writer,
		metrics:            metrics,
		actions:            actions,
		binder:             binder,
		renderer:           renderer,
		latest:             make(map[string]expr.Value),
		lookahead:          cfg.LookaheadTicks,
		minLookahead:       1,
		missThreshold:      3,
		checkpointInterval: cfg.CheckpointIntervalTicks,
	}
}

// OnTickPulse runs the eight-step algorithm once, for the orchestrator's
// current tick, then advances to the next.
func (e *Engine) OnTickPulse() {
	t := e.tick

	// 1. Drain ring buffer up to t.
	samples := e.drain(t)

	// 2. Notify dependency manager; batch-dispatch dirty observables.
	dirty := e.notifyDependencyGraph(samples)
	if len(dirty) > 0 && e.pool != nil {
		e.pool.Invalidate()
	}

	// 3+4. Evaluate coordination primitives and apply side effects.
	events, err := e.timeline.EvaluateAt(t, e.bindingsSnapshot(), e.applySideEffect)
	if err != nil {
		if e.metrics != nil {
			e.metrics.Inc(tderrors.MetricExprEvalFallback)
		}
		tderrors.Report(tderrors.New("orchestrator.OnTickPulse.evaluate", tderrors.KindExprEval, err))
	}

	// 5. Fetch FrameState from cache, falling back to synchronous compute.
	fs, hit := e.frameState(t)
	if e.binder != nil {
		e.binder.Apply(fs, e.bindingsSnapshot())
	}

	// 6. Hand FrameState to the renderer.
	if e.renderer != nil {
		e.renderer(fs)
	}

	// 7. Advance tick and extend pool coverage to [t+1, t+1+L].
	e.tick = t + 1
	e.adjustLookahead(hit)
	if e.pool != nil {
		for look := e.tick; look <= e.tick+e.lookahead; look++ {
			e.pool.Enqueue(look, e.tick, e.lookahead)
		}
	}

	// 8. Asynchronously persist events and periodic checkpoints.
	e.persist(t, events)
}

// WatchBuffer ensures a cursor exists for name, creating the underlying
// ring buffer if this is the first observation of it. Callers that push
// samples through a path other than the orchestrator's own drain loop
// (e.g. an external PushSample) must call this before the first push, or
// the buffer's cursor will be created later at whatever head position the
// buffer has already reached and silently miss every sample pushed before
// that point.
func (e *Engine) WatchBuffer(name string) {
	e.cursorsMu.Lock()
	defer e.cursorsMu.Unlock()
	if _, ok := e.cursors[name]; ok {
		return
	}
	e.cursors[name] = e.ring.Buffer(name).NewCursor()
}

func (e *Engine) cursorFor(name string) *ringbuf.Cursor {
	e.cursorsMu.Lock()
	defer e.cursorsMu.Unlock()
	return e.cursors[name]
}

func (e *Engine) drain(t uint64) []ringbuf.Sample {
	var all []ringbuf.Sample
	for _, name := range e.ring.Names() {
		e.WatchBuffer(name)
		all = append(all, e.cursorFor(name).DrainForTick(t)...)
	}
	return all
}

func (e *Engine) notifyDependencyGraph(samples []ringbuf.Sample) []depgraph.Dispatch {
	for _, s := range samples {
		e.dep.Register(s.Name)
		e.latest[s.Name] = sampleToValue(s.Value)
		e.dep.Notify(depgraph.ChangeEvent{Kind: "data", Source: s.Name, Data: s.Value})
	}
	return e.dep.DispatchEvents()
}

func sampleToValue(v any) expr.Value {
	switch x := v.(type) {
	case float64:
		return expr.Num(x)
	case bool:
		return expr.Bln(x)
	default:
		return expr.Num(0)
	}
}

func (e *Engine) bindingsSnapshot() map[string]expr.Value {
	out := make(map[string]expr.Value, len(e.latest))
	for k, v := range e.latest {
		out[k] = v
	}
	return out
}

func (e *Engine) applySideEffect(ev coordination.Event) {
	switch ev.Kind {
	case coordination.SequenceStepStarted:
		animID, ok := ev.Payload.(string)
		if !ok {
			return
		}
		if err := e.anims.Start(animID, ev.Tick); err != nil {
			tderrors.Report(tderrors.New("orchestrator.applySideEffect.sequenceStep", tderrors.KindFatal, err))
		}

	case coordination.TriggerActivated:
		ref, ok := e.coord.ActionRef(ev.PrimitiveID)
		if !ok || ref == "" {
			return
		}
		fn, ok := e.actions.Lookup(ref)
		if !ok {
			return
		}
		sink := &Sink{anims: e.anims, coord: e.coord, tick: ev.Tick}
		if err := fn(sink); err != nil {
			if e.metrics != nil {
				e.metrics.Inc(tderrors.MetricTriggerActionFailure)
			}
			tderrors.Report(tderrors.New("orchestrator.applySideEffect", tderrors.KindFatal, err))
		}
	}
}

func (e *Engine) frameState(t uint64) (*anim.FrameState, bool) {
	if e.pool != nil {
		if fs, ok := e.pool.Get(t); ok {
			return fs, true
		}
	}
	fs := e.anims.FrameState(t)
	if e.metrics != nil {
		e.metrics.Inc(tderrors.MetricFrameMissed)
	}
	return fs, false
}

func (e *Engine) adjustLookahead(hit bool) {
	if hit {
		e.consecutiveMisses = 0
		return
	}
	e.consecutiveMisses++
	if e.consecutiveMisses >= e.missThreshold && e.lookahead > e.minLookahead {
		e.lookahead /= 2
		if e.lookahead < e.minLookahead {
			e.lookahead = e.minLookahead
		}
		e.consecutiveMisses = 0
	}
}

func (e *Engine) persist(t uint64, events []coordination.Event) {
	if e.writer == nil {
		return
	}
	batch := store.WriteBatch{}
	for _, ev := range events {
		batch.Events = append(batch.Events, eventToRow(ev))
	}

	e.sinceCheckpoint++
	if e.checkpointInterval > 0 && e.sinceCheckpoint >= e.checkpointInterval {
		e.sinceCheckpoint = 0
		for _, id := range e.anims.IDs() {
			st := e.anims.StateAt(id, t)
			if st == nil {
				continue
			}
			tick := int64(t)
			batch.Animations = append(batch.Animations, store.AnimationRow{
				AnimationID: id,
				Definition:  id,
				Active:      st.Active,
				StartTick:   &tick,
				UpdatedAt:   int64(t),
			})
		}
	}

	e.writer.Enqueue(batch)
}

func eventToRow(ev coordination.Event) store.TimelineEventRow {
	return store.TimelineEventRow{
		Tick:        int64(ev.Tick),
		Kind:        ev.Kind.String(),
		PrimitiveID: ev.PrimitiveID,
		CreatedAt:   int64(ev.Tick),
	}
}
