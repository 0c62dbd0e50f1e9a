package tickengine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/coordination"
	"github.com/go-drift/tinydisplay/pkg/databind"
	"github.com/go-drift/tinydisplay/pkg/depgraph"
	"github.com/go-drift/tinydisplay/pkg/expr"
	"github.com/go-drift/tinydisplay/pkg/framepool"
	"github.com/go-drift/tinydisplay/pkg/marquee"
	"github.com/go-drift/tinydisplay/pkg/orchestrator"
	"github.com/go-drift/tinydisplay/pkg/ringbuf"
	"github.com/go-drift/tinydisplay/pkg/store"
	"github.com/go-drift/tinydisplay/pkg/tdconfig"
	"github.com/go-drift/tinydisplay/pkg/tderrors"
	"github.com/go-drift/tinydisplay/pkg/timeline"
)

// Engine is the assembled tick-based animation and coordination engine.
// Construct one with New, register animations and primitives through its
// Anims/Coord/Actions/Binder/Marquee accessors, then drive it with
// OnTickPulse.
type Engine struct {
	cfg tdconfig.Config

	anims  *anim.Engine
	coord  *coordination.Engine
	expr   *expr.Cache
	ring   *ringbuf.Registry
	dep    *depgraph.Graph
	pool   *framepool.Pool
	db     *store.DB
	writer *store.Writer
	binder *databind.Registry
	timel  *timeline.Engine
	orch   *orchestrator.Engine
	acts   *orchestrator.Registry

	marqueeMu       sync.RWMutex
	marqueeResolver *marquee.Resolver
	marqueeResult   *marquee.Result

	cancelWriter context.CancelFunc
	writerWG     sync.WaitGroup
}

// New constructs an Engine from cfg. Renderer is called once per
// OnTickPulse with the tick's FrameState; it must not retain the pointer
// past the call. A nil renderer is valid for headless/offline use.
func New(cfg tdconfig.Config, renderer orchestrator.Renderer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	anims := anim.NewEngine()
	cache := expr.NewCache(cfg.ExpressionCacheSize)
	metrics := tderrors.NewMetrics()
	coord := coordination.NewEngine(anims, cache, metrics)
	ring := ringbuf.NewRegistry(cfg.RingBufferCapacity)
	dep := depgraph.New()
	tl := timeline.NewEngine(coord, timeline.DefaultRingCapacity)
	binder := databind.NewRegistry(metrics)
	acts := orchestrator.NewRegistry()

	db, err := store.Open(cfg.PersistencePath, 4)
	if err != nil {
		return nil, err
	}

	writer := store.NewWriter(db, 256, metrics)

	var pool *framepool.Pool
	if cfg.Workers > 0 {
		pool = framepool.New(&framepool.AnimComputer{Engine: anims}, cfg.Workers, cfg.FrameCacheSize)
	}

	orch := orchestrator.New(cfg, ring, dep, anims, coord, tl, pool, writer, metrics, acts, binder, renderer)

	e := &Engine{
		cfg:             cfg,
		anims:           anims,
		coord:           coord,
		expr:            cache,
		ring:            ring,
		dep:             dep,
		pool:            pool,
		db:              db,
		writer:          writer,
		binder:          binder,
		timel:           tl,
		orch:            orch,
		acts:            acts,
		marqueeResolver: marquee.NewResolver(cfg.LookaheadTicks).WithIterationBudget(cfg.MarqueeFixedPointIterations),
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancelWriter = cancel
	e.writerWG.Add(1)
	go func() {
		defer e.writerWG.Done()
		defer tderrors.Recover("tickengine.writer")
		if err := writer.Run(ctx); err != nil {
			slog.Error("persistence writer stopped", "err", err)
		}
	}()

	return e, nil
}

// OnTickPulse drives the engine one tick forward. See pkg/orchestrator
// for the eight-step algorithm this runs.
func (e *Engine) OnTickPulse() {
	e.orch.OnTickPulse()
}

// PushSample is push_sample(buffer_id, name, value, observed_tick):
// non-blocking, returns whether an oldest sample was dropped. The
// orchestrator's cursor for name is created here, before the sample is
// pushed, so a buffer seen for the first time never loses its opening
// sample to cursor creation racing behind the producer.
func (e *Engine) PushSample(bufferID, name string, value any, observedTick uint64) (bool, error) {
	e.orch.WatchBuffer(bufferID)
	return e.ring.PushSample(bufferID, name, value, observedTick)
}

// BindExpression is bind_expression(animation_id, parameter, expr,
// variables).
func (e *Engine) BindExpression(animationID, parameter, src string, variables []string) error {
	b, err := databind.NewExpressionBinding(e.expr, animationID, parameter, src, variables)
	if err != nil {
		return err
	}
	e.binder.Add(b)
	return nil
}

// BindData is bind_data(source, animation_id, parameter, mapping_expr).
// fast, when true, bypasses the evaluator per the engine's Open Question
// 1 decision and copies the sample's latest value directly.
func (e *Engine) BindData(source, animationID, parameter, mappingExpr string, fast bool) error {
	b, err := databind.NewDataBinding(e.expr, source, animationID, parameter, mappingExpr, fast)
	if err != nil {
		return err
	}
	e.binder.Add(b)
	return nil
}

// Anims exposes the animation engine for registering AnimationDefs and
// issuing lifecycle calls outside a trigger action.
func (e *Engine) Anims() *anim.Engine { return e.anims }

// Coord exposes the coordination engine for registering Syncs, Barriers,
// Sequences, and Triggers.
func (e *Engine) Coord() *coordination.Engine { return e.coord }

// Actions exposes the trigger-action registry.
func (e *Engine) Actions() *orchestrator.Registry { return e.acts }

// RegisterMarqueeWidget adds prog to the marquee resolver, anchored at
// startTick. Call ResolveMarquee after registering every widget.
func (e *Engine) RegisterMarqueeWidget(id string, startTick uint64, prog marquee.Program) {
	e.marqueeMu.Lock()
	defer e.marqueeMu.Unlock()
	e.marqueeResolver.AddWidget(id, startTick, prog)
}

// ResolveMarquee runs the bounded fixed-point resolution pass over every
// registered marquee widget. Re-run after registering new widgets.
func (e *Engine) ResolveMarquee() *marquee.Result {
	e.marqueeMu.Lock()
	defer e.marqueeMu.Unlock()
	e.marqueeResult = e.marqueeResolver.Resolve()
	return e.marqueeResult
}

// MarqueePosition returns widget id's resolved (x, y) at tick t. ok is
// false if id was never resolved; for a t outside the timeline's segments
// it returns PositionAt's clamped position with ok true.
func (e *Engine) MarqueePosition(id string, t uint64) (x, y int, ok bool) {
	e.marqueeMu.RLock()
	defer e.marqueeMu.RUnlock()
	if e.marqueeResult == nil {
		return 0, 0, false
	}
	pt, found := e.marqueeResult.Timelines[id]
	if !found {
		return 0, 0, false
	}
	x, y = pt.PositionAt(t)
	return x, y, true
}

// Close stops the persistence writer and closes the database. Call once,
// after the last OnTickPulse.
func (e *Engine) Close() error {
	e.writer.Close()
	e.writerWG.Wait()
	e.cancelWriter()
	if e.pool != nil {
		_ = e.pool.Shutdown()
	}
	return e.db.Close()
}
