package framepool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/tinydisplay/pkg/anim"
)

// Computer produces an immutable FrameState for a tick from its own
// private snapshot of engine state. Clone must return a deep-enough copy
// that mutating the original engine afterward is never observable to an
// in-flight Computer.
type Computer interface {
	Clone() Computer
	ComputeFrame(tick uint64) *anim.FrameState
}

// AnimComputer adapts an *anim.Engine to Computer.
type AnimComputer struct {
	Engine *anim.Engine
}

// Clone returns an AnimComputer over a cloned engine.
func (a AnimComputer) Clone() Computer { return AnimComputer{Engine: a.Engine.Clone()} }

// ComputeFrame delegates to the wrapped engine's FrameState.
func (a AnimComputer) ComputeFrame(tick uint64) *anim.FrameState { return a.Engine.FrameState(tick) }

// Task is a frame-computation request tagged with the snapshot
// generation it was enqueued against.
type Task struct {
	Tick       uint64
	SnapshotID uint64
}

// DefaultHardCap is the hard ceiling on worker count regardless of
// cores-1.
const DefaultHardCap = 8

// Pool is a bounded worker set computing FrameStates ahead of the
// orchestrator's tick pulse and caching them by tick. base is re-cloned
// by each worker whenever the snapshot generation it last cloned at has
// fallen behind, so an Invalidate re-seeds every worker from the live
// engine instead of leaving it pinned to the snapshot it started with.
type Pool struct {
	mu         sync.Mutex
	cache      *cache
	tasks      chan Task
	snapshotID uint64
	workers    int
	maxQueue   int
	base       Computer

	eg     *errgroup.Group
	cancel context.CancelFunc
}

// New starts a Pool with the given worker count (clamped to
// [1,DefaultHardCap]), each re-cloning base on first use and again after
// every Invalidate, caching up to maxFrames results.
func New(base Computer, workers, maxFrames int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if workers > DefaultHardCap {
		workers = DefaultHardCap
	}
	ctx, cancel := context.WithCancel(context.Background())
	eg, ctx := errgroup.WithContext(ctx)
	p := &Pool{
		cache:    newCache(maxFrames),
		tasks:    make(chan Task, workers*2),
		workers:  workers,
		maxQueue: workers * 2,
		base:     base,
		eg:       eg,
		cancel:   cancel,
	}
	for i := 0; i < workers; i++ {
		eg.Go(func() error { return p.run(ctx) })
	}
	return p
}

func (p *Pool) run(ctx context.Context) error {
	var snap Computer
	var snapGen uint64
	seeded := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case task, ok := <-p.tasks:
			if !ok {
				return nil
			}
			p.mu.Lock()
			current := p.snapshotID
			p.mu.Unlock()
			if task.SnapshotID != current {
				continue
			}
			if !seeded || snapGen != current {
				snap = p.base.Clone()
				snapGen = current
				seeded = true
			}
			fs := snap.ComputeFrame(task.Tick)
			p.mu.Lock()
			if task.SnapshotID == p.snapshotID {
				p.cache.put(task.Tick, fs)
			}
			p.mu.Unlock()
		}
	}
}

// Enqueue submits a frame-computation request for tick, tagged with the
// pool's current snapshot generation. Enqueue never blocks: the task
// channel holds 2*workers tasks, and when it is full the request is
// dropped (false is returned) whatever its tick, so the queue never grows
// deeper than 2*workers.
func (p *Pool) Enqueue(tick, now, lookahead uint64) bool {
	p.mu.Lock()
	depth := len(p.tasks)
	snapID := p.snapshotID
	p.mu.Unlock()

	if depth > p.maxQueue && tick > now+lookahead {
		return false
	}
	select {
	case p.tasks <- Task{Tick: tick, SnapshotID: snapID}:
		return true
	default:
		return false
	}
}

// Get returns a cached FrameState for tick if present under the current
// snapshot generation.
func (p *Pool) Get(tick uint64) (*anim.FrameState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.get(tick)
}

// Len reports the number of cached frames.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.len()
}

// Invalidate bumps the snapshot generation and purges the cache, in
// response to the dependency manager's SnapshotInvalidated signal.
func (p *Pool) Invalidate() {
	p.mu.Lock()
	p.snapshotID++
	p.cache.purge()
	p.mu.Unlock()
}

// Shutdown closes the task channel (the poison pill) and waits for every
// worker to exit cleanly.
func (p *Pool) Shutdown() error {
	close(p.tasks)
	err := p.eg.Wait()
	p.cancel()
	return err
}
