package marquee

import (
	"fmt"
	"sort"
)

// DefaultIterationBudget is the default bounded fixed-point iteration
// count for resolving cyclic SYNC/WAIT_FOR dependencies (spec §4.5 step
// 4: "resolution budget (configurable, default 16 iterations)").
const DefaultIterationBudget = 16

// Widget is one program to resolve, anchored at StartTick.
type Widget struct {
	ID        string
	StartTick uint64
	Program   Program
}

// Resolver resolves a set of widget programs into PositionTimelines.
// Resolution is a pure function of the registered widgets and Horizon:
// given identical inputs it produces identical timelines, per spec
// §4.5's determinism requirement.
type Resolver struct {
	widgets    map[string]*Widget
	order      []string
	horizon    uint64
	iterBudget int
}

// NewResolver returns a Resolver that resolves timelines up to horizon
// ticks. LOOP(INFINITE) bodies stop generating new segments once the
// horizon is reached; a longer horizon resolves further into the
// future at the cost of more segments.
func NewResolver(horizon uint64) *Resolver {
	return &Resolver{
		widgets:    make(map[string]*Widget),
		horizon:    horizon,
		iterBudget: DefaultIterationBudget,
	}
}

// WithIterationBudget overrides DefaultIterationBudget.
func (r *Resolver) WithIterationBudget(n int) *Resolver {
	r.iterBudget = n
	return r
}

// AddWidget registers a widget's program for resolution.
func (r *Resolver) AddWidget(id string, startTick uint64, prog Program) {
	if _, exists := r.widgets[id]; !exists {
		r.order = append(r.order, id)
	}
	r.widgets[id] = &Widget{ID: id, StartTick: startTick, Program: prog}
}

// Result is the output of Resolve.
type Result struct {
	Timelines   map[string]*PositionTimeline
	Diagnostics []string
}

// Resolve runs the scan, dependency-graph, topological, and fixed-point
// passes described in spec §4.5 and returns one PositionTimeline per
// registered widget.
func (r *Resolver) Resolve() *Result {
	eventOwner := make(map[string]string)
	for _, id := range r.sortedIDs() {
		w := r.widgets[id]
		walk(w.Program, func(s Stmt) {
			if sync, ok := s.(SyncStmt); ok {
				eventOwner[sync.Event] = id
			}
		})
	}

	deps := make(map[string]map[string]bool)
	for _, id := range r.sortedIDs() {
		deps[id] = make(map[string]bool)
		w := r.widgets[id]
		walk(w.Program, func(s Stmt) {
			if wf, ok := s.(WaitForStmt); ok {
				if owner, ok2 := eventOwner[wf.Event]; ok2 && owner != id {
					deps[id][owner] = true
				}
			}
		})
	}

	order, cyclic := topoSort(r.sortedIDs(), deps)

	eventTicks := make(map[string][]uint64)
	timelines := make(map[string]*PositionTimeline)
	var diagnostics []string

	for _, id := range order {
		w := r.widgets[id]
		tl, emitted, converged := r.execute(w, eventTicks)
		tl.Converged = converged
		timelines[id] = tl
		mergeEmitted(eventTicks, emitted)
		if !converged {
			diagnostics = append(diagnostics, fmt.Sprintf("MarqueeNotConverged: %s", id))
		}
	}

	if len(cyclic) > 0 {
		sort.Strings(cyclic)
		converged := false
		var roundTimelines map[string]*PositionTimeline
		var roundEmitted map[string]map[string][]uint64
		// base holds only the acyclic widgets' event ticks; each round's
		// table is rebuilt from it plus that round's cyclic emissions.
		base := cloneEventTicks(eventTicks)

		for iter := 0; iter < r.iterBudget; iter++ {
			roundTimelines = make(map[string]*PositionTimeline)
			roundEmitted = make(map[string]map[string][]uint64)
			// Jacobi-style update: every widget in the cyclic group sees
			// only the PREVIOUS round's frozen event ticks, never a
			// sibling's output from this same round. Otherwise
			// convergence would depend on iteration order rather than
			// on the programs themselves.
			trial := cloneEventTicks(base)

			for _, id := range cyclic {
				w := r.widgets[id]
				tl, emitted, _ := r.execute(w, eventTicks)
				roundTimelines[id] = tl
				roundEmitted[id] = emitted
			}
			for _, emitted := range roundEmitted {
				mergeEmitted(trial, emitted)
			}

			changed := !eventTicksEqual(eventTicks, trial)
			eventTicks = trial
			if !changed {
				converged = true
				break
			}
		}

		for _, id := range cyclic {
			tl := roundTimelines[id]
			tl.Converged = converged
			timelines[id] = tl
			if !converged {
				diagnostics = append(diagnostics, fmt.Sprintf("MarqueeNotConverged: %s", id))
			}
		}
	}

	return &Result{Timelines: timelines, Diagnostics: diagnostics}
}

func (r *Resolver) sortedIDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	sort.Strings(ids)
	return ids
}

// execute symbolically runs w.Program from w.StartTick, producing its
// PositionTimeline and the ticks at which it emits each SYNC event.
// converged is false if any WAIT_FOR in this run fell back to timeout
// expiry rather than an observed occurrence.
func (r *Resolver) execute(w *Widget, eventTicks map[string][]uint64) (*PositionTimeline, map[string][]uint64, bool) {
	st := &execState{
		tick:      w.StartTick,
		eventIn:   eventTicks,
		eventOut:  make(map[string][]uint64),
		horizon:   r.horizon,
		converged: true,
	}
	runBlock(st, w.Program)
	return &PositionTimeline{AnchorTick: w.StartTick, Segments: st.segments}, st.eventOut, st.converged
}

type execState struct {
	tick      uint64
	x, y      int
	segments  []Segment
	eventIn   map[string][]uint64
	eventOut  map[string][]uint64
	horizon   uint64
	converged bool
}

func runBlock(st *execState, stmts []Stmt) {
	for _, s := range stmts {
		if st.tick >= st.horizon {
			return
		}
		switch v := s.(type) {
		case MoveStmt:
			runMove(st, v)
		case LoopStmt:
			runLoop(st, v)
		case SyncStmt:
			st.eventOut[v.Event] = append(st.eventOut[v.Event], st.tick)
		case WaitForStmt:
			runWaitFor(st, v)
		case PauseStmt:
			runPause(st, v)
		}
	}
}

func runMove(st *execState, m MoveStmt) {
	duration := uint64((m.Distance + m.Step - 1) / m.Step)
	if duration == 0 {
		duration = 1
	}
	x0, y0 := st.x, st.y
	x1, y1 := x0, y0
	switch m.Dir {
	case Up:
		y1 -= m.Distance
	case Down:
		y1 += m.Distance
	case Left:
		x1 -= m.Distance
	case Right:
		x1 += m.Distance
	}
	st.segments = append(st.segments, Segment{
		StartTick: st.tick, EndTick: st.tick + duration,
		X0: x0, Y0: y0, X1: x1, Y1: y1,
	})
	st.tick += duration
	st.x, st.y = x1, y1
}

func runPause(st *execState, p PauseStmt) {
	st.segments = append(st.segments, Segment{
		StartTick: st.tick, EndTick: st.tick + p.Ticks,
		X0: st.x, Y0: st.y, X1: st.x, Y1: st.y,
	})
	st.tick += p.Ticks
}

func runWaitFor(st *execState, wf WaitForStmt) {
	gap := wf.TimeoutTicks
	if occ, ok := firstAtOrAfter(st.eventIn[wf.Event], st.tick); ok {
		gap = occ - st.tick
	} else {
		st.converged = false
	}
	st.segments = append(st.segments, Segment{
		StartTick: st.tick, EndTick: st.tick + gap,
		X0: st.x, Y0: st.y, X1: st.x, Y1: st.y,
	})
	st.tick += gap
}

func runLoop(st *execState, l LoopStmt) {
	if l.Count == Infinite {
		for st.tick < st.horizon {
			before := st.tick
			runBlock(st, l.Body)
			if st.tick == before {
				// Zero-duration body would loop forever without
				// advancing; stop to avoid an infinite compile-time loop.
				return
			}
		}
		return
	}
	for i := 0; i < l.Count && st.tick < st.horizon; i++ {
		runBlock(st, l.Body)
	}
}

func firstAtOrAfter(ticks []uint64, t uint64) (uint64, bool) {
	idx := sort.Search(len(ticks), func(i int) bool { return ticks[i] >= t })
	if idx >= len(ticks) {
		return 0, false
	}
	return ticks[idx], true
}

func mergeEmitted(dst map[string][]uint64, src map[string][]uint64) {
	for ev, ticks := range src {
		dst[ev] = append(dst[ev], ticks...)
		sort.Slice(dst[ev], func(i, j int) bool { return dst[ev][i] < dst[ev][j] })
	}
}

func cloneEventTicks(m map[string][]uint64) map[string][]uint64 {
	out := make(map[string][]uint64, len(m))
	for k, v := range m {
		cp := make([]uint64, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func eventTicksEqual(a, b map[string][]uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if va[i] != vb[i] {
				return false
			}
		}
	}
	return true
}

// topoSort partitions ids into a topological order (widgets whose
// dependencies can be fully satisfied by earlier entries) and a
// remaining cyclic group (widgets whose dependencies could not be
// reduced to zero — i.e. members of a WAIT_FOR/SYNC cycle and every
// widget that depends on one).
func topoSort(ids []string, deps map[string]map[string]bool) (order []string, cyclic []string) {
	inDegree := make(map[string]int, len(ids))
	dependents := make(map[string][]string)
	for _, id := range ids {
		inDegree[id] = len(deps[id])
		for dep := range deps[id] {
			dependents[dep] = append(dependents[dep], id)
		}
	}
	for _, deps := range dependents {
		sort.Strings(deps)
	}

	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
				sort.Strings(queue)
			}
		}
	}

	for _, id := range ids {
		if inDegree[id] > 0 {
			cyclic = append(cyclic, id)
		}
	}
	return order, cyclic
}
