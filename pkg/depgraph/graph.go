package depgraph

import (
	"fmt"

	"github.com/go-drift/tinydisplay/pkg/tderrors"
)

// ChangeEvent is emitted into the per-tick queue on each mutation to a
// registered observable.
type ChangeEvent struct {
	Kind   string
	Source string
	Data   any
}

type changeKey struct {
	source string
	kind   string
}

// Graph is a directed acyclic graph of observables and observers.
// Observables are identified by an opaque string id; an edge from
// observer to source means "observer is notified when source changes."
// A Graph is not safe for concurrent use — callers serialize access the
// same way the orchestrator serializes dep-dispatch within a tick.
type Graph struct {
	nodes map[string]struct{}
	// edges[observer] = set of sources that observer watches.
	edges map[string]map[string]struct{}
	// reverse[source] = set of observers watching source.
	reverse map[string]map[string]struct{}
	pending []ChangeEvent
	seen    map[changeKey]struct{}
}

// New returns an empty dependency graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]struct{}),
		edges:   make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
		seen:    make(map[changeKey]struct{}),
	}
}

// Register adds an observable node. Registering the same id twice is a
// no-op.
func (g *Graph) Register(id string) {
	g.nodes[id] = struct{}{}
}

// Unregistered reports whether id has never been registered.
func (g *Graph) Unregistered(id string) bool {
	_, ok := g.nodes[id]
	return !ok
}

// Subscribe adds a non-owning edge: observer is notified when source
// changes. Both ids must already be registered. The edge is rejected if
// it would introduce a cycle, per spec invariant "Cycles are rejected at
// registration."
func (g *Graph) Subscribe(observer, source string) error {
	if g.Unregistered(observer) {
		return &tderrors.ValidationError{Field: "observer", Value: observer, Message: "not registered"}
	}
	if g.Unregistered(source) {
		return &tderrors.ValidationError{Field: "source", Value: source, Message: "not registered"}
	}
	if observer == source {
		return fmt.Errorf("depgraph: %q cannot observe itself", observer)
	}
	if g.reaches(source, observer) {
		return fmt.Errorf("depgraph: subscribing %q to %q would create a cycle", observer, source)
	}

	if g.edges[observer] == nil {
		g.edges[observer] = make(map[string]struct{})
	}
	g.edges[observer][source] = struct{}{}

	if g.reverse[source] == nil {
		g.reverse[source] = make(map[string]struct{})
	}
	g.reverse[source][observer] = struct{}{}
	return nil
}

// Unsubscribe removes a previously added edge. A missing edge is a no-op,
// matching "subscription lifetime is bounded by explicit unregister."
func (g *Graph) Unsubscribe(observer, source string) {
	delete(g.edges[observer], source)
	delete(g.reverse[source], observer)
}

// reaches reports whether there is a path from `from` to `to` following
// existing observer->source edges (i.e. whether `from`, transitively,
// already watches `to`).
func (g *Graph) reaches(from, to string) bool {
	if from == to {
		return true
	}
	visited := make(map[string]struct{})
	var walk func(n string) bool
	walk = func(n string) bool {
		if _, ok := visited[n]; ok {
			return false
		}
		visited[n] = struct{}{}
		for src := range g.edges[n] {
			if src == to {
				return true
			}
			if walk(src) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

// Notify enqueues a change event for the next dispatch_events call.
func (g *Graph) Notify(ev ChangeEvent) {
	g.pending = append(g.pending, ev)
}

// Dispatch pairs a surviving ChangeEvent with the observers to notify.
type Dispatch struct {
	Event     ChangeEvent
	Observers []string
}

// DispatchEvents is dispatch_events(): called once per tick after ingest
// and before coordination evaluation. It deduplicates by (source, kind)
// and returns, for every surviving event in arrival order, the sorted
// set of observer ids that should be notified. The pending queue is
// cleared afterward.
func (g *Graph) DispatchEvents() []Dispatch {
	var out []Dispatch
	for _, ev := range g.pending {
		key := changeKey{source: ev.Source, kind: ev.Kind}
		if _, dup := g.seen[key]; dup {
			continue
		}
		g.seen[key] = struct{}{}
		observers := make([]string, 0, len(g.reverse[ev.Source]))
		for obs := range g.reverse[ev.Source] {
			observers = append(observers, obs)
		}
		sortStrings(observers)
		out = append(out, Dispatch{Event: ev, Observers: observers})
	}
	g.pending = g.pending[:0]
	clear(g.seen)
	return out
}

// Reachable returns every node reachable from id by following observer
// edges backward (i.e. every observer, transitively, of id).
func (g *Graph) Reachable(id string) []string {
	visited := make(map[string]struct{})
	var out []string
	var walk func(n string)
	walk = func(n string) {
		for obs := range g.reverse[n] {
			if _, ok := visited[obs]; ok {
				continue
			}
			visited[obs] = struct{}{}
			out = append(out, obs)
			walk(obs)
		}
	}
	walk(id)
	sortStrings(out)
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
