package orchestrator

import (
	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/coordination"
)

// Sink is the only surface a trigger action or event handler may use to
// produce side effects: starting, stopping, pausing, or resuming
// registered animations, and registering new coordination primitives.
// It deliberately has no clock-reading method and no I/O method — actions
// run synchronously inside the tick pulse and must stay pure with
// respect to everything but engine state.
type Sink struct {
	anims *anim.Engine
	coord *coordination.Engine
	tick  uint64
}

// StartAnimation starts id at the current tick.
func (s *Sink) StartAnimation(id string) error { return s.anims.Start(id, s.tick) }

// StopAnimation stops id at the current tick.
func (s *Sink) StopAnimation(id string) error { return s.anims.Stop(id, s.tick) }

// PauseAnimation pauses id at the current tick.
func (s *Sink) PauseAnimation(id string) error { return s.anims.Pause(id, s.tick) }

// ResumeAnimation resumes id at the current tick.
func (s *Sink) ResumeAnimation(id string) error { return s.anims.Resume(id, s.tick) }

// RegisterSync registers a new Sync primitive, to be evaluated starting
// the next tick.
func (s *Sink) RegisterSync(p *coordination.Sync) { s.coord.RegisterSync(p) }

// RegisterBarrier registers a new Barrier primitive.
func (s *Sink) RegisterBarrier(p *coordination.Barrier) { s.coord.RegisterBarrier(p) }

// RegisterSequence registers a new Sequence primitive.
func (s *Sink) RegisterSequence(p *coordination.Sequence) { s.coord.RegisterSequence(p) }

// Action is a trigger's action_ref target, looked up by name and run
// with the Sink for the tick its triggering event fired on. A failing
// Action is logged and treated as completed, never retried or
// propagated: per the engine's error-propagation policy, a broken
// trigger action must not stall the tick pulse.
type Action func(sink *Sink) error

// Registry maps action_ref names to Actions.
type Registry struct {
	actions map[string]Action
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{actions: make(map[string]Action)} }

// Register binds name to fn, overwriting any previous binding.
func (r *Registry) Register(name string, fn Action) { r.actions[name] = fn }

// Lookup returns the Action bound to name, if any.
func (r *Registry) Lookup(name string) (Action, bool) {
	fn, ok := r.actions[name]
	return fn, ok
}
