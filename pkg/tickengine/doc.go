// Package tickengine wires every component package (easing, expr,
// ringbuf, anim, marquee, coordination, timeline, framepool, depgraph,
// databind, store, orchestrator) into the single engine spec.md §6
// describes: construct it from a tdconfig.Config, call OnTickPulse once
// per external frame pulse, and feed it samples and bindings through its
// narrow public surface.
package tickengine
