// Package databind implements the engine's bidirectional widget binding
// surface: bind_expression and bind_data from spec §6. A Binding maps a
// ring-buffer sample or an arbitrary expression onto a named parameter of
// a running animation's per-tick Values.Custom map, evaluated once per
// tick after dependency dispatch and applied to the tick's FrameState
// before it reaches the renderer.
package databind
