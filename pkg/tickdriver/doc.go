// Package tickdriver is the real-time frame driver: it paces calls to
// Engine.OnTickPulse at a configured fps for hosts that don't already
// own a frame loop. See cmd/tinydisplay's "run -live" mode for the one
// caller in this tree.
package tickdriver
