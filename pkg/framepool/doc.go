// Package framepool precomputes FrameStates ahead of the orchestrator's
// tick pulse using a bounded worker set, each holding its own immutable
// snapshot clone, and caches results in an ordered, size-bounded map
// keyed by tick. A SnapshotInvalidated signal from the dependency
// manager bumps the snapshot generation and purges the cache; workers
// discard any in-flight task tagged with a stale generation rather than
// caching it.
package framepool
