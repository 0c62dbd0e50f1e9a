package tderrors

import "sync"

// MetricKind names a render-path counter. Counters live in memory and are
// read through Snapshot and Get; nothing in this module writes them to the
// performance_metrics table.
type MetricKind string

const (
	MetricSampleDropped        MetricKind = "SAMPLE_DROPPED"
	MetricFrameMissed          MetricKind = "FRAME_MISSED"
	MetricExprEvalFallback     MetricKind = "EXPR_EVAL_FALLBACK"
	MetricMarqueeNotConverged  MetricKind = "MARQUEE_NOT_CONVERGED"
	MetricPersistenceLagging   MetricKind = "PERSISTENCE_LAGGING"
	MetricSnapshotMismatch     MetricKind = "SNAPSHOT_MISMATCH"
	MetricTriggerActionFailure MetricKind = "TRIGGER_ACTION_FAILED"
)

// Metrics is a bounded set of monotonic counters, safe for concurrent
// increment from workers, the orchestrator, and the evaluator.
type Metrics struct {
	mu     sync.Mutex
	counts map[MetricKind]uint64
}

// NewMetrics returns an empty, ready-to-use Metrics.
func NewMetrics() *Metrics {
	return &Metrics{counts: make(map[MetricKind]uint64)}
}

// Inc increments the counter for kind by one and returns the new value.
func (m *Metrics) Inc(kind MetricKind) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[kind]++
	return m.counts[kind]
}

// Snapshot returns a copy of all counters, keyed by kind.
func (m *Metrics) Snapshot() map[MetricKind]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[MetricKind]uint64, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

// Get returns the current value of kind.
func (m *Metrics) Get(kind MetricKind) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[kind]
}
