package coordination

import "github.com/go-drift/tinydisplay/pkg/tderrors"

// OnTimeout selects what a Barrier does when timeoutTicks elapses before
// every waiting animation completes.
type OnTimeout int

const (
	// Release fires BARRIER_RESOLVED with timeout=true, the same event kind
	// an on-time resolution fires — the spec's stated default.
	Release OnTimeout = iota
	// Cancel fires a TRIGGER_RESET-shaped event carrying cancelled=true
	// instead of BARRIER_RESOLVED.
	Cancel
)

// Sync fires once every listed animation is considered started, at
// sync_tick.
type Sync struct {
	id           string
	syncTick     uint64
	animationIDs []string
}

// SyncID returns the primitive id.
func (s *Sync) SyncID() string { return s.id }

// NewSync validates and returns a Sync primitive.
func NewSync(id string, syncTick uint64, animationIDs []string) (*Sync, error) {
	if id == "" {
		return nil, &tderrors.ValidationError{Field: "id", Value: id, Message: "must not be empty"}
	}
	if len(animationIDs) == 0 {
		return nil, &tderrors.ValidationError{Field: "animation_ids", Value: animationIDs, Message: "must not be empty"}
	}
	ids := make([]string, len(animationIDs))
	copy(ids, animationIDs)
	return &Sync{id: id, syncTick: syncTick, animationIDs: ids}, nil
}

// Barrier fires BARRIER_RESOLVED once every waiting animation has
// completed, or when timeout_ticks elapses first. Its dependents list is
// stored with the barrier, but nothing in this module starts the
// dependents when the barrier resolves.
type Barrier struct {
	id           string
	barrierTick  uint64
	waitingIDs   []string
	dependents   []string
	timeoutTicks *uint64
	onTimeout    OnTimeout
}

// BarrierOption configures optional Barrier fields.
type BarrierOption func(*Barrier)

// WithTimeout sets a timeout, after which the barrier resolves (or
// cancels, per onTimeout) even if not every waiting animation completed.
func WithTimeout(ticks uint64, onTimeout OnTimeout) BarrierOption {
	return func(b *Barrier) {
		t := ticks
		b.timeoutTicks = &t
		b.onTimeout = onTimeout
	}
}

// NewBarrier validates and returns a Barrier primitive.
func NewBarrier(id string, barrierTick uint64, waitingIDs, dependents []string, opts ...BarrierOption) (*Barrier, error) {
	if id == "" {
		return nil, &tderrors.ValidationError{Field: "id", Value: id, Message: "must not be empty"}
	}
	if len(waitingIDs) == 0 {
		return nil, &tderrors.ValidationError{Field: "waiting_ids", Value: waitingIDs, Message: "must not be empty"}
	}
	b := &Barrier{id: id, barrierTick: barrierTick, onTimeout: Release}
	b.waitingIDs = append([]string(nil), waitingIDs...)
	b.dependents = append([]string(nil), dependents...)
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// SequenceStep schedules animationID at startTick+offsetTicks.
type SequenceStep struct {
	OffsetTicks uint64
	AnimationID string
}

// Sequence schedules a series of animation starts relative to start_tick.
type Sequence struct {
	id        string
	startTick uint64
	steps     []SequenceStep
}

// NewSequence validates and returns a Sequence primitive. steps need not
// be pre-sorted by offset; NewSequence sorts them.
func NewSequence(id string, startTick uint64, steps []SequenceStep) (*Sequence, error) {
	if id == "" {
		return nil, &tderrors.ValidationError{Field: "id", Value: id, Message: "must not be empty"}
	}
	if len(steps) == 0 {
		return nil, &tderrors.ValidationError{Field: "steps", Value: steps, Message: "must not be empty"}
	}
	out := append([]SequenceStep(nil), steps...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].OffsetTicks > out[j].OffsetTicks; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return &Sequence{id: id, startTick: startTick, steps: out}, nil
}

// ProgressTrigger fires TRIGGER_ACTIVATED the tick an animation's
// progress crosses threshold from below.
type ProgressTrigger struct {
	id          string
	animationID string
	threshold   float64
	autoReset   bool
	actionRef   string
}

// NewProgressTrigger validates and returns a ProgressTrigger primitive.
func NewProgressTrigger(id, animationID string, threshold float64, autoReset bool, actionRef string) (*ProgressTrigger, error) {
	if id == "" {
		return nil, &tderrors.ValidationError{Field: "id", Value: id, Message: "must not be empty"}
	}
	if animationID == "" {
		return nil, &tderrors.ValidationError{Field: "animation_id", Value: animationID, Message: "must not be empty"}
	}
	if threshold < 0 || threshold > 1 {
		return nil, &tderrors.ValidationError{Field: "threshold", Value: threshold, Message: "must be in [0,1]"}
	}
	return &ProgressTrigger{id: id, animationID: animationID, threshold: threshold, autoReset: autoReset, actionRef: actionRef}, nil
}

// DataTrigger fires TRIGGER_ACTIVATED the tick condition_expr transitions
// false->true.
type DataTrigger struct {
	id            string
	conditionExpr string
	variables     []string
	autoReset     bool
	actionRef     string
}

// NewDataTrigger validates and returns a DataTrigger primitive. The
// expression itself is compiled lazily by Engine.RegisterDataTrigger,
// since compilation needs the engine's shared expr.Cache.
func NewDataTrigger(id, conditionExpr string, variables []string, autoReset bool, actionRef string) (*DataTrigger, error) {
	if id == "" {
		return nil, &tderrors.ValidationError{Field: "id", Value: id, Message: "must not be empty"}
	}
	if conditionExpr == "" {
		return nil, &tderrors.ValidationError{Field: "condition_expr", Value: conditionExpr, Message: "must not be empty"}
	}
	return &DataTrigger{id: id, conditionExpr: conditionExpr, variables: append([]string(nil), variables...), autoReset: autoReset, actionRef: actionRef}, nil
}
