package anim

// lifecycleKind tags a lifecycle mutation applied to a registered
// animation at a specific tick.
type lifecycleKind int

const (
	evStart lifecycleKind = iota
	evPause
	evResume
	evStop
)

type lifecycleEvent struct {
	tick uint64
	kind lifecycleKind
}

// instance tracks the lifecycle events recorded for one registered
// animation. state_at replays these deterministically; it never consults
// wall-clock time or any field not reachable from this slice plus the def.
type instance struct {
	def    *AnimationDef
	events []lifecycleEvent // kept sorted by tick, ties broken by insertion order
}

func (in *instance) record(tick uint64, kind lifecycleKind) {
	i := len(in.events)
	for i > 0 && in.events[i-1].tick > tick {
		i--
	}
	in.events = append(in.events, lifecycleEvent{})
	copy(in.events[i+1:], in.events[i:])
	in.events[i] = lifecycleEvent{tick: tick, kind: kind}
}

// resolvedAt replays events up to and including tick t, returning whether
// the animation has been started by t, its effective origin tick, whether
// it is stopped by t, and the number of ticks it has spent paused up to t.
func (in *instance) resolvedAt(t uint64) (started bool, origin uint64, stopped bool, pausedTicks uint64) {
	var startTick uint64
	var running, paused bool
	var pauseStart uint64

	for _, ev := range in.events {
		if ev.tick > t {
			break
		}
		switch ev.kind {
		case evStart:
			if !running {
				running = true
				started = true
				startTick = ev.tick
				paused = false
				pausedTicks = 0
			}
		case evPause:
			if running && !paused {
				paused = true
				pauseStart = ev.tick
			}
		case evResume:
			if running && paused {
				paused = false
				pausedTicks += ev.tick - pauseStart
			}
		case evStop:
			running = false
			stopped = true
		}
	}

	if !started {
		return false, 0, false, 0
	}
	if stopped {
		return true, startTick + in.def.delayTicks, true, pausedTicks
	}
	if paused {
		// Time stops advancing while paused: count the pause up to t too.
		pausedTicks += t - pauseStart
	}
	return true, startTick + in.def.delayTicks, false, pausedTicks
}
