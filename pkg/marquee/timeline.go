package marquee

import (
	"sort"

	"github.com/go-drift/tinydisplay/pkg/easing"
)

// Segment is a linear position interpolation over [StartTick, EndTick).
// A held position (PAUSE, or a WAIT_FOR gap) is a segment whose start
// and end coordinates are equal.
type Segment struct {
	StartTick, EndTick uint64
	X0, Y0, X1, Y1     int
}

func (s Segment) positionAt(t uint64) (x, y int) {
	span := s.EndTick - s.StartTick
	if span == 0 || t <= s.StartTick {
		return s.X0, s.Y0
	}
	if t >= s.EndTick {
		return s.X1, s.Y1
	}
	p := float64(t-s.StartTick) / float64(span)
	return easing.LerpI(s.X0, s.X1, p), easing.LerpI(s.Y0, s.Y1, p)
}

// PositionTimeline is the resolved output for one widget: an anchor tick
// plus an ordered, non-overlapping list of segments. Converged is false
// when a WAIT_FOR inside this widget's program fell back to timeout
// expiry instead of an observed event (see Resolver.Resolve).
type PositionTimeline struct {
	AnchorTick uint64
	Segments   []Segment
	Converged  bool
}

// PositionAt is position_at(w, t): O(log S) binary search over segments.
// Ticks before the anchor return the first segment's start position;
// ticks past the last segment return its end position (the timeline
// holds there, matching a widget that has finished its program).
func (pt *PositionTimeline) PositionAt(t uint64) (x, y int) {
	if len(pt.Segments) == 0 {
		return 0, 0
	}
	idx := sort.Search(len(pt.Segments), func(i int) bool {
		return pt.Segments[i].EndTick > t
	})
	if idx >= len(pt.Segments) {
		last := pt.Segments[len(pt.Segments)-1]
		return last.X1, last.Y1
	}
	return pt.Segments[idx].positionAt(t)
}
