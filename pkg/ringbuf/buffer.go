package ringbuf

import "sync/atomic"

// slot pairs a sample with a generation counter, forming a seqlock: a
// consumer that reads a torn slot (the producer wrapped around and began
// overwriting it mid-read) can detect the tear by re-checking the
// generation after copying the value, and must treat the slot as dropped
// rather than deliver a corrupted sample.
type slot struct {
	gen    atomic.Uint64
	sample Sample
}

// Buffer is a fixed-capacity, single-producer/multi-consumer circular
// buffer. Push is called by exactly one producer goroutine; any number of
// independent Cursors may drain concurrently without blocking each other
// or the producer.
type Buffer struct {
	capacity uint64
	slots    []slot
	head     atomic.Uint64 // index of the next slot Push will write
	dropped  atomic.Uint64 // count of samples ever overwritten by a wrapping Push
}

// New returns a Buffer with the given fixed capacity (must be >= 1).
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		capacity: uint64(capacity),
		slots:    make([]slot, capacity),
	}
}

// Capacity returns the buffer's fixed capacity.
func (b *Buffer) Capacity() int { return int(b.capacity) }

// Dropped returns the total number of samples overwritten for capacity
// overflow since the buffer was created, whether or not a cursor had
// already read them.
func (b *Buffer) Dropped() uint64 { return b.dropped.Load() }

// Push publishes a sample. Non-blocking. Returns true if publishing this
// sample overwrote the oldest retained sample (the buffer was already
// full); the buffer does not track whether a cursor had read it.
//
// Push must only ever be called from a single producer goroutine per
// Buffer; this is the contract the lock-free design relies on for its head
// index to be a safe non-CAS increment.
func (b *Buffer) Push(s Sample) bool {
	head := b.head.Load()
	idx := head % b.capacity

	dropped := head >= b.capacity

	sl := &b.slots[idx]
	// Seqlock write protocol: bump to an odd (in-progress) generation,
	// publish the value, then bump to the final even generation. Readers
	// that observe an odd generation, or a generation that changed during
	// their copy, know the read was torn and discard it.
	sl.gen.Store(sl.gen.Load() + 1)
	sl.sample = s
	sl.gen.Store(sl.gen.Load() + 1)

	b.head.Store(head + 1)

	if dropped {
		b.dropped.Add(1)
	}
	return dropped
}

// Cursor is an independent read position into a Buffer. Multiple cursors
// may coexist and drain at different rates; a slow cursor that falls more
// than Capacity() samples behind the producer has its position snapped
// forward to the oldest sample still retained; the skipped-over samples
// are neither returned nor counted by the cursor. The buffer-wide
// Dropped() counter counts every overwrite, read or not.
type Cursor struct {
	buf *Buffer
	pos uint64
}

// NewCursor returns a Cursor starting at the buffer's current head, so it
// only observes samples pushed after this call.
func (b *Buffer) NewCursor() *Cursor {
	return &Cursor{buf: b, pos: b.head.Load()}
}

// DrainForTick returns, in push order, every sample with ObservedTick <= t
// that this cursor has not yet returned, advancing the cursor past them.
// Samples with ObservedTick > t remain for a future call. Non-blocking.
func (c *Cursor) DrainForTick(t uint64) []Sample {
	head := c.buf.head.Load()

	oldestRetained := uint64(0)
	if head > c.buf.capacity {
		oldestRetained = head - c.buf.capacity
	}
	if c.pos < oldestRetained {
		c.pos = oldestRetained
	}

	var out []Sample
	for c.pos < head {
		idx := c.pos % c.buf.capacity
		sl := &c.buf.slots[idx]

		genBefore := sl.gen.Load()
		if genBefore%2 == 1 {
			// Producer mid-write; nothing stable to read yet at this slot.
			break
		}
		sample := sl.sample
		if sl.gen.Load() != genBefore {
			// Torn read: producer wrapped around during our copy. Treat
			// this and everything the producer has since published over
			// it as consumed-by-overwrite rather than retry forever.
			c.pos = c.buf.head.Load()
			if c.pos > c.buf.capacity {
				c.pos -= c.buf.capacity
			} else {
				c.pos = 0
			}
			continue
		}

		if sample.ObservedTick > t {
			break
		}
		out = append(out, sample)
		c.pos++
	}
	return out
}
