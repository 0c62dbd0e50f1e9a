package anim

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Snapshot encodes every registered animation's lifecycle events in a
// deterministic, fixed-field-order binary format. Definitions themselves
// are not part of the snapshot: a Restore call is always paired with the
// same set of Register calls that produced the original engine, matching
// the frame-pool's "clone immutable def set once, hand out cheap
// lifecycle snapshots per worker" usage pattern.
//
// The format is deliberately not encoding/gob (whose wire format embeds a
// type registry not guaranteed stable byte-for-byte across Go versions)
// and not JSON (float64 round-tripping through a text encoder is not
// bit-exact across implementations). Every field is fixed-width and
// written in a fixed order so two processes given the same input produce
// identical bytes.
func (e *Engine) Snapshot() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.instances))
	for id := range e.instances {
		ids = append(ids, id)
	}
	sortStrings(ids)

	var buf bytes.Buffer
	writeUint64(&buf, uint64(len(ids)))
	for _, id := range ids {
		in := e.instances[id]
		writeString(&buf, id)
		writeUint64(&buf, uint64(len(in.events)))
		for _, ev := range in.events {
			writeUint64(&buf, ev.tick)
			buf.WriteByte(byte(ev.kind))
		}
	}
	return buf.Bytes()
}

// Restore replaces the lifecycle event history of every id present in
// data with the decoded events. ids not present in data are left
// untouched; ids in data that are not registered are skipped (a worker
// restoring a snapshot taken before a hot-reload added new animations
// should not fail outright).
func (e *Engine) Restore(data []byte) error {
	r := bytes.NewReader(data)
	count, err := readUint64(r)
	if err != nil {
		return fmt.Errorf("anim: restore: read instance count: %w", err)
	}

	type decoded struct {
		id     string
		events []lifecycleEvent
	}
	out := make([]decoded, 0, count)

	for i := uint64(0); i < count; i++ {
		id, err := readString(r)
		if err != nil {
			return fmt.Errorf("anim: restore: read id %d: %w", i, err)
		}
		n, err := readUint64(r)
		if err != nil {
			return fmt.Errorf("anim: restore: read event count for %q: %w", id, err)
		}
		events := make([]lifecycleEvent, n)
		for j := uint64(0); j < n; j++ {
			tick, err := readUint64(r)
			if err != nil {
				return fmt.Errorf("anim: restore: read tick for %q[%d]: %w", id, j, err)
			}
			kindByte, err := r.ReadByte()
			if err != nil {
				return fmt.Errorf("anim: restore: read kind for %q[%d]: %w", id, j, err)
			}
			events[j] = lifecycleEvent{tick: tick, kind: lifecycleKind(kindByte)}
		}
		out = append(out, decoded{id: id, events: events})
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range out {
		in, ok := e.instances[d.id]
		if !ok {
			continue
		}
		in.events = d.events
	}
	return nil
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint64(buf, uint64(len(s)))
	buf.WriteString(s)
}

func readUint64(r io.Reader) (uint64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(tmp[:]), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readUint64(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Hash computes the determinism hash (spec §8) of a FrameState: the
// xxhash of every contained AnimationState's fixed-order encoding,
// combined over ids in sorted order. Tick is excluded by construction —
// encodeState never writes it — so two runs that reach the same logical
// state at different wall-clock tick counts (impossible in-engine, but
// relevant when comparing independently-seeded replicas) still hash
// equal.
func Hash(fs *FrameState) uint64 {
	ids := make([]string, 0, len(fs.States))
	for id := range fs.States {
		ids = append(ids, id)
	}
	sortStrings(ids)

	h := xxhash.New()
	for _, id := range ids {
		st := fs.States[id]
		h.Write(encodeState(id, st))
	}
	return h.Sum64()
}

// encodeState writes st's fields in fixed order, excluding Tick, for use
// as xxhash input. AnimationID is included so two different animations
// that happen to reach identical Values don't collide silently.
func encodeState(id string, st *AnimationState) []byte {
	var buf bytes.Buffer
	writeString(&buf, id)
	writeFloat64(&buf, st.Progress)
	writeBool(&buf, st.Active)
	writeBool(&buf, st.Completed)
	writeValues(&buf, st.Values)
	return buf.Bytes()
}

func writeValues(buf *bytes.Buffer, v Values) {
	writeOptFloat(buf, v.Opacity)
	writeOptFloat(buf, v.Scale)
	writeOptFloat(buf, v.Rotation)
	writeOptFloat(buf, v.Progress)
	if v.Position != nil {
		buf.WriteByte(1)
		writeUint64(buf, uint64(int64(v.Position.X)))
		writeUint64(buf, uint64(int64(v.Position.Y)))
	} else {
		buf.WriteByte(0)
	}
	if v.Color != nil {
		buf.WriteByte(1)
		writeUint64(buf, uint64(uint32(*v.Color)))
	} else {
		buf.WriteByte(0)
	}
	writeString(buf, v.Text)
}

func writeOptFloat(buf *bytes.Buffer, f *float64) {
	if f == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	writeFloat64(buf, *f)
}

func writeFloat64(buf *bytes.Buffer, f float64) {
	writeUint64(buf, math.Float64bits(f))
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}
