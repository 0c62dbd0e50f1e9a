// Package ringbuf implements the single-producer/multi-consumer circular
// buffer that carries named data samples from application data sources
// into the engine, tagged with the tick at which each was observed.
//
// Capacity is fixed per buffer. On overflow the oldest sample is
// overwritten (never the newest); Push and Registry.PushSample report the
// drop to their caller and Buffer.Dropped counts it, but this package
// increments no SAMPLE_DROPPED metric. Under overflow no sample is ever
// both dropped and delivered.
package ringbuf

import "fmt"

// maxBlobBytes bounds the []byte case of Sample.Value.
const maxBlobBytes = 64

// Sample is a single named value observed at a specific tick. Value holds
// one of float64, bool, string, or []byte (≤64 bytes) — the scalar shapes
// named in the engine's data model. Any other dynamic type is rejected by
// Validate.
type Sample struct {
	Name         string
	Value        any
	ObservedTick uint64
}

// Validate reports whether s.Value is one of the allowed scalar shapes.
func (s Sample) Validate() error {
	switch v := s.Value.(type) {
	case float64, bool, string:
		return nil
	case []byte:
		if len(v) > maxBlobBytes {
			return fmt.Errorf("ringbuf: blob value for %q exceeds %d bytes", s.Name, maxBlobBytes)
		}
		return nil
	default:
		return fmt.Errorf("ringbuf: unsupported value type %T for sample %q", s.Value, s.Name)
	}
}
