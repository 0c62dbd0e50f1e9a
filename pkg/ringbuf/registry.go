package ringbuf

import "sync"

// Registry creates and looks up named buffers, one per data source, sized
// from the ring_buffer_capacity configuration option. Registration happens
// once at startup per source; the read/write paths on an individual
// Buffer remain lock-free.
type Registry struct {
	mu             sync.Mutex
	defaultCap     int
	perNameCap     map[string]int
	buffers        map[string]*Buffer
}

// NewRegistry returns a Registry that creates buffers with defaultCapacity
// unless a source-specific capacity was set with SetCapacity.
func NewRegistry(defaultCapacity int) *Registry {
	return &Registry{
		defaultCap: defaultCapacity,
		perNameCap: make(map[string]int),
		buffers:    make(map[string]*Buffer),
	}
}

// SetCapacity fixes the capacity a named buffer will be created with. Must
// be called before the buffer's first use (Buffer or PushSample).
func (r *Registry) SetCapacity(name string, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.perNameCap[name] = capacity
}

// Buffer returns the named buffer, creating it on first use.
func (r *Registry) Buffer(name string) *Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buffers[name]; ok {
		return b
	}
	cap := r.defaultCap
	if c, ok := r.perNameCap[name]; ok {
		cap = c
	}
	b := New(cap)
	r.buffers[name] = b
	return b
}

// PushSample is the engine's external push_sample(buffer_id, name, value,
// observed_tick) entry point: it routes to the named buffer (creating it
// if needed) and returns whether an oldest sample was dropped.
func (r *Registry) PushSample(bufferID, name string, value any, observedTick uint64) (dropped bool, err error) {
	s := Sample{Name: name, Value: value, ObservedTick: observedTick}
	if err := s.Validate(); err != nil {
		return false, err
	}
	return r.Buffer(bufferID).Push(s), nil
}

// Names returns the names of all buffers created so far.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.buffers))
	for name := range r.buffers {
		out = append(out, name)
	}
	return out
}
