package databind

import (
	"sync"

	"github.com/go-drift/tinydisplay/pkg/anim"
	"github.com/go-drift/tinydisplay/pkg/expr"
	"github.com/go-drift/tinydisplay/pkg/tderrors"
)

// Registry holds every live Binding, indexed by the animation it targets.
type Registry struct {
	mu       sync.Mutex
	bindings map[string][]*Binding
	metrics  *tderrors.Metrics
}

// NewRegistry returns an empty Registry. metrics may be nil; when set, a
// binding that fails to evaluate (and is therefore skipped for that tick)
// increments MetricExprEvalFallback.
func NewRegistry(metrics *tderrors.Metrics) *Registry {
	return &Registry{bindings: make(map[string][]*Binding), metrics: metrics}
}

// Add registers b, to be applied on every subsequent tick.
func (r *Registry) Add(b *Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.animationID] = append(r.bindings[b.animationID], b)
}

// Apply evaluates every registered binding against latest and writes
// numeric results into fs.States[animationID].Values.Custom[parameter],
// operating on a private copy of each touched AnimationState so the
// frame-pool cache entry fs was read from is never mutated in place.
func (r *Registry) Apply(fs *anim.FrameState, latest map[string]expr.Value) {
	if fs == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for animID, bs := range r.bindings {
		st, ok := fs.States[animID]
		if !ok {
			continue
		}
		var copied bool
		for _, b := range bs {
			v, ok := b.eval(latest)
			if !ok {
				if r.metrics != nil {
					r.metrics.Inc(tderrors.MetricExprEvalFallback)
				}
				continue
			}
			if !copied {
				stCopy := *st
				custom := make(map[string]float64, len(st.Values.Custom)+len(bs))
				for k, existing := range st.Values.Custom {
					custom[k] = existing
				}
				stCopy.Values.Custom = custom
				st = &stCopy
				fs.States[animID] = st
				copied = true
			}
			st.Values.Custom[b.parameter] = v
		}
	}
}
