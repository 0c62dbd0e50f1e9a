package timeline

import "github.com/go-drift/tinydisplay/pkg/tderrors"

// Plan names a group of coordination primitive ids that a host considers
// related (e.g. "intro sequence"). Plans are a grouping label only: the
// coordination engine evaluates every registered primitive each tick
// regardless of plan membership, so Plan is consulted by callers that
// want to report "which plan produced this event," not by
// EvaluateAt itself.
type Plan struct {
	id           string
	primitiveIDs []string
}

// NewPlan validates and returns a Plan.
func NewPlan(id string, primitiveIDs []string) (*Plan, error) {
	if id == "" {
		return nil, &tderrors.ValidationError{Field: "id", Value: id, Message: "must not be empty"}
	}
	if len(primitiveIDs) == 0 {
		return nil, &tderrors.ValidationError{Field: "primitive_ids", Value: primitiveIDs, Message: "must not be empty"}
	}
	return &Plan{id: id, primitiveIDs: append([]string(nil), primitiveIDs...)}, nil
}

// ID returns the plan id.
func (p *Plan) ID() string { return p.id }

// PrimitiveIDs returns the plan's member primitive ids.
func (p *Plan) PrimitiveIDs() []string { return append([]string(nil), p.primitiveIDs...) }

// Owner returns the plan owning primitiveID, or nil if no registered plan
// claims it.
func Owner(plans map[string]*Plan, primitiveID string) *Plan {
	for _, id := range sortedPlanIDs(plans) {
		p := plans[id]
		for _, pid := range p.primitiveIDs {
			if pid == primitiveID {
				return p
			}
		}
	}
	return nil
}

func sortedPlanIDs(plans map[string]*Plan) []string {
	out := make([]string, 0, len(plans))
	for k := range plans {
		out = append(out, k)
	}
	insertionSort(out)
	return out
}

func insertionSort(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
