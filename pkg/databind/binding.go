package databind

import (
	"github.com/go-drift/tinydisplay/pkg/expr"
	"github.com/go-drift/tinydisplay/pkg/tderrors"
)

// Binding writes an evaluated value into animationID's Values.Custom at
// key parameter, once per tick.
type Binding struct {
	animationID string
	parameter   string
	ast         *expr.AST // nil when fast is true
	source      string    // the sample name a fast binding copies verbatim
	fast        bool
}

// NewExpressionBinding compiles src against variables and binds its result
// to animationID's parameter. This is bind_expression(animation_id,
// parameter, expr, variables).
func NewExpressionBinding(cache *expr.Cache, animationID, parameter, src string, variables []string) (*Binding, error) {
	if animationID == "" {
		return nil, &tderrors.ValidationError{Field: "animation_id", Value: animationID, Message: "must not be empty"}
	}
	if parameter == "" {
		return nil, &tderrors.ValidationError{Field: "parameter", Value: parameter, Message: "must not be empty"}
	}
	ast, err := cache.Compile(src, variables)
	if err != nil {
		return nil, err
	}
	return &Binding{animationID: animationID, parameter: parameter, ast: ast}, nil
}

// NewDataBinding binds source's latest sample value to animationID's
// parameter. This is bind_data(source, animation_id, parameter,
// mapping_expr). When fast is true the mapping_expr is ignored and the raw
// sample value is copied directly, bypassing the evaluator (Open Question
// 1's Fast=true path); when false, mappingExpr is compiled with a single
// allowed variable named after source.
func NewDataBinding(cache *expr.Cache, source, animationID, parameter, mappingExpr string, fast bool) (*Binding, error) {
	if source == "" {
		return nil, &tderrors.ValidationError{Field: "source", Value: source, Message: "must not be empty"}
	}
	if animationID == "" {
		return nil, &tderrors.ValidationError{Field: "animation_id", Value: animationID, Message: "must not be empty"}
	}
	if parameter == "" {
		return nil, &tderrors.ValidationError{Field: "parameter", Value: parameter, Message: "must not be empty"}
	}
	if fast {
		return &Binding{animationID: animationID, parameter: parameter, source: source, fast: true}, nil
	}
	ast, err := cache.Compile(mappingExpr, []string{source})
	if err != nil {
		return nil, err
	}
	return &Binding{animationID: animationID, parameter: parameter, ast: ast, source: source}, nil
}

// eval resolves the binding's value for this tick's latest sample bindings.
// A fast binding reads straight from latest[source]; an expression binding
// evaluates its compiled AST. Returns ok=false if the value isn't numeric
// or the source hasn't been observed yet.
func (b *Binding) eval(latest map[string]expr.Value) (float64, bool) {
	if b.fast {
		v, ok := latest[b.source]
		if !ok {
			return 0, false
		}
		n, err := v.AsNumber()
		return n, err == nil
	}
	v, err := expr.Eval(b.ast, latest)
	if err != nil {
		return 0, false
	}
	n, err := v.AsNumber()
	return n, err == nil
}
