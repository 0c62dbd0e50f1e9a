package expr

import "time"

// DefaultTimeBudget is the per-evaluation wall-clock budget named in the
// engine specification. Configurable per engine via EvalWithBudget.
const DefaultTimeBudget = 10 * time.Millisecond

// evalState carries the deadline and a node-visit counter through a single
// Eval call. The counter is checked far more often than the wall clock
// would need to be for any expression within the node-count budget, but a
// wall-clock read per N nodes keeps pathologically slow library calls
// (e.g. repeated pow/trig on huge operands) from silently exceeding the
// budget between checks.
type evalState struct {
	deadline time.Time
	visited  int
}

const clockCheckEvery = 32

func (s *evalState) tick() error {
	s.visited++
	if s.visited%clockCheckEvery == 0 && time.Now().After(s.deadline) {
		return &EvalError{Message: "time budget exceeded"}
	}
	return nil
}

// Eval evaluates ast against bindings using DefaultTimeBudget.
func Eval(ast *AST, bindings map[string]Value) (Value, error) {
	return EvalWithBudget(ast, bindings, DefaultTimeBudget)
}

// EvalWithBudget evaluates ast against bindings, aborting with an EvalError
// if wall-clock time exceeds budget before completion.
func EvalWithBudget(ast *AST, bindings map[string]Value, budget time.Duration) (Value, error) {
	st := &evalState{deadline: time.Now().Add(budget)}
	return evalNode(ast.root, bindings, st)
}

func evalNode(n node, bindings map[string]Value, st *evalState) (Value, error) {
	if err := st.tick(); err != nil {
		return Value{}, err
	}

	switch v := n.(type) {
	case numberNode:
		return Num(v.value), nil
	case boolNode:
		return Bln(v.value), nil
	case identNode:
		val, ok := bindings[v.name]
		if !ok {
			return Value{}, &EvalError{Message: "unbound variable: " + v.name}
		}
		return val, nil
	case fieldNode:
		base, err := evalNode(v.base, bindings, st)
		if err != nil {
			return Value{}, err
		}
		if base.Kind != KindRecord {
			return Value{}, &EvalError{Message: "field access on non-record value"}
		}
		field, ok := base.Record[v.field]
		if !ok {
			return Value{}, &EvalError{Message: "no such field: " + v.field}
		}
		return field, nil
	case unaryNode:
		return evalUnary(v, bindings, st)
	case binaryNode:
		return evalBinary(v, bindings, st)
	case condNode:
		cond, err := evalNode(v.cond, bindings, st)
		if err != nil {
			return Value{}, err
		}
		b, err := cond.AsBool()
		if err != nil {
			return Value{}, err
		}
		if b {
			return evalNode(v.then, bindings, st)
		}
		return evalNode(v.els, bindings, st)
	case callNode:
		return evalCall(v, bindings, st)
	default:
		return Value{}, &EvalError{Message: "unsupported expression node"}
	}
}

func evalUnary(v unaryNode, bindings map[string]Value, st *evalState) (Value, error) {
	inner, err := evalNode(v.expr, bindings, st)
	if err != nil {
		return Value{}, err
	}
	switch v.op {
	case "-":
		n, err := inner.AsNumber()
		if err != nil {
			return Value{}, err
		}
		return Num(-n), nil
	case "!":
		b, err := inner.AsBool()
		if err != nil {
			return Value{}, err
		}
		return Bln(!b), nil
	default:
		return Value{}, &EvalError{Message: "unknown unary operator " + v.op}
	}
}

func evalBinary(v binaryNode, bindings map[string]Value, st *evalState) (Value, error) {
	// Boolean operators short-circuit; every other operator evaluates both
	// sides eagerly (there is no side-effecting expression in this
	// language, so eagerness changes nothing but the error a caller sees
	// when the unevaluated side would also have failed).
	switch v.op {
	case "&&":
		left, err := evalNode(v.left, bindings, st)
		if err != nil {
			return Value{}, err
		}
		lb, err := left.AsBool()
		if err != nil {
			return Value{}, err
		}
		if !lb {
			return Bln(false), nil
		}
		right, err := evalNode(v.right, bindings, st)
		if err != nil {
			return Value{}, err
		}
		rb, err := right.AsBool()
		if err != nil {
			return Value{}, err
		}
		return Bln(rb), nil
	case "||":
		left, err := evalNode(v.left, bindings, st)
		if err != nil {
			return Value{}, err
		}
		lb, err := left.AsBool()
		if err != nil {
			return Value{}, err
		}
		if lb {
			return Bln(true), nil
		}
		right, err := evalNode(v.right, bindings, st)
		if err != nil {
			return Value{}, err
		}
		rb, err := right.AsBool()
		if err != nil {
			return Value{}, err
		}
		return Bln(rb), nil
	}

	left, err := evalNode(v.left, bindings, st)
	if err != nil {
		return Value{}, err
	}
	right, err := evalNode(v.right, bindings, st)
	if err != nil {
		return Value{}, err
	}

	switch v.op {
	case "==", "!=":
		eq, err := valuesEqual(left, right)
		if err != nil {
			return Value{}, err
		}
		if v.op == "!=" {
			eq = !eq
		}
		return Bln(eq), nil
	case "<", "<=", ">", ">=":
		ln, err := left.AsNumber()
		if err != nil {
			return Value{}, err
		}
		rn, err := right.AsNumber()
		if err != nil {
			return Value{}, err
		}
		switch v.op {
		case "<":
			return Bln(ln < rn), nil
		case "<=":
			return Bln(ln <= rn), nil
		case ">":
			return Bln(ln > rn), nil
		default:
			return Bln(ln >= rn), nil
		}
	case "+", "-", "*", "/", "%":
		ln, err := left.AsNumber()
		if err != nil {
			return Value{}, err
		}
		rn, err := right.AsNumber()
		if err != nil {
			return Value{}, err
		}
		switch v.op {
		case "+":
			return Num(ln + rn), nil
		case "-":
			return Num(ln - rn), nil
		case "*":
			return Num(ln * rn), nil
		case "/":
			if rn == 0 {
				return Value{}, &EvalError{Message: "division by zero"}
			}
			return Num(ln / rn), nil
		default: // "%"
			if rn == 0 {
				return Value{}, &EvalError{Message: "modulo by zero"}
			}
			return Num(float64(int64(ln) % int64(rn))), nil
		}
	default:
		return Value{}, &EvalError{Message: "unknown binary operator " + v.op}
	}
}

func valuesEqual(a, b Value) (bool, error) {
	if a.Kind == KindBool || b.Kind == KindBool {
		ab, err := a.AsBool()
		if err != nil {
			return false, err
		}
		bb, err := b.AsBool()
		if err != nil {
			return false, err
		}
		return ab == bb, nil
	}
	an, err := a.AsNumber()
	if err != nil {
		return false, err
	}
	bn, err := b.AsNumber()
	if err != nil {
		return false, err
	}
	return an == bn, nil
}

func evalCall(v callNode, bindings map[string]Value, st *evalState) (Value, error) {
	f, ok := functions[v.fn]
	if !ok {
		return Value{}, &EvalError{Message: "function not permitted: " + v.fn}
	}
	args := make([]float64, len(v.args))
	for i, a := range v.args {
		val, err := evalNode(a, bindings, st)
		if err != nil {
			return Value{}, err
		}
		n, err := val.AsNumber()
		if err != nil {
			return Value{}, err
		}
		args[i] = n
	}
	result, err := f(args)
	if err != nil {
		return Value{}, err
	}
	return Num(result), nil
}
