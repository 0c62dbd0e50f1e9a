package expr

import "math"

// fn is a member of the closed function library. All functions are pure
// and operate only on the numeric arguments passed to them.
type fn func(args []float64) (float64, error)

// functions is the whitelist named in the engine specification: min, max,
// abs, round, floor, ceil, sqrt, sin, cos, tan, log, exp, pow. No other
// name may appear in a call expression; Compile rejects anything else.
var functions = map[string]fn{
	"min":   fn2(math.Min),
	"max":   fn2(math.Max),
	"abs":   fn1(math.Abs),
	"round": fn1(math.Round),
	"floor": fn1(math.Floor),
	"ceil":  fn1(math.Ceil),
	"sqrt":  fn1(math.Sqrt),
	"sin":   fn1(math.Sin),
	"cos":   fn1(math.Cos),
	"tan":   fn1(math.Tan),
	"log":   fn1(math.Log),
	"exp":   fn1(math.Exp),
	"pow":   fn2(math.Pow),
}

func fn1(f func(float64) float64) fn {
	return func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, &EvalError{Message: "expected 1 argument"}
		}
		return f(args[0]), nil
	}
}

func fn2(f func(float64, float64) float64) fn {
	return func(args []float64) (float64, error) {
		if len(args) != 2 {
			return 0, &EvalError{Message: "expected 2 arguments"}
		}
		return f(args[0], args[1]), nil
	}
}

// IsWhitelistedFunction reports whether name is a member of the closed
// function library, used by Compile to reject unknown calls up front.
func IsWhitelistedFunction(name string) bool {
	_, ok := functions[name]
	return ok
}
