// Package easing provides the pure functions that turn a raw animation
// progress value into eased progress and that interpolate the scalar,
// positional, and color types animations and the marquee resolver produce.
//
// Every function here is pure and total over the documented domain:
// progress outside [0,1] is clamped before any formula runs, so a caller
// can never observe an out-of-range result. This is what makes
// AnimationState reproducible bit-for-bit across threads, processes, and
// runs (see Engine in package anim).
package easing

import "math"

// Func transforms linear progress t in [0,1] into eased progress, also in
// [0,1]. Implementations must be pure: no captured mutable state, no
// wall-clock reads.
type Func func(t float64) float64

// UnknownEasingError is returned by Lookup for a name outside the closed
// registry.
type UnknownEasingError struct {
	Name string
}

func (e *UnknownEasingError) Error() string {
	return "easing: unknown curve " + e.Name
}

var (
	registry = map[string]Func{
		"linear":      Linear,
		"ease":        Ease,
		"ease-in":     EaseIn,
		"ease-out":    EaseOut,
		"ease-in-out": EaseInOut,
		"elastic":     Elastic,
		"bounce":      Bounce,
		"step-start":  StepStart,
		"step-end":    StepEnd,
	}
	sealed bool
)

// Register adds a named curve to the registry. It panics if called after
// Seal, since the registry must be closed before the engine starts
// evaluating animations (spec: "the easing registry is closed at
// initialization").
func Register(name string, fn Func) {
	if sealed {
		panic("easing: Register called after Seal")
	}
	registry[name] = fn
}

// Seal closes the registry against further registration. The engine calls
// this once during construction.
func Seal() {
	sealed = true
}

// Lookup returns the named curve, or UnknownEasingError if name was never
// registered.
func Lookup(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, &UnknownEasingError{Name: name}
	}
	return fn, nil
}

// Evaluate looks up the named curve and applies it to progress p, clamping
// both input and output to [0,1]. This is the spec's `ease(name, p)`
// operation. Panics are never produced for an unknown name at the render
// path; callers on the determinism-critical path should resolve the Func
// once via Lookup and cache it.
func Evaluate(name string, p float64) (float64, error) {
	fn, err := Lookup(name)
	if err != nil {
		return Clamp01(p), err
	}
	return Clamp01(fn(Clamp01(p))), nil
}

// Clamp01 clamps v to the closed interval [0,1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Linear returns progress unchanged.
func Linear(t float64) float64 { return t }

// Ease is a general-purpose cubic bezier curve, equivalent to CSS ease.
var Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)

// EaseIn starts slowly and accelerates; equivalent to CSS ease-in.
var EaseIn = CubicBezier(0.4, 0.0, 1.0, 1.0)

// EaseOut starts quickly and decelerates; equivalent to CSS ease-out.
var EaseOut = CubicBezier(0.0, 0.0, 0.2, 1.0)

// EaseInOut accelerates then decelerates; equivalent to CSS ease-in-out.
var EaseInOut = CubicBezier(0.4, 0.0, 0.2, 1.0)

// StepStart jumps to 1 immediately.
func StepStart(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return 1
}

// StepEnd stays at 0 until t reaches 1.
func StepEnd(t float64) float64 {
	if t >= 1 {
		return 1
	}
	return 0
}

// elasticPeriod controls the oscillation frequency of Elastic.
const elasticPeriod = 0.3

// Elastic is a damped-sine overshoot curve (Penner-style elastic-out). Its
// raw formula can produce values outside [0,1] near t=0; Evaluate always
// clamps the final result, satisfying the invariant that elastic progress
// never escapes [0,1] before reaching interpolation.
func Elastic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	s := elasticPeriod / 4
	inv := t - 1
	return math.Pow(2, 10*inv)*math.Sin((inv-s)*(2*math.Pi)/elasticPeriod) + 1
}

// Bounce produces a bouncing-ball deceleration, landing exactly at 1.
func Bounce(t float64) float64 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

// CubicBezier returns a cubic-bezier easing function matching CSS
// cubic-bezier(x1,y1,x2,y2). The curve starts at (0,0) and ends at (1,1).
func CubicBezier(x1, y1, x2, y2 float64) Func {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		for range 8 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, Clamp01(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		lo, hi := 0.0, 1.0
		u = Clamp01(u)
		for range 12 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}

		return sampleCurve(y1, y2, u)
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}
