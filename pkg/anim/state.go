package anim

import "github.com/go-drift/tinydisplay/pkg/easing"

// AnimationState is the immutable result of StateAt(id, tick). Equality
// used for the cross-run determinism hash is structural and excludes Tick
// (see Hash).
type AnimationState struct {
	AnimationID string
	Tick        uint64
	Progress    float64
	Active      bool
	Completed   bool
	Values
}

// evaluator computes the animated Values for a kind at eased progress p,
// given the def's start/end values. Implementations are pure.
type evaluator func(def *AnimationDef, p float64) Values

var evaluators = map[Kind]evaluator{
	KindFade:       evalFade,
	KindSlide:      evalSlide,
	KindScale:      evalScale,
	KindRotate:     evalRotate,
	KindColor:      evalColor,
	KindProgress:   evalProgress,
	KindTypewriter: evalTypewriter,
	KindCustom:     evalCustom,
}

func evalFade(def *AnimationDef, p float64) Values {
	start, end := zeroIfNil(def.startValues.Opacity), zeroIfNil(def.endValues.Opacity)
	return Values{Opacity: f64p(easing.LerpF(start, end, p))}
}

func evalSlide(def *AnimationDef, p float64) Values {
	start := def.startValues.Position
	end := def.endValues.Position
	if start == nil {
		start = &easing.Point{}
	}
	if end == nil {
		end = &easing.Point{}
	}
	return Values{Position: pointp(easing.LerpPos(*start, *end, p))}
}

func evalScale(def *AnimationDef, p float64) Values {
	start, end := zeroIfNil(def.startValues.Scale), zeroIfNil(def.endValues.Scale)
	return Values{Scale: f64p(easing.LerpF(start, end, p))}
}

func evalRotate(def *AnimationDef, p float64) Values {
	start, end := zeroIfNil(def.startValues.Rotation), zeroIfNil(def.endValues.Rotation)
	return Values{Rotation: f64p(easing.LerpF(start, end, p))}
}

func evalColor(def *AnimationDef, p float64) Values {
	start := def.startValues.Color
	end := def.endValues.Color
	var a, b easing.Color
	if start != nil {
		a = *start
	}
	if end != nil {
		b = *end
	}
	return Values{Color: colorp(easing.LerpRGB(a, b, p))}
}

func evalProgress(def *AnimationDef, p float64) Values {
	start, end := zeroIfNil(def.startValues.Progress), zeroIfNil(def.endValues.Progress)
	return Values{Progress: f64p(easing.LerpF(start, end, p))}
}

// evalTypewriter reveals the end value's text a character at a time as p
// advances from 0 to 1, truncating toward nearest character boundary.
func evalTypewriter(def *AnimationDef, p float64) Values {
	full := []rune(def.endValues.Text)
	n := easing.LerpI(0, len(full), p)
	if n > len(full) {
		n = len(full)
	}
	if n < 0 {
		n = 0
	}
	return Values{Text: string(full[:n])}
}

func evalCustom(def *AnimationDef, p float64) Values {
	if def.customFn == nil {
		return Values{}
	}
	return def.customFn(p, def.startValues, def.endValues)
}

func zeroIfNil(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
