package anim

import "github.com/go-drift/tinydisplay/pkg/easing"

func lookupEasing(name string) (easing.Func, error) {
	return easing.Lookup(name)
}

// applyMode eases raw phase through the def's easing curve and then, for
// ModeStepped, quantizes the result to def.steppedCount discrete buckets
// (stepped interpolation "holds" a value until the next step boundary).
func applyMode(def *AnimationDef, phase float64) (float64, error) {
	fn, err := lookupEasing(def.easingName)
	if err != nil {
		return easing.Clamp01(phase), err
	}
	p := easing.Clamp01(fn(easing.Clamp01(phase)))

	if def.interpolationMode == ModeStepped && def.steppedCount > 0 {
		step := 1.0 / float64(def.steppedCount)
		bucket := int(p / step)
		if bucket >= def.steppedCount {
			bucket = def.steppedCount - 1
		}
		p = float64(bucket) * step
	}
	return p, nil
}
