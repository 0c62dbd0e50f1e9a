package anim

import (
	"fmt"

	"github.com/go-drift/tinydisplay/pkg/tderrors"
)

// Kind identifies the tagged variant of an animation's evaluator, per the
// engine's "dynamic dispatch via tagged variant, not inheritance" design
// rule.
type Kind int

const (
	KindFade Kind = iota
	KindSlide
	KindScale
	KindRotate
	KindColor
	KindProgress
	KindTypewriter
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindFade:
		return "fade"
	case KindSlide:
		return "slide"
	case KindScale:
		return "scale"
	case KindRotate:
		return "rotate"
	case KindColor:
		return "color"
	case KindProgress:
		return "progress"
	case KindTypewriter:
		return "typewriter"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// InterpolationMode selects how progress maps to output values.
type InterpolationMode int

const (
	ModeSmooth InterpolationMode = iota
	ModeStepped
	ModeCustom
)

// PreStartBehavior controls what state_at returns for t before the
// animation's origin (start_tick + delay_ticks).
type PreStartBehavior int

const (
	// PreStartNone returns nil from StateAt before origin (the default).
	PreStartNone PreStartBehavior = iota
	// PreStartFrozen returns an inactive AnimationState equal to
	// StartValues before origin.
	PreStartFrozen
)

// CustomInterpolator is a pure function (p, start, end) -> values. It must
// not close over mutable state: the engine may invoke it from multiple
// worker goroutines concurrently on cloned snapshots.
type CustomInterpolator func(p float64, start, end Values) Values

// AnimationDef is an immutable, validated animation definition. Construct
// one with NewDefBuilder; there is no exported way to mutate a def after
// Build succeeds.
type AnimationDef struct {
	id                string
	kind              Kind
	durationTicks     uint64
	delayTicks        uint64
	repeatCount       uint64 // 0 means infinite
	reverseOnRepeat   bool
	easingName        string
	startValues       Values
	endValues         Values
	interpolationMode InterpolationMode
	customFn          CustomInterpolator
	preStart          PreStartBehavior
	steppedCount      int // number of discrete steps for ModeStepped, >=1
}

func (d *AnimationDef) ID() string                         { return d.id }
func (d *AnimationDef) Kind() Kind                          { return d.kind }
func (d *AnimationDef) DurationTicks() uint64                { return d.durationTicks }
func (d *AnimationDef) DelayTicks() uint64                  { return d.delayTicks }
func (d *AnimationDef) RepeatCount() uint64                 { return d.repeatCount }
func (d *AnimationDef) ReverseOnRepeat() bool                { return d.reverseOnRepeat }
func (d *AnimationDef) EasingName() string                  { return d.easingName }
func (d *AnimationDef) InterpolationMode() InterpolationMode { return d.interpolationMode }

// DefBuilder validates an AnimationDef incrementally and produces an
// immutable def with Build. This is the only way to construct an
// AnimationDef outside this package.
type DefBuilder struct {
	def AnimationDef
	err error
}

// NewDefBuilder starts building a def with the given id and kind.
func NewDefBuilder(id string, kind Kind) *DefBuilder {
	return &DefBuilder{def: AnimationDef{
		id:            id,
		kind:          kind,
		durationTicks: 1,
		repeatCount:   1, // plays once by default; Repeat(0, ...) selects infinite per repeat_count≥0 (0=∞)
		easingName:    "linear",
		preStart:      PreStartNone,
		steppedCount:  1,
	}}
}

func (b *DefBuilder) fail(field string, value any, msg string) *DefBuilder {
	if b.err == nil {
		b.err = &tderrors.ValidationError{Field: field, Value: value, Message: msg}
	}
	return b
}

// Duration sets duration_ticks; must be >= 1.
func (b *DefBuilder) Duration(ticks uint64) *DefBuilder {
	if ticks < 1 {
		return b.fail("duration_ticks", ticks, "must be >= 1")
	}
	b.def.durationTicks = ticks
	return b
}

// Delay sets delay_ticks.
func (b *DefBuilder) Delay(ticks uint64) *DefBuilder {
	b.def.delayTicks = ticks
	return b
}

// Repeat sets repeat_count (0 = infinite) and whether alternate cycles
// reverse.
func (b *DefBuilder) Repeat(count uint64, reverseOnRepeat bool) *DefBuilder {
	b.def.repeatCount = count
	b.def.reverseOnRepeat = reverseOnRepeat
	return b
}

// Easing sets the easing curve name; existence is validated against the
// package easing registry in Build.
func (b *DefBuilder) Easing(name string) *DefBuilder {
	if name == "" {
		return b.fail("easing_name", name, "must not be empty")
	}
	b.def.easingName = name
	return b
}

// StartEnd sets the start and end animated values.
func (b *DefBuilder) StartEnd(start, end Values) *DefBuilder {
	b.def.startValues = start.clone()
	b.def.endValues = end.clone()
	return b
}

// Stepped selects stepped interpolation with the given discrete step count.
func (b *DefBuilder) Stepped(steps int) *DefBuilder {
	if steps < 1 {
		return b.fail("stepped_count", steps, "must be >= 1")
	}
	b.def.interpolationMode = ModeStepped
	b.def.steppedCount = steps
	return b
}

// Custom selects a custom pure interpolator. Required when kind is
// KindCustom.
func (b *DefBuilder) Custom(fn CustomInterpolator) *DefBuilder {
	if fn == nil {
		return b.fail("custom_fn", nil, "must not be nil")
	}
	b.def.interpolationMode = ModeCustom
	b.def.customFn = fn
	return b
}

// PreStart sets the behavior for queries before the animation's origin.
func (b *DefBuilder) PreStart(behavior PreStartBehavior) *DefBuilder {
	b.def.preStart = behavior
	return b
}

// Build validates and returns the finished AnimationDef.
func (b *DefBuilder) Build() (*AnimationDef, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.def.id == "" {
		return nil, &tderrors.ValidationError{Field: "id", Value: b.def.id, Message: "must not be empty"}
	}
	if b.def.kind == KindCustom && b.def.customFn == nil {
		return nil, &tderrors.ValidationError{Field: "custom_fn", Value: nil, Message: "required for KindCustom"}
	}
	if _, err := lookupEasing(b.def.easingName); err != nil {
		return nil, &tderrors.ValidationError{Field: "easing_name", Value: b.def.easingName, Message: err.Error()}
	}
	out := b.def
	return &out, nil
}
