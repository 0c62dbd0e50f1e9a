package anim

import "github.com/go-drift/tinydisplay/pkg/easing"

// Values holds the subset of animated properties relevant to a given
// animation kind. Unset fields are nil and carry no meaning; evaluators
// only read and write the fields their kind defines.
type Values struct {
	Position *easing.Point
	Opacity  *float64
	Scale    *float64
	Rotation *float64 // radians
	Color    *easing.Color
	Progress *float64
	Text     string
	Custom   map[string]float64
}

func f64p(v float64) *float64     { return &v }
func pointp(v easing.Point) *easing.Point { return &v }
func colorp(v easing.Color) *easing.Color { return &v }

// clone returns a deep-enough copy of v so a caller can freely mutate the
// result without aliasing the definition's stored start/end values.
func (v Values) clone() Values {
	out := v
	if v.Position != nil {
		out.Position = pointp(*v.Position)
	}
	if v.Opacity != nil {
		out.Opacity = f64p(*v.Opacity)
	}
	if v.Scale != nil {
		out.Scale = f64p(*v.Scale)
	}
	if v.Rotation != nil {
		out.Rotation = f64p(*v.Rotation)
	}
	if v.Color != nil {
		out.Color = colorp(*v.Color)
	}
	if v.Progress != nil {
		out.Progress = f64p(*v.Progress)
	}
	if v.Custom != nil {
		c := make(map[string]float64, len(v.Custom))
		for k, val := range v.Custom {
			c[k] = val
		}
		out.Custom = c
	}
	return out
}
