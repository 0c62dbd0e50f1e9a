package easing

import "math"

// Point is an (x, y) position in widget-local pixel space. Positions are
// always integers at the boundary: position interpolation truncates toward
// nearest rather than relying on banker's rounding (spec §9, "Numeric
// semantics").
type Point struct {
	X, Y int
}

// Color is an ARGB-packed 32-bit color (0xAARRGGBB), matching the packing
// used throughout the small-display rendering stack this engine feeds.
type Color uint32

// RGBA constructs a Color from byte channels, alpha in the top byte.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Channels unpacks r, g, b, a byte channels.
func (c Color) Channels() (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

// LerpF linearly interpolates between two float64 values at progress p.
// p is not clamped here: a p outside [0,1] extrapolates beyond a or b.
func LerpF(a, b, p float64) float64 {
	return a + (b-a)*p
}

// LerpI interpolates between two integers, truncating toward nearest.
func LerpI(a, b int, p float64) int {
	return int(math.Round(float64(a) + float64(b-a)*p))
}

// LerpPos interpolates between two positions, truncating each axis toward
// nearest per the engine's numeric semantics.
func LerpPos(a, b Point, p float64) Point {
	return Point{
		X: LerpI(a.X, b.X, p),
		Y: LerpI(a.Y, b.Y, p),
	}
}

// LerpRGB interpolates between two colors channel-by-channel, including
// alpha.
func LerpRGB(a, b Color, p float64) Color {
	ar, ag, ab, aa := a.Channels()
	br, bg, bb, ba := b.Channels()
	return RGBA(
		uint8(LerpI(int(ar), int(br), p)),
		uint8(LerpI(int(ag), int(bg), p)),
		uint8(LerpI(int(ab), int(bb), p)),
		uint8(LerpI(int(aa), int(ba), p)),
	)
}
