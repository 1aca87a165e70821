package shader

import "math"

// Color is a straight-alpha RGBA value with components nominally in [0,1].
// Intermediate results such as the Laplacian may leave that range.
type Color struct {
	R, G, B, A float64
}

func Gray(v, alpha float64) Color {
	return Color{v, v, v, alpha}
}

func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

func (c Color) Scale(k float64) Color {
	return Color{c.R * k, c.G * k, c.B * k, c.A * k}
}

// Mix interpolates linearly toward o: c*(1-t) + o*t.
func (c Color) Mix(o Color, t float64) Color {
	return Color{
		R: c.R*(1-t) + o.R*t,
		G: c.G*(1-t) + o.G*t,
		B: c.B*(1-t) + o.B*t,
		A: c.A*(1-t) + o.A*t,
	}
}

// Rec. 601 luma weights.
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

func (c Color) Luma() float64 {
	return c.R*LumaR + c.G*LumaG + c.B*LumaB
}

func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Vec2 is a position in normalized texture coordinates.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}
