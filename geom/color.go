package geom

// ColorF is a straight-alpha RGBA color with components in [0, 1].
type ColorF struct {
	R, G, B, A float64
}

// Common colors.
var (
	White       = ColorF{1, 1, 1, 1}
	Black       = ColorF{0, 0, 0, 1}
	Transparent = ColorF{0, 0, 0, 0}
)

// RGBA creates a color from components in [0, 1].
func RGBA(r, g, b, a float64) ColorF {
	return ColorF{R: r, G: g, B: b, A: a}
}

// RGB creates an opaque color from components in [0, 1].
func RGB(r, g, b float64) ColorF {
	return ColorF{R: r, G: g, B: b, A: 1}
}

// WithAlpha returns the color with alpha replaced.
func (c ColorF) WithAlpha(a float64) ColorF {
	c.A = a
	return c
}

// Float4 returns the color as float32 components for vertex and constant data.
func (c ColorF) Float4() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// Lerp interpolates linearly between c (t=0) and d (t=1).
func (c ColorF) Lerp(d ColorF, t float64) ColorF {
	return ColorF{
		R: c.R + (d.R-c.R)*t,
		G: c.G + (d.G-c.G)*t,
		B: c.B + (d.B-c.B)*t,
		A: c.A + (d.A-c.A)*t,
	}
}
