package geom

// Rect is an axis-aligned rectangle with its top-left corner at (X, Y).
type Rect struct {
	X, Y, W, H float64
}

// R is a convenience function to create a Rect.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// TL returns the top-left corner.
func (r Rect) TL() Vec2 { return Vec2{X: r.X, Y: r.Y} }

// TR returns the top-right corner.
func (r Rect) TR() Vec2 { return Vec2{X: r.X + r.W, Y: r.Y} }

// BR returns the bottom-right corner.
func (r Rect) BR() Vec2 { return Vec2{X: r.X + r.W, Y: r.Y + r.H} }

// BL returns the bottom-left corner.
func (r Rect) BL() Vec2 { return Vec2{X: r.X, Y: r.Y + r.H} }

// Center returns the center point.
func (r Rect) Center() Vec2 { return Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Stretched returns the rectangle grown by d on every side.
func (r Rect) Stretched(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Circle is a circle given by center and radius.
type Circle struct {
	Center Vec2
	R      float64
}

// Ellipse is an axis-aligned ellipse with semi-axes A (x) and B (y).
type Ellipse struct {
	Center Vec2
	A, B   float64
}

// Quad is a convex quadrilateral with vertices in clockwise screen order.
type Quad struct {
	P0, P1, P2, P3 Vec2
}

// QuadFromRect returns the quad covering r, starting at the top-left corner.
func QuadFromRect(r Rect) Quad {
	return Quad{P0: r.TL(), P1: r.TR(), P2: r.BR(), P3: r.BL()}
}

// Transformed returns the quad with every vertex transformed by m.
func (q Quad) Transformed(m Mat3x2) Quad {
	return Quad{
		P0: m.TransformPoint(q.P0),
		P1: m.TransformPoint(q.P1),
		P2: m.TransformPoint(q.P2),
		P3: m.TransformPoint(q.P3),
	}
}

// RoundRect is a rectangle with rounded corners of radius Radius.
type RoundRect struct {
	Rect   Rect
	Radius float64
}

// FloatRect is a region in texture coordinates.
type FloatRect struct {
	Left, Top, Right, Bottom float32
}

// FullUV covers the whole texture.
var FullUV = FloatRect{Left: 0, Top: 0, Right: 1, Bottom: 1}
