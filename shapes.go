package batch2d

import (
	"math"

	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/internal/tess"
)

const pi = float32(math.Pi)

// LineCap specifies the shape of line endpoints.
type LineCap uint8

const (
	// LineCapButt ends the line flat at its endpoints.
	LineCapButt LineCap = iota
	// LineCapRound ends the line with a half circle.
	LineCapRound
	// LineCapSquare extends the line by half its thickness.
	LineCapSquare
)

var lineCapNames = [...]string{
	LineCapButt:   "Butt",
	LineCapRound:  "Round",
	LineCapSquare: "Square",
}

// String returns the cap name.
func (c LineCap) String() string {
	if int(c) < len(lineCapNames) {
		return lineCapNames[c]
	}
	return "Unknown"
}

func (c LineCap) tess() tess.Cap {
	switch c {
	case LineCapRound:
		return tess.CapRound
	case LineCapSquare:
		return tess.CapSquare
	default:
		return tess.CapFlat
	}
}

func vec(p geom.Vec2) tess.Vec {
	return tess.Vec{X: float32(p.X), Y: float32(p.Y)}
}

func rect(r geom.Rect) tess.Rect {
	return tess.Rect{
		Left:   float32(r.X),
		Top:    float32(r.Y),
		Right:  float32(r.X + r.W),
		Bottom: float32(r.Y + r.H),
	}
}

func uvRect(r geom.FloatRect) tess.Rect {
	return tess.Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
}

func quad(q geom.Quad) [4]tess.Vec {
	return [4]tess.Vec{vec(q.P0), vec(q.P1), vec(q.P2), vec(q.P3)}
}

func colors4(cs [4]geom.ColorF) [4]tess.Color {
	return [4]tess.Color{cs[0].Float4(), cs[1].Float4(), cs[2].Float4(), cs[3].Float4()}
}

func same4(c geom.ColorF) [4]tess.Color {
	f := c.Float4()
	return [4]tess.Color{f, f, f, f}
}

// AddLine draws a segment from begin to end. colors are the colors at
// begin and end. It returns the number of indices recorded, 0 when the line
// was dropped.
func (r *Renderer) AddLine(lineCap LineCap, begin, end geom.Vec2, thickness float64, colors [2]geom.ColorF) int {
	b, e := vec(begin), vec(end)
	th := float32(thickness)
	cs := [2]tess.Color{colors[0].Float4(), colors[1].Float4()}

	n, start := tess.Line(r.fn, lineCap.tess(), b, e, th, cs)
	if r.draw(n) == 0 {
		return 0
	}
	if lineCap == LineCapRound {
		scale := r.scale()
		n += r.draw(tess.CirclePie(r.fn, b, th*0.5, start, pi, cs[0], cs[0], scale))
		n += r.draw(tess.CirclePie(r.fn, e, th*0.5, start+pi, pi, cs[1], cs[1], scale))
	}
	return n
}

// AddTriangle draws a filled triangle.
func (r *Renderer) AddTriangle(pts [3]geom.Vec2, c geom.ColorF) int {
	f := c.Float4()
	return r.triangle(pts, [3]tess.Color{f, f, f})
}

// AddTriangleColors draws a triangle with one color per vertex.
func (r *Renderer) AddTriangleColors(pts [3]geom.Vec2, cs [3]geom.ColorF) int {
	return r.triangle(pts, [3]tess.Color{cs[0].Float4(), cs[1].Float4(), cs[2].Float4()})
}

func (r *Renderer) triangle(pts [3]geom.Vec2, cs [3]tess.Color) int {
	return r.draw(tess.Triangle(r.fn, [3]tess.Vec{vec(pts[0]), vec(pts[1]), vec(pts[2])}, cs))
}

// AddRect draws a filled rectangle.
func (r *Renderer) AddRect(rc geom.Rect, c geom.ColorF) int {
	return r.draw(tess.RectColors(r.fn, rect(rc), same4(c)))
}

// AddRectColors draws a rectangle with corner colors given clockwise from
// the top-left corner.
func (r *Renderer) AddRectColors(rc geom.Rect, cs [4]geom.ColorF) int {
	return r.draw(tess.RectColors(r.fn, rect(rc), colors4(cs)))
}

// AddRectFrame draws a frame of the given thickness around the outside of
// rc. inner is the color at rc's edge and outer the color at the frame's
// outer edge.
func (r *Renderer) AddRectFrame(rc geom.Rect, thickness float64, inner, outer geom.ColorF) int {
	return r.draw(tess.RectFrame(r.fn, rect(rc), float32(thickness), inner.Float4(), outer.Float4()))
}

// AddCircle draws a filled circle with a radial gradient from inner at the
// center to outer at the edge.
func (r *Renderer) AddCircle(center geom.Vec2, radius float64, inner, outer geom.ColorF) int {
	return r.draw(tess.Circle(r.fn, vec(center), float32(radius), inner.Float4(), outer.Float4(), r.scale()))
}

// AddCircleFrame draws a ring from radius to radius+thickness.
func (r *Renderer) AddCircleFrame(center geom.Vec2, radius, thickness float64, inner, outer geom.ColorF) int {
	if thickness <= 0 {
		return r.drop()
	}
	return r.draw(tess.CircleFrame(r.fn, vec(center), float32(radius), float32(thickness),
		inner.Float4(), outer.Float4(), r.scale()))
}

// AddCirclePie draws a wedge starting at startAngle (radians clockwise from
// 12 o'clock) sweeping angle radians.
func (r *Renderer) AddCirclePie(center geom.Vec2, radius, startAngle, angle float64, inner, outer geom.ColorF) int {
	return r.draw(tess.CirclePie(r.fn, vec(center), float32(radius), float32(startAngle), float32(angle),
		inner.Float4(), outer.Float4(), r.scale()))
}

// AddCircleArc draws a ring segment from radius to radius+thickness.
// LineCapRound caps both ends with half circles in the average of inner
// and outer; other caps end flat.
func (r *Renderer) AddCircleArc(lineCap LineCap, center geom.Vec2, radius, startAngle, angle, thickness float64, inner, outer geom.ColorF) int {
	c := vec(center)
	rInner, start, sweep, th := float32(radius), float32(startAngle), float32(angle), float32(thickness)

	n := r.draw(tess.CircleArc(r.fn, c, rInner, start, sweep, th, inner.Float4(), outer.Float4(), r.scale()))
	if n == 0 || lineCap != LineCapRound {
		return n
	}

	mid := inner.Lerp(outer, 0.5).Float4()
	scale := r.scale()
	b, e, ba, ea := tess.ArcEnds(c, rInner, start, sweep, th)
	n += r.draw(tess.CirclePie(r.fn, b, th*0.5, ba, pi, mid, mid, scale))
	n += r.draw(tess.CirclePie(r.fn, e, th*0.5, ea, pi, mid, mid, scale))
	return n
}

// AddEllipse draws a filled axis-aligned ellipse with semi-axes a and b.
func (r *Renderer) AddEllipse(center geom.Vec2, a, b float64, inner, outer geom.ColorF) int {
	return r.draw(tess.EllipseAuto(r.fn, vec(center), float32(a), float32(b), inner.Float4(), outer.Float4(), r.scale()))
}

// AddEllipseFrame draws an elliptical ring of the given thickness outside
// the ellipse with semi-axes a and b.
func (r *Renderer) AddEllipseFrame(center geom.Vec2, a, b, thickness float64, inner, outer geom.ColorF) int {
	if thickness <= 0 {
		return r.drop()
	}
	return r.draw(tess.EllipseFrame(r.fn, vec(center), float32(a), float32(b), float32(thickness),
		inner.Float4(), outer.Float4(), r.scale()))
}

// AddQuad draws a filled quadrilateral.
func (r *Renderer) AddQuad(q geom.Quad, c geom.ColorF) int {
	return r.draw(tess.Quad(r.fn, quad(q), same4(c)))
}

// AddQuadColors draws a quadrilateral with one color per corner.
func (r *Renderer) AddQuadColors(q geom.Quad, cs [4]geom.ColorF) int {
	return r.draw(tess.Quad(r.fn, quad(q), colors4(cs)))
}

// AddLineString draws a polyline through pts, each moved by offset. Closed
// line strings join the last point to the first and have no caps. When
// inner is set, sharp joins are not extended.
func (r *Renderer) AddLineString(lineCap LineCap, pts []geom.Vec2, offset geom.Vec2, thickness float64, inner bool, c geom.ColorF, closed bool) int {
	if len(pts) < 2 {
		return r.drop()
	}
	buf := make([]tess.Vec, len(pts))
	for i, p := range pts {
		buf[i] = vec(p)
	}
	off := vec(offset)
	th := float32(thickness)
	color := c.Float4()
	scale := r.scale()

	res := tess.LineString(r.fn, lineCap.tess(), buf, off, th, inner, color, closed, scale)
	n := r.draw(res.Indices)
	if n == 0 || closed || lineCap != LineCapRound {
		return n
	}

	first, last := buf[0], buf[len(buf)-1]
	first.X, first.Y = first.X+off.X, first.Y+off.Y
	last.X, last.Y = last.X+off.X, last.Y+off.Y
	n += r.draw(tess.CirclePie(r.fn, first, th*0.5, res.StartAngle, pi, color, color, scale))
	n += r.draw(tess.CirclePie(r.fn, last, th*0.5, res.EndAngle, pi, color, color, scale))
	return n
}

// AddShape2D draws an indexed triangle list moved by offset. Shapes with
// an index outside vertices, or an index count that is not a multiple of
// 3, are dropped.
func (r *Renderer) AddShape2D(vertices []geom.Vec2, indices []uint16, offset geom.Vec2, c geom.ColorF) int {
	return r.draw(tess.Shape2D(r.fn, vecs(vertices), indices, vec(offset), c.Float4()))
}

// AddShape2DTransformed is AddShape2D with the vertices first rotated by
// the angle whose sine and cosine are sin and cos.
func (r *Renderer) AddShape2DTransformed(vertices []geom.Vec2, indices []uint16, sin, cos float64, offset geom.Vec2, c geom.ColorF) int {
	return r.draw(tess.Shape2DTransformed(r.fn, vecs(vertices), indices, float32(sin), float32(cos), vec(offset), c.Float4()))
}

func vecs(pts []geom.Vec2) []tess.Vec {
	buf := make([]tess.Vec, len(pts))
	for i, p := range pts {
		buf[i] = vec(p)
	}
	return buf
}

// AddShape2DFrame draws the closed outline of the polygon pts.
func (r *Renderer) AddShape2DFrame(pts []geom.Vec2, thickness float64, c geom.ColorF) int {
	if len(pts) < 3 {
		return r.drop()
	}
	return r.draw(tess.PolygonFrame(r.fn, vecs(pts), float32(thickness), c.Float4(), r.scale()))
}

// AddRoundRect draws a rectangle with corners rounded to radius.
func (r *Renderer) AddRoundRect(rr geom.RoundRect, c geom.ColorF) int {
	return r.draw(tess.RoundRect(r.fn, rect(rr.Rect), float32(rr.Radius), c.Float4(), r.scale()))
}
