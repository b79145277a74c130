package tess

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/batch2d/batch"
)

// Alloc reserves vertexCount vertices and indexCount indices. It reports
// false when the space cannot be provided.
type Alloc func(vertexCount, indexCount int) (batch.Slot, bool)

// Rect is an axis-aligned rectangle given by its edges.
type Rect struct {
	Left, Top, Right, Bottom float32
}

// Color is a straight-alpha RGBA color.
type Color = [4]float32

// Cap is the shape drawn at the open ends of a line.
type Cap uint8

const (
	// CapSquare extends each end by half the thickness.
	CapSquare Cap = iota

	// CapRound ends in a half circle. Builders return the start angles of
	// the two half circles; the caller draws them with CirclePie.
	CapRound

	// CapFlat ends exactly at the end points.
	CapFlat
)

var rectIndexTable = [6]batch.Index{0, 1, 2, 2, 1, 3}

// maxQuads is the number of four-vertex quads 16-bit indices can address.
const maxQuads = 65536 / 4

var rectFrameIndexTable = [24]batch.Index{
	0, 1, 2, 3, 2, 1, 0, 4, 1, 5, 1, 4, 5, 4, 7, 6, 7, 4, 3, 7, 2, 6, 2, 7,
}

func vertex(p Vec, c Color) batch.Vertex2D {
	return batch.Vertex2D{Pos: p.arr(), Color: c}
}

func texVertex(p Vec, u, v float32, c Color) batch.Vertex2D {
	return batch.Vertex2D{Pos: p.arr(), Tex: [2]float32{u, v}, Color: c}
}

// writeRectIndices writes two triangles over the four vertices starting
// at base.
func writeRectIndices(dst []batch.Index, offset, base batch.Index) {
	for i, idx := range rectIndexTable {
		dst[i] = offset + base + idx
	}
}

// writeFan writes the triangles of a closed fan around vertex 0 over the
// q perimeter vertices 1..q.
func writeFan(dst []batch.Index, offset batch.Index, q int) {
	n := 0
	for i := 0; i < q-1; i++ {
		dst[n] = offset + batch.Index(i+1)
		dst[n+1] = offset
		dst[n+2] = offset + batch.Index(i+2)
		n += 3
	}
	dst[n] = offset + batch.Index(q)
	dst[n+1] = offset
	dst[n+2] = offset + 1
}

// writeRing writes the triangles of a closed strip of q outer/inner vertex
// pairs.
func writeRing(dst []batch.Index, offset batch.Index, q int) {
	n := 0
	for i := 0; i < q; i++ {
		for _, idx := range rectIndexTable {
			dst[n] = offset + batch.Index((i*2+int(idx))%(q*2))
			n++
		}
	}
}

// Line builds a single thick segment. For CapRound it also returns the
// start angle of the half circle at begin; the one at end starts at
// startAngle + π.
func Line(alloc Alloc, lineCap Cap, begin, end Vec, thickness float32, colors [2]Color) (n int, startAngle float32) {
	if thickness <= 0 {
		return 0, 0
	}
	s, ok := alloc(4, 6)
	if !ok {
		return 0, 0
	}

	half := thickness * 0.5
	line := end.sub(begin).normalized()
	normal := line.perp().mul(half)
	var ext Vec
	if lineCap == CapSquare {
		ext = line.mul(half)
	}

	s.Vertices[0] = vertex(begin.add(normal).sub(ext), colors[0])
	s.Vertices[1] = vertex(begin.sub(normal).sub(ext), colors[0])
	s.Vertices[2] = vertex(end.add(normal).add(ext), colors[1])
	s.Vertices[3] = vertex(end.sub(normal).add(ext), colors[1])
	writeRectIndices(s.Indices, s.IndexOffset, 0)

	return 6, math32.Atan2(normal.X, -normal.Y)
}

// Triangle builds a triangle with one color per vertex.
func Triangle(alloc Alloc, pts [3]Vec, colors [3]Color) int {
	s, ok := alloc(3, 3)
	if !ok {
		return 0
	}
	for i := range pts {
		s.Vertices[i] = vertex(pts[i], colors[i])
		s.Indices[i] = s.IndexOffset + batch.Index(i)
	}
	return 3
}

// RectColors builds a rectangle. Colors are given clockwise from the
// top-left corner.
func RectColors(alloc Alloc, r Rect, colors [4]Color) int {
	s, ok := alloc(4, 6)
	if !ok {
		return 0
	}
	s.Vertices[0] = vertex(Vec{r.Left, r.Top}, colors[0])
	s.Vertices[1] = vertex(Vec{r.Right, r.Top}, colors[1])
	s.Vertices[2] = vertex(Vec{r.Left, r.Bottom}, colors[3])
	s.Vertices[3] = vertex(Vec{r.Right, r.Bottom}, colors[2])
	writeRectIndices(s.Indices, s.IndexOffset, 0)
	return 6
}

// RectFrame builds a frame of the given thickness around the outside of r.
func RectFrame(alloc Alloc, r Rect, thickness float32, inner, outer Color) int {
	if thickness <= 0 {
		return 0
	}
	s, ok := alloc(8, 24)
	if !ok {
		return 0
	}
	t := thickness
	s.Vertices[0] = vertex(Vec{r.Left - t, r.Top - t}, outer)
	s.Vertices[1] = vertex(Vec{r.Left, r.Top}, inner)
	s.Vertices[2] = vertex(Vec{r.Left - t, r.Bottom + t}, outer)
	s.Vertices[3] = vertex(Vec{r.Left, r.Bottom}, inner)
	s.Vertices[4] = vertex(Vec{r.Right + t, r.Top - t}, outer)
	s.Vertices[5] = vertex(Vec{r.Right, r.Top}, inner)
	s.Vertices[6] = vertex(Vec{r.Right + t, r.Bottom + t}, outer)
	s.Vertices[7] = vertex(Vec{r.Right, r.Bottom}, inner)
	for i, idx := range rectFrameIndexTable {
		s.Indices[i] = s.IndexOffset + idx
	}
	return 24
}

// Circle builds a filled circle. The center vertex gets inner and the
// perimeter gets outer.
func Circle(alloc Alloc, center Vec, r float32, inner, outer Color, scale float32) int {
	return Ellipse(alloc, center, r, r, inner, outer, CircleQuality(math32.Abs(r)*scale))
}

// EllipseAuto builds a filled ellipse with semi-axes a and b.
func EllipseAuto(alloc Alloc, center Vec, a, b float32, inner, outer Color, scale float32) int {
	major := math32.Max(math32.Abs(a), math32.Abs(b))
	return Ellipse(alloc, center, a, b, inner, outer, EllipseQuality(major*scale))
}

// Ellipse builds a filled ellipse with q perimeter vertices.
func Ellipse(alloc Alloc, center Vec, a, b float32, inner, outer Color, q int) int {
	if q < 3 {
		return 0
	}
	s, ok := alloc(q+1, q*3)
	if !ok {
		return 0
	}
	s.Vertices[0] = vertex(center, inner)
	delta := twoPi / float32(q)
	for i := 0; i < q; i++ {
		sin, cos := math32.Sincos(delta * float32(i))
		s.Vertices[i+1] = vertex(Vec{center.X + a*cos, center.Y - b*sin}, outer)
	}
	writeFan(s.Indices, s.IndexOffset, q)
	return q * 3
}

// CircleFrame builds a ring from radius rInner to rInner+thickness.
func CircleFrame(alloc Alloc, center Vec, rInner, thickness float32, inner, outer Color, scale float32) int {
	rOuter := rInner + thickness
	return ring(alloc, center, rInner, rInner, rOuter, rOuter, inner, outer, CircleFrameQuality(rOuter*scale))
}

// EllipseFrame builds an elliptical ring of the given thickness outside
// the ellipse with semi-axes a and b.
func EllipseFrame(alloc Alloc, center Vec, a, b, thickness float32, inner, outer Color, scale float32) int {
	aOuter, bOuter := a+thickness, b+thickness
	major := math32.Max(math32.Abs(aOuter), math32.Abs(bOuter))
	return ring(alloc, center, a, b, aOuter, bOuter, inner, outer, CircleFrameQuality(major*scale))
}

func ring(alloc Alloc, center Vec, aInner, bInner, aOuter, bOuter float32, inner, outer Color, q int) int {
	s, ok := alloc(q*2, q*6)
	if !ok {
		return 0
	}
	delta := twoPi / float32(q)
	for i := 0; i < q; i++ {
		sin, cos := math32.Sincos(delta * float32(i))
		s.Vertices[i*2] = vertex(Vec{center.X + aOuter*cos, center.Y - bOuter*sin}, outer)
		s.Vertices[i*2+1] = vertex(Vec{center.X + aInner*cos, center.Y - bInner*sin}, inner)
	}
	writeRing(s.Indices, s.IndexOffset, q)
	return q * 6
}

// clampAngle limits a sweep to one full turn in either direction.
func clampAngle(angle float32) float32 {
	return clamp(angle, -twoPi, twoPi)
}

// CirclePie builds a wedge starting at startAngle (clockwise from 12
// o'clock) sweeping angle radians.
func CirclePie(alloc Alloc, center Vec, r, startAngle, angle float32, inner, outer Color, scale float32) int {
	if angle == 0 {
		return 0
	}
	angle = clampAngle(angle)
	q := CirclePieQuality(r*scale, angle)
	s, ok := alloc(q+1, (q-1)*3)
	if !ok {
		return 0
	}

	s.Vertices[0] = vertex(center, inner)
	start := -(startAngle + angle) + halfPi
	delta := twoPi / float32(q-1)
	angleScale := angle / twoPi
	for i := 0; i < q; i++ {
		sin, cos := math32.Sincos(start + delta*float32(i)*angleScale)
		s.Vertices[i+1] = vertex(Vec{center.X + r*cos, center.Y - r*sin}, outer)
	}

	n := 0
	for i := 0; i < q-1; i++ {
		s.Indices[n] = s.IndexOffset + batch.Index(i+1)
		s.Indices[n+1] = s.IndexOffset
		s.Indices[n+2] = s.IndexOffset + batch.Index(i+2)
		n += 3
	}
	return (q - 1) * 3
}

// CircleArc builds a ring segment from radius rInner to rInner+thickness.
func CircleArc(alloc Alloc, center Vec, rInner, startAngle, angle, thickness float32, inner, outer Color, scale float32) int {
	if angle == 0 || thickness <= 0 {
		return 0
	}
	angle = clampAngle(angle)
	rOuter := rInner + thickness
	q := CirclePieQuality(rOuter*scale, angle)
	s, ok := alloc(q*2, (q-1)*6)
	if !ok {
		return 0
	}

	start := -(startAngle + angle) + halfPi
	delta := twoPi / float32(q-1)
	angleScale := angle / twoPi
	for i := 0; i < q; i++ {
		sin, cos := math32.Sincos(start + delta*float32(i)*angleScale)
		s.Vertices[i*2] = vertex(Vec{center.X + rOuter*cos, center.Y - rOuter*sin}, outer)
		s.Vertices[i*2+1] = vertex(Vec{center.X + rInner*cos, center.Y - rInner*sin}, inner)
	}
	for i := 0; i < q-1; i++ {
		writeRectIndices(s.Indices[i*6:], s.IndexOffset, batch.Index(i*2))
	}
	return (q - 1) * 6
}

// ArcEnds returns the centers of the two ends of an arc's center line and
// the start angles of half circles capping them.
func ArcEnds(center Vec, rInner, startAngle, angle, thickness float32) (begin, end Vec, beginAngle, endAngle float32) {
	angle = clampAngle(angle)
	rMid := rInner + thickness*0.5
	point := func(a float32) Vec {
		sin, cos := math32.Sincos(a)
		return Vec{center.X + rMid*sin, center.Y - rMid*cos}
	}
	begin, end = point(startAngle), point(startAngle+angle)
	if angle >= 0 {
		return begin, end, startAngle + halfPi*2, startAngle + angle
	}
	return begin, end, startAngle, startAngle + angle + halfPi*2
}

// Quad builds a quadrilateral from corners given in drawing order.
func Quad(alloc Alloc, pts [4]Vec, colors [4]Color) int {
	s, ok := alloc(4, 6)
	if !ok {
		return 0
	}
	s.Vertices[0] = vertex(pts[0], colors[0])
	s.Vertices[1] = vertex(pts[1], colors[1])
	s.Vertices[2] = vertex(pts[3], colors[3])
	s.Vertices[3] = vertex(pts[2], colors[2])
	writeRectIndices(s.Indices, s.IndexOffset, 0)
	return 6
}

// RoundRect builds a rectangle with corners rounded to radius r. The radius
// is limited to half the shorter side.
func RoundRect(alloc Alloc, rect Rect, r float32, color Color, scale float32) int {
	w, h := rect.Right-rect.Left, rect.Bottom-rect.Top
	if w <= 0 || h <= 0 {
		return 0
	}
	rr := math32.Min(math32.Min(w*0.5, h*0.5), math32.Max(0, r))
	if rr == 0 {
		return RectColors(alloc, rect, [4]Color{color, color, color, color})
	}

	q := FanQuality(rr * scale)
	fan := make([]Vec, q)
	delta := halfPi / float32(q-1)
	for i := range fan {
		sin, cos := math32.Sincos(delta * float32(i))
		fan[i] = Vec{sin * rr, -cos * rr}
	}

	var uniteV, uniteH int
	if h*0.5 == rr {
		uniteV = 1
	}
	if w*0.5 == rr {
		uniteH = 1
	}
	centers := [4]Vec{
		{rect.Right - rr, rect.Top + rr},
		{rect.Right - rr, rect.Bottom - rr},
		{rect.Left + rr, rect.Bottom - rr},
		{rect.Left + rr, rect.Top + rr},
	}

	vc := (q - uniteV + q - uniteH) * 2
	ic := (vc - 2) * 3
	s, ok := alloc(vc, ic)
	if !ok {
		return 0
	}

	v := s.Vertices[:0]
	for i := 0; i < q-uniteV; i++ {
		v = append(v, vertex(centers[0].add(fan[i]), color))
	}
	for i := 0; i < q-uniteH; i++ {
		f := fan[q-i-1]
		v = append(v, vertex(centers[1].add(Vec{f.X, -f.Y}), color))
	}
	for i := 0; i < q-uniteV; i++ {
		v = append(v, vertex(centers[2].add(fan[i].neg()), color))
	}
	for i := 0; i < q-uniteH; i++ {
		f := fan[q-i-1]
		v = append(v, vertex(centers[3].add(Vec{-f.X, f.Y}), color))
	}

	for i := 0; i < vc-2; i++ {
		s.Indices[i*3] = s.IndexOffset
		s.Indices[i*3+1] = s.IndexOffset + batch.Index(i+1)
		s.Indices[i*3+2] = s.IndexOffset + batch.Index(i+2)
	}
	return ic
}

// Shape2D builds an indexed triangle list. Every vertex is moved by offset.
// Shapes with an index outside vertices are dropped.
func Shape2D(alloc Alloc, vertices []Vec, indices []uint16, offset Vec, color Color) int {
	return Shape2DTransformed(alloc, vertices, indices, 0, 1, offset, color)
}

// Shape2DTransformed is Shape2D with every vertex rotated by the angle
// whose sine and cosine are s and c before it is moved by offset.
func Shape2DTransformed(alloc Alloc, vertices []Vec, indices []uint16, s, c float32, offset Vec, color Color) int {
	if len(vertices) == 0 || len(indices) == 0 || len(indices)%3 != 0 {
		return 0
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return 0
		}
	}
	slot, ok := alloc(len(vertices), len(indices))
	if !ok {
		return 0
	}
	for i, p := range vertices {
		q := Vec{p.X*c - p.Y*s + offset.X, p.X*s + p.Y*c + offset.Y}
		slot.Vertices[i] = vertex(q, color)
	}
	for i, idx := range indices {
		slot.Indices[i] = slot.IndexOffset + idx
	}
	return len(indices)
}

// Particle is one textured square of a particle system, already resolved
// for the current frame.
type Particle struct {
	Center   Vec
	Rotation float32
	Size     float32
	Color    Color
}

// TexturedParticles builds one rotated square per particle, each showing
// the whole texture.
func TexturedParticles(alloc Alloc, particles []Particle) int {
	if len(particles) == 0 || len(particles) > maxQuads {
		return 0
	}
	s, ok := alloc(len(particles)*4, len(particles)*6)
	if !ok {
		return 0
	}
	for i, p := range particles {
		x := p.Size * 0.5
		sin, cos := math32.Sincos(p.Rotation)
		xc, xs := x*cos, x*sin
		cx, cy := p.Center.X, p.Center.Y

		v := s.Vertices[i*4 : i*4+4]
		v[0] = texVertex(Vec{-xc + xs + cx, -xs - xc + cy}, 0, 0, p.Color)
		v[1] = texVertex(Vec{xc + xs + cx, xs - xc + cy}, 1, 0, p.Color)
		v[2] = texVertex(Vec{-xc - xs + cx, -xs + xc + cy}, 0, 1, p.Color)
		v[3] = texVertex(Vec{xc - xs + cx, xs + xc + cy}, 1, 1, p.Color)
		writeRectIndices(s.Indices[i*6:], s.IndexOffset, batch.Index(i*4)) //nolint:gosec // bounded by maxQuads
	}
	return len(particles) * 6
}

// Sprite copies prebuilt vertices and draws indexCount indices starting at
// startIndex. The count is clamped to the available indices and rounded
// down to whole triangles.
func Sprite(alloc Alloc, vertices []batch.Vertex2D, indices []uint16, startIndex, indexCount int) int {
	if len(vertices) == 0 || len(indices) == 0 || startIndex < 0 || startIndex >= len(indices) {
		return 0
	}
	if startIndex+indexCount > len(indices) || indexCount < 0 {
		indexCount = len(indices) - startIndex
	}
	indexCount -= indexCount % 3
	if indexCount == 0 {
		return 0
	}
	src := indices[startIndex : startIndex+indexCount]
	for _, idx := range src {
		if int(idx) >= len(vertices) {
			return 0
		}
	}

	s, ok := alloc(len(vertices), indexCount)
	if !ok {
		return 0
	}
	copy(s.Vertices, vertices)
	for i, idx := range src {
		s.Indices[i] = s.IndexOffset + idx
	}
	return indexCount
}

// TextureRegion builds a textured rectangle. Colors are given clockwise
// from the top-left corner.
func TextureRegion(alloc Alloc, r, uv Rect, colors [4]Color) int {
	s, ok := alloc(4, 6)
	if !ok {
		return 0
	}
	s.Vertices[0] = texVertex(Vec{r.Left, r.Top}, uv.Left, uv.Top, colors[0])
	s.Vertices[1] = texVertex(Vec{r.Right, r.Top}, uv.Right, uv.Top, colors[1])
	s.Vertices[2] = texVertex(Vec{r.Left, r.Bottom}, uv.Left, uv.Bottom, colors[3])
	s.Vertices[3] = texVertex(Vec{r.Right, r.Bottom}, uv.Right, uv.Bottom, colors[2])
	writeRectIndices(s.Indices, s.IndexOffset, 0)
	return 6
}

// TexturedCircle builds a circle mapped onto the ellipse inscribed in uv.
func TexturedCircle(alloc Alloc, center Vec, r float32, uv Rect, color Color, scale float32) int {
	q := TexturedCircleQuality(math32.Abs(r) * scale)
	s, ok := alloc(q+1, q*3)
	if !ok {
		return 0
	}

	cu, cv := (uv.Left+uv.Right)*0.5, (uv.Top+uv.Bottom)*0.5
	ru, rv := (uv.Right-uv.Left)*0.5, (uv.Bottom-uv.Top)*0.5
	s.Vertices[0] = texVertex(center, cu, cv, color)
	delta := twoPi / float32(q)
	for i := 0; i < q; i++ {
		sin, cos := math32.Sincos(delta * float32(i))
		s.Vertices[i+1] = texVertex(Vec{center.X + r*cos, center.Y - r*sin}, cu+ru*cos, cv-rv*sin, color)
	}
	writeFan(s.Indices, s.IndexOffset, q)
	return q * 3
}

// TexturedQuad builds a quadrilateral mapped onto uv.
func TexturedQuad(alloc Alloc, pts [4]Vec, uv Rect, color Color) int {
	s, ok := alloc(4, 6)
	if !ok {
		return 0
	}
	s.Vertices[0] = texVertex(pts[0], uv.Left, uv.Top, color)
	s.Vertices[1] = texVertex(pts[1], uv.Right, uv.Top, color)
	s.Vertices[2] = texVertex(pts[3], uv.Left, uv.Bottom, color)
	s.Vertices[3] = texVertex(pts[2], uv.Right, uv.Bottom, color)
	writeRectIndices(s.Indices, s.IndexOffset, 0)
	return 6
}
