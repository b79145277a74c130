package tess

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/batch2d/batch"
)

// joinThreshold is the cosine above which a join is sharp enough to need
// a helper point keeping the miter short.
const joinThreshold = 0.55

// miterEpsilon bounds the cosine between a miter and the segment normal.
// Below it the join reverses direction and the miter is replaced by the
// segment normal.
const miterEpsilon = 1e-4

// LineStringResult describes what LineString built.
type LineStringResult struct {
	// Indices is the number of indices written, 0 when the line was dropped.
	Indices int

	// StartAngle and EndAngle are the start angles of the half circles that
	// cap the first and last points when the cap is CapRound.
	StartAngle, EndAngle float32
}

// dedupe drops points closer than sqrt(th2) to their predecessor. Closed
// strings also drop a last point that repeats the first.
func dedupe(pts []Vec, closed bool, th2 float32) []Vec {
	n := len(pts)
	buf := make([]Vec, 0, n)
	buf = append(buf, pts[0])
	for i := 1; i < n-1; i++ {
		if pts[i-1].distanceSq(pts[i]) < th2 {
			continue
		}
		buf = append(buf, pts[i])
	}
	if pts[n-2].distanceSq(pts[n-1]) >= th2 {
		buf = append(buf, pts[n-1])
	}
	if closed && len(buf) >= 2 && buf[len(buf)-1].distanceSq(buf[0]) <= th2 {
		buf = buf[:len(buf)-1]
	}
	return buf
}

// joinHelper returns a point just past current that keeps the miter of a
// sharp join bounded, or false when the join is not sharp.
func joinHelper(back, current, next Vec, th2 float32, sign float32) (Vec, bool) {
	v1 := back.sub(current).normalized()
	v2 := next.sub(current).normalized()
	if v1.dot(v2) <= joinThreshold {
		return Vec{}, false
	}

	normal := current.sub(back).perp().normalized()
	tangent := next.sub(current).normalized().add(current.sub(back).normalized()).normalized()
	line2 := next.sub(current)

	a, b := tangent.dot(line2), tangent.neg().dot(line2)
	switch {
	case a >= b:
		return current.add(tangent.mul(th2 * sign)), true
	case a <= b:
		return current.add(tangent.neg().mul(th2 * sign)), true
	default:
		// NaN: back, current and next coincide along the tangent.
		return current.add(normal.mul(0.001 * sign)), true
	}
}

// withJoins inserts helper points at sharp joins. Inner strings keep their
// points unchanged.
func withJoins(buf []Vec, closed, inner bool, th2 float32) []Vec {
	n := len(buf)
	out := make([]Vec, 0, n*2)
	out = append(out, buf[0])

	last := n - 1
	if closed {
		last = n
	}
	for i := 1; i < last; i++ {
		back, current, next := buf[i-1], buf[i], buf[(i+1)%n]
		out = append(out, current)
		if inner {
			continue
		}
		if p, ok := joinHelper(back, current, next, th2, 1); ok {
			out = append(out, p)
		}
	}

	if closed {
		if !inner {
			if p, ok := joinHelper(buf[n-1], buf[0], buf[1], th2, -1); ok {
				out = append(out, p)
			}
		}
	} else {
		out = append(out, buf[n-1])
	}
	return out
}

// miter returns the two outline points of the join at p1.
func miter(p0, p1, p2 Vec, half float32) (Vec, Vec) {
	normal := p1.sub(p0).perp().normalized()
	tangent := p2.sub(p1).normalized().add(p1.sub(p0).normalized()).normalized()
	m := tangent.perp()
	d := m.dot(normal)
	if !(math32.Abs(d) > miterEpsilon) {
		return p1.add(normal.mul(half)), p1.sub(normal.mul(half))
	}
	length := half / d
	return p1.add(m.mul(length)), p1.sub(m.mul(length))
}

// LineString builds a connected polyline of the given thickness. Points
// closer than 0.01/scale in squared distance are merged. Closed strings
// join the last point back to the first and have no caps, and need three
// distinct points. Every vertex is moved by offset.
func LineString(alloc Alloc, lineCap Cap, pts []Vec, offset Vec, thickness float32, inner bool, color Color, closed bool, scale float32) LineStringResult {
	if thickness <= 0 || len(pts) < 2 || scale <= 0 {
		return LineStringResult{}
	}

	th2 := 0.01 / scale
	buf := dedupe(pts, closed, th2)
	if len(buf) < 2 || (closed && len(buf) < 3) {
		return LineStringResult{}
	}
	buf2 := withJoins(buf, closed, inner, th2)

	size := len(buf2)
	vc := size * 2
	ic := 6 * (size - 1)
	if closed {
		ic += 6
	}
	s, ok := alloc(vc, ic)
	if !ok {
		return LineStringResult{}
	}

	half := thickness * 0.5
	v := s.Vertices
	var res LineStringResult

	if closed {
		a, b := miter(buf2[size-1], buf2[0], buf2[1], half)
		v[0], v[1] = vertex(a, color), vertex(b, color)
	} else {
		line := buf2[1].sub(buf2[0]).normalized()
		n := line.perp().mul(half)
		var ext Vec
		if lineCap == CapSquare {
			ext = line.mul(half)
		}
		v[0] = vertex(buf2[0].add(n).sub(ext), color)
		v[1] = vertex(buf2[0].sub(n).sub(ext), color)
		res.StartAngle = math32.Atan2(n.X, -n.Y)
	}

	for i := 0; i < size-2; i++ {
		a, b := miter(buf2[i], buf2[i+1], buf2[i+2], half)
		v[i*2+2], v[i*2+3] = vertex(a, color), vertex(b, color)
	}

	if closed {
		a, b := miter(buf2[size-2], buf2[size-1], buf2[0], half)
		v[vc-2], v[vc-1] = vertex(a, color), vertex(b, color)
	} else {
		line := buf2[size-1].sub(buf2[size-2]).normalized()
		n := line.perp().mul(half)
		var ext Vec
		if lineCap == CapSquare {
			ext = line.mul(half)
		}
		v[vc-2] = vertex(buf2[size-1].add(n).add(ext), color)
		v[vc-1] = vertex(buf2[size-1].sub(n).add(ext), color)
		res.EndAngle = math32.Atan2(-n.X, n.Y)
	}

	if offset != (Vec{}) {
		for i := range v {
			v[i].Pos[0] += offset.X
			v[i].Pos[1] += offset.Y
		}
	}

	segments := size - 1
	if closed {
		segments = size
	}
	k := 0
	for seg := 0; seg < segments; seg++ {
		for _, idx := range rectIndexTable {
			s.Indices[k] = s.IndexOffset + batch.Index((int(idx)+seg*2)%vc)
			k++
		}
	}

	res.Indices = ic
	return res
}

// PolygonFrame builds the closed outline of a polygon.
func PolygonFrame(alloc Alloc, pts []Vec, thickness float32, color Color, scale float32) int {
	return LineString(alloc, CapFlat, pts, Vec{}, thickness, false, color, true, scale).Indices
}
