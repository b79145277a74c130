package geom

import "math"

// Mat3x2 is a 2D affine transformation in row-vector convention:
//
//	            | M11 M12 |
//	[x y 1]  *  | M21 M22 |
//	            | M31 M32 |
//
// so that
//
//	x' = x*M11 + y*M21 + M31
//	y' = x*M12 + y*M22 + M32
//
// a.Multiply(b) applies a first, then b.
type Mat3x2 struct {
	M11, M12 float64
	M21, M22 float64
	M31, M32 float64
}

// Identity returns the identity transformation.
func Identity() Mat3x2 {
	return Mat3x2{M11: 1, M22: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Mat3x2 {
	return Mat3x2{M11: 1, M22: 1, M31: x, M32: y}
}

// Scale creates a scaling matrix around the origin.
func Scale(sx, sy float64) Mat3x2 {
	return Mat3x2{M11: sx, M22: sy}
}

// Rotate creates a clockwise rotation in screen space (y pointing down),
// angle in radians.
func Rotate(angle float64) Mat3x2 {
	s, c := math.Sincos(angle)
	return Mat3x2{
		M11: c, M12: s,
		M21: -s, M22: c,
	}
}

// Screen returns the matrix that maps pixel coordinates of a target of the
// given size to normalized device coordinates with y pointing up.
func Screen(width, height float64) Mat3x2 {
	return Mat3x2{
		M11: 2 / width, M12: 0,
		M21: 0, M22: -2 / height,
		M31: -1, M32: 1,
	}
}

// Multiply returns the transform that applies m first, then other.
func (m Mat3x2) Multiply(other Mat3x2) Mat3x2 {
	return Mat3x2{
		M11: m.M11*other.M11 + m.M12*other.M21,
		M12: m.M11*other.M12 + m.M12*other.M22,
		M21: m.M21*other.M11 + m.M22*other.M21,
		M22: m.M21*other.M12 + m.M22*other.M22,
		M31: m.M31*other.M11 + m.M32*other.M21 + other.M31,
		M32: m.M31*other.M12 + m.M32*other.M22 + other.M32,
	}
}

// TransformPoint applies the transformation to a point.
func (m Mat3x2) TransformPoint(p Vec2) Vec2 {
	return Vec2{
		X: p.X*m.M11 + p.Y*m.M21 + m.M31,
		Y: p.X*m.M12 + p.Y*m.M22 + m.M32,
	}
}

// Inverse returns the inverse matrix, or the identity when m is singular.
func (m Mat3x2) Inverse() Mat3x2 {
	det := m.M11*m.M22 - m.M12*m.M21
	if math.Abs(det) < 1e-10 {
		return Identity()
	}

	inv := 1 / det
	return Mat3x2{
		M11: m.M22 * inv,
		M12: -m.M12 * inv,
		M21: -m.M21 * inv,
		M22: m.M11 * inv,
		M31: (m.M21*m.M32 - m.M22*m.M31) * inv,
		M32: (m.M12*m.M31 - m.M11*m.M32) * inv,
	}
}

// MaxScaling returns the scale factor used to pick tessellation quality:
// the length of the transformed diagonal (1, 1) divided by sqrt(2).
func (m Mat3x2) MaxScaling() float64 {
	return math.Hypot(m.M11+m.M21, m.M12+m.M22) / math.Sqrt2
}

// IsIdentity reports whether m is the identity matrix.
func (m Mat3x2) IsIdentity() bool {
	return m == Identity()
}
