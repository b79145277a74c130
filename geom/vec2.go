// Package geom provides the small value types consumed by the renderer:
// vectors, rectangles, shapes, colors and 2D affine matrices.
package geom

import "math"

// Vec2 represents a 2D point or vector.
type Vec2 struct {
	X, Y float64
}

// V is a convenience function to create a Vec2.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(q Vec2) Vec2 {
	return Vec2{X: v.X + q.X, Y: v.Y + q.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(q Vec2) Vec2 {
	return Vec2{X: v.X - q.X, Y: v.Y - q.Y}
}

// Mul returns the vector scaled by s.
func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(q Vec2) float64 {
	return v.X*q.X + v.Y*q.Y
}

// Cross returns the 2D cross product (scalar).
func (v Vec2) Cross(q Vec2) float64 {
	return v.X*q.Y - v.Y*q.X
}

// Length returns the length of the vector.
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSq returns the squared length of the vector.
func (v Vec2) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// DistanceSq returns the squared distance between two points.
func (v Vec2) DistanceSq(q Vec2) float64 {
	return v.Sub(q).LengthSq()
}

// Normalize returns a unit vector in the same direction, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// Normal returns the vector rotated by -90 degrees in screen space
// (y pointing down), which is the left-hand side of a segment direction.
func (v Vec2) Normal() Vec2 {
	return Vec2{X: v.Y, Y: -v.X}
}

// Lerp interpolates linearly between v (t=0) and q (t=1).
func (v Vec2) Lerp(q Vec2, t float64) Vec2 {
	return Vec2{
		X: v.X + (q.X-v.X)*t,
		Y: v.Y + (q.Y-v.Y)*t,
	}
}

// F32 returns the vector as float32 components for vertex data.
func (v Vec2) F32() [2]float32 {
	return [2]float32{float32(v.X), float32(v.Y)}
}
