package tess

import "github.com/chewxy/math32"

// Vec is a float32 2D point or vector.
type Vec struct {
	X, Y float32
}

func (v Vec) add(q Vec) Vec     { return Vec{v.X + q.X, v.Y + q.Y} }
func (v Vec) sub(q Vec) Vec     { return Vec{v.X - q.X, v.Y - q.Y} }
func (v Vec) mul(s float32) Vec { return Vec{v.X * s, v.Y * s} }
func (v Vec) neg() Vec          { return Vec{-v.X, -v.Y} }
func (v Vec) dot(q Vec) float32 { return v.X*q.X + v.Y*q.Y }
func (v Vec) length() float32   { return math32.Sqrt(v.X*v.X + v.Y*v.Y) }
func (v Vec) distanceSq(q Vec) float32 {
	dx, dy := v.X-q.X, v.Y-q.Y
	return dx*dx + dy*dy
}

// normalized returns v scaled to unit length, or the zero vector.
func (v Vec) normalized() Vec {
	l := v.length()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// perp returns v rotated a quarter turn counter-clockwise in y-down space.
func (v Vec) perp() Vec { return Vec{-v.Y, v.X} }

func (v Vec) arr() [2]float32 { return [2]float32{v.X, v.Y} }
