// Package tess converts 2D shapes into triangle lists.
//
// Builders reserve space through an Alloc function, write positions,
// texture coordinates and colors into the returned slot, and return the
// number of indices written. They return 0 when the shape is degenerate or
// the allocation fails; a zero return never leaves partial geometry behind.
//
// Curved shapes pick their segment count from the on-screen size: callers
// pass the maximum scale of the current transform so that magnified shapes
// get more segments.
package tess

import (
	"math"

	"github.com/chewxy/math32"
)

const (
	twoPi  = float32(2 * math.Pi)
	halfPi = float32(math.Pi / 2)

	// MaxQuality bounds the segment count of every curved shape.
	MaxQuality = 255
)

// CircleQuality returns the number of perimeter vertices for a filled
// circle whose on-screen radius is size.
func CircleQuality(size float32) int {
	if size <= 5 {
		return int(size+3) * 2
	}
	return int(math32.Min(18+(size-5)/2.2, MaxQuality))
}

// CircleFrameQuality returns the number of segments for a circle outline
// whose on-screen outer radius is size.
func CircleFrameQuality(size float32) int {
	switch {
	case size <= 1:
		return 6
	case size <= 8:
		return max(int(2*size), 8)
	default:
		return int(math32.Min(16+(size-8)/2.2, MaxQuality))
	}
}

// CirclePieQuality returns the number of perimeter vertices for a pie or
// arc of on-screen radius size sweeping angle radians. It is never below 3.
func CirclePieQuality(size, angle float32) int {
	rate := math32.Min(math32.Abs(angle)/twoPi*2, 1)

	var q int
	switch {
	case size <= 1:
		q = 4
	case size <= 6:
		q = 7
	case size <= 8:
		q = 11
	default:
		q = int(math32.Min(size*0.225+18, MaxQuality))
	}
	return int(math32.Max(float32(q)*rate, 3))
}

// FanQuality returns the number of vertices of a quarter-circle fan of
// on-screen radius r, used for rounded corners and caps.
func FanQuality(r float32) int {
	switch {
	case r <= 1:
		return 3
	case r <= 6:
		return 5
	case r <= 12:
		return 8
	default:
		return int(math32.Min(64, r*0.2+6))
	}
}

// EllipseQuality returns the number of perimeter vertices for a filled
// ellipse whose on-screen major semi-axis is major.
func EllipseQuality(major float32) int {
	return int(clamp(major*0.225+18, 6, MaxQuality))
}

// TexturedCircleQuality returns the number of perimeter vertices for a
// textured circle of on-screen radius size.
func TexturedCircleQuality(size float32) int {
	return int(math32.Min(size*0.225+18, MaxQuality))
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}
