package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// SmoothMin is the polynomial smooth minimum of a and b with smoothing
// strength k. With k <= 0 it degenerates to a plain min, which keeps
// adjacent parts of very different size from merging into one blob.
func SmoothMin(a, b, k float32) float32 {
	if k <= 0.0 {
		return math32.Min(a, b)
	}
	h := math32.Max(k-math32.Abs(a-b), 0.0) / k
	return math32.Min(a, b) - h*h*k*0.25
}

// Smoothstep performs smooth Hermite interpolation between 0 and 1 as x
// moves across [edge0, edge1].
func Smoothstep(edge0, edge1, x float32) float32 {
	t := Clamp((x-edge0)/(edge1-edge0), 0.0, 1.0)
	return t * t * (3.0 - 2.0*t)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
