package math

import "github.com/chewxy/math32"

// ClosestPointOnSegment returns the point on segment [a, b] closest to p
// and the parametric position t in [0, 1] of that point.
func ClosestPointOnSegment(p, a, b Vec3) (Vec3, float32) {
	ab := b.Sub(a)
	lenSq := ab.LengthSquared()
	if lenSq < K_FLOAT_EPSILON {
		return a, 0.0
	}
	t := Clamp(p.Sub(a).Dot(ab)/lenSq, 0.0, 1.0)
	return a.Add(ab.MulScalar(t)), t
}

// PointSegmentDistance returns the distance from p to segment [a, b].
func PointSegmentDistance(p, a, b Vec3) float32 {
	closest, _ := ClosestPointOnSegment(p, a, b)
	return p.Distance(closest)
}

// ExtentsUnion grows e to include other.
func ExtentsUnion(e, other Extents3D) Extents3D {
	return Extents3D{
		Min: Vec3{
			X: math32.Min(e.Min.X, other.Min.X),
			Y: math32.Min(e.Min.Y, other.Min.Y),
			Z: math32.Min(e.Min.Z, other.Min.Z),
		},
		Max: Vec3{
			X: math32.Max(e.Max.X, other.Max.X),
			Y: math32.Max(e.Max.Y, other.Max.Y),
			Z: math32.Max(e.Max.Z, other.Max.Z),
		},
	}
}

// ExtentsExpand pads e by margin on every axis.
func ExtentsExpand(e Extents3D, margin float32) Extents3D {
	m := NewVec3(margin, margin, margin)
	return Extents3D{Min: e.Min.Sub(m), Max: e.Max.Add(m)}
}

// ExtentsCenter returns the center point of e.
func ExtentsCenter(e Extents3D) Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

// ExtentsSize returns the per-axis size of e.
func ExtentsSize(e Extents3D) Vec3 {
	return e.Max.Sub(e.Min)
}
