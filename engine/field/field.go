package field

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/morphogen/engine/math"
)

// fieldValueBound clamps sampled values so the field stays finite and
// bounded everywhere, which guarantees extraction cannot diverge.
const fieldValueBound float32 = 1.0e3

// ScalarField is a set of weighted implicit primitives combined with a
// polynomial smooth-minimum union. The zero level-set is the creature
// surface; values are negative inside and positive outside.
type ScalarField struct {
	primitives []Primitive
	// blendStrength is the global smooth-union strength. The effective
	// strength per primitive pair is additionally bounded by the smaller
	// primitive radius, so parts of very different size stay distinct.
	blendStrength float32
}

// NewScalarField creates an empty field with the given blend strength.
func NewScalarField(blendStrength float32) *ScalarField {
	return &ScalarField{
		blendStrength: math.Clamp(blendStrength, 0.0, 1.0),
	}
}

// Add appends a primitive to the field.
func (f *ScalarField) Add(p Primitive) {
	f.primitives = append(f.primitives, p)
}

// PrimitiveCount returns the number of primitives in the field.
func (f *ScalarField) PrimitiveCount() int {
	return len(f.primitives)
}

// Sample evaluates the field at pt. The result is always finite.
func (f *ScalarField) Sample(pt math.Vec3) float32 {
	if len(f.primitives) == 0 {
		return fieldValueBound
	}

	value := fieldValueBound
	for i := range f.primitives {
		p := &f.primitives[i]
		d := p.Distance(pt)
		if !math.IsFinite(d) {
			continue
		}
		// Smoothing strength bounded by the primitive's own radius keeps
		// small parts from being swallowed by large neighbors.
		k := f.blendStrength * p.Blend
		k = math32.Min(k, 0.6*p.MinRadius())
		value = math.SmoothMin(value, d, k)
	}

	return math.Clamp(value, -fieldValueBound, fieldValueBound)
}

// Gradient estimates the field gradient at pt by central differencing
// with step eps. Used for smooth extraction normals.
func (f *ScalarField) Gradient(pt math.Vec3, eps float32) math.Vec3 {
	if eps < math.K_FLOAT_EPSILON {
		eps = 1.0e-3
	}
	dx := f.Sample(math.NewVec3(pt.X+eps, pt.Y, pt.Z)) - f.Sample(math.NewVec3(pt.X-eps, pt.Y, pt.Z))
	dy := f.Sample(math.NewVec3(pt.X, pt.Y+eps, pt.Z)) - f.Sample(math.NewVec3(pt.X, pt.Y-eps, pt.Z))
	dz := f.Sample(math.NewVec3(pt.X, pt.Y, pt.Z+eps)) - f.Sample(math.NewVec3(pt.X, pt.Y, pt.Z-eps))
	return math.NewVec3(dx, dy, dz)
}

// Bounds returns the union of all primitive extents.
func (f *ScalarField) Bounds() math.Extents3D {
	if len(f.primitives) == 0 {
		return math.Extents3D{}
	}
	e := f.primitives[0].Extents()
	for i := 1; i < len(f.primitives); i++ {
		e = math.ExtentsUnion(e, f.primitives[i].Extents())
	}
	return e
}

// MinRadius returns the smallest primitive radius in the field. Grid cell
// size must stay below half of this for watertight extraction.
func (f *ScalarField) MinRadius() float32 {
	min := math.K_INFINITY
	for i := range f.primitives {
		r := f.primitives[i].MinRadius()
		if r < min {
			min = r
		}
	}
	return min
}

// IsDegenerate reports whether the field has no usable volume: no
// primitives, non-finite bounds, or every radius collapsed to nothing.
func (f *ScalarField) IsDegenerate() bool {
	if len(f.primitives) == 0 {
		return true
	}
	b := f.Bounds()
	size := math.ExtentsSize(b)
	if !math.IsFinite(size.X) || !math.IsFinite(size.Y) || !math.IsFinite(size.Z) {
		return true
	}
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return true
	}
	return f.MinRadius() < 1.0e-4
}
