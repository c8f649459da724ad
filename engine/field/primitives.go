package field

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/morphogen/engine/math"
)

// PrimitiveKind is the closed set of implicit primitive variants.
type PrimitiveKind uint8

const (
	// PrimitiveCapsule is a segment with a constant radius.
	PrimitiveCapsule PrimitiveKind = iota
	// PrimitiveRoundCone is a segment with a radius tapering from A to B
	// (a tapered cylinder with spherical caps).
	PrimitiveRoundCone
	// PrimitiveEllipsoid is an ellipsoid centered at A with semi-axes Radii.
	PrimitiveEllipsoid
)

// Primitive is one weighted contribution to a scalar field. Position and
// orientation are baked into the endpoints; Blend scales how strongly the
// primitive smooths into its neighbors.
type Primitive struct {
	Kind    PrimitiveKind
	A       math.Vec3
	B       math.Vec3
	RadiusA float32
	RadiusB float32
	// Radii holds ellipsoid semi-axes; unused for segment primitives.
	Radii math.Vec3
	// Blend in [0, 1]. Zero unions sharply.
	Blend float32
}

// distanceDispatch maps each primitive kind to its distance function.
// Adding a kind means adding exactly one entry here.
var distanceDispatch = map[PrimitiveKind]func(*Primitive, math.Vec3) float32{
	PrimitiveCapsule:   capsuleDistance,
	PrimitiveRoundCone: roundConeDistance,
	PrimitiveEllipsoid: ellipsoidDistance,
}

// Distance returns the signed distance from pt to the primitive surface;
// negative inside.
func (p *Primitive) Distance(pt math.Vec3) float32 {
	return distanceDispatch[p.Kind](p, pt)
}

func capsuleDistance(p *Primitive, pt math.Vec3) float32 {
	return math.PointSegmentDistance(pt, p.A, p.B) - p.RadiusA
}

func roundConeDistance(p *Primitive, pt math.Vec3) float32 {
	closest, t := math.ClosestPointOnSegment(pt, p.A, p.B)
	r := math.Lerp(p.RadiusA, p.RadiusB, t)
	return pt.Distance(closest) - r
}

// ellipsoidDistance uses the common bound-improving approximation; exact
// ellipsoid distance has no closed form.
func ellipsoidDistance(p *Primitive, pt math.Vec3) float32 {
	r := p.Radii
	if r.X < math.K_FLOAT_EPSILON || r.Y < math.K_FLOAT_EPSILON || r.Z < math.K_FLOAT_EPSILON {
		return pt.Distance(p.A)
	}
	local := pt.Sub(p.A)
	k0 := math.NewVec3(local.X/r.X, local.Y/r.Y, local.Z/r.Z).Length()
	k1 := math.NewVec3(local.X/(r.X*r.X), local.Y/(r.Y*r.Y), local.Z/(r.Z*r.Z)).Length()
	if k1 < math.K_FLOAT_EPSILON {
		return -math32.Min(r.X, math32.Min(r.Y, r.Z))
	}
	return k0 * (k0 - 1.0) / k1
}

// MinRadius returns the smallest surface radius of the primitive, used
// for Nyquist-style grid sizing.
func (p *Primitive) MinRadius() float32 {
	switch p.Kind {
	case PrimitiveEllipsoid:
		return math32.Min(p.Radii.X, math32.Min(p.Radii.Y, p.Radii.Z))
	case PrimitiveRoundCone:
		return math32.Min(p.RadiusA, p.RadiusB)
	default:
		return p.RadiusA
	}
}

// Extents returns a conservative bounding box of the primitive.
func (p *Primitive) Extents() math.Extents3D {
	var pad math.Vec3
	switch p.Kind {
	case PrimitiveEllipsoid:
		pad = p.Radii
	default:
		r := math32.Max(p.RadiusA, p.RadiusB)
		pad = math.NewVec3(r, r, r)
	}
	e := math.Extents3D{Min: p.A, Max: p.A}
	e = math.ExtentsUnion(e, math.Extents3D{Min: p.B, Max: p.B})
	return math.Extents3D{Min: e.Min.Sub(pad), Max: e.Max.Add(pad)}
}
