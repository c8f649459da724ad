package field

import (
	"github.com/spaghettifunk/morphogen/engine/genome"
	"github.com/spaghettifunk/morphogen/engine/math"
)

// Params holds the tunable constants of the field stage. The exact blend
// function strength and size thresholds are tunable rather than fixed;
// see DefaultParams for the recommended values.
type Params struct {
	// BlendStrength is the global smooth-union strength in [0, 1].
	BlendStrength float32
	// TailMinLength below which no tail is generated at all.
	TailMinLength float32
	// HeadMinSize below which no head is generated at all.
	HeadMinSize float32
	// MinAppendageSize below which an appendage is skipped to avoid
	// zero-volume primitives causing non-manifold artifacts.
	MinAppendageSize float32
	// MaxAppendages caps the total derived appendage instance count.
	MaxAppendages int
}

// DefaultParams returns the recommended field tuning.
func DefaultParams() Params {
	return Params{
		BlendStrength:    0.35,
		TailMinLength:    0.1,
		HeadMinSize:      0.05,
		MinAppendageSize: 0.02,
		MaxAppendages:    12,
	}
}

// bodyDispatch maps each body plan to its builder. The closed variant set
// keeps generation branches in one table instead of scattered switches.
var bodyDispatch = map[genome.BodyShape]func(*ScalarField, *Spine, *genome.MorphologyDescriptor, Params){
	genome.BodyShapeSpherical:  buildSphericalBody,
	genome.BodyShapeSegmented:  buildSegmentedBody,
	genome.BodyShapeSerpentine: buildSegmentedBody,
	genome.BodyShapeRadial:     buildRadialBody,
}

// BuildBody places torso, head and tail primitives along the spine curve
// and returns the resulting scalar field.
func BuildBody(d *genome.MorphologyDescriptor, p Params) (*ScalarField, *Spine) {
	f := NewScalarField(p.BlendStrength)
	spine := BuildSpine(d)

	if d.SegmentCount == 1 && d.BodyShape != genome.BodyShapeRadial {
		// A single segment degenerates to one ellipsoid regardless of plan.
		buildSphericalBody(f, spine, d, p)
	} else {
		bodyDispatch[d.BodyShape](f, spine, d, p)
	}

	attachHead(f, spine, d, p)
	attachTail(f, spine, d, p)

	return f, spine
}

func buildSphericalBody(f *ScalarField, _ *Spine, d *genome.MorphologyDescriptor, _ Params) {
	f.Add(Primitive{
		Kind:  PrimitiveEllipsoid,
		A:     math.NewVec3Zero(),
		Radii: math.NewVec3(d.Width*0.5, d.Height*0.5, d.Length*0.5),
		Blend: 1.0,
	})
}

func buildSegmentedBody(f *ScalarField, spine *Spine, d *genome.MorphologyDescriptor, _ Params) {
	n := d.SegmentCount
	for i := 0; i < n; i++ {
		t0, t1 := SegmentSpan(i, n)
		a, ra := spine.Sample(t0)
		b, rb := spine.Sample(t1)
		f.Add(Primitive{
			Kind:    PrimitiveRoundCone,
			A:       a,
			B:       b,
			RadiusA: ra,
			RadiusB: rb,
			Blend:   1.0,
		})
	}
}

func buildRadialBody(f *ScalarField, spine *Spine, d *genome.MorphologyDescriptor, _ Params) {
	center, radius := spine.Sample(0.5)
	f.Add(Primitive{
		Kind:  PrimitiveEllipsoid,
		A:     center,
		Radii: math.NewVec3(d.Width*0.5, d.Height*0.5, d.Width*0.5),
		Blend: 1.0,
	})

	// Replicate one base lobe at 2*pi/arms angular offsets about the
	// central (vertical) axis.
	arms := d.RadialArms
	lobeLen := d.Length * 0.5
	for i := 0; i < arms; i++ {
		angle := float32(i) * math.K_PI_2 / float32(arms)
		rot := math.NewQuatFromAxisAngle(math.NewVec3Up(), angle)
		dir := rot.RotateVec3(math.NewVec3Right())
		f.Add(Primitive{
			Kind:    PrimitiveRoundCone,
			A:       center.Add(dir.MulScalar(d.Width * 0.25)),
			B:       center.Add(dir.MulScalar(d.Width*0.25 + lobeLen)),
			RadiusA: radius * 0.6,
			RadiusB: radius * 0.2,
			Blend:   1.0,
		})
	}
}

func attachHead(f *ScalarField, spine *Spine, d *genome.MorphologyDescriptor, p Params) {
	if d.HeadSize < p.HeadMinSize {
		return
	}
	tip, radius := spine.Sample(1.0)
	headRadius := radius * (0.6 + 0.6*d.HeadSize)
	f.Add(Primitive{
		Kind:  PrimitiveEllipsoid,
		A:     tip.Add(math.NewVec3(0, 0, headRadius*0.7)),
		Radii: math.NewVec3(headRadius, headRadius*0.85, headRadius),
		Blend: 0.8,
	})
}

func attachTail(f *ScalarField, spine *Spine, d *genome.MorphologyDescriptor, p Params) {
	if d.TailLength < p.TailMinLength {
		return
	}
	base, radius := spine.Sample(0.0)
	f.Add(Primitive{
		Kind:    PrimitiveRoundCone,
		A:       base,
		B:       base.Add(math.NewVec3(0, 0, -d.TailLength)),
		RadiusA: radius * 0.7,
		RadiusB: radius * 0.1,
		Blend:   0.8,
	})
}

// FallbackField returns the minimal renderable field substituted when a
// descriptor produces a degenerate body. Worst case the user sees a
// generic blob creature, never a crash.
func FallbackField(p Params) *ScalarField {
	f := NewScalarField(p.BlendStrength)
	f.Add(Primitive{
		Kind:  PrimitiveEllipsoid,
		A:     math.NewVec3Zero(),
		Radii: math.NewVec3(0.5, 0.4, 0.6),
		Blend: 1.0,
	})
	return f
}
