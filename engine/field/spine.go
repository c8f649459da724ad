package field

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/morphogen/engine/genome"
	"github.com/spaghettifunk/morphogen/engine/math"
)

// spineSamples is the polyline resolution of the spine curve. High enough
// that arclength resampling error stays well below a grid cell.
const spineSamples = 64

// Spine is the arclength-parametrized body curve. t=0 is the tail end,
// t=1 the head end. Builders, the appendage attacher and the skeleton
// synthesizer all resample the same curve so attachment points, geometry
// and bones stay consistent with each other.
type Spine struct {
	points []math.Vec3
	radii  []float32
}

// BuildSpine derives the spine curve from a descriptor. Deterministic:
// the same descriptor always yields the same curve.
func BuildSpine(d *genome.MorphologyDescriptor) *Spine {
	s := &Spine{
		points: make([]math.Vec3, spineSamples),
		radii:  make([]float32, spineSamples),
	}

	halfLen := d.Length * 0.5
	baseRadius := 0.25 * (d.Width + d.Height)

	for i := 0; i < spineSamples; i++ {
		t := float32(i) / float32(spineSamples-1)
		z := math.Lerp(-halfLen, halfLen, t)

		x := float32(0.0)
		if d.BodyShape == genome.BodyShapeSerpentine {
			// Gentle lateral undulation; amplitude scales with girth so
			// thin serpents do not fold back into themselves.
			x = 0.35 * baseRadius * math32.Sin(t*math.K_PI_2*1.5)
		}

		s.points[i] = math.NewVec3(x, 0, z)
		s.radii[i] = baseRadius * radiusProfile(d, t)
	}

	return s
}

// radiusProfile shapes the body girth along the spine per body plan.
func radiusProfile(d *genome.MorphologyDescriptor, t float32) float32 {
	switch d.BodyShape {
	case genome.BodyShapeSerpentine:
		// Mostly constant, tapering toward the tail end.
		return 0.55 + 0.45*math.Smoothstep(0.0, 0.25, t)
	case genome.BodyShapeRadial:
		// Fat disc in the middle.
		return 0.5 + 0.5*math32.Sin(t*math.K_PI)
	default:
		// Segmented and spherical plans bulge in the middle and taper at
		// both ends.
		return 0.6 + 0.4*math32.Sin(t*math.K_PI)
	}
}

// Sample returns the spine position and body radius at arclength t in
// [0, 1]. Values outside the range clamp to the ends.
func (s *Spine) Sample(t float32) (math.Vec3, float32) {
	t = math.Clamp(t, 0.0, 1.0)
	f := t * float32(len(s.points)-1)
	i := int(f)
	if i >= len(s.points)-1 {
		return s.points[len(s.points)-1], s.radii[len(s.radii)-1]
	}
	frac := f - float32(i)
	pos := s.points[i].Lerp(s.points[i+1], frac)
	radius := math.Lerp(s.radii[i], s.radii[i+1], frac)
	return pos, radius
}

// SegmentCenter returns the center position and radius of body segment i
// out of n, measured at the middle of the segment's parametric span.
func (s *Spine) SegmentCenter(i, n int) (math.Vec3, float32) {
	if n < 1 {
		n = 1
	}
	t := (float32(i) + 0.5) / float32(n)
	return s.Sample(t)
}

// SegmentSpan returns the parametric span [t0, t1] of segment i of n.
func SegmentSpan(i, n int) (float32, float32) {
	if n < 1 {
		n = 1
	}
	return float32(i) / float32(n), float32(i+1) / float32(n)
}

// SegmentIndex maps an attach point t to its owning segment index so an
// attachment can never reference a non-existent segment.
func SegmentIndex(t float32, n int) int {
	if n < 1 {
		n = 1
	}
	return math.Clamp(int(t*float32(n)), 0, n-1)
}
