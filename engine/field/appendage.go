package field

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/morphogen/engine/genome"
	"github.com/spaghettifunk/morphogen/engine/math"
)

// AppendageInstance records the placement of one derived appendage copy.
// Mirrored and radial copies are derived from a single canonical instance,
// never duplicated from independent genetic data, which guarantees exact
// symmetry unless an asymmetry factor perturbs the derived copy.
type AppendageInstance struct {
	Type genome.AppendageType
	// ParentSegment is the body segment the appendage attaches to. Always
	// within [0, SegmentCount).
	ParentSegment int
	// AttachT is the normalized arclength of the attach point.
	AttachT float32
	// Root is the world-space attach position on the body surface.
	Root math.Vec3
	// Direction is the world-space unit direction of the chain.
	Direction math.Vec3
	// RadiusProfile holds the per-chain-segment radii, root to tip.
	RadiusProfile []float32
	Length        float32
	SegmentCount  int
	Priority      int
	Mirrored      bool
	// Paired marks both halves of a bilateral mirror pair.
	Paired bool
	// declOrder keeps capping deterministic across equal priorities.
	declOrder int
}

// SegmentLength returns the per-bone length of the chain.
func (a *AppendageInstance) SegmentLength() float32 {
	return a.Length / float32(a.SegmentCount)
}

// directionDispatch gives each appendage type its base direction given
// the spread angle. Canonical copies grow toward +X.
var directionDispatch = map[genome.AppendageType]func(spread float32) math.Vec3{
	genome.AppendageLeg: func(spread float32) math.Vec3 {
		// Down, spreading outward.
		return math.NewVec3(math32.Sin(spread), -math32.Cos(spread), 0)
	},
	genome.AppendageWing: func(spread float32) math.Vec3 {
		// Out and up.
		return math.NewVec3(math32.Cos(spread*0.5), 0.4+0.4*math32.Sin(spread*0.5), 0)
	},
	genome.AppendageFin: func(spread float32) math.Vec3 {
		// Straight out to the side, tilted back.
		return math.NewVec3(math32.Cos(spread*0.3), 0, -0.3)
	},
	genome.AppendageTentacle: func(spread float32) math.Vec3 {
		// Forward and down.
		return math.NewVec3(math32.Sin(spread), -0.5, 0.6)
	},
}

// AttachAppendages derives all appendage instances for the descriptor,
// unions their primitives into the field and returns the instances plus
// the number of instances dropped by the cap. Exceeding the cap is never
// a hard failure; excess instances are dropped by declared priority.
func AttachAppendages(f *ScalarField, spine *Spine, d *genome.MorphologyDescriptor, p Params) ([]AppendageInstance, int) {
	candidates := make([]AppendageInstance, 0, len(d.Appendages)*2)

	for i := range d.Appendages {
		spec := &d.Appendages[i]
		if spec.Radius < p.MinAppendageSize || spec.Length < p.MinAppendageSize {
			// Zero-volume primitives cause non-manifold artifacts.
			continue
		}

		canonical := buildCanonical(spine, d, spec, len(candidates))

		switch {
		case d.Symmetry == genome.SymmetryRadial || spec.RadialCount > 1:
			n := spec.RadialCount
			if n < 2 {
				n = d.RadialArms
			}
			candidates = append(candidates, deriveRadial(canonical, n)...)
		case spec.Mirrored && d.Symmetry == genome.SymmetryBilateral:
			canonical.Paired = true
			candidates = append(candidates, canonical)
			candidates = append(candidates, deriveMirror(canonical, d.AsymmetryFactor))
		default:
			candidates = append(candidates, canonical)
		}
	}

	// Cap by declared priority, dropping lowest first. Stable on the
	// declaration order so equal priorities resolve deterministically.
	capped := 0
	if p.MaxAppendages > 0 && len(candidates) > p.MaxAppendages {
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].Priority > candidates[b].Priority
		})
		capped = len(candidates) - p.MaxAppendages
		candidates = candidates[:p.MaxAppendages]
		// Restore declaration order after the cut.
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].declOrder < candidates[b].declOrder
		})
	}

	for i := range candidates {
		unionChain(f, &candidates[i])
	}

	return candidates, capped
}

// buildCanonical resolves the gene's normalized attach point to a world
// position by resampling the spine curve.
func buildCanonical(spine *Spine, d *genome.MorphologyDescriptor, spec *genome.AppendageSpec, order int) AppendageInstance {
	spinePos, bodyRadius := spine.Sample(spec.AttachPoint)
	dir := directionDispatch[spec.Type](spec.Spread).Normalized()

	inst := AppendageInstance{
		Type:          spec.Type,
		ParentSegment: SegmentIndex(spec.AttachPoint, d.SegmentCount),
		AttachT:       spec.AttachPoint,
		Root:          spinePos.Add(dir.MulScalar(bodyRadius * 0.8)),
		Direction:     dir,
		Length:        spec.Length,
		SegmentCount:  spec.SegmentCount,
		Priority:      spec.Priority,
		declOrder:     order,
	}

	inst.RadiusProfile = make([]float32, spec.SegmentCount+1)
	for i := 0; i <= spec.SegmentCount; i++ {
		t := float32(i) / float32(spec.SegmentCount)
		// Taper toward the tip.
		inst.RadiusProfile[i] = spec.Radius * (1.0 - 0.65*t)
	}

	return inst
}

// deriveMirror reflects the canonical instance across the x=0 symmetry
// plane. A nonzero asymmetry factor shortens the mirrored copy slightly;
// at zero the pair is exactly symmetric.
func deriveMirror(canonical AppendageInstance, asymmetry float32) AppendageInstance {
	m := canonical
	m.Root = math.NewVec3(-canonical.Root.X, canonical.Root.Y, canonical.Root.Z)
	m.Direction = math.NewVec3(-canonical.Direction.X, canonical.Direction.Y, canonical.Direction.Z)
	m.Mirrored = true
	m.Length = canonical.Length * (1.0 - 0.25*asymmetry)
	m.declOrder = canonical.declOrder + 1
	if asymmetry > 0 {
		m.RadiusProfile = make([]float32, len(canonical.RadiusProfile))
		for i, r := range canonical.RadiusProfile {
			m.RadiusProfile[i] = r * (1.0 - 0.15*asymmetry)
		}
	}
	return m
}

// deriveRadial rotates the canonical instance n times at 360/n degree
// increments about the vertical axis.
func deriveRadial(canonical AppendageInstance, n int) []AppendageInstance {
	out := make([]AppendageInstance, 0, n)
	for i := 0; i < n; i++ {
		angle := float32(i) * math.K_PI_2 / float32(n)
		rot := math.NewQuatFromAxisAngle(math.NewVec3Up(), angle)
		c := canonical
		c.Root = rot.RotateVec3(canonical.Root)
		c.Direction = rot.RotateVec3(canonical.Direction)
		c.declOrder = canonical.declOrder + i
		out = append(out, c)
	}
	return out
}

// unionChain adds the instance's tapered chain primitives to the field.
func unionChain(f *ScalarField, inst *AppendageInstance) {
	segLen := inst.SegmentLength()
	pos := inst.Root
	for i := 0; i < inst.SegmentCount; i++ {
		next := pos.Add(inst.Direction.MulScalar(segLen))
		f.Add(Primitive{
			Kind:    PrimitiveRoundCone,
			A:       pos,
			B:       next,
			RadiusA: inst.RadiusProfile[i],
			RadiusB: inst.RadiusProfile[i+1],
			Blend:   0.7,
		})
		pos = next
	}
}
