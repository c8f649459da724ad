package skeleton

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/morphogen/engine/core"
	"github.com/spaghettifunk/morphogen/engine/field"
	"github.com/spaghettifunk/morphogen/engine/genome"
	"github.com/spaghettifunk/morphogen/engine/math"
)

// Params holds the tunable constants of the skeleton stage. The size
// thresholds must match the field stage so bones exist exactly where
// geometry exists.
type Params struct {
	// MaxBones is the hard cap on total bone count.
	MaxBones int
	// TailMinLength below which no tail bone is generated.
	TailMinLength float32
	// HeadMinSize below which no head bone is generated.
	HeadMinSize float32
}

// DefaultParams returns the recommended skeleton tuning.
func DefaultParams() Params {
	return Params{
		MaxBones:      256,
		TailMinLength: 0.1,
		HeadMinSize:   0.05,
	}
}

// Synthesize builds the bone tree matching the descriptor's body segments
// plus one linear chain per appendage instance. Returns the skeleton and
// the number of appendage chains pruned by the bone cap. The result is
// always valid: connected, acyclic, parents preceding children.
func Synthesize(d *genome.MorphologyDescriptor, instances []field.AppendageInstance, p Params) (Skeleton, int) {
	spine := field.BuildSpine(d)
	s := Skeleton{}

	// One spine bone per body segment, minimum one, translated to each
	// segment's center along the spine axis.
	n := d.SegmentCount
	if n < 1 {
		n = 1
	}
	prevCenter := math.NewVec3Zero()
	for i := 0; i < n; i++ {
		center, radius := spine.SegmentCenter(i, n)
		b := Bone{
			Parent: i - 1,
			Rest:   math.NewTransform(),
			Length: d.Length / float32(n),
			Radius: radius,
			Tag:    TagSpine,
			Side:   SideCenter,
		}
		if i == 0 {
			b.Parent = RootParent
			b.Rest.Position = center
		} else {
			b.Rest.Position = center.Sub(prevCenter)
		}
		prevCenter = center
		s.Bones = append(s.Bones, b)
	}

	attachHeadBone(&s, spine, d, p, n)
	attachTailBone(&s, spine, d, p)

	// Prune lowest-priority chains if the cap would be exceeded, using
	// the same policy as appendage capping.
	kept, pruned := capChains(instances, len(s.Bones), p.MaxBones)
	if pruned > 0 {
		core.LogDebug("skeleton: pruned %d appendage chains to stay under %d bones", pruned, p.MaxBones)
	}

	for i := range kept {
		appendChain(&s, spine, d, &kept[i])
	}

	return s, pruned
}

func attachHeadBone(s *Skeleton, spine *field.Spine, d *genome.MorphologyDescriptor, p Params, spineBones int) {
	if d.HeadSize < p.HeadMinSize {
		return
	}
	tip, radius := spine.Sample(1.0)
	last := spineBones - 1
	lastCenter, _ := spine.SegmentCenter(last, spineBones)
	s.Bones = append(s.Bones, Bone{
		Parent: last,
		Rest: math.Transform{
			Position: tip.Sub(lastCenter),
			Rotation: math.NewQuatIdentity(),
			Scale:    math.NewVec3One(),
		},
		Length: radius * (0.6 + 0.6*d.HeadSize),
		Radius: radius,
		Tag:    TagSpine,
		Side:   SideCenter,
	})
}

func attachTailBone(s *Skeleton, spine *field.Spine, d *genome.MorphologyDescriptor, p Params) {
	if d.TailLength < p.TailMinLength {
		return
	}
	base, radius := spine.Sample(0.0)
	rootCenter := s.Bones[0].Rest.Position
	s.Bones = append(s.Bones, Bone{
		Parent: 0,
		Rest: math.Transform{
			Position: base.Sub(rootCenter),
			// Tail grows backward along -Z.
			Rotation: math.NewQuatFromAxisAngle(math.NewVec3Up(), math.K_PI),
			Scale:    math.NewVec3One(),
		},
		Length: d.TailLength,
		Radius: radius * 0.7,
		Tag:    TagSpine,
		Side:   SideCenter,
	})
}

// capChains keeps as many chains as fit under the bone cap, dropping
// the lowest priority instances first, deterministically.
func capChains(instances []field.AppendageInstance, baseBones, maxBones int) ([]field.AppendageInstance, int) {
	total := baseBones
	for i := range instances {
		total += instances[i].SegmentCount
	}
	if maxBones <= 0 || total <= maxBones {
		return instances, 0
	}

	order := make([]int, len(instances))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return instances[order[a]].Priority > instances[order[b]].Priority
	})

	keep := make(map[int]bool, len(instances))
	budget := maxBones - baseBones
	for _, idx := range order {
		if instances[idx].SegmentCount <= budget {
			keep[idx] = true
			budget -= instances[idx].SegmentCount
		}
	}

	kept := make([]field.AppendageInstance, 0, len(keep))
	for i := range instances {
		if keep[i] {
			kept = append(kept, instances[i])
		}
	}
	return kept, len(instances) - len(kept)
}

// appendChain adds one linear bone chain for the appendage instance,
// rooted at the nearest spine bone by attach-point arclength. Mirrored
// instances produce structurally identical chains with mirrored rest
// transforms.
func appendChain(s *Skeleton, spine *field.Spine, d *genome.MorphologyDescriptor, inst *field.AppendageInstance) {
	rootBone := field.SegmentIndex(inst.AttachT, d.SegmentCount)
	rootCenter, _ := spine.SegmentCenter(rootBone, d.SegmentCount)

	segLen := inst.SegmentLength()
	side := chainSide(d, inst)

	for i := 0; i < inst.SegmentCount; i++ {
		b := Bone{
			Length: segLen,
			Radius: inst.RadiusProfile[i],
			Tag:    TagLimb,
			Side:   side,
		}
		if i == 0 {
			b.Parent = rootBone
			b.Tag = TagAppendageRoot
			b.Rest = math.Transform{
				Position: inst.Root.Sub(rootCenter),
				Rotation: math.NewQuatLookAlong(inst.Direction),
				Scale:    math.NewVec3One(),
			}
		} else {
			b.Parent = len(s.Bones) - 1
			b.Rest = math.Transform{
				Position: math.NewVec3(0, 0, segLen),
				Rotation: math.NewQuatIdentity(),
				Scale:    math.NewVec3One(),
			}
		}
		s.Bones = append(s.Bones, b)
	}
}

func chainSide(d *genome.MorphologyDescriptor, inst *field.AppendageInstance) BoneSide {
	if d.Symmetry == genome.SymmetryRadial {
		return SideCenter
	}
	// Mirror pairs are tagged by derivation, not by direction: a zero
	// spread puts both halves' directions on the symmetry plane.
	if inst.Paired {
		if inst.Mirrored {
			return SideLeft
		}
		return SideRight
	}
	if math32.Abs(inst.Direction.X) < math.K_FLOAT_EPSILON {
		return SideCenter
	}
	if inst.Direction.X < 0 {
		return SideLeft
	}
	return SideRight
}
