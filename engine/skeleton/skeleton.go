package skeleton

import (
	"fmt"

	"github.com/spaghettifunk/morphogen/engine/math"
)

// RootParent marks the bone with no parent.
const RootParent = -1

// BoneTag is the semantic tag of a bone.
type BoneTag uint8

const (
	TagSpine BoneTag = iota
	TagLimb
	TagAppendageRoot
	TagFeature
)

// BoneSide tags mirrored chains for later gait-phase offsetting. It is a
// tag only, never an identity string.
type BoneSide uint8

const (
	SideCenter BoneSide = iota
	SideLeft
	SideRight
)

// Bone is one entry in the skeleton arena. Parenting uses indices rather
// than pointers: cheap to serialize and free of ownership cycles.
type Bone struct {
	// Parent index into the bone array; RootParent for the root.
	// Parents always precede children in array order.
	Parent int
	// Rest is the rest-pose transform local to the parent bone.
	Rest math.Transform
	// Length of the bone segment along its local forward axis.
	Length float32
	// Radius metadata carried for skinning falloff.
	Radius float32
	Tag    BoneTag
	Side   BoneSide
}

// Skeleton is a directed tree of bones stored as a flat arena.
type Skeleton struct {
	Bones []Bone
}

// Validate checks the structural invariants: exactly one root, acyclic,
// and parents preceding children in array order (which makes a single
// forward walk a valid topological order).
func (s *Skeleton) Validate() error {
	if len(s.Bones) == 0 {
		return fmt.Errorf("skeleton has no bones")
	}
	roots := 0
	for i, b := range s.Bones {
		if b.Parent == RootParent {
			roots++
			continue
		}
		if b.Parent < 0 || b.Parent >= len(s.Bones) {
			return fmt.Errorf("bone %d parent %d out of range", i, b.Parent)
		}
		if b.Parent >= i {
			return fmt.Errorf("bone %d parent %d does not precede it", i, b.Parent)
		}
	}
	if roots != 1 {
		return fmt.Errorf("skeleton has %d roots, want exactly 1", roots)
	}
	return nil
}

// WorldPositions resolves the world-space start and end point of every
// bone segment in a single forward walk. Valid because parents precede
// children.
func (s *Skeleton) WorldPositions() ([]math.Vec3, []math.Vec3) {
	starts := make([]math.Vec3, len(s.Bones))
	ends := make([]math.Vec3, len(s.Bones))
	rotations := make([]math.Quaternion, len(s.Bones))

	for i, b := range s.Bones {
		if b.Parent == RootParent {
			starts[i] = b.Rest.Position
			rotations[i] = b.Rest.Rotation
		} else {
			pr := rotations[b.Parent]
			starts[i] = starts[b.Parent].Add(pr.RotateVec3(b.Rest.Position))
			rotations[i] = pr.Mul(b.Rest.Rotation)
		}
		ends[i] = starts[i].Add(rotations[i].RotateVec3(math.NewVec3(0, 0, b.Length)))
	}
	return starts, ends
}
