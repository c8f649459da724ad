package skeleton

import (
	"testing"

	"github.com/spaghettifunk/morphogen/engine/field"
	"github.com/spaghettifunk/morphogen/engine/genome"
)

func decodeAndAttach(t *testing.T, g genome.Genome) (genome.MorphologyDescriptor, []field.AppendageInstance) {
	t.Helper()
	d := genome.Decode(g)
	f, spine := field.BuildBody(&d, field.DefaultParams())
	instances, _ := field.AttachAppendages(f, spine, &d, field.DefaultParams())
	return d, instances
}

func TestSynthesize_QuadrupedBoneCount(t *testing.T) {
	// One body segment, one mirrored three-segment leg gene, no head or
	// tail over threshold: 1 spine bone + 2x3 limb bones = 7.
	g := genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       2.0,
		Width:        0.8,
		Height:       0.7,
		SegmentCount: 1,
		Appendages: []genome.AppendageGene{
			{Type: int32(genome.AppendageLeg), AttachPoint: 0.5, Length: 1.0, Radius: 0.1, SegmentCount: 3, Priority: 5, Mirrored: true},
		},
	}
	d, instances := decodeAndAttach(t, g)

	s, pruned := Synthesize(&d, instances, DefaultParams())
	if pruned != 0 {
		t.Fatalf("pruned = %d, want 0", pruned)
	}
	if len(s.Bones) != 7 {
		t.Fatalf("bone count = %d, want 7", len(s.Bones))
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
}

func TestSynthesize_NoTailBoneBelowThreshold(t *testing.T) {
	g := genome.Genome{
		BodyShape:    int32(genome.BodyShapeSerpentine),
		Length:       6.0,
		Width:        0.4,
		Height:       0.4,
		SegmentCount: 16,
		TailLength:   0.05,
	}
	d, instances := decodeAndAttach(t, g)

	s, _ := Synthesize(&d, instances, DefaultParams())
	if len(s.Bones) != 16 {
		t.Errorf("bone count = %d, want 16 spine bones and no tail bone", len(s.Bones))
	}
}

func TestSynthesize_TailAndHeadBones(t *testing.T) {
	g := genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Length:       2.0,
		Width:        0.8,
		Height:       0.7,
		SegmentCount: 3,
		TailLength:   0.8,
		HeadSize:     0.5,
	}
	d, instances := decodeAndAttach(t, g)

	s, _ := Synthesize(&d, instances, DefaultParams())
	if len(s.Bones) != 5 {
		t.Errorf("bone count = %d, want 3 spine + head + tail", len(s.Bones))
	}
}

func TestSynthesize_ParentsPrecedeChildren(t *testing.T) {
	g := genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       3.0,
		Width:        0.7,
		Height:       0.6,
		SegmentCount: 6,
		TailLength:   1.0,
		HeadSize:     0.4,
		Appendages: []genome.AppendageGene{
			{Type: int32(genome.AppendageLeg), AttachPoint: 0.2, Length: 1.0, Radius: 0.1, SegmentCount: 3, Priority: 5, Mirrored: true},
			{Type: int32(genome.AppendageWing), AttachPoint: 0.7, Length: 1.5, Radius: 0.08, SegmentCount: 2, Priority: 3, Mirrored: true},
		},
	}
	d, instances := decodeAndAttach(t, g)

	s, _ := Synthesize(&d, instances, DefaultParams())
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	roots := 0
	for i, b := range s.Bones {
		if b.Parent == RootParent {
			roots++
			continue
		}
		if b.Parent >= i {
			t.Fatalf("bone %d has parent %d not preceding it", i, b.Parent)
		}
	}
	if roots != 1 {
		t.Errorf("root count = %d, want 1", roots)
	}
}

func TestSynthesize_BoneCapPrunesLowestPriorityChains(t *testing.T) {
	g := genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       3.0,
		Width:        0.7,
		Height:       0.6,
		SegmentCount: 4,
	}
	for i := 0; i < 5; i++ {
		g.Appendages = append(g.Appendages, genome.AppendageGene{
			Type:         int32(genome.AppendageLeg),
			AttachPoint:  float32(i) / 4.0,
			Length:       1.0,
			Radius:       0.1,
			SegmentCount: 4,
			Priority:     int32(10 - i),
		})
	}
	d, instances := decodeAndAttach(t, g)

	p := DefaultParams()
	p.MaxBones = 12 // 4 spine bones + room for two 4-bone chains
	s, pruned := Synthesize(&d, instances, p)

	if pruned != 3 {
		t.Errorf("pruned = %d, want 3", pruned)
	}
	if len(s.Bones) > p.MaxBones {
		t.Errorf("bone count %d exceeds cap %d", len(s.Bones), p.MaxBones)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	// The surviving chains must be the highest-priority ones.
	appendageRoots := 0
	for _, b := range s.Bones {
		if b.Tag == TagAppendageRoot {
			appendageRoots++
		}
	}
	if appendageRoots != 2 {
		t.Errorf("surviving chains = %d, want 2", appendageRoots)
	}
}

func TestSynthesize_ZeroSpreadMirrorPairTaggedLeftRight(t *testing.T) {
	// With zero spread both legs point straight down, so neither chain
	// direction leaves the symmetry plane. Side tags must come from the
	// mirror derivation, not the direction.
	g := genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       2.0,
		Width:        0.8,
		Height:       0.7,
		SegmentCount: 1,
		Appendages: []genome.AppendageGene{
			{Type: int32(genome.AppendageLeg), AttachPoint: 0.5, Length: 1.0, Radius: 0.1, SegmentCount: 3, Priority: 5, Spread: 0, Mirrored: true},
		},
	}
	d, instances := decodeAndAttach(t, g)

	s, _ := Synthesize(&d, instances, DefaultParams())

	left, right, centerLimbs := 0, 0, 0
	for _, b := range s.Bones {
		if b.Tag != TagLimb && b.Tag != TagAppendageRoot {
			continue
		}
		switch b.Side {
		case SideLeft:
			left++
		case SideRight:
			right++
		default:
			centerLimbs++
		}
	}
	if left != 3 || right != 3 {
		t.Errorf("limb side split = %d left, %d right, want 3 and 3", left, right)
	}
	if centerLimbs != 0 {
		t.Errorf("%d limb bones tagged center, want 0", centerLimbs)
	}
}

func TestSynthesize_MirroredChainsAreStructurallyIdentical(t *testing.T) {
	g := genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       2.0,
		Width:        0.8,
		Height:       0.7,
		SegmentCount: 2,
		Appendages: []genome.AppendageGene{
			{Type: int32(genome.AppendageLeg), AttachPoint: 0.5, Length: 1.0, Radius: 0.1, SegmentCount: 3, Priority: 5, Mirrored: true},
		},
	}
	d, instances := decodeAndAttach(t, g)

	s, _ := Synthesize(&d, instances, DefaultParams())

	var left, right []Bone
	for _, b := range s.Bones {
		switch b.Side {
		case SideLeft:
			left = append(left, b)
		case SideRight:
			right = append(right, b)
		}
	}
	if len(left) != len(right) || len(left) == 0 {
		t.Fatalf("asymmetric chain split: %d left, %d right", len(left), len(right))
	}
	for i := range left {
		if left[i].Length != right[i].Length || left[i].Radius != right[i].Radius {
			t.Errorf("bone %d differs across the mirror: %+v vs %+v", i, left[i], right[i])
		}
		if left[i].Rest.Position.X != -right[i].Rest.Position.X {
			t.Errorf("bone %d root X not mirrored: %v vs %v", i, left[i].Rest.Position.X, right[i].Rest.Position.X)
		}
	}
}
