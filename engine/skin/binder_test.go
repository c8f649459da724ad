package skin

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/morphogen/engine/extract"
	"github.com/spaghettifunk/morphogen/engine/field"
	"github.com/spaghettifunk/morphogen/engine/genome"
	"github.com/spaghettifunk/morphogen/engine/skeleton"
)

func buildCreature(t *testing.T) (extract.RawMesh, skeleton.Skeleton) {
	t.Helper()
	g := genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       2.0,
		Width:        0.8,
		Height:       0.7,
		SegmentCount: 3,
		Appendages: []genome.AppendageGene{
			{Type: int32(genome.AppendageLeg), AttachPoint: 0.3, Length: 1.0, Radius: 0.12, SegmentCount: 3, Priority: 5, Mirrored: true},
		},
	}
	d := genome.Decode(g)
	f, spine := field.BuildBody(&d, field.DefaultParams())
	instances, _ := field.AttachAppendages(f, spine, &d, field.DefaultParams())

	mesh, err := extract.Extract(f, extract.LOD1, extract.DefaultParams())
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	skel, _ := skeleton.Synthesize(&d, instances, skeleton.DefaultParams())
	return mesh, skel
}

func TestBind_WeightsSumToOne(t *testing.T) {
	mesh, skel := buildCreature(t)
	binding := Bind(&mesh, &skel, DefaultParams())

	if len(binding.Influences) != len(mesh.Vertices) {
		t.Fatalf("influence rows = %d, vertices = %d", len(binding.Influences), len(mesh.Vertices))
	}
	for vi, influences := range binding.Influences {
		if len(influences) == 0 {
			t.Fatalf("vertex %d has no influences", vi)
		}
		sum := float32(0)
		for _, bw := range influences {
			if bw.Weight < 0 {
				t.Fatalf("vertex %d has negative weight %v", vi, bw.Weight)
			}
			sum += bw.Weight
		}
		if math32.Abs(sum-1.0) > 1e-5 {
			t.Fatalf("vertex %d weight sum = %v", vi, sum)
		}
	}
}

func TestBind_RespectsInfluenceCap(t *testing.T) {
	mesh, skel := buildCreature(t)
	p := DefaultParams()
	p.MaxInfluences = 2
	binding := Bind(&mesh, &skel, p)

	for vi, influences := range binding.Influences {
		if len(influences) > p.MaxInfluences {
			t.Fatalf("vertex %d has %d influences, cap is %d", vi, len(influences), p.MaxInfluences)
		}
	}
}

func TestBind_BoneIndicesValid(t *testing.T) {
	mesh, skel := buildCreature(t)
	binding := Bind(&mesh, &skel, DefaultParams())

	for vi, influences := range binding.Influences {
		for _, bw := range influences {
			if int(bw.Bone) >= len(skel.Bones) {
				t.Fatalf("vertex %d references bone %d of %d", vi, bw.Bone, len(skel.Bones))
			}
		}
	}
}

func TestBind_IsDeterministic(t *testing.T) {
	mesh, skel := buildCreature(t)
	a := Bind(&mesh, &skel, DefaultParams())
	b := Bind(&mesh, &skel, DefaultParams())

	for vi := range a.Influences {
		if len(a.Influences[vi]) != len(b.Influences[vi]) {
			t.Fatalf("vertex %d influence counts differ", vi)
		}
		for j := range a.Influences[vi] {
			if a.Influences[vi][j] != b.Influences[vi][j] {
				t.Fatalf("vertex %d influence %d differs between runs", vi, j)
			}
		}
	}
}

func TestBind_EmptyInputs(t *testing.T) {
	empty := extract.EmptyMesh()
	var skel skeleton.Skeleton
	binding := Bind(&empty, &skel, DefaultParams())
	if len(binding.Influences) != 0 {
		t.Errorf("empty mesh produced %d influence rows", len(binding.Influences))
	}
}
