package extract

import (
	"testing"

	"github.com/spaghettifunk/morphogen/engine/field"
	"github.com/spaghettifunk/morphogen/engine/genome"
	"github.com/spaghettifunk/morphogen/engine/math"
)

func testField(t *testing.T) *field.ScalarField {
	t.Helper()
	d := genome.Decode(genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Length:       2.0,
		Width:        0.8,
		Height:       0.7,
		SegmentCount: 3,
	})
	f, _ := field.BuildBody(&d, field.DefaultParams())
	return f
}

func TestExtract_ProducesTriangles(t *testing.T) {
	mesh, err := Extract(testField(t), LOD0, DefaultParams())
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if mesh.Empty {
		t.Fatal("mesh flagged empty for a solid body")
	}
	if mesh.VertexCount() == 0 || mesh.TriangleCount() == 0 {
		t.Fatalf("mesh has %d vertices, %d triangles", mesh.VertexCount(), mesh.TriangleCount())
	}
	if len(mesh.Indices)%3 != 0 {
		t.Errorf("index count %d not a multiple of 3", len(mesh.Indices))
	}
	for _, idx := range mesh.Indices {
		if int(idx) >= mesh.VertexCount() {
			t.Fatalf("index %d out of range (%d vertices)", idx, mesh.VertexCount())
		}
	}
}

func TestExtract_WeldsSharedVertices(t *testing.T) {
	mesh, err := Extract(testField(t), LOD1, DefaultParams())
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	// A welded closed surface has far fewer vertices than 3 per triangle.
	if mesh.VertexCount() >= mesh.TriangleCount()*3 {
		t.Errorf("no welding: %d vertices for %d triangles", mesh.VertexCount(), mesh.TriangleCount())
	}
}

func TestExtract_NormalsAreUnitLength(t *testing.T) {
	mesh, err := Extract(testField(t), LOD2, DefaultParams())
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	for i, v := range mesh.Vertices {
		l := v.Normal.Length()
		if l < 0.99 || l > 1.01 {
			t.Fatalf("vertex %d normal length %v", i, l)
		}
	}
}

func TestExtract_LowerLODHasFewerVertices(t *testing.T) {
	f := testField(t)
	lod0, err := Extract(f, LOD0, DefaultParams())
	if err != nil {
		t.Fatalf("Extract(LOD0) error: %v", err)
	}
	lod2, err := Extract(f, LOD2, DefaultParams())
	if err != nil {
		t.Fatalf("Extract(LOD2) error: %v", err)
	}
	if lod2.VertexCount() >= lod0.VertexCount() {
		t.Errorf("LOD2 has %d vertices, LOD0 has %d", lod2.VertexCount(), lod0.VertexCount())
	}
}

func TestExtract_EmptyFieldYieldsEmptyMesh(t *testing.T) {
	f := field.NewScalarField(0.3)
	mesh, err := Extract(f, LOD0, DefaultParams())
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !mesh.Empty {
		t.Error("empty field did not yield the explicit empty mesh")
	}
}

func TestExtract_VerticesInsidePaddedBounds(t *testing.T) {
	f := testField(t)
	mesh, err := Extract(f, LOD0, DefaultParams())
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	bounds := math.ExtentsExpand(f.Bounds(), 0.5)
	for i, v := range mesh.Vertices {
		p := v.Position
		if p.X < bounds.Min.X || p.Y < bounds.Min.Y || p.Z < bounds.Min.Z ||
			p.X > bounds.Max.X || p.Y > bounds.Max.Y || p.Z > bounds.Max.Z {
			t.Fatalf("vertex %d at %v escapes field bounds", i, p)
		}
	}
}

func TestExtract_MirroredFieldProducesMirroredMesh(t *testing.T) {
	// With bilateral symmetry and zero asymmetry every vertex must have
	// a counterpart under x -> -x within floating-point tolerance.
	d := genome.Decode(genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       2.0,
		Width:        0.8,
		Height:       0.7,
		SegmentCount: 2,
		Appendages: []genome.AppendageGene{
			{Type: int32(genome.AppendageLeg), AttachPoint: 0.5, Length: 1.0, Radius: 0.1, SegmentCount: 3, Priority: 5, Spread: 0.6, Mirrored: true},
		},
	})
	p := field.DefaultParams()
	f, spine := field.BuildBody(&d, p)
	field.AttachAppendages(f, spine, &d, p)

	mesh, err := Extract(f, LOD2, DefaultParams())
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if mesh.Empty {
		t.Fatal("mesh flagged empty for a solid body")
	}

	const tolerance = 1e-3
	for i, v := range mesh.Vertices {
		want := math.NewVec3(-v.Position.X, v.Position.Y, v.Position.Z)
		nearest := math.K_INFINITY
		for _, other := range mesh.Vertices {
			if dist := other.Position.Distance(want); dist < nearest {
				nearest = dist
			}
		}
		if nearest > tolerance {
			t.Fatalf("vertex %d at %v has no mirror counterpart, nearest is %.5f away", i, v.Position, nearest)
		}
	}
}
