package assembler

import (
	"testing"

	"github.com/spaghettifunk/morphogen/engine/extract"
	"github.com/spaghettifunk/morphogen/engine/math"
)

// quad returns a tiny two-triangle mesh facing +Y.
func quad() extract.RawMesh {
	m := extract.RawMesh{
		Vertices: []math.Vertex3D{
			{Position: math.NewVec3(0.1, 0, 0), Normal: math.NewVec3Up()},
			{Position: math.NewVec3(1, 0, 0), Normal: math.NewVec3Up()},
			{Position: math.NewVec3(1, 0, 1), Normal: math.NewVec3Up()},
			{Position: math.NewVec3(0.1, 0, 1), Normal: math.NewVec3Up()},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	m.RecalculateExtents()
	return m
}

func TestMerge_AppendsPartWithOffsets(t *testing.T) {
	body := quad()
	part := quad()

	merged := Merge(body, []Submesh{{
		Mesh: part,
		Transform: math.Transform{
			Position: math.NewVec3(5, 0, 0),
			Rotation: math.NewQuatIdentity(),
			Scale:    math.NewVec3One(),
		},
	}})

	if merged.VertexCount() != 8 {
		t.Fatalf("merged vertex count = %d, want 8", merged.VertexCount())
	}
	if merged.TriangleCount() != 4 {
		t.Fatalf("merged triangle count = %d, want 4", merged.TriangleCount())
	}
	// Part indices are rebased past the body's vertices.
	for _, idx := range merged.Indices[6:] {
		if idx < 4 {
			t.Fatalf("part index %d not rebased", idx)
		}
	}
	// Part vertices carry the attach translation.
	if got := merged.Vertices[4].Position.X; got < 5.0 {
		t.Errorf("part vertex X = %v, want translated by 5", got)
	}
}

func TestMerge_MirroredPartReflectsAndReversesWinding(t *testing.T) {
	body := quad()
	part := quad()
	transform := math.Transform{
		Position: math.NewVec3(2, 0, 0),
		Rotation: math.NewQuatIdentity(),
		Scale:    math.NewVec3One(),
	}

	plain := Merge(body, []Submesh{{Mesh: part, Transform: transform}})
	mirrored := Merge(body, []Submesh{{Mesh: part, Transform: transform, Mirrored: true}})

	// Mirrored copy lands on the -X side.
	for i := 4; i < mirrored.VertexCount(); i++ {
		if mirrored.Vertices[i].Position.X >= 0 {
			t.Fatalf("mirrored vertex %d at X=%v, want negative", i, mirrored.Vertices[i].Position.X)
		}
	}

	// Winding of the part triangles is reversed relative to the plain copy.
	p := plain.Indices[6:9]
	m := mirrored.Indices[6:9]
	if p[0] != m[0] || p[1] != m[2] || p[2] != m[1] {
		t.Errorf("winding not reversed: plain %v, mirrored %v", p, m)
	}
}

func TestDecimate_RespectsBudget(t *testing.T) {
	d := buildDenseMesh()
	before := d.VertexCount()
	budget := before / 4

	out := Decimate(d, budget)
	if out.VertexCount() >= before {
		t.Fatalf("decimation did not reduce vertices: %d -> %d", before, out.VertexCount())
	}
	if out.Empty {
		t.Fatal("decimated mesh collapsed to empty")
	}
	for _, idx := range out.Indices {
		if int(idx) >= out.VertexCount() {
			t.Fatalf("index %d out of range after decimation", idx)
		}
	}
}

func TestDecimate_NoOpUnderBudget(t *testing.T) {
	m := quad()
	out := Decimate(m, 100)
	if out.VertexCount() != m.VertexCount() {
		t.Errorf("under-budget mesh was modified: %d -> %d", m.VertexCount(), out.VertexCount())
	}
}

func TestGenerateUVs_InUnitRange(t *testing.T) {
	m := buildDenseMesh()
	GenerateUVs(&m)
	for i, v := range m.Vertices {
		uv := v.Texcoord
		if uv.X < -0.01 || uv.X > 1.01 || uv.Y < -0.01 || uv.Y > 1.01 {
			t.Fatalf("vertex %d uv %v outside unit range", i, uv)
		}
	}
}

func TestToBuffers_FlattensMesh(t *testing.T) {
	m := quad()
	GenerateUVs(&m)
	buffers := ToBuffers(&m)

	if buffers.VertexCount() != m.VertexCount() {
		t.Errorf("buffer vertex count = %d, want %d", buffers.VertexCount(), m.VertexCount())
	}
	if len(buffers.Normals) != m.VertexCount()*3 {
		t.Errorf("normal buffer length = %d", len(buffers.Normals))
	}
	if len(buffers.UVs) != m.VertexCount()*2 {
		t.Errorf("uv buffer length = %d", len(buffers.UVs))
	}
	if buffers.TriangleCount() != m.TriangleCount() {
		t.Errorf("buffer triangle count = %d, want %d", buffers.TriangleCount(), m.TriangleCount())
	}
}

// buildDenseMesh builds a grid strip with plenty of vertices to decimate.
func buildDenseMesh() extract.RawMesh {
	m := extract.RawMesh{}
	const n = 20
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			m.Vertices = append(m.Vertices, math.Vertex3D{
				Position: math.NewVec3(float32(x)*0.1, 0, float32(z)*0.1),
				Normal:   math.NewVec3Up(),
			})
		}
	}
	for z := 0; z < n-1; z++ {
		for x := 0; x < n-1; x++ {
			a := uint32(z*n + x)
			b := a + 1
			c := a + uint32(n)
			d := c + 1
			m.Indices = append(m.Indices, a, b, c, b, d, c)
		}
	}
	m.RecalculateExtents()
	return m
}
