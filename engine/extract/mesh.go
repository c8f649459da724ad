package extract

import (
	"github.com/spaghettifunk/morphogen/engine/math"
)

// RawMesh is an indexed triangle mesh produced by surface extraction.
type RawMesh struct {
	Vertices []math.Vertex3D
	Indices  []uint32
	Extents  math.Extents3D
	// Empty marks the explicit empty-mesh result produced for a
	// degenerate field, distinguishable from normal output.
	Empty bool
}

// VertexCount returns the number of vertices.
func (m *RawMesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *RawMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// EmptyMesh returns the explicit empty-mesh result.
func EmptyMesh() RawMesh {
	return RawMesh{Empty: true}
}

// RecalculateExtents recomputes the mesh bounding box from its vertices.
func (m *RawMesh) RecalculateExtents() {
	if len(m.Vertices) == 0 {
		m.Extents = math.Extents3D{}
		return
	}
	e := math.Extents3D{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for i := 1; i < len(m.Vertices); i++ {
		p := m.Vertices[i].Position
		e = math.ExtentsUnion(e, math.Extents3D{Min: p, Max: p})
	}
	m.Extents = e
}
