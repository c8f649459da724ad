package assembler

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/morphogen/engine/math"
	"github.com/spaghettifunk/morphogen/engine/skeleton"
	"github.com/spaghettifunk/morphogen/engine/skin"
)

// MeshBuffers is the flat per-LOD vertex/index data handed to rendering
// for draw submission.
type MeshBuffers struct {
	Positions []float32 // x,y,z per vertex
	Normals   []float32 // nx,ny,nz per vertex
	UVs       []float32 // u,v per vertex
	Indices   []uint32
}

// VertexCount returns the number of vertices in the buffers.
func (m *MeshBuffers) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles in the buffers.
func (m *MeshBuffers) TriangleCount() int {
	return len(m.Indices) / 3
}

// AssetBundle is one complete generated creature asset: one mesh per LOD
// tier, one skeleton, one skin binding and a bounding volume. Bundles are
// immutable once published and shared by every individual whose decoded
// morphology collapses to the same descriptor.
type AssetBundle struct {
	ID      uuid.UUID
	Hash    uint64
	Version uint32

	LODs     []MeshBuffers
	Skeleton skeleton.Skeleton
	Binding  skin.SkinBinding
	Bounds   math.Extents3D

	// EmptyMesh marks the explicit empty-mesh fallback result.
	EmptyMesh bool
	// Fallback marks a bundle generated from the substitute field after
	// a degenerate descriptor.
	Fallback bool
}
