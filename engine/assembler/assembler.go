package assembler

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/morphogen/engine/extract"
	"github.com/spaghettifunk/morphogen/engine/math"
)

// Params holds the tunable constants of the assembly stage.
type Params struct {
	// VertexBudgets caps the vertex count of discrete attached parts per
	// LOD tier; parts over budget are decimated.
	VertexBudgets [extract.LODCount]int
}

// DefaultParams returns the recommended assembly tuning.
func DefaultParams() Params {
	return Params{
		VertexBudgets: [extract.LODCount]int{4096, 1024, 256},
	}
}

// Submesh is one discrete part to merge into the body mesh.
type Submesh struct {
	Mesh      extract.RawMesh
	Transform math.Transform
	// Mirrored parts get reversed winding and axis-negated normals to
	// preserve correct facing.
	Mirrored bool
}

// Merge applies each part's attach transform and merges everything into
// one index/vertex buffer.
func Merge(body extract.RawMesh, parts []Submesh) extract.RawMesh {
	if body.Empty && len(parts) == 0 {
		return extract.EmptyMesh()
	}

	out := extract.RawMesh{
		Vertices: make([]math.Vertex3D, 0, len(body.Vertices)),
		Indices:  make([]uint32, 0, len(body.Indices)),
	}
	out.Vertices = append(out.Vertices, body.Vertices...)
	out.Indices = append(out.Indices, body.Indices...)

	for pi := range parts {
		appendPart(&out, &parts[pi])
	}

	out.RecalculateExtents()
	if len(out.Indices) == 0 {
		return extract.EmptyMesh()
	}
	return out
}

func appendPart(out *extract.RawMesh, part *Submesh) {
	base := uint32(len(out.Vertices))
	t := part.Transform
	if part.Mirrored {
		t = t.MirrorX()
	}

	for _, v := range part.Mesh.Vertices {
		pos := v.Position
		normal := v.Normal
		if part.Mirrored {
			pos.X = -pos.X
			normal.X = -normal.X
		}
		out.Vertices = append(out.Vertices, math.Vertex3D{
			Position: t.Apply(pos),
			Normal:   t.Rotation.RotateVec3(normal),
			Texcoord: v.Texcoord,
		})
	}

	if part.Mirrored {
		// Reverse winding so mirrored triangles still face outward.
		for i := 0; i+2 < len(part.Mesh.Indices); i += 3 {
			out.Indices = append(out.Indices,
				base+part.Mesh.Indices[i],
				base+part.Mesh.Indices[i+2],
				base+part.Mesh.Indices[i+1],
			)
		}
	} else {
		for _, idx := range part.Mesh.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
}

// Decimate reduces the mesh under the vertex budget with grid-based
// vertex clustering: deterministic skip-style decimation good enough for
// small discrete parts.
func Decimate(mesh extract.RawMesh, targetVerts int) extract.RawMesh {
	if mesh.Empty || targetVerts <= 0 || len(mesh.Vertices) <= targetVerts {
		return mesh
	}

	mesh.RecalculateExtents()
	size := math.ExtentsSize(mesh.Extents)
	maxAxis := math32.Max(size.X, math32.Max(size.Y, size.Z))
	if maxAxis <= 0 {
		return mesh
	}

	// Cluster resolution from the budget; a cube grid with ~targetVerts
	// cells occupied.
	res := int(math32.Cbrt(float32(targetVerts))) * 2
	if res < 2 {
		res = 2
	}
	cell := maxAxis / float32(res)

	type clusterKey struct{ x, y, z int32 }
	representative := make(map[clusterKey]uint32)
	remap := make([]uint32, len(mesh.Vertices))

	out := extract.RawMesh{}
	for vi, v := range mesh.Vertices {
		rel := v.Position.Sub(mesh.Extents.Min)
		key := clusterKey{
			x: int32(rel.X / cell),
			y: int32(rel.Y / cell),
			z: int32(rel.Z / cell),
		}
		if ri, ok := representative[key]; ok {
			remap[vi] = ri
			continue
		}
		ri := uint32(len(out.Vertices))
		out.Vertices = append(out.Vertices, v)
		representative[key] = ri
		remap[vi] = ri
	}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := remap[mesh.Indices[i]]
		b := remap[mesh.Indices[i+1]]
		c := remap[mesh.Indices[i+2]]
		// Drop triangles collapsed by clustering.
		if a == b || b == c || a == c {
			continue
		}
		out.Indices = append(out.Indices, a, b, c)
	}

	if len(out.Indices) == 0 {
		return extract.EmptyMesh()
	}
	out.RecalculateExtents()
	return out
}

// GenerateUVs assigns cylindrical texture coordinates: u wraps around
// the body axis, v runs along the spine. Good enough for procedural
// creature skins; rendering owns anything fancier.
func GenerateUVs(mesh *extract.RawMesh) {
	if len(mesh.Vertices) == 0 {
		return
	}
	mesh.RecalculateExtents()
	size := math.ExtentsSize(mesh.Extents)
	if size.Z < math.K_FLOAT_EPSILON {
		size.Z = 1.0
	}

	for i := range mesh.Vertices {
		p := mesh.Vertices[i].Position
		u := math32.Atan2(p.Y-math.ExtentsCenter(mesh.Extents).Y, p.X)/math.K_PI_2 + 0.5
		v := (p.Z - mesh.Extents.Min.Z) / size.Z
		mesh.Vertices[i].Texcoord = math.NewVec2(u, v)
	}
}

// ToBuffers flattens an indexed mesh into GPU-friendly buffers.
func ToBuffers(mesh *extract.RawMesh) MeshBuffers {
	buffers := MeshBuffers{
		Positions: make([]float32, 0, len(mesh.Vertices)*3),
		Normals:   make([]float32, 0, len(mesh.Vertices)*3),
		UVs:       make([]float32, 0, len(mesh.Vertices)*2),
		Indices:   make([]uint32, len(mesh.Indices)),
	}
	for _, v := range mesh.Vertices {
		buffers.Positions = append(buffers.Positions, v.Position.X, v.Position.Y, v.Position.Z)
		buffers.Normals = append(buffers.Normals, v.Normal.X, v.Normal.Y, v.Normal.Z)
		buffers.UVs = append(buffers.UVs, v.Texcoord.X, v.Texcoord.Y)
	}
	copy(buffers.Indices, mesh.Indices)
	return buffers
}
