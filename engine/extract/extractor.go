package extract

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/morphogen/engine/core"
	"github.com/spaghettifunk/morphogen/engine/math"
)

// LOD selects one of the enumerated extraction resolutions.
type LOD int

const (
	LOD0 LOD = iota // full resolution
	LOD1
	LOD2

	LODCount
)

// Params holds the tunable constants of the extraction stage.
type Params struct {
	// IsoValue is the level-set extracted from the field. Zero for
	// signed-distance fields.
	IsoValue float32
	// Resolutions is the cell count along the longest bounding axis for
	// each LOD tier.
	Resolutions [LODCount]int
}

// DefaultParams returns the recommended extraction tuning.
func DefaultParams() Params {
	return Params{
		IsoValue:    0.0,
		Resolutions: [LODCount]int{64, 40, 24},
	}
}

// maxGridSamples caps the sample grid allocation. Exceeding it aborts the
// single generation request rather than exhausting memory.
const maxGridSamples = 48 * 1024 * 1024

// Field is the sampled surface source. *field.ScalarField satisfies it.
type Field interface {
	Sample(math.Vec3) float32
	Gradient(pt math.Vec3, eps float32) math.Vec3
	Bounds() math.Extents3D
	MinRadius() float32
}

// Extract samples the field on a bounding grid and extracts the iso
// surface triangle mesh with gradient-derived normals. A field with no
// surface crossings yields the explicit empty-mesh result, never an
// error; only an oversized grid is an error.
func Extract(f Field, lod LOD, p Params) (RawMesh, error) {
	lod = math.Clamp(lod, LOD0, LODCount-1)
	res := p.Resolutions[lod]
	if res < 2 {
		res = 2
	}

	bounds := f.Bounds()
	size := math.ExtentsSize(bounds)
	maxAxis := math32.Max(size.X, math32.Max(size.Y, size.Z))
	if maxAxis <= 0 || !math.IsFinite(maxAxis) {
		return EmptyMesh(), nil
	}

	cell := maxAxis / float32(res)

	// Nyquist-style sampling bound: cells larger than half the smallest
	// primitive radius cannot guarantee watertight output. The genome is
	// constrained to not request features below this, so only warn.
	if minR := f.MinRadius(); cell >= 0.5*minR {
		core.LogDebug("extract: cell size %.4f exceeds half of min primitive radius %.4f at lod %d", cell, minR, lod)
	}

	// Pad by two cells so the surface never touches the grid boundary.
	bounds = math.ExtentsExpand(bounds, cell*2.0)
	// Anchor the grid so x=0 falls exactly on a sample plane. A mirror
	// symmetric field then tessellates identically on both sides.
	bounds.Min.X = -cell * math32.Ceil(-bounds.Min.X/cell)
	size = math.ExtentsSize(bounds)

	nx := int(math32.Ceil(size.X/cell)) + 1
	ny := int(math32.Ceil(size.Y/cell)) + 1
	nz := int(math32.Ceil(size.Z/cell)) + 1

	if nx*ny*nz > maxGridSamples {
		return EmptyMesh(), fmt.Errorf("extract: grid %dx%dx%d exceeds sample budget: %w", nx, ny, nz, core.ErrBudgetExceeded)
	}

	g := &grid{
		origin: bounds.Min,
		cell:   cell,
		nx:     nx, ny: ny, nz: nz,
		values: make([]float32, nx*ny*nz),
	}
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				g.values[g.index(x, y, z)] = f.Sample(g.position(x, y, z))
			}
		}
	}

	mesh := g.march(f, p.IsoValue)
	if len(mesh.Indices) == 0 {
		return EmptyMesh(), nil
	}
	mesh.RecalculateExtents()
	return mesh, nil
}

type grid struct {
	origin     math.Vec3
	cell       float32
	nx, ny, nz int
	values     []float32
}

func (g *grid) index(x, y, z int) int {
	return (z*g.ny+y)*g.nx + x
}

func (g *grid) position(x, y, z int) math.Vec3 {
	return g.origin.Add(math.NewVec3(
		float32(x)*g.cell,
		float32(y)*g.cell,
		float32(z)*g.cell,
	))
}

// edgeID canonically identifies a cube edge by its min corner and axis so
// adjacent cells share extracted vertices.
func (g *grid) edgeID(x, y, z, axis int) uint64 {
	return uint64(((z*g.ny+y)*g.nx+x)*3 + axis)
}

func (g *grid) march(f Field, iso float32) RawMesh {
	mesh := RawMesh{}
	edgeVerts := make(map[uint64]uint32)

	var cornerVal [8]float32
	var cornerPos [3][8]int

	for z := 0; z < g.nz-1; z++ {
		for y := 0; y < g.ny-1; y++ {
			for x := 0; x < g.nx-1; x++ {
				cubeIndex := 0
				for c := 0; c < 8; c++ {
					ox := x + cornerOffsets[c][0]
					oy := y + cornerOffsets[c][1]
					oz := z + cornerOffsets[c][2]
					cornerPos[0][c] = ox
					cornerPos[1][c] = oy
					cornerPos[2][c] = oz
					cornerVal[c] = g.values[g.index(ox, oy, oz)]
					if cornerVal[c] < iso {
						cubeIndex |= 1 << c
					}
				}

				if edgeTable[cubeIndex] == 0 {
					continue
				}

				var edgeIdx [12]uint32
				for e := 0; e < 12; e++ {
					if edgeTable[cubeIndex]&(1<<e) == 0 {
						continue
					}
					c0 := edgeCorners[e][0]
					c1 := edgeCorners[e][1]

					// Canonical edge key: min corner plus axis.
					ex := minInt(cornerPos[0][c0], cornerPos[0][c1])
					ey := minInt(cornerPos[1][c0], cornerPos[1][c1])
					ez := minInt(cornerPos[2][c0], cornerPos[2][c1])
					axis := 0
					if cornerPos[1][c0] != cornerPos[1][c1] {
						axis = 1
					} else if cornerPos[2][c0] != cornerPos[2][c1] {
						axis = 2
					}
					id := g.edgeID(ex, ey, ez, axis)

					if vi, ok := edgeVerts[id]; ok {
						edgeIdx[e] = vi
						continue
					}

					p0 := g.position(cornerPos[0][c0], cornerPos[1][c0], cornerPos[2][c0])
					p1 := g.position(cornerPos[0][c1], cornerPos[1][c1], cornerPos[2][c1])
					v0 := cornerVal[c0]
					v1 := cornerVal[c1]

					t := float32(0.5)
					if math32.Abs(v1-v0) > math.K_FLOAT_EPSILON {
						t = math.Clamp((iso-v0)/(v1-v0), 0.0, 1.0)
					}
					pos := p0.Lerp(p1, t)

					normal := f.Gradient(pos, g.cell*0.5).Normalized()
					if normal.LengthSquared() < 0.5 {
						// Flat gradient, pick any stable direction.
						normal = math.NewVec3Up()
					}

					vi := uint32(len(mesh.Vertices))
					mesh.Vertices = append(mesh.Vertices, math.Vertex3D{
						Position: pos,
						Normal:   normal,
					})
					edgeVerts[id] = vi
					edgeIdx[e] = vi
				}

				for t := 0; triTable[cubeIndex][t] != -1; t += 3 {
					mesh.Indices = append(mesh.Indices,
						edgeIdx[triTable[cubeIndex][t]],
						edgeIdx[triTable[cubeIndex][t+1]],
						edgeIdx[triTable[cubeIndex][t+2]],
					)
				}
			}
		}
	}

	return mesh
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
