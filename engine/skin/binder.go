package skin

import (
	"sort"

	"github.com/spaghettifunk/morphogen/engine/extract"
	"github.com/spaghettifunk/morphogen/engine/math"
	"github.com/spaghettifunk/morphogen/engine/skeleton"
)

// BoneWeight is one bone influence on a vertex.
type BoneWeight struct {
	Bone   uint16
	Weight float32
}

// SkinBinding holds up to K bone influences per vertex. Weights per
// vertex always sum to 1.
type SkinBinding struct {
	Influences [][]BoneWeight
	// MaxInfluences is the K this binding was built with.
	MaxInfluences int
}

// Params holds the tunable constants of the skinning stage. K and the
// smoothing iteration count are tunable; see DefaultParams for the
// recommended values.
type Params struct {
	// MaxInfluences is K, the bone influence cap per vertex.
	MaxInfluences int
	// SmoothingIterations is the number of Laplacian passes (1-2).
	SmoothingIterations int
	// SpineBias boosts spine-bone weights near appendage roots to avoid
	// joint tearing.
	SpineBias float32
	// DistanceEpsilon avoids division by zero on surface-touching bones.
	DistanceEpsilon float32
}

// DefaultParams returns the recommended skinning tuning.
func DefaultParams() Params {
	return Params{
		MaxInfluences:       4,
		SmoothingIterations: 2,
		SpineBias:           0.15,
		DistanceEpsilon:     1.0e-3,
	}
}

// Bind assigns per-vertex bone weights from geometric proximity to the
// bone segments, normalized to sum 1 and smoothed over mesh topology.
// Fully deterministic: no randomness anywhere.
func Bind(mesh *extract.RawMesh, skel *skeleton.Skeleton, p Params) SkinBinding {
	binding := SkinBinding{
		Influences:    make([][]BoneWeight, len(mesh.Vertices)),
		MaxInfluences: p.MaxInfluences,
	}
	if len(skel.Bones) == 0 || len(mesh.Vertices) == 0 {
		return binding
	}

	starts, ends := skel.WorldPositions()

	// Appendage-root bone positions, used to bias nearby spine weights.
	var rootPositions []math.Vec3
	var rootRadii []float32
	for i, b := range skel.Bones {
		if b.Tag == skeleton.TagAppendageRoot {
			rootPositions = append(rootPositions, starts[i])
			rootRadii = append(rootRadii, b.Radius*3.0)
		}
	}

	for vi := range mesh.Vertices {
		pos := mesh.Vertices[vi].Position
		binding.Influences[vi] = assignVertex(pos, skel, starts, ends, rootPositions, rootRadii, p)
	}

	for it := 0; it < p.SmoothingIterations; it++ {
		smooth(&binding, mesh, p)
	}

	return binding
}

// assignVertex finds the K nearest bone segments by point-to-segment
// distance and assigns inverse-distance weights.
func assignVertex(pos math.Vec3, skel *skeleton.Skeleton, starts, ends []math.Vec3, rootPositions []math.Vec3, rootRadii []float32, p Params) []BoneWeight {
	type candidate struct {
		bone uint16
		dist float32
	}
	candidates := make([]candidate, 0, len(skel.Bones))
	for bi := range skel.Bones {
		d := math.PointSegmentDistance(pos, starts[bi], ends[bi])
		candidates = append(candidates, candidate{bone: uint16(bi), dist: d})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].dist < candidates[b].dist
	})

	k := p.MaxInfluences
	if k > len(candidates) {
		k = len(candidates)
	}

	weights := make([]BoneWeight, 0, k)
	var sum float32
	for i := 0; i < k; i++ {
		w := 1.0 / (candidates[i].dist + p.DistanceEpsilon)

		// Spine segments near appendage roots get a small bias so the
		// body side of a joint does not tear away from the limb side.
		if skel.Bones[candidates[i].bone].Tag == skeleton.TagSpine {
			for ri := range rootPositions {
				if pos.Distance(rootPositions[ri]) < rootRadii[ri] {
					w *= 1.0 + p.SpineBias
					break
				}
			}
		}

		weights = append(weights, BoneWeight{Bone: candidates[i].bone, Weight: w})
		sum += w
	}

	for i := range weights {
		weights[i].Weight /= sum
	}
	return weights
}

// smooth runs one Laplacian pass over mesh topology, averaging each
// vertex's weights with its neighbors to remove the faceted artifacts of
// raw nearest-bone assignment.
func smooth(binding *SkinBinding, mesh *extract.RawMesh, p Params) {
	neighbors := buildAdjacency(mesh)

	smoothed := make([][]BoneWeight, len(binding.Influences))
	for vi := range binding.Influences {
		if len(neighbors[vi]) == 0 {
			smoothed[vi] = binding.Influences[vi]
			continue
		}

		// Blend half own weights, half the neighbor average.
		merged := make(map[uint16]float32, p.MaxInfluences*2)
		for _, bw := range binding.Influences[vi] {
			merged[bw.Bone] += bw.Weight * 0.5
		}
		share := 0.5 / float32(len(neighbors[vi]))
		for _, ni := range neighbors[vi] {
			for _, bw := range binding.Influences[ni] {
				merged[bw.Bone] += bw.Weight * share
			}
		}

		smoothed[vi] = topK(merged, p.MaxInfluences)
	}

	binding.Influences = smoothed
}

// topK keeps the K heaviest influences and renormalizes to sum 1.
// Iteration over the map is made deterministic by sorting on (weight,
// bone index).
func topK(merged map[uint16]float32, k int) []BoneWeight {
	weights := make([]BoneWeight, 0, len(merged))
	for bone, w := range merged {
		weights = append(weights, BoneWeight{Bone: bone, Weight: w})
	}
	sort.Slice(weights, func(a, b int) bool {
		if weights[a].Weight != weights[b].Weight {
			return weights[a].Weight > weights[b].Weight
		}
		return weights[a].Bone < weights[b].Bone
	})
	if len(weights) > k {
		weights = weights[:k]
	}

	var sum float32
	for _, bw := range weights {
		sum += bw.Weight
	}
	for i := range weights {
		weights[i].Weight /= sum
	}
	return weights
}

func buildAdjacency(mesh *extract.RawMesh) [][]uint32 {
	neighbors := make([][]uint32, len(mesh.Vertices))
	seen := make(map[uint64]bool, len(mesh.Indices))

	addEdge := func(a, b uint32) {
		key := uint64(a)<<32 | uint64(b)
		if seen[key] {
			return
		}
		seen[key] = true
		neighbors[a] = append(neighbors[a], b)
	}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a, b, c := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		addEdge(a, b)
		addEdge(b, a)
		addEdge(b, c)
		addEdge(c, b)
		addEdge(c, a)
		addEdge(a, c)
	}
	return neighbors
}
