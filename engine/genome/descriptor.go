package genome

import (
	"encoding/binary"
	gomath "math"

	"github.com/cespare/xxhash/v2"
)

// MorphologyDescriptor is the validated, clamped copy of the genome
// fields. It is immutable after Decode returns and owned solely by one
// generation invocation; the pipeline shares it only through its hash.
type MorphologyDescriptor struct {
	BodyShape       BodyShape
	Symmetry        Symmetry
	Length          float32
	Width           float32
	Height          float32
	SegmentCount    int
	TailLength      float32
	HeadSize        float32
	AsymmetryFactor float32
	RadialArms      int

	Appendages []AppendageSpec
	Features   []FeatureSpec
}

// AppendageSpec is the clamped counterpart of AppendageGene.
type AppendageSpec struct {
	Type         AppendageType
	AttachPoint  float32
	Length       float32
	Radius       float32
	SegmentCount int
	Priority     int
	Spread       float32
	RadialCount  int
	Mirrored     bool
}

// FeatureSpec is the clamped counterpart of FeatureGene.
type FeatureSpec struct {
	Type        FeatureType
	AttachPoint float32
	Size        float32
	Priority    int
	Mirrored    bool
}

// Hash returns a stable content hash of the descriptor, used as the asset
// cache key. Two genetically distinct genomes that clamp to the same
// descriptor share the same hash and therefore the same generated bundle.
func (d *MorphologyDescriptor) Hash() uint64 {
	h := xxhash.New()
	var buf [8]byte

	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		h.Write(buf[:4])
	}
	writeF32 := func(v float32) {
		writeU32(gomath.Float32bits(v))
	}

	writeU32(uint32(d.BodyShape))
	writeU32(uint32(d.Symmetry))
	writeF32(d.Length)
	writeF32(d.Width)
	writeF32(d.Height)
	writeU32(uint32(d.SegmentCount))
	writeF32(d.TailLength)
	writeF32(d.HeadSize)
	writeF32(d.AsymmetryFactor)
	writeU32(uint32(d.RadialArms))

	writeU32(uint32(len(d.Appendages)))
	for _, a := range d.Appendages {
		writeU32(uint32(a.Type))
		writeF32(a.AttachPoint)
		writeF32(a.Length)
		writeF32(a.Radius)
		writeU32(uint32(a.SegmentCount))
		writeU32(uint32(a.Priority))
		writeF32(a.Spread)
		writeU32(uint32(a.RadialCount))
		if a.Mirrored {
			writeU32(1)
		} else {
			writeU32(0)
		}
	}

	writeU32(uint32(len(d.Features)))
	for _, f := range d.Features {
		writeU32(uint32(f.Type))
		writeF32(f.AttachPoint)
		writeF32(f.Size)
		writeU32(uint32(f.Priority))
		if f.Mirrored {
			writeU32(1)
		} else {
			writeU32(0)
		}
	}

	return h.Sum64()
}
