package genome

import (
	"github.com/spaghettifunk/morphogen/engine/math"
)

// DecoderVersion changes whenever a clamp range or enum mapping changes.
// It participates in the pipeline version so that persisted caches are
// invalidated when decoding semantics move.
const DecoderVersion uint32 = 2

// Documented clamp ranges for every numeric genome field. A genome value
// outside its range is pulled to the nearest bound, never rejected.
const (
	MinBodyLength = 0.2
	MaxBodyLength = 10.0
	MinBodyGirth  = 0.1
	MaxBodyGirth  = 5.0

	MinSegments = 1
	MaxSegments = 32

	MaxTailLength = 3.0
	MaxHeadSize   = 2.0

	MinRadialArms = 2
	MaxRadialArms = 12

	MinAppendageLength   = 0.05
	MaxAppendageLength   = 6.0
	MinAppendageRadius   = 0.01
	MaxAppendageRadius   = 1.0
	MaxAppendageSegments = 8

	MaxFeatureSize = 1.5

	MaxPriority = 255
)

// Decode validates and clamps a raw genome into an immutable
// MorphologyDescriptor. It is total and deterministic: any genome, however
// mutated, decodes to a valid descriptor, and identical genomes decode to
// identical descriptors. Re-decoding an already-clamped genome is a no-op.
func Decode(g Genome) MorphologyDescriptor {
	d := MorphologyDescriptor{
		BodyShape:       nearestVariant[BodyShape](g.BodyShape, int32(bodyShapeCount)),
		Symmetry:        nearestVariant[Symmetry](g.Symmetry, int32(symmetryCount)),
		Length:          math.Clamp(g.Length, MinBodyLength, MaxBodyLength),
		Width:           math.Clamp(g.Width, MinBodyGirth, MaxBodyGirth),
		Height:          math.Clamp(g.Height, MinBodyGirth, MaxBodyGirth),
		SegmentCount:    int(math.Clamp(g.SegmentCount, MinSegments, MaxSegments)),
		TailLength:      math.Clamp(g.TailLength, 0.0, MaxTailLength),
		HeadSize:        math.Clamp(g.HeadSize, 0.0, MaxHeadSize),
		AsymmetryFactor: math.Clamp(g.AsymmetryFactor, 0.0, 1.0),
		RadialArms:      int(math.Clamp(g.RadialArms, MinRadialArms, MaxRadialArms)),
	}

	if len(g.Appendages) > 0 {
		d.Appendages = make([]AppendageSpec, len(g.Appendages))
		for i, a := range g.Appendages {
			d.Appendages[i] = decodeAppendage(a)
		}
	}
	if len(g.Features) > 0 {
		d.Features = make([]FeatureSpec, len(g.Features))
		for i, f := range g.Features {
			d.Features[i] = decodeFeature(f)
		}
	}

	return d
}

func decodeAppendage(a AppendageGene) AppendageSpec {
	return AppendageSpec{
		Type:         nearestVariant[AppendageType](a.Type, int32(appendageTypeCount)),
		AttachPoint:  math.Clamp(a.AttachPoint, 0.0, 1.0),
		Length:       math.Clamp(a.Length, MinAppendageLength, MaxAppendageLength),
		Radius:       math.Clamp(a.Radius, MinAppendageRadius, MaxAppendageRadius),
		SegmentCount: int(math.Clamp(a.SegmentCount, 1, MaxAppendageSegments)),
		Priority:     int(math.Clamp(a.Priority, 0, MaxPriority)),
		Spread:       math.Clamp(a.Spread, 0.0, math.K_PI),
		RadialCount:  int(math.Clamp(a.RadialCount, 0, MaxRadialArms)),
		Mirrored:     a.Mirrored,
	}
}

func decodeFeature(f FeatureGene) FeatureSpec {
	return FeatureSpec{
		Type:        nearestVariant[FeatureType](f.Type, int32(featureTypeCount)),
		AttachPoint: math.Clamp(f.AttachPoint, 0.0, 1.0),
		Size:        math.Clamp(f.Size, 0.0, MaxFeatureSize),
		Priority:    int(math.Clamp(f.Priority, 0, MaxPriority)),
		Mirrored:    f.Mirrored,
	}
}

// nearestVariant maps an arbitrary integer onto the closed variant set
// [0, count). Values below the range snap to the first variant, values
// above to the last. The mapping must stay deterministic across versions
// of the decoder for reproducible evolution.
func nearestVariant[T ~uint8](raw int32, count int32) T {
	return T(math.Clamp(raw, 0, count-1))
}

// Regenome converts a descriptor back into genome form. Used by tests to
// verify decode idempotency and by tooling that wants to round-trip a
// clamped individual.
func Regenome(d MorphologyDescriptor) Genome {
	g := Genome{
		BodyShape:       int32(d.BodyShape),
		Symmetry:        int32(d.Symmetry),
		Length:          d.Length,
		Width:           d.Width,
		Height:          d.Height,
		SegmentCount:    int32(d.SegmentCount),
		TailLength:      d.TailLength,
		HeadSize:        d.HeadSize,
		AsymmetryFactor: d.AsymmetryFactor,
		RadialArms:      int32(d.RadialArms),
	}
	for _, a := range d.Appendages {
		g.Appendages = append(g.Appendages, AppendageGene{
			Type:         int32(a.Type),
			AttachPoint:  a.AttachPoint,
			Length:       a.Length,
			Radius:       a.Radius,
			SegmentCount: int32(a.SegmentCount),
			Priority:     int32(a.Priority),
			Spread:       a.Spread,
			RadialCount:  int32(a.RadialCount),
			Mirrored:     a.Mirrored,
		})
	}
	for _, f := range d.Features {
		g.Features = append(g.Features, FeatureGene{
			Type:        int32(f.Type),
			AttachPoint: f.AttachPoint,
			Size:        f.Size,
			Priority:    int32(f.Priority),
			Mirrored:    f.Mirrored,
		})
	}
	return g
}
