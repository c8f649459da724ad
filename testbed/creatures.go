package testbed

import "github.com/spaghettifunk/morphogen/engine/genome"

// Sample genomes exercising each body plan. Values are intentionally
// varied, some out of range, to show decoder clamping in the demo.
func SampleGenomes() map[string]genome.Genome {
	return map[string]genome.Genome{
		"quadruped":  Quadruped(),
		"serpent":    Serpent(),
		"strider":    Strider(),
		"jellyfish":  Jellyfish(),
		"degenerate": Degenerate(),
	}
}

// Quadruped is a four-legged, horned creature with a tail: one mirrored
// leg gene per girdle plus a mirrored horn feature.
func Quadruped() genome.Genome {
	return genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       2.4,
		Width:        0.9,
		Height:       0.8,
		SegmentCount: 4,
		TailLength:   0.8,
		HeadSize:     0.5,
		Appendages: []genome.AppendageGene{
			{Type: int32(genome.AppendageLeg), AttachPoint: 0.2, Length: 1.1, Radius: 0.12, SegmentCount: 3, Priority: 10, Spread: 0.3, Mirrored: true},
			{Type: int32(genome.AppendageLeg), AttachPoint: 0.8, Length: 1.0, Radius: 0.11, SegmentCount: 3, Priority: 10, Spread: 0.3, Mirrored: true},
		},
		Features: []genome.FeatureGene{
			{Type: int32(genome.FeatureHorn), AttachPoint: 0.95, Size: 0.3, Priority: 5, Mirrored: true},
		},
	}
}

// Serpent is a long, limbless, tailless body with a dorsal crest.
func Serpent() genome.Genome {
	return genome.Genome{
		BodyShape:    int32(genome.BodyShapeSerpentine),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       6.0,
		Width:        0.4,
		Height:       0.4,
		SegmentCount: 16,
		TailLength:   0.05, // below threshold, no tail
		HeadSize:     0.3,
		Features: []genome.FeatureGene{
			{Type: int32(genome.FeatureCrest), AttachPoint: 0.5, Size: 0.5, Priority: 3},
		},
	}
}

// Strider over-declares legs to demonstrate the appendage cap.
func Strider() genome.Genome {
	g := genome.Genome{
		BodyShape:    int32(genome.BodyShapeSegmented),
		Symmetry:     int32(genome.SymmetryBilateral),
		Length:       3.5,
		Width:        0.6,
		Height:       0.5,
		SegmentCount: 10,
		HeadSize:     0.2,
	}
	for i := 0; i < 20; i++ {
		g.Appendages = append(g.Appendages, genome.AppendageGene{
			Type:         int32(genome.AppendageLeg),
			AttachPoint:  float32(i) / 19.0,
			Length:       0.9,
			Radius:       0.07,
			SegmentCount: 2,
			Priority:     int32(20 - i),
			Spread:       0.4,
		})
	}
	return g
}

// Jellyfish is a radial plan with six tentacles derived from one gene.
func Jellyfish() genome.Genome {
	return genome.Genome{
		BodyShape:    int32(genome.BodyShapeRadial),
		Symmetry:     int32(genome.SymmetryRadial),
		Length:       1.2,
		Width:        1.4,
		Height:       0.9,
		SegmentCount: 1,
		RadialArms:   6,
		Appendages: []genome.AppendageGene{
			{Type: int32(genome.AppendageTentacle), AttachPoint: 0.5, Length: 1.8, Radius: 0.08, SegmentCount: 5, Priority: 8, RadialCount: 6},
		},
	}
}

// Degenerate carries wildly out-of-range values; the decoder clamps all
// of them and the pipeline still produces a renderable bundle.
func Degenerate() genome.Genome {
	return genome.Genome{
		BodyShape:    99,
		Symmetry:     -3,
		Length:       -50.0,
		Width:        1000.0,
		Height:       0.0,
		SegmentCount: -1,
		TailLength:   40.0,
		HeadSize:     -2.0,
	}
}
