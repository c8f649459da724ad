package genome

import "testing"

func TestDecode_ClampsNumericFields(t *testing.T) {
	tests := []struct {
		name  string
		g     Genome
		check func(t *testing.T, d MorphologyDescriptor)
	}{
		{
			name: "length below minimum",
			g:    Genome{Length: -50.0},
			check: func(t *testing.T, d MorphologyDescriptor) {
				if d.Length != MinBodyLength {
					t.Errorf("Length = %v, want %v", d.Length, float32(MinBodyLength))
				}
			},
		},
		{
			name: "length above maximum",
			g:    Genome{Length: 1000.0},
			check: func(t *testing.T, d MorphologyDescriptor) {
				if d.Length != MaxBodyLength {
					t.Errorf("Length = %v, want %v", d.Length, float32(MaxBodyLength))
				}
			},
		},
		{
			name: "segment count floor",
			g:    Genome{SegmentCount: -4},
			check: func(t *testing.T, d MorphologyDescriptor) {
				if d.SegmentCount != MinSegments {
					t.Errorf("SegmentCount = %d, want %d", d.SegmentCount, MinSegments)
				}
			},
		},
		{
			name: "segment count ceiling",
			g:    Genome{SegmentCount: 500},
			check: func(t *testing.T, d MorphologyDescriptor) {
				if d.SegmentCount != MaxSegments {
					t.Errorf("SegmentCount = %d, want %d", d.SegmentCount, MaxSegments)
				}
			},
		},
		{
			name: "negative tail becomes zero",
			g:    Genome{TailLength: -3.0},
			check: func(t *testing.T, d MorphologyDescriptor) {
				if d.TailLength != 0 {
					t.Errorf("TailLength = %v, want 0", d.TailLength)
				}
			},
		},
		{
			name: "asymmetry factor into unit range",
			g:    Genome{AsymmetryFactor: 7.5},
			check: func(t *testing.T, d MorphologyDescriptor) {
				if d.AsymmetryFactor != 1.0 {
					t.Errorf("AsymmetryFactor = %v, want 1", d.AsymmetryFactor)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Decode(tt.g))
		})
	}
}

func TestDecode_MapsOutOfDomainVariants(t *testing.T) {
	tests := []struct {
		name string
		g    Genome
	}{
		{"negative body shape", Genome{BodyShape: -7}},
		{"huge body shape", Genome{BodyShape: 9000}},
		{"negative symmetry", Genome{Symmetry: -1}},
		{"huge symmetry", Genome{Symmetry: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decode(tt.g)
			if d.BodyShape >= bodyShapeCount {
				t.Errorf("BodyShape %d outside closed variant set", d.BodyShape)
			}
			if d.Symmetry >= symmetryCount {
				t.Errorf("Symmetry %d outside closed variant set", d.Symmetry)
			}
		})
	}
}

func TestDecode_IsIdempotent(t *testing.T) {
	g := Genome{
		BodyShape:    99,
		Symmetry:     -3,
		Length:       -1.0,
		Width:        77.0,
		SegmentCount: 200,
		TailLength:   9.0,
		HeadSize:     -4.0,
		Appendages: []AppendageGene{
			{Type: 55, AttachPoint: 2.0, Length: -1.0, Radius: 9.0, SegmentCount: 100, Priority: 999, Mirrored: true},
		},
		Features: []FeatureGene{
			{Type: -2, AttachPoint: -0.5, Size: 8.0, Priority: -1},
		},
	}

	first := Decode(g)
	second := Decode(Regenome(first))

	if first.Hash() != second.Hash() {
		t.Errorf("re-decoding a clamped genome changed the descriptor: %d != %d", first.Hash(), second.Hash())
	}
}

func TestDecode_IsDeterministic(t *testing.T) {
	g := Genome{BodyShape: 1, Length: 3.3, Width: 0.8, SegmentCount: 5, TailLength: 0.6}
	a := Decode(g)
	b := Decode(g)
	if a.Hash() != b.Hash() {
		t.Errorf("identical genomes decoded to different descriptors: %d != %d", a.Hash(), b.Hash())
	}
}

func TestHash_SharedByConvergentGenomes(t *testing.T) {
	// Two genetically distinct genomes whose fields clamp to the same
	// descriptor must share the same cache key.
	a := Decode(Genome{Length: 50.0, Width: 2.0, SegmentCount: 3})
	b := Decode(Genome{Length: 999.0, Width: 2.0, SegmentCount: 3})
	if a.Hash() != b.Hash() {
		t.Errorf("convergent genomes got distinct hashes: %d != %d", a.Hash(), b.Hash())
	}
}

func TestHash_SensitiveToEveryField(t *testing.T) {
	base := Decode(Genome{Length: 2.0, Width: 1.0, Height: 1.0, SegmentCount: 4})

	mutated := Decode(Genome{Length: 2.0, Width: 1.0, Height: 1.0, SegmentCount: 4,
		Appendages: []AppendageGene{{Type: int32(AppendageLeg), AttachPoint: 0.5, Length: 1.0, Radius: 0.1, SegmentCount: 2, Mirrored: true}},
	})
	if base.Hash() == mutated.Hash() {
		t.Error("adding an appendage did not change the hash")
	}

	unmirrored := Decode(Genome{Length: 2.0, Width: 1.0, Height: 1.0, SegmentCount: 4,
		Appendages: []AppendageGene{{Type: int32(AppendageLeg), AttachPoint: 0.5, Length: 1.0, Radius: 0.1, SegmentCount: 2}},
	})
	if mutated.Hash() == unmirrored.Hash() {
		t.Error("mirrored flag did not change the hash")
	}
}
