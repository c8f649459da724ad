package genome

// Genome is the raw genetic parameter record consumed by the pipeline.
// It is owned by the genetics system and never mutated here; every field
// may carry arbitrary, possibly extreme values produced by mutation.
// Enum-like fields are plain integers on purpose: the decoder maps any
// out-of-domain value to the nearest valid variant instead of failing.
type Genome struct {
	BodyShape       int32
	Symmetry        int32
	Length          float32
	Width           float32
	Height          float32
	SegmentCount    int32
	TailLength      float32
	HeadSize        float32
	AsymmetryFactor float32
	RadialArms      int32

	Appendages []AppendageGene
	Features   []FeatureGene
}

// AppendageGene declares one canonical appendage. Bilateral plans derive
// the mirror copy from this single gene; radial plans derive rotated
// copies. The gene never stores derived instances.
type AppendageGene struct {
	Type         int32
	AttachPoint  float32 // normalized arclength along the spine [0, 1]
	Length       float32
	Radius       float32
	SegmentCount int32
	Priority     int32 // higher survives capping longer
	Spread       float32 // radians away from the body's down axis
	RadialCount  int32   // N-fold copies for radial symmetry, 0 = none
	Mirrored     bool    // derive a bilateral mirror copy
}

// FeatureGene declares one surface feature (spike, horn, crest...).
type FeatureGene struct {
	Type        int32
	AttachPoint float32
	Size        float32
	Priority    int32
	Mirrored    bool
}

// BodyShape is the closed set of body plan variants.
type BodyShape uint8

const (
	BodyShapeSpherical BodyShape = iota
	BodyShapeSegmented
	BodyShapeSerpentine
	BodyShapeRadial

	bodyShapeCount
)

func (b BodyShape) String() string {
	switch b {
	case BodyShapeSpherical:
		return "spherical"
	case BodyShapeSegmented:
		return "segmented"
	case BodyShapeSerpentine:
		return "serpentine"
	case BodyShapeRadial:
		return "radial"
	}
	return "unknown"
}

// Symmetry is the closed set of symmetry variants.
type Symmetry uint8

const (
	SymmetryBilateral Symmetry = iota
	SymmetryRadial

	symmetryCount
)

func (s Symmetry) String() string {
	switch s {
	case SymmetryBilateral:
		return "bilateral"
	case SymmetryRadial:
		return "radial"
	}
	return "unknown"
}

// AppendageType is the closed set of appendage variants.
type AppendageType uint8

const (
	AppendageLeg AppendageType = iota
	AppendageWing
	AppendageFin
	AppendageTentacle

	appendageTypeCount
)

func (a AppendageType) String() string {
	switch a {
	case AppendageLeg:
		return "leg"
	case AppendageWing:
		return "wing"
	case AppendageFin:
		return "fin"
	case AppendageTentacle:
		return "tentacle"
	}
	return "unknown"
}

// FeatureType is the closed set of surface feature variants.
type FeatureType uint8

const (
	FeatureSpike FeatureType = iota
	FeatureHorn
	FeatureCrest

	featureTypeCount
)

func (f FeatureType) String() string {
	switch f {
	case FeatureSpike:
		return "spike"
	case FeatureHorn:
		return "horn"
	case FeatureCrest:
		return "crest"
	}
	return "unknown"
}
