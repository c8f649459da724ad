package field

import (
	"github.com/spaghettifunk/morphogen/engine/genome"
	"github.com/spaghettifunk/morphogen/engine/math"
)

// FeatureInstance records the placement of one discrete surface feature.
// Unlike appendages, features are not unioned into the body field; they
// are extracted as separate small meshes and merged by the assembler,
// which lets lower LOD tiers decimate them independently.
type FeatureInstance struct {
	Type genome.FeatureType
	// Transform places the feature mesh on the body surface.
	Transform math.Transform
	Size      float32
	Priority  int
	// Mirrored copies are derived by the assembler with reversed winding.
	Mirrored bool
}

// PlaceFeatures resolves every declared feature to a surface transform.
// Features below the minimum size are skipped.
func PlaceFeatures(spine *Spine, d *genome.MorphologyDescriptor, p Params) []FeatureInstance {
	out := make([]FeatureInstance, 0, len(d.Features))
	for i := range d.Features {
		spec := &d.Features[i]
		if spec.Size < p.MinAppendageSize {
			continue
		}

		spinePos, bodyRadius := spine.Sample(spec.AttachPoint)

		// Mirrored features sit off the centerline so the derived copy
		// lands on the opposite flank; centerline features stay single.
		offset := math.NewVec3(0, bodyRadius*0.9, 0)
		if spec.Mirrored {
			offset = math.NewVec3(bodyRadius*0.7, bodyRadius*0.6, 0)
		}

		out = append(out, FeatureInstance{
			Type: spec.Type,
			Transform: math.Transform{
				Position: spinePos.Add(offset),
				Rotation: math.NewQuatIdentity(),
				Scale:    math.NewVec3One(),
			},
			Size:     spec.Size,
			Priority: spec.Priority,
			Mirrored: spec.Mirrored,
		})
	}
	return out
}

// featureDispatch maps each feature type to its field builder.
var featureDispatch = map[genome.FeatureType]func(*ScalarField, float32){
	genome.FeatureSpike: buildSpikeField,
	genome.FeatureHorn:  buildHornField,
	genome.FeatureCrest: buildCrestField,
}

// BuildFeatureField returns a small local field for the feature, centered
// at the origin; the instance transform places it on the body.
func BuildFeatureField(t genome.FeatureType, size float32, p Params) *ScalarField {
	f := NewScalarField(p.BlendStrength * 0.5)
	featureDispatch[t](f, size)
	return f
}

func buildSpikeField(f *ScalarField, size float32) {
	f.Add(Primitive{
		Kind:    PrimitiveRoundCone,
		A:       math.NewVec3Zero(),
		B:       math.NewVec3(0, size, 0),
		RadiusA: size * 0.25,
		RadiusB: size * 0.03,
		Blend:   1.0,
	})
}

func buildHornField(f *ScalarField, size float32) {
	// Two stacked cones give the horn a slight curve.
	f.Add(Primitive{
		Kind:    PrimitiveRoundCone,
		A:       math.NewVec3Zero(),
		B:       math.NewVec3(0, size*0.6, size*0.15),
		RadiusA: size * 0.22,
		RadiusB: size * 0.12,
		Blend:   1.0,
	})
	f.Add(Primitive{
		Kind:    PrimitiveRoundCone,
		A:       math.NewVec3(0, size*0.6, size*0.15),
		B:       math.NewVec3(0, size, size*0.4),
		RadiusA: size * 0.12,
		RadiusB: size * 0.03,
		Blend:   1.0,
	})
}

func buildCrestField(f *ScalarField, size float32) {
	f.Add(Primitive{
		Kind:  PrimitiveEllipsoid,
		A:     math.NewVec3(0, size*0.3, 0),
		Radii: math.NewVec3(size*0.08, size*0.5, size*0.6),
		Blend: 1.0,
	})
}
