// Package config holds the tunable constants of the generation pipeline
// as one explicit immutable configuration object. It is injected at
// pipeline construction instead of living in a global registry, so
// multiple independent pipelines (one per planet) can run concurrently
// and be unit-tested in isolation.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Tuning collects every tunable constant of the pipeline. The blend and
// skinning values are recommended ranges rather than pinned constants;
// changing any of them changes generated output, so the pipeline folds
// the tuning hash into its version for cache invalidation.
type Tuning struct {
	// Field stage.
	BlendStrength    float32 `toml:"blend_strength"`
	TailMinLength    float32 `toml:"tail_min_length"`
	HeadMinSize      float32 `toml:"head_min_size"`
	MinAppendageSize float32 `toml:"min_appendage_size"`
	MaxAppendages    int     `toml:"max_appendages"`

	// Extraction stage.
	IsoValue       float32 `toml:"iso_value"`
	LODResolutions []int   `toml:"lod_resolutions"`

	// Skeleton stage.
	MaxBones int `toml:"max_bones"`

	// Skinning stage.
	SkinInfluences      int     `toml:"skin_influences"`
	SmoothingIterations int     `toml:"smoothing_iterations"`
	SpineBias           float32 `toml:"spine_bias"`

	// Assembly stage.
	LODVertexBudgets []int `toml:"lod_vertex_budgets"`

	// Concurrency and resources.
	Workers        int    `toml:"workers"`
	QueueSize      int    `toml:"queue_size"`
	BudgetPerSlice int    `toml:"budget_per_slice"`
	DiskCacheDir   string `toml:"disk_cache_dir"`
}

// DefaultTuning returns the recommended pipeline tuning.
func DefaultTuning() *Tuning {
	return &Tuning{
		BlendStrength:    0.35,
		TailMinLength:    0.1,
		HeadMinSize:      0.05,
		MinAppendageSize: 0.02,
		MaxAppendages:    12,

		IsoValue:       0.0,
		LODResolutions: []int{64, 40, 24},

		MaxBones: 256,

		SkinInfluences:      4,
		SmoothingIterations: 2,
		SpineBias:           0.15,

		LODVertexBudgets: []int{4096, 1024, 256},

		Workers:        4,
		QueueSize:      64,
		BudgetPerSlice: 2,
	}
}

// Load reads a TOML tuning file over the defaults. A missing file is not
// an error: the defaults are returned unchanged.
func Load(path string) (*Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}
