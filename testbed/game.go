package testbed

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/morphogen/engine/assembler"
	"github.com/spaghettifunk/morphogen/engine/config"
	"github.com/spaghettifunk/morphogen/engine/core"
	"github.com/spaghettifunk/morphogen/engine/diskcache"
	"github.com/spaghettifunk/morphogen/engine/pipeline"
)

// Showcase drives the generation pipeline over the sample genomes the way
// a game loop would: submit asynchronously, tick the per-slice budget and
// report what came back.
type Showcase struct {
	pipeline *pipeline.Pipeline
	watcher  *config.Watcher
	store    *diskcache.Store

	resolved atomic.Int64
	expected int
}

// NewShowcase boots a pipeline from the tuning file (missing file means
// defaults) with an optional on-disk bundle cache.
func NewShowcase(tuningPath string) (*Showcase, error) {
	t, err := config.Load(tuningPath)
	if err != nil {
		return nil, err
	}

	var store *diskcache.Store
	if t.DiskCacheDir != "" {
		store, err = diskcache.NewStore(t.DiskCacheDir)
		if err != nil {
			core.LogWarn("showcase: disk cache unavailable: %s", err.Error())
			store = nil
		}
	}

	p, err := pipeline.New(t, store)
	if err != nil {
		return nil, err
	}

	s := &Showcase{pipeline: p, store: store}

	if tuningPath != "" {
		watcher, err := config.NewWatcher(tuningPath, p.ApplyTuning)
		if err != nil {
			core.LogWarn("showcase: tuning watcher unavailable: %s", err.Error())
		} else {
			s.watcher = watcher
		}
	}

	return s, nil
}

// Run submits every sample genome and ticks the pipeline until all
// bundles resolve or the deadline passes.
func (s *Showcase) Run(deadline time.Duration) error {
	genomes := SampleGenomes()
	names := make([]string, 0, len(genomes))
	for name := range genomes {
		names = append(names, name)
	}
	sort.Strings(names)
	s.expected = len(names)

	for _, name := range names {
		creature := name
		placeholder := s.pipeline.Submit(genomes[name], func(b *assembler.AssetBundle) {
			s.resolved.Add(1)
			core.LogInfo("showcase: %s ready: %d bone(s), lod0 %d vert(s), fallback=%t",
				creature, len(b.Skeleton.Bones), b.LODs[0].VertexCount(), b.Fallback)
		})
		core.LogDebug("showcase: %s submitted, placeholder %s", creature, placeholder.ID.String())
	}

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(deadline)

	for {
		select {
		case <-ticker.C:
			s.pipeline.Update()
			if int(s.resolved.Load()) >= s.expected {
				s.report()
				return nil
			}
		case <-timeout:
			core.LogWarn("showcase: deadline hit with %d/%d bundle(s) resolved", s.resolved.Load(), s.expected)
			s.report()
			return nil
		}
	}
}

func (s *Showcase) report() {
	hits, misses := core.MetricsCacheRate()
	core.LogInfo("showcase: %d bundle(s) cached, %d hit(s), %d miss(es), avg latency %.2fms",
		s.pipeline.CachedBundles(), hits, misses, core.MetricsGenerationLatency())
}

// Shutdown releases the watcher, workers and disk store.
func (s *Showcase) Shutdown() error {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			core.LogWarn("showcase: watcher close: %s", err.Error())
		}
	}
	return s.pipeline.Shutdown()
}
