// Package pipeline orchestrates creature asset generation: it decodes a
// genome into a morphology descriptor, builds and extracts the implicit
// body field, synthesizes the skeleton and skin binding, assembles the
// LOD bundle and publishes it through a refcounted cache. Generation runs
// on background workers; gameplay threads only submit requests and read
// published snapshots.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/morphogen/engine/assembler"
	"github.com/spaghettifunk/morphogen/engine/config"
	"github.com/spaghettifunk/morphogen/engine/containers"
	"github.com/spaghettifunk/morphogen/engine/core"
	"github.com/spaghettifunk/morphogen/engine/diskcache"
	"github.com/spaghettifunk/morphogen/engine/extract"
	"github.com/spaghettifunk/morphogen/engine/field"
	"github.com/spaghettifunk/morphogen/engine/genome"
	"github.com/spaghettifunk/morphogen/engine/math"
	"github.com/spaghettifunk/morphogen/engine/skeleton"
	"github.com/spaghettifunk/morphogen/engine/skin"
)

// PipelineVersion changes whenever any generation stage changes its
// output for the same descriptor. It combines with the decoder version
// and the tuning hash into the bundle version, so persisted caches
// invalidate themselves when semantics move.
const PipelineVersion uint32 = 3

// bundleNamespace seeds deterministic bundle IDs. Same descriptor hash
// and version, same ID, on every machine.
var bundleNamespace = uuid.MustParse("9d2c7a64-52f1-4e83-b7c0-3f8f2a1d5e90")

// OnBundleReady is invoked on a worker goroutine once an asynchronous
// request resolves to its final bundle.
type OnBundleReady func(*assembler.AssetBundle)

type inflightRequest struct {
	callbacks []OnBundleReady
}

type pendingRequest struct {
	descriptor genome.MorphologyDescriptor
	hash       uint64
}

// stageParams holds the per-stage parameter structs derived from one
// tuning snapshot, so every stage of one generation sees consistent
// constants even while the tuning file is being hot-reloaded.
type stageParams struct {
	field     field.Params
	extract   extract.Params
	skeleton  skeleton.Params
	skin      skin.Params
	assembler assembler.Params
}

// Pipeline is the generation front end. One instance per world; all
// methods are safe for concurrent use.
type Pipeline struct {
	jobs  *jobSystem
	cache *bundleCache
	store *diskcache.Store

	paramsMutex sync.RWMutex
	params      stageParams
	version     uint32

	inflightMutex sync.Mutex
	inflight      map[uint64]*inflightRequest

	pendingMutex   sync.Mutex
	pending        *containers.RingQueue[pendingRequest]
	budgetPerSlice int

	placeholder *assembler.AssetBundle
}

// New builds a pipeline from the tuning. The disk store is optional; pass
// nil to generate purely in memory.
func New(t *config.Tuning, store *diskcache.Store) (*Pipeline, error) {
	if t == nil {
		t = config.DefaultTuning()
	}
	core.MetricsInitialize()

	jobs, err := newJobSystem(t.Workers, t.QueueSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		jobs:           jobs,
		cache:          newBundleCache(),
		store:          store,
		inflight:       make(map[uint64]*inflightRequest),
		pending:        containers.NewRingQueue[pendingRequest](t.QueueSize),
		budgetPerSlice: t.BudgetPerSlice,
	}
	p.setTuning(t)

	if store != nil {
		if err := store.Prune(p.version); err != nil {
			core.LogWarn("pipeline: disk cache prune failed: %s", err.Error())
		}
	}

	// The placeholder is the bundle handed out while a request is still
	// generating: the decoded zero genome, the smallest valid creature.
	placeholderDesc := genome.Decode(genome.Genome{})
	placeholder, err := p.generate(&placeholderDesc, placeholderDesc.Hash())
	if err != nil {
		jobs.shutdown()
		return nil, fmt.Errorf("pipeline: placeholder generation failed: %w", err)
	}
	p.placeholder = placeholder

	core.LogInfo("pipeline: initialized with %d worker(s), version %d", t.Workers, p.version)
	return p, nil
}

// Version returns the current bundle version: pipeline version, decoder
// version and tuning hash folded together.
func (p *Pipeline) Version() uint32 {
	p.paramsMutex.RLock()
	defer p.paramsMutex.RUnlock()
	return p.version
}

// Placeholder returns the shared stand-in bundle for unresolved requests.
func (p *Pipeline) Placeholder() *assembler.AssetBundle {
	return p.placeholder
}

// ApplyTuning swaps in a new tuning snapshot. The memory cache is
// dropped because any constant change invalidates every generated
// bundle; the disk cache self-invalidates through the version key.
func (p *Pipeline) ApplyTuning(t *config.Tuning) {
	p.setTuning(t)
	p.cache.clear()
	core.LogInfo("pipeline: tuning applied, cache cleared, version now %d", p.Version())
}

func (p *Pipeline) setTuning(t *config.Tuning) {
	sp := stageParams{
		field: field.Params{
			BlendStrength:    t.BlendStrength,
			TailMinLength:    t.TailMinLength,
			HeadMinSize:      t.HeadMinSize,
			MinAppendageSize: t.MinAppendageSize,
			MaxAppendages:    t.MaxAppendages,
		},
		extract:  extract.Params{IsoValue: t.IsoValue, Resolutions: extract.DefaultParams().Resolutions},
		skeleton: skeleton.Params{MaxBones: t.MaxBones, TailMinLength: t.TailMinLength, HeadMinSize: t.HeadMinSize},
		skin: skin.Params{
			MaxInfluences:       t.SkinInfluences,
			SmoothingIterations: t.SmoothingIterations,
			SpineBias:           t.SpineBias,
			DistanceEpsilon:     skin.DefaultParams().DistanceEpsilon,
		},
		assembler: assembler.DefaultParams(),
	}
	for i := 0; i < int(extract.LODCount) && i < len(t.LODResolutions); i++ {
		sp.extract.Resolutions[i] = t.LODResolutions[i]
	}
	for i := 0; i < int(extract.LODCount) && i < len(t.LODVertexBudgets); i++ {
		sp.assembler.VertexBudgets[i] = t.LODVertexBudgets[i]
	}

	p.paramsMutex.Lock()
	p.params = sp
	p.version = PipelineVersion ^ genome.DecoderVersion ^ tuningHash(t)
	p.paramsMutex.Unlock()
}

// tuningHash folds the serialized tuning into 32 bits for the version.
func tuningHash(t *config.Tuning) uint32 {
	data, err := toml.Marshal(t)
	if err != nil {
		return 0
	}
	sum := xxhash.Sum64(data)
	return uint32(sum) ^ uint32(sum>>32)
}

func (p *Pipeline) stageParams() stageParams {
	p.paramsMutex.RLock()
	defer p.paramsMutex.RUnlock()
	return p.params
}

// Generate resolves a genome to its bundle synchronously: cache hit,
// disk hit or a full generation on the calling goroutine. Two genomes
// that clamp to the same descriptor share one bundle.
func (p *Pipeline) Generate(g genome.Genome) (*assembler.AssetBundle, error) {
	d := genome.Decode(g)
	hash := d.Hash()

	if ref := p.cache.lookup(hash); ref != nil {
		core.Metrics().CacheHits.Add(1)
		return ref.Bundle, nil
	}
	core.Metrics().CacheMisses.Add(1)

	bundle, err := p.loadOrGenerate(&d, hash)
	if err != nil {
		return nil, err
	}
	return p.cache.insert(hash, bundle, false).Bundle, nil
}

// Submit requests a bundle asynchronously and returns immediately with
// either the cached bundle or the placeholder. onReady fires once the
// real bundle is published; concurrent requests for the same descriptor
// coalesce into a single generation.
func (p *Pipeline) Submit(g genome.Genome, onReady OnBundleReady) *assembler.AssetBundle {
	d := genome.Decode(g)
	hash := d.Hash()

	if ref := p.cache.lookup(hash); ref != nil {
		core.Metrics().CacheHits.Add(1)
		return ref.Bundle
	}
	core.Metrics().CacheMisses.Add(1)

	p.inflightMutex.Lock()
	if fl, ok := p.inflight[hash]; ok {
		if onReady != nil {
			fl.callbacks = append(fl.callbacks, onReady)
		}
		p.inflightMutex.Unlock()
		core.Metrics().CoalescedRequests.Add(1)
		return p.placeholder
	}
	fl := &inflightRequest{}
	if onReady != nil {
		fl.callbacks = append(fl.callbacks, onReady)
	}
	p.inflight[hash] = fl
	p.inflightMutex.Unlock()

	p.pendingMutex.Lock()
	err := p.pending.Enqueue(pendingRequest{descriptor: d, hash: hash})
	p.pendingMutex.Unlock()
	if err != nil {
		// Queue saturated; skip the slice budget and try handing the
		// request to the workers directly, still without blocking.
		req := pendingRequest{descriptor: d, hash: hash}
		if !p.jobs.trySubmit(jobTask{run: func() { p.resolve(req) }}) {
			p.inflightMutex.Lock()
			delete(p.inflight, hash)
			p.inflightMutex.Unlock()
			core.Metrics().DroppedRequests.Add(1)
			core.LogWarn("pipeline: queue and workers saturated, dropping request for bundle %d", hash)
		}
	}

	return p.placeholder
}

// Update dispatches up to the per-slice budget of pending requests to
// the workers. Call once per frame or simulation tick so generation
// load stays bounded per slice.
func (p *Pipeline) Update() {
	for i := 0; i < p.budgetPerSlice; i++ {
		p.pendingMutex.Lock()
		req, err := p.pending.Peek()
		if err != nil {
			p.pendingMutex.Unlock()
			return
		}
		r := req
		if !p.jobs.trySubmit(jobTask{run: func() { p.resolve(r) }}) {
			// Workers saturated; leave the request queued for the next
			// slice rather than stalling this one.
			p.pendingMutex.Unlock()
			return
		}
		p.pending.Dequeue()
		p.pendingMutex.Unlock()
	}
}

// resolve runs on a worker: load or generate the bundle, publish it and
// fire the coalesced callbacks.
func (p *Pipeline) resolve(req pendingRequest) {
	bundle, err := p.loadOrGenerate(&req.descriptor, req.hash)

	p.inflightMutex.Lock()
	fl := p.inflight[req.hash]
	delete(p.inflight, req.hash)
	p.inflightMutex.Unlock()

	if err != nil {
		core.LogError("pipeline: generation of bundle %d failed: %s", req.hash, err.Error())
		return
	}

	published := p.cache.insert(req.hash, bundle, false).Bundle
	if fl != nil {
		for _, cb := range fl.callbacks {
			cb(published)
		}
	}
}

// loadOrGenerate consults the disk cache before generating. Disk misses
// and corruption both fall through to generation; a fresh result is
// written back.
func (p *Pipeline) loadOrGenerate(d *genome.MorphologyDescriptor, hash uint64) (*assembler.AssetBundle, error) {
	version := p.Version()
	if p.store != nil {
		cached, err := p.store.Get(hash, version)
		if err != nil {
			core.LogWarn("pipeline: disk cache read for bundle %d failed: %s", hash, err.Error())
		} else if cached != nil {
			core.LogDebug("pipeline: bundle %d restored from disk", hash)
			return cached, nil
		}
	}

	bundle, err := p.generate(d, hash)
	if err != nil {
		return nil, err
	}

	if p.store != nil {
		if err := p.store.Put(bundle); err != nil {
			core.LogWarn("pipeline: disk cache write for bundle %d failed: %s", hash, err.Error())
		}
	}
	return bundle, nil
}

// generate runs the full stage chain for one descriptor. The only fatal
// path is an oversized extraction grid; every other bad input degrades
// to a fallback or empty bundle.
func (p *Pipeline) generate(d *genome.MorphologyDescriptor, hash uint64) (*assembler.AssetBundle, error) {
	sp := p.stageParams()
	version := p.Version()

	clock := core.Clock{}
	clock.Start()

	f, spine := field.BuildBody(d, sp.field)
	instances, cappedCount := field.AttachAppendages(f, spine, d, sp.field)
	if cappedCount > 0 {
		core.Metrics().CappedAppendages.Add(int64(cappedCount))
		core.LogDebug("pipeline: bundle %d dropped %d appendage(s) over the cap", hash, cappedCount)
	}

	fallback := false
	var features []field.FeatureInstance
	if f.IsDegenerate() {
		core.Metrics().DegenerateFields.Add(1)
		core.LogWarn("pipeline: degenerate field for bundle %d, substituting fallback body", hash)
		f = field.FallbackField(sp.field)
		instances = nil
		fallback = true
	} else {
		features = field.PlaceFeatures(spine, d, sp.field)
	}

	skel, prunedChains := skeleton.Synthesize(d, instances, sp.skeleton)
	if prunedChains > 0 {
		core.Metrics().PrunedBones.Add(int64(prunedChains))
	}

	lods := make([]assembler.MeshBuffers, extract.LODCount)
	var binding skin.SkinBinding
	var bounds math.Extents3D
	empty := true

	for lod := extract.LOD0; lod < extract.LODCount; lod++ {
		body, err := extract.Extract(f, lod, sp.extract)
		if err != nil {
			return nil, err
		}

		parts, err := p.featureParts(features, lod, sp)
		if err != nil {
			return nil, err
		}

		merged := assembler.Merge(body, parts)
		merged = assembler.Decimate(merged, sp.assembler.VertexBudgets[lod])
		assembler.GenerateUVs(&merged)

		if !merged.Empty {
			empty = false
		}
		if lod == extract.LOD0 {
			binding = skin.Bind(&merged, &skel, sp.skin)
			bounds = merged.Extents
		}
		lods[lod] = assembler.ToBuffers(&merged)
	}

	if empty {
		core.Metrics().EmptyMeshes.Add(1)
		core.LogWarn("pipeline: bundle %d extracted no surface, publishing empty mesh", hash)
	}

	clock.Stop()
	core.MetricsObserveLatency(clock.ElapsedMS())
	core.Metrics().GenerationsTotal.Add(1)

	return &assembler.AssetBundle{
		ID:        bundleID(hash, version),
		Hash:      hash,
		Version:   version,
		LODs:      lods,
		Skeleton:  skel,
		Binding:   binding,
		Bounds:    bounds,
		EmptyMesh: empty,
		Fallback:  fallback,
	}, nil
}

// featureParts extracts every discrete feature mesh at the given LOD.
// Mirrored features contribute a second submesh that the assembler
// reflects with reversed winding.
func (p *Pipeline) featureParts(features []field.FeatureInstance, lod extract.LOD, sp stageParams) ([]assembler.Submesh, error) {
	if len(features) == 0 {
		return nil, nil
	}

	// Small parts get a fraction of the LOD budget each.
	partBudget := sp.assembler.VertexBudgets[lod] / (len(features) * 4)
	if partBudget < 16 {
		partBudget = 16
	}

	parts := make([]assembler.Submesh, 0, len(features)*2)
	for i := range features {
		inst := &features[i]
		ff := field.BuildFeatureField(inst.Type, inst.Size, sp.field)
		mesh, err := extract.Extract(ff, lod, sp.extract)
		if err != nil {
			return nil, err
		}
		if mesh.Empty {
			continue
		}
		mesh = assembler.Decimate(mesh, partBudget)

		parts = append(parts, assembler.Submesh{Mesh: mesh, Transform: inst.Transform})
		if inst.Mirrored {
			parts = append(parts, assembler.Submesh{Mesh: mesh, Transform: inst.Transform, Mirrored: true})
		}
	}
	return parts, nil
}

// bundleID derives the deterministic bundle identity from the cache key.
func bundleID(hash uint64, version uint32) uuid.UUID {
	var key [12]byte
	for i := 0; i < 8; i++ {
		key[i] = byte(hash >> (8 * i))
	}
	for i := 0; i < 4; i++ {
		key[8+i] = byte(version >> (8 * i))
	}
	return uuid.NewSHA1(bundleNamespace, key[:])
}

// Acquire looks up a published bundle and takes a reference. Returns nil
// when the hash has not been generated yet.
func (p *Pipeline) Acquire(hash uint64) *assembler.AssetBundle {
	ref := p.cache.lookup(hash)
	if ref == nil {
		return nil
	}
	ref.ReferenceCount.Add(1)
	return ref.Bundle
}

// Release drops a reference taken with Acquire. Auto-release entries are
// evicted when their count returns to zero.
func (p *Pipeline) Release(hash uint64) {
	ref := p.cache.lookup(hash)
	if ref == nil {
		return
	}
	if ref.ReferenceCount.Add(-1) <= 0 && ref.AutoRelease {
		p.cache.evict(hash)
	}
}

// RequestLOD returns the mesh buffers of one LOD tier for a published
// bundle, or nil if the bundle is not cached.
func (p *Pipeline) RequestLOD(hash uint64, lod extract.LOD) *assembler.MeshBuffers {
	ref := p.cache.lookup(hash)
	if ref == nil {
		return nil
	}
	lod = math.Clamp(lod, extract.LOD0, extract.LODCount-1)
	return &ref.Bundle.LODs[lod]
}

// CachedBundles returns the number of bundles currently published.
func (p *Pipeline) CachedBundles() int {
	return p.cache.size()
}

// Shutdown drains the workers and closes the disk store.
func (p *Pipeline) Shutdown() error {
	p.jobs.shutdown()
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}
