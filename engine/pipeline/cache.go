package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/morphogen/engine/assembler"
	"github.com/spaghettifunk/morphogen/engine/core"
)

// BundleRef is one refcounted cache entry. Bundles are immutable once
// published; the reference count tracks how many live individuals use the
// bundle so eviction never frees an asset still in use.
type BundleRef struct {
	Bundle *assembler.AssetBundle

	ReferenceCount atomic.Int64
	// AutoRelease evicts the entry when the count returns to zero.
	AutoRelease bool
}

// bundleCache maps descriptor hashes to published bundles. Lookups are
// lock-free reads of a published snapshot; inserts and evictions are
// serialized through a single writer lock and publish a fresh snapshot.
type bundleCache struct {
	writeMutex sync.Mutex
	snapshot   atomic.Pointer[map[uint64]*BundleRef]
}

func newBundleCache() *bundleCache {
	c := &bundleCache{}
	empty := make(map[uint64]*BundleRef)
	c.snapshot.Store(&empty)
	return c
}

// lookup returns the entry for the hash, or nil. Never blocks.
func (c *bundleCache) lookup(hash uint64) *BundleRef {
	return (*c.snapshot.Load())[hash]
}

// insert publishes a bundle under its hash. If another writer got there
// first the existing entry wins, so concurrent publishers of the same
// hash converge on one shared bundle.
func (c *bundleCache) insert(hash uint64, bundle *assembler.AssetBundle, autoRelease bool) *BundleRef {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	current := *c.snapshot.Load()
	if existing, ok := current[hash]; ok {
		return existing
	}

	ref := &BundleRef{Bundle: bundle, AutoRelease: autoRelease}
	next := make(map[uint64]*BundleRef, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[hash] = ref
	c.snapshot.Store(&next)
	return ref
}

// evict removes the entry for the hash if present.
func (c *bundleCache) evict(hash uint64) {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	current := *c.snapshot.Load()
	if _, ok := current[hash]; !ok {
		return
	}
	next := make(map[uint64]*BundleRef, len(current))
	for k, v := range current {
		if k != hash {
			next[k] = v
		}
	}
	c.snapshot.Store(&next)
	core.LogDebug("pipeline: evicted bundle %d from cache", hash)
}

// clear drops every entry, used when a tuning change invalidates all
// generated output.
func (c *bundleCache) clear() {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	empty := make(map[uint64]*BundleRef)
	c.snapshot.Store(&empty)
}

// size returns the number of cached bundles.
func (c *bundleCache) size() int {
	return len(*c.snapshot.Load())
}
