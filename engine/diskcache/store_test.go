package diskcache

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/morphogen/engine/assembler"
	"github.com/spaghettifunk/morphogen/engine/math"
	"github.com/spaghettifunk/morphogen/engine/skeleton"
	"github.com/spaghettifunk/morphogen/engine/skin"
)

func sampleBundle(hash uint64, version uint32) *assembler.AssetBundle {
	return &assembler.AssetBundle{
		ID:      bundleTestID(hash),
		Hash:    hash,
		Version: version,
		LODs: []assembler.MeshBuffers{
			{
				Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				Normals:   []float32{0, 1, 0, 0, 1, 0, 0, 1, 0},
				UVs:       []float32{0, 0, 1, 0, 0, 1},
				Indices:   []uint32{0, 1, 2},
			},
		},
		Skeleton: skeleton.Skeleton{Bones: []skeleton.Bone{
			{Parent: skeleton.RootParent, Rest: math.NewTransform(), Length: 1.0, Radius: 0.3, Tag: skeleton.TagSpine, Side: skeleton.SideCenter},
		}},
		Binding: skin.SkinBinding{
			MaxInfluences: 4,
			Influences: [][]skin.BoneWeight{
				{{Bone: 0, Weight: 1.0}},
				{{Bone: 0, Weight: 1.0}},
				{{Bone: 0, Weight: 1.0}},
			},
		},
		Bounds: math.Extents3D{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	in := sampleBundle(42, 7)
	out, err := Decode(Encode(in))
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Hash, out.Hash)
	assert.Equal(t, in.Version, out.Version)
	assert.Equal(t, in.LODs, out.LODs)
	assert.Equal(t, in.Skeleton, out.Skeleton)
	assert.Equal(t, in.Binding, out.Binding)
	assert.Equal(t, in.Bounds, out.Bounds)
}

func TestCodec_IsDeterministic(t *testing.T) {
	a := Encode(sampleBundle(42, 7))
	b := Encode(sampleBundle(42, 7))
	assert.Equal(t, a, b)
}

func TestCodec_RejectsTruncatedBlob(t *testing.T) {
	blob := Encode(sampleBundle(42, 7))
	for _, cut := range []int{0, 3, len(blob) / 2, len(blob) - 1} {
		_, err := Decode(blob[:cut])
		assert.Error(t, err, "cut at %d", cut)
	}
}

func TestCodec_RejectsForeignBlob(t *testing.T) {
	_, err := Decode([]byte("definitely not a bundle blob, just some text"))
	assert.Error(t, err)
}

func TestStore_PutGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	in := sampleBundle(1001, 3)
	require.NoError(t, store.Put(in))

	out, err := store.Get(1001, 3)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.Hash, out.Hash)
	assert.Equal(t, in.LODs, out.LODs)
}

func TestStore_MissingEntryIsNil(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	out, err := store.Get(555, 1)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestStore_VersionMismatchIsMiss(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(sampleBundle(1001, 3)))
	out, err := store.Get(1001, 4)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestStore_CorruptEntryIsMissAndDropped(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	// Plant a garbage blob under a valid key.
	db, err := sql.Open("sqlite", filepath.Join(dir, "bundles.db"))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO bundles (hash, version, data) VALUES (?, ?, ?)`,
		int64(77), int64(2), []byte("garbage"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := store.Get(77, 2)
	require.NoError(t, err)
	assert.Nil(t, out, "corrupt entry must read as a miss")

	// The bad row was deleted, so a fresh Put round-trips cleanly.
	require.NoError(t, store.Put(sampleBundle(77, 2)))
	out, err = store.Get(77, 2)
	require.NoError(t, err)
	require.NotNil(t, out)
}

func TestStore_PruneDropsStaleVersions(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(sampleBundle(1, 3)))
	require.NoError(t, store.Put(sampleBundle(2, 9)))
	require.NoError(t, store.Prune(9))

	stale, err := store.Get(1, 3)
	require.NoError(t, err)
	assert.Nil(t, stale)

	current, err := store.Get(2, 9)
	require.NoError(t, err)
	assert.NotNil(t, current)
}

func bundleTestID(hash uint64) uuid.UUID {
	var id [16]byte
	for i := range id {
		id[i] = byte(hash) + byte(i)
	}
	return uuid.UUID(id)
}
