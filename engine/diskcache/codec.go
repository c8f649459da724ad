package diskcache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/google/uuid"

	"github.com/spaghettifunk/morphogen/engine/assembler"
	"github.com/spaghettifunk/morphogen/engine/core"
	"github.com/spaghettifunk/morphogen/engine/math"
	"github.com/spaghettifunk/morphogen/engine/skeleton"
	"github.com/spaghettifunk/morphogen/engine/skin"
)

// codecMagic guards against reading blobs written by something else.
const codecMagic uint32 = 0x4d4f5247 // "MORG"

// Encode serializes a bundle into a deterministic little-endian blob.
// Identical bundles always encode to identical bytes, which is also what
// makes byte-level determinism of the pipeline testable.
func Encode(b *assembler.AssetBundle) []byte {
	w := &writer{}

	w.u32(codecMagic)
	w.u32(b.Version)
	w.u64(b.Hash)
	w.bytes(b.ID[:])
	w.bool(b.EmptyMesh)
	w.bool(b.Fallback)
	w.vec3(b.Bounds.Min)
	w.vec3(b.Bounds.Max)

	w.u32(uint32(len(b.LODs)))
	for i := range b.LODs {
		w.f32s(b.LODs[i].Positions)
		w.f32s(b.LODs[i].Normals)
		w.f32s(b.LODs[i].UVs)
		w.u32s(b.LODs[i].Indices)
	}

	w.u32(uint32(len(b.Skeleton.Bones)))
	for _, bone := range b.Skeleton.Bones {
		w.u32(uint32(int32(bone.Parent)))
		w.vec3(bone.Rest.Position)
		w.f32(bone.Rest.Rotation.X)
		w.f32(bone.Rest.Rotation.Y)
		w.f32(bone.Rest.Rotation.Z)
		w.f32(bone.Rest.Rotation.W)
		w.vec3(bone.Rest.Scale)
		w.f32(bone.Length)
		w.f32(bone.Radius)
		w.u32(uint32(bone.Tag))
		w.u32(uint32(bone.Side))
	}

	w.u32(uint32(b.Binding.MaxInfluences))
	w.u32(uint32(len(b.Binding.Influences)))
	for _, influences := range b.Binding.Influences {
		w.u32(uint32(len(influences)))
		for _, bw := range influences {
			w.u32(uint32(bw.Bone))
			w.f32(bw.Weight)
		}
	}

	return w.buf.Bytes()
}

// Decode deserializes a bundle blob. Any structural mismatch returns an
// error so the caller can treat the entry as a cache miss.
func Decode(data []byte) (*assembler.AssetBundle, error) {
	r := &reader{data: data}

	if magic, err := r.u32(); err != nil || magic != codecMagic {
		return nil, fmt.Errorf("bundle blob magic mismatch: %w", core.ErrCacheCorrupt)
	}

	b := &assembler.AssetBundle{}
	var err error
	if b.Version, err = r.u32(); err != nil {
		return nil, err
	}
	if b.Hash, err = r.u64(); err != nil {
		return nil, err
	}
	idBytes, err := r.bytesN(16)
	if err != nil {
		return nil, err
	}
	copy(b.ID[:], idBytes)
	if _, err := uuid.FromBytes(idBytes); err != nil {
		return nil, err
	}
	if b.EmptyMesh, err = r.bool(); err != nil {
		return nil, err
	}
	if b.Fallback, err = r.bool(); err != nil {
		return nil, err
	}
	if b.Bounds.Min, err = r.vec3(); err != nil {
		return nil, err
	}
	if b.Bounds.Max, err = r.vec3(); err != nil {
		return nil, err
	}

	lodCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	b.LODs = make([]assembler.MeshBuffers, lodCount)
	for i := range b.LODs {
		if b.LODs[i].Positions, err = r.f32s(); err != nil {
			return nil, err
		}
		if b.LODs[i].Normals, err = r.f32s(); err != nil {
			return nil, err
		}
		if b.LODs[i].UVs, err = r.f32s(); err != nil {
			return nil, err
		}
		if b.LODs[i].Indices, err = r.u32s(); err != nil {
			return nil, err
		}
	}

	boneCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	b.Skeleton.Bones = make([]skeleton.Bone, boneCount)
	for i := range b.Skeleton.Bones {
		bone := &b.Skeleton.Bones[i]
		parent, err := r.u32()
		if err != nil {
			return nil, err
		}
		bone.Parent = int(int32(parent))
		if bone.Rest.Position, err = r.vec3(); err != nil {
			return nil, err
		}
		if bone.Rest.Rotation.X, err = r.f32(); err != nil {
			return nil, err
		}
		if bone.Rest.Rotation.Y, err = r.f32(); err != nil {
			return nil, err
		}
		if bone.Rest.Rotation.Z, err = r.f32(); err != nil {
			return nil, err
		}
		if bone.Rest.Rotation.W, err = r.f32(); err != nil {
			return nil, err
		}
		if bone.Rest.Scale, err = r.vec3(); err != nil {
			return nil, err
		}
		if bone.Length, err = r.f32(); err != nil {
			return nil, err
		}
		if bone.Radius, err = r.f32(); err != nil {
			return nil, err
		}
		tag, err := r.u32()
		if err != nil {
			return nil, err
		}
		bone.Tag = skeleton.BoneTag(tag)
		side, err := r.u32()
		if err != nil {
			return nil, err
		}
		bone.Side = skeleton.BoneSide(side)
	}

	maxInfluences, err := r.u32()
	if err != nil {
		return nil, err
	}
	b.Binding.MaxInfluences = int(maxInfluences)
	vertCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	b.Binding.Influences = make([][]skin.BoneWeight, vertCount)
	for i := range b.Binding.Influences {
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		if n > maxInfluences {
			return nil, fmt.Errorf("influence count %d exceeds K %d", n, maxInfluences)
		}
		influences := make([]skin.BoneWeight, n)
		for j := range influences {
			boneIdx, err := r.u32()
			if err != nil {
				return nil, err
			}
			influences[j].Bone = uint16(boneIdx)
			if influences[j].Weight, err = r.f32(); err != nil {
				return nil, err
			}
		}
		b.Binding.Influences[i] = influences
	}

	return b, nil
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) f32(v float32) {
	w.u32(gomath.Float32bits(v))
}

func (w *writer) bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *writer) bytes(b []byte) {
	w.buf.Write(b)
}

func (w *writer) vec3(v math.Vec3) {
	w.f32(v.X)
	w.f32(v.Y)
	w.f32(v.Z)
}

func (w *writer) f32s(vs []float32) {
	w.u32(uint32(len(vs)))
	for _, v := range vs {
		w.f32(v)
	}
}

func (w *writer) u32s(vs []uint32) {
	w.u32(uint32(len(vs)))
	for _, v := range vs {
		w.u32(v)
	}
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) bytesN(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, fmt.Errorf("bundle blob truncated at offset %d", r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytesN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.bytesN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return gomath.Float32frombits(v), nil
}

func (r *reader) bool() (bool, error) {
	b, err := r.bytesN(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *reader) vec3() (math.Vec3, error) {
	x, err := r.f32()
	if err != nil {
		return math.Vec3{}, err
	}
	y, err := r.f32()
	if err != nil {
		return math.Vec3{}, err
	}
	z, err := r.f32()
	if err != nil {
		return math.Vec3{}, err
	}
	return math.NewVec3(x, y, z), nil
}

func (r *reader) f32s() ([]float32, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if int(n)*4 > len(r.data)-r.off {
		return nil, fmt.Errorf("float array of %d elements exceeds blob", n)
	}
	out := make([]float32, n)
	for i := range out {
		if out[i], err = r.f32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *reader) u32s() ([]uint32, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if int(n)*4 > len(r.data)-r.off {
		return nil, fmt.Errorf("index array of %d elements exceeds blob", n)
	}
	out := make([]uint32, n)
	for i := range out {
		if out[i], err = r.u32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
