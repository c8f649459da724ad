package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/** @brief a 4x4 matrix, typically used to represent object transformations. */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

/**
 * @brief Represents a single vertex in 3D space.
 */
type Vertex3D struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The normal of the vertex. */
	Normal Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
}

/**
 * @brief A rigid transform: translation, rotation and per-axis scale.
 * Used for bone rest poses and submesh attach transforms. There is no
 * parent pointer; parenting is expressed through index-based arenas.
 */
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3
}

// NewTransform returns an identity transform.
func NewTransform() Transform {
	return Transform{
		Position: NewVec3Zero(),
		Rotation: NewQuatIdentity(),
		Scale:    NewVec3One(),
	}
}

// ToMat4 builds the local matrix scale * rotation * translation.
func (t Transform) ToMat4() Mat4 {
	m := NewMat4Scale(t.Scale)
	m = m.Mul(t.Rotation.ToMat4())
	return m.Mul(NewMat4Translation(t.Position))
}

// Apply transforms the point p by this transform.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.Rotation.RotateVec3(p.Mul(t.Scale)).Add(t.Position)
}

// MirrorX returns the transform reflected across the x=0 plane. The
// rotation is conjugated so that a mirrored part keeps a valid orientation.
func (t Transform) MirrorX() Transform {
	return Transform{
		Position: NewVec3(-t.Position.X, t.Position.Y, t.Position.Z),
		Rotation: Quaternion{X: t.Rotation.X, Y: -t.Rotation.Y, Z: -t.Rotation.Z, W: t.Rotation.W},
		Scale:    t.Scale,
	}
}
