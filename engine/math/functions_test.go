package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5,0,3) = %v", got)
	}
	if got := Clamp(-1.5, 0.0, 3.0); got != 0.0 {
		t.Errorf("Clamp(-1.5,0,3) = %v", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Errorf("Clamp(2,0,3) = %v", got)
	}
}

func TestSmoothMin(t *testing.T) {
	// With zero strength it degenerates to plain min.
	if got := SmoothMin(1.0, 2.0, 0.0); got != 1.0 {
		t.Errorf("SmoothMin(1,2,0) = %v, want 1", got)
	}
	// With positive strength the blend digs below the plain min when the
	// inputs are close.
	if got := SmoothMin(1.0, 1.0, 0.5); got >= 1.0 {
		t.Errorf("SmoothMin(1,1,0.5) = %v, want < 1", got)
	}
	// Far apart inputs are unaffected.
	if got := SmoothMin(1.0, 100.0, 0.5); math32.Abs(got-1.0) > 1e-5 {
		t.Errorf("SmoothMin(1,100,0.5) = %v, want 1", got)
	}
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 4, 0).Normalized()
	if math32.Abs(v.Length()-1.0) > 1e-6 {
		t.Errorf("normalized length = %v", v.Length())
	}
	zero := NewVec3Zero().Normalized()
	if zero.Length() != 0 {
		t.Errorf("normalizing zero vector = %v, want zero", zero)
	}
}

func TestQuatLookAlong_RotatesForwardOntoDirection(t *testing.T) {
	dirs := []Vec3{
		NewVec3(1, 0, 0),
		NewVec3(0, -1, 0),
		NewVec3(0.5, 0.5, -0.7).Normalized(),
	}
	for _, dir := range dirs {
		q := NewQuatLookAlong(dir)
		got := q.RotateVec3(NewVec3(0, 0, 1))
		if got.Distance(dir) > 1e-4 {
			t.Errorf("LookAlong(%v) rotated +Z to %v", dir, got)
		}
	}
}

func TestTransformMirrorX(t *testing.T) {
	tr := Transform{
		Position: NewVec3(2, 1, 3),
		Rotation: NewQuatFromAxisAngle(NewVec3Up(), 0.5),
		Scale:    NewVec3One(),
	}
	m := tr.MirrorX()
	if m.Position.X != -2 || m.Position.Y != 1 || m.Position.Z != 3 {
		t.Errorf("mirrored position = %v", m.Position)
	}

	// Mirroring twice restores the original point mapping.
	p := NewVec3(0.3, 0.7, -0.2)
	back := m.MirrorX().Apply(p)
	orig := tr.Apply(p)
	if back.Distance(orig) > 1e-5 {
		t.Errorf("double mirror drifted: %v vs %v", back, orig)
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	a := NewVec3(0, 0, 0)
	b := NewVec3(2, 0, 0)

	pt, s := ClosestPointOnSegment(NewVec3(1, 5, 0), a, b)
	if pt.X != 1 || pt.Y != 0 || s != 0.5 {
		t.Errorf("midpoint projection = %v at t=%v", pt, s)
	}

	// Beyond the ends it clamps to the endpoints.
	pt, s = ClosestPointOnSegment(NewVec3(-3, 0, 0), a, b)
	if pt.X != 0 || s != 0 {
		t.Errorf("pre-start projection = %v at t=%v", pt, s)
	}
	pt, s = ClosestPointOnSegment(NewVec3(9, 1, 0), a, b)
	if pt.X != 2 || s != 1 {
		t.Errorf("post-end projection = %v at t=%v", pt, s)
	}
}
