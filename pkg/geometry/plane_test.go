package geometry

import (
	"math"
	"testing"
)

func TestNewPlaneFromPointNormal(t *testing.T) {
	p, err := NewPlaneFromPointNormal(Vec3{X: 0, Y: 0, Z: 5}, Vec3{Z: 2})
	if err != nil {
		t.Fatalf("NewPlaneFromPointNormal failed: %v", err)
	}

	if math.Abs(p.Normal().Norm()-1) > 1e-12 {
		t.Errorf("normal not unit length: %v", p.Normal())
	}
	if math.Abs(p.SignedDistance(Vec3{X: 3, Y: -2, Z: 5})) > 1e-12 {
		t.Errorf("point on plane has non-zero distance")
	}
	if math.Abs(p.SignedDistance(Vec3{Z: 7})-2) > 1e-12 {
		t.Errorf("expected distance 2, got %v", p.SignedDistance(Vec3{Z: 7}))
	}
}

func TestNewPlaneZeroNormal(t *testing.T) {
	if _, err := NewPlaneFromPointNormal(Vec3{}, Vec3{}); err == nil {
		t.Error("expected error for zero normal")
	}
}

func TestPlaneOriginOnPlane(t *testing.T) {
	p, err := NewPlaneFromPointNormal(Vec3{X: 1, Y: 2, Z: 3}, Vec3{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatalf("NewPlaneFromPointNormal failed: %v", err)
	}
	if d := p.SignedDistance(p.Origin()); math.Abs(d) > 1e-12 {
		t.Errorf("origin not on plane: distance %v", d)
	}
}

func TestPlaneBasisOrthonormal(t *testing.T) {
	planes := []Plane{
		mustPlane(t, Vec3{}, Vec3{Z: 1}),
		mustPlane(t, Vec3{X: 5}, Vec3{X: 1}),
		mustPlane(t, Vec3{Y: -2}, Vec3{Y: 1}),
		mustPlane(t, Vec3{X: 1, Y: 1, Z: 1}, Vec3{X: 1, Y: 2, Z: 3}),
	}

	for _, p := range planes {
		u, v := p.Basis()
		n := p.Normal()

		if math.Abs(u.Norm()-1) > 1e-12 || math.Abs(v.Norm()-1) > 1e-12 {
			t.Errorf("basis vectors not unit length: |u|=%v |v|=%v", u.Norm(), v.Norm())
		}
		if math.Abs(u.Dot(v)) > 1e-12 || math.Abs(u.Dot(n)) > 1e-12 || math.Abs(v.Dot(n)) > 1e-12 {
			t.Errorf("basis not orthogonal for plane %+v", p)
		}
		cross := u.Cross(v)
		if cross.Distance(n) > 1e-12 {
			t.Errorf("u x v != normal: got %v want %v", cross, n)
		}
	}
}

// Two annotations anchored to the same plane equation must resolve the
// same local frame, otherwise shared vertex coordinates would map to
// different 3D points.
func TestPlaneBasisDeterministic(t *testing.T) {
	p1 := mustPlane(t, Vec3{X: 3, Y: -1, Z: 2}, Vec3{X: 1, Y: 2, Z: 3})
	p2 := Plane{A: p1.A, B: p1.B, C: p1.C, D: p1.D}

	u1, v1 := p1.Basis()
	u2, v2 := p2.Basis()
	if u1 != u2 || v1 != v2 {
		t.Errorf("equal plane equations produced different bases")
	}
	if p1.Origin() != p2.Origin() {
		t.Errorf("equal plane equations produced different origins")
	}

	pt := Point2D{X: 1.25, Y: -7.5}
	if p1.PlanePoint(pt) != p2.PlanePoint(pt) {
		t.Errorf("equal plane equations mapped local point to different 3D points")
	}
}

func TestPlaneProjectRoundTrip(t *testing.T) {
	p := mustPlane(t, Vec3{X: 1, Y: 2, Z: 3}, Vec3{X: 2, Y: -1, Z: 1})

	local := Point2D{X: 4.2, Y: -1.7}
	world := p.PlanePoint(local)
	if d := p.SignedDistance(world); math.Abs(d) > 1e-12 {
		t.Fatalf("PlanePoint left the plane: distance %v", d)
	}
	back := p.ProjectPoint(world)
	if math.Abs(back.X-local.X) > 1e-12 || math.Abs(back.Y-local.Y) > 1e-12 {
		t.Errorf("round trip failed: got %+v want %+v", back, local)
	}
}

func TestPlaneProjectDropsNormalComponent(t *testing.T) {
	p := mustPlane(t, Vec3{}, Vec3{Z: 1})

	onPlane := Vec3{X: 3, Y: 4}
	offPlane := onPlane.Add(Vec3{Z: 2.5})
	if p.ProjectPoint(onPlane) != p.ProjectPoint(offPlane) {
		t.Errorf("projection should ignore the normal component")
	}
}

func TestNormalAngleFolds(t *testing.T) {
	p1 := mustPlane(t, Vec3{}, Vec3{Z: 1})
	p2 := mustPlane(t, Vec3{}, Vec3{Z: -1})

	if angle := NormalAngle(p1, p2); math.Abs(angle) > 1e-12 {
		t.Errorf("anti-parallel normals should count as parallel, got %v rad", angle)
	}

	p3 := mustPlane(t, Vec3{}, Vec3{X: 1})
	if angle := NormalAngle(p1, p3); math.Abs(angle-math.Pi/2) > 1e-12 {
		t.Errorf("expected pi/2, got %v", angle)
	}
}

func mustPlane(t *testing.T, point, normal Vec3) Plane {
	t.Helper()
	p, err := NewPlaneFromPointNormal(point, normal)
	if err != nil {
		t.Fatalf("NewPlaneFromPointNormal failed: %v", err)
	}
	return p
}
