package geometry

import (
	"fmt"
	"math"
)

// Plane represents a 3D plane as the four coefficients of
// A*x + B*y + C*z + D = 0, where (A, B, C) is a unit normal.
type Plane struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
}

// NewPlaneFromPointNormal builds the plane through point with the given
// normal. The normal need not be unit length but must be non-zero.
func NewPlaneFromPointNormal(point, normal Vec3) (Plane, error) {
	n := normal.Norm()
	if n < 1e-12 {
		return Plane{}, fmt.Errorf("plane normal is zero")
	}
	unit := normal.Scale(1 / n)
	return Plane{
		A: unit.X,
		B: unit.Y,
		C: unit.Z,
		D: -unit.Dot(point),
	}, nil
}

// Normal returns the plane's unit normal vector.
func (p Plane) Normal() Vec3 {
	return Vec3{X: p.A, Y: p.B, Z: p.C}
}

// SignedDistance returns the signed distance from a point to the plane.
func (p Plane) SignedDistance(point Vec3) float64 {
	return p.Normal().Dot(point) + p.D
}

// Origin returns the point on the plane closest to the coordinate
// origin. It is derived from the equation alone, so two equal plane
// equations always yield the same origin.
func (p Plane) Origin() Vec3 {
	return p.Normal().Scale(-p.D)
}

// Basis returns two orthonormal in-plane axes (u, v) with u x v equal
// to the plane normal. The axes are derived deterministically from the
// equation alone: annotations sharing a plane equation share a local
// coordinate frame, which is what makes vertex seams bit-exact.
func (p Plane) Basis() (Vec3, Vec3) {
	n := p.Normal()

	// Seed with the world axis least aligned with the normal.
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	seed := Vec3{X: 1}
	if ay <= ax && ay <= az {
		seed = Vec3{Y: 1}
	} else if az <= ax && az <= ay {
		seed = Vec3{Z: 1}
	}

	u := seed.Sub(n.Scale(seed.Dot(n))).Normalized()
	v := n.Cross(u)
	return u, v
}

// ProjectPoint returns the local in-plane coordinates of the 3D point
// projected orthogonally onto the plane, using the plane's canonical
// origin and basis.
func (p Plane) ProjectPoint(point Vec3) Point2D {
	u, v := p.Basis()
	rel := point.Sub(p.Origin())
	return Point2D{X: rel.Dot(u), Y: rel.Dot(v)}
}

// PlanePoint maps local in-plane coordinates back to a 3D point.
func (p Plane) PlanePoint(pt Point2D) Vec3 {
	u, v := p.Basis()
	return p.Origin().Add(u.Scale(pt.X)).Add(v.Scale(pt.Y))
}

// NormalAngle returns the angle in radians between the normals of two
// planes, folded into [0, pi/2] so that anti-parallel normals count as
// parallel planes.
func NormalAngle(a, b Plane) float64 {
	angle := AngleBetween(a.Normal(), b.Normal())
	if angle > math.Pi/2 {
		angle = math.Pi - angle
	}
	return angle
}
