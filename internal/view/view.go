// Package view provides the 2D views onto image volumes: their camera
// transforms, pixel scale, and the resolution of pointer positions
// into world-space hits.
package view

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"slice-annotator/internal/image"
	"slice-annotator/pkg/geometry"
)

// UID identifies a view within the registry.
type UID int64

// ViewHit is the result of resolving a 2D pointer position: the struck
// view, the 3D world position under the pointer, the same position
// with the view's slice offset applied, and the view's front axis.
type ViewHit struct {
	ViewUID        UID
	WorldPos       geometry.Vec3
	WorldPosOffset geometry.Vec3
	WorldFrontAxis geometry.Vec3
}

// View is one 2D viewport onto an image volume. It owns an
// orthographic camera described by a 4x4 world-to-clip matrix and the
// scale that converts world distances to on-screen pixels.
type View struct {
	UID      UID
	ImageUID image.UID

	// Crosshair position in world space; the view shows the slice
	// through this point perpendicular to FrontAxis.
	Crosshair geometry.Vec3

	// FrontAxis is the world-space direction the camera looks along.
	FrontAxis geometry.Vec3

	// Offset applied to hits along the front axis, in world units.
	SliceOffset float64

	// WorldPixelScale is world units per screen pixel.
	WorldPixelScale float64

	worldToClip *mat.Dense
	clipToWorld *mat.Dense
}

// NewOrtho creates an orthographic view looking along front with the
// given up direction, centered on the crosshair. extent is the world
// width/height mapped to the [-1,1] clip range; pixelScale is world
// units per pixel.
func NewOrtho(uid UID, imgUID image.UID, crosshair, front, up geometry.Vec3, extent, pixelScale float64) (*View, error) {
	f := front.Normalized()
	if f.Norm() < 1e-12 {
		return nil, fmt.Errorf("view front axis is zero")
	}
	right := up.Cross(f).Normalized()
	if right.Norm() < 1e-12 {
		return nil, fmt.Errorf("view up axis is parallel to front axis")
	}
	trueUp := f.Cross(right)
	if extent <= 0 {
		return nil, fmt.Errorf("view extent must be positive, got %g", extent)
	}
	if pixelScale <= 0 {
		return nil, fmt.Errorf("view pixel scale must be positive, got %g", pixelScale)
	}

	// Rows map world deltas onto (right, up, front) then scale into
	// clip units.
	s := 2 / extent
	w2c := mat.NewDense(4, 4, []float64{
		right.X * s, right.Y * s, right.Z * s, -right.Dot(crosshair) * s,
		trueUp.X * s, trueUp.Y * s, trueUp.Z * s, -trueUp.Dot(crosshair) * s,
		f.X * s, f.Y * s, f.Z * s, -f.Dot(crosshair) * s,
		0, 0, 0, 1,
	})
	c2w := mat.NewDense(4, 4, nil)
	if err := c2w.Inverse(w2c); err != nil {
		return nil, fmt.Errorf("view camera matrix is singular: %w", err)
	}

	return &View{
		UID:             uid,
		ImageUID:        imgUID,
		Crosshair:       crosshair,
		FrontAxis:       f,
		WorldPixelScale: pixelScale,
		worldToClip:     w2c,
		clipToWorld:     c2w,
	}, nil
}

func apply4(m *mat.Dense, v geometry.Vec3) geometry.Vec3 {
	in := mat.NewVecDense(4, []float64{v.X, v.Y, v.Z, 1})
	var out mat.VecDense
	out.MulVec(m, in)
	w := out.AtVec(3)
	res := geometry.Vec3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
	if w != 0 && w != 1 {
		res = res.Scale(1 / w)
	}
	return res
}

// WorldToClip maps a world-space point into the view's clip space.
func (v *View) WorldToClip(p geometry.Vec3) geometry.Vec3 {
	return apply4(v.worldToClip, p)
}

// ClipToWorld maps a clip-space point back to world space.
func (v *View) ClipToWorld(p geometry.Vec3) geometry.Vec3 {
	return apply4(v.clipToWorld, p)
}

// HitAt builds a ViewHit for a world-space position under the pointer.
func (v *View) HitAt(world geometry.Vec3) ViewHit {
	return ViewHit{
		ViewUID:        v.UID,
		WorldPos:       world,
		WorldPosOffset: world.Add(v.FrontAxis.Scale(v.SliceOffset)),
		WorldFrontAxis: v.FrontAxis,
	}
}

// SlicePlane returns the view's current slice plane in world space:
// the plane through the offset crosshair perpendicular to the front
// axis. Paging the view moves this plane along the front axis.
func (v *View) SlicePlane() (geometry.Plane, error) {
	cursor := v.Crosshair.Add(v.FrontAxis.Scale(v.SliceOffset))
	return geometry.NewPlaneFromPointNormal(cursor, v.FrontAxis)
}

// Registry owns views keyed by UID, in insertion order.
type Registry struct {
	views   map[UID]*View
	order   []UID
	nextUID UID
}

// NewRegistry creates an empty view registry.
func NewRegistry() *Registry {
	return &Registry{
		views:   make(map[UID]*View),
		nextUID: 1,
	}
}

// Add inserts a view built by the given constructor and returns its
// UID. The constructor receives the UID the view will be stored under.
func (r *Registry) Add(build func(UID) (*View, error)) (UID, error) {
	uid := r.nextUID
	v, err := build(uid)
	if err != nil {
		return 0, err
	}
	r.nextUID++
	r.views[uid] = v
	r.order = append(r.order, uid)
	return uid, nil
}

// Get returns the view with the given UID, or nil if absent.
func (r *Registry) Get(uid UID) *View {
	return r.views[uid]
}

// UIDs returns all view UIDs in insertion order.
func (r *Registry) UIDs() []UID {
	out := make([]UID, len(r.order))
	copy(out, r.order)
	return out
}
