// Package image provides the 3D slice-stack images that annotations are
// anchored in, and their UID-keyed store.
package image

import (
	"fmt"
	goimage "image"
	"math"

	"gonum.org/v1/gonum/mat"

	"slice-annotator/internal/annotation"
	"slice-annotator/pkg/geometry"
)

// UID identifies an image within the store.
type UID int64

// Image represents one loaded 3D image volume. Voxel data itself stays
// with the loader; the editor only needs the geometry: subject-to-world
// transform, voxel spacing, and the per-image annotation bookkeeping.
type Image struct {
	DisplayName    string
	SourceFileName string

	// Voxel spacing along the image's subject axes, in subject units.
	Spacing geometry.Vec3

	// Dimensions in voxels (columns, rows, slices).
	Dims [3]int

	// Slices holds the loaded 2D slice images for display, one per
	// slice along the stack axis. May be nil for synthetic images.
	Slices []goimage.Image

	// subjectToWorld maps homogeneous subject coordinates to world
	// coordinates; worldToSubject is its inverse.
	subjectToWorld *mat.Dense
	worldToSubject *mat.Dense

	annotations      []annotation.UID
	activeAnnotation *annotation.UID
}

// New creates an image with the given spacing, dimensions, and
// subject-to-world transform. A nil transform means subject space
// equals world space.
func New(name string, spacing geometry.Vec3, dims [3]int, subjectToWorld *mat.Dense) (*Image, error) {
	if spacing.X <= 0 || spacing.Y <= 0 || spacing.Z <= 0 {
		return nil, fmt.Errorf("image %q has non-positive spacing %+v", name, spacing)
	}
	if subjectToWorld == nil {
		subjectToWorld = identity4()
	}
	r, c := subjectToWorld.Dims()
	if r != 4 || c != 4 {
		return nil, fmt.Errorf("subject-to-world transform must be 4x4, got %dx%d", r, c)
	}
	inv := mat.NewDense(4, 4, nil)
	if err := inv.Inverse(subjectToWorld); err != nil {
		return nil, fmt.Errorf("subject-to-world transform is singular: %w", err)
	}
	return &Image{
		DisplayName:    name,
		Spacing:        spacing,
		Dims:           dims,
		subjectToWorld: subjectToWorld,
		worldToSubject: inv,
	}, nil
}

func identity4() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func applyHomogeneous(m *mat.Dense, v geometry.Vec3, w float64) geometry.Vec3 {
	in := mat.NewVecDense(4, []float64{v.X, v.Y, v.Z, w})
	var out mat.VecDense
	out.MulVec(m, in)
	res := geometry.Vec3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
	if w != 0 && out.AtVec(3) != 0 && out.AtVec(3) != 1 {
		res = res.Scale(1 / out.AtVec(3))
	}
	return res
}

// SubjectToWorldPoint maps a subject-space point to world space.
func (img *Image) SubjectToWorldPoint(p geometry.Vec3) geometry.Vec3 {
	return applyHomogeneous(img.subjectToWorld, p, 1)
}

// WorldToSubjectPoint maps a world-space point to subject space.
func (img *Image) WorldToSubjectPoint(p geometry.Vec3) geometry.Vec3 {
	return applyHomogeneous(img.worldToSubject, p, 1)
}

// SubjectToWorldDir maps a subject-space direction to world space
// (no translation).
func (img *Image) SubjectToWorldDir(d geometry.Vec3) geometry.Vec3 {
	return applyHomogeneous(img.subjectToWorld, d, 0)
}

// WorldToSubjectDir maps a world-space direction to subject space
// (no translation).
func (img *Image) WorldToSubjectDir(d geometry.Vec3) geometry.Vec3 {
	return applyHomogeneous(img.worldToSubject, d, 0)
}

// SliceSpacingAlong returns the voxel spacing of the image measured
// along an arbitrary world-space direction. It is the absolute-value
// weighted sum of the per-axis spacings, so axis-aligned directions
// return exactly that axis' spacing.
func (img *Image) SliceSpacingAlong(worldDir geometry.Vec3) float64 {
	d := img.WorldToSubjectDir(worldDir).Normalized()
	return math.Abs(d.X)*img.Spacing.X +
		math.Abs(d.Y)*img.Spacing.Y +
		math.Abs(d.Z)*img.Spacing.Z
}

// AnnotationUIDs returns the image's annotation UIDs in insertion
// (draw) order.
func (img *Image) AnnotationUIDs() []annotation.UID {
	out := make([]annotation.UID, len(img.annotations))
	copy(out, img.annotations)
	return out
}

// AddAnnotation appends an annotation UID to the image.
func (img *Image) AddAnnotation(uid annotation.UID) {
	img.annotations = append(img.annotations, uid)
}

// RemoveAnnotation detaches an annotation UID from the image, clearing
// the active annotation if it was the removed one.
func (img *Image) RemoveAnnotation(uid annotation.UID) {
	for i, u := range img.annotations {
		if u == uid {
			img.annotations = append(img.annotations[:i], img.annotations[i+1:]...)
			break
		}
	}
	if img.activeAnnotation != nil && *img.activeAnnotation == uid {
		img.activeAnnotation = nil
	}
}

// ActiveAnnotation returns the image's active annotation UID, if any.
func (img *Image) ActiveAnnotation() (annotation.UID, bool) {
	if img.activeAnnotation == nil {
		return 0, false
	}
	return *img.activeAnnotation, true
}

// SetActiveAnnotation marks the given annotation as the image's active
// one. The annotation must already belong to the image.
func (img *Image) SetActiveAnnotation(uid annotation.UID) error {
	for _, u := range img.annotations {
		if u == uid {
			v := uid
			img.activeAnnotation = &v
			return nil
		}
	}
	return fmt.Errorf("annotation %d does not belong to image %q", uid, img.DisplayName)
}

// ClearActiveAnnotation clears the image's active annotation.
func (img *Image) ClearActiveAnnotation() {
	img.activeAnnotation = nil
}
