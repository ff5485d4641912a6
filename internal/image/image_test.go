package image

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"slice-annotator/internal/annotation"
	"slice-annotator/pkg/geometry"
)

func newTestImage(t *testing.T, spacing geometry.Vec3, transform *mat.Dense) *Image {
	t.Helper()
	img, err := New("test", spacing, [3]int{64, 64, 16}, transform)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return img
}

func TestNewValidation(t *testing.T) {
	if _, err := New("bad", geometry.Vec3{X: 1, Y: 1, Z: 0}, [3]int{4, 4, 4}, nil); err == nil {
		t.Error("expected error for zero spacing")
	}
	if _, err := New("bad", geometry.Vec3{X: 1, Y: 1, Z: 1}, [3]int{4, 4, 4}, mat.NewDense(3, 3, nil)); err == nil {
		t.Error("expected error for non-4x4 transform")
	}
	if _, err := New("bad", geometry.Vec3{X: 1, Y: 1, Z: 1}, [3]int{4, 4, 4}, mat.NewDense(4, 4, nil)); err == nil {
		t.Error("expected error for singular transform")
	}
}

func TestIdentityTransformRoundTrip(t *testing.T) {
	img := newTestImage(t, geometry.Vec3{X: 1, Y: 1, Z: 1}, nil)

	p := geometry.Vec3{X: 3, Y: -2, Z: 7}
	if img.SubjectToWorldPoint(p) != p {
		t.Errorf("identity subject-to-world changed the point")
	}
	if img.WorldToSubjectPoint(p) != p {
		t.Errorf("identity world-to-subject changed the point")
	}
}

func TestAffineTransformRoundTrip(t *testing.T) {
	// Scale by 2 and translate by (10, 0, -5).
	m := mat.NewDense(4, 4, []float64{
		2, 0, 0, 10,
		0, 2, 0, 0,
		0, 0, 2, -5,
		0, 0, 0, 1,
	})
	img := newTestImage(t, geometry.Vec3{X: 1, Y: 1, Z: 1}, m)

	p := geometry.Vec3{X: 1, Y: 2, Z: 3}
	world := img.SubjectToWorldPoint(p)
	want := geometry.Vec3{X: 12, Y: 4, Z: 1}
	if world.Distance(want) > 1e-12 {
		t.Errorf("SubjectToWorldPoint = %+v, want %+v", world, want)
	}
	back := img.WorldToSubjectPoint(world)
	if back.Distance(p) > 1e-12 {
		t.Errorf("round trip failed: got %+v, want %+v", back, p)
	}

	// Directions ignore translation.
	d := img.SubjectToWorldDir(geometry.Vec3{X: 1})
	if d.Distance(geometry.Vec3{X: 2}) > 1e-12 {
		t.Errorf("SubjectToWorldDir = %+v, want (2,0,0)", d)
	}
}

func TestSliceSpacingAlong(t *testing.T) {
	img := newTestImage(t, geometry.Vec3{X: 0.5, Y: 0.75, Z: 2}, nil)

	tests := []struct {
		dir  geometry.Vec3
		want float64
	}{
		{geometry.Vec3{X: 1}, 0.5},
		{geometry.Vec3{Y: 1}, 0.75},
		{geometry.Vec3{Z: 1}, 2},
		{geometry.Vec3{Z: -1}, 2},
		{geometry.Vec3{X: 1, Y: 1}, (0.5 + 0.75) / math.Sqrt2},
	}

	for _, tt := range tests {
		if got := img.SliceSpacingAlong(tt.dir); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("SliceSpacingAlong(%+v) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestAnnotationBookkeeping(t *testing.T) {
	img := newTestImage(t, geometry.Vec3{X: 1, Y: 1, Z: 1}, nil)

	a := annotation.UID(7)
	b := annotation.UID(9)
	img.AddAnnotation(a)
	img.AddAnnotation(b)

	uids := img.AnnotationUIDs()
	if len(uids) != 2 || uids[0] != a || uids[1] != b {
		t.Errorf("annotation order wrong: %v", uids)
	}

	// Active annotation must belong to the image.
	if err := img.SetActiveAnnotation(annotation.UID(99)); err == nil {
		t.Error("foreign annotation accepted as active")
	}
	if err := img.SetActiveAnnotation(b); err != nil {
		t.Fatalf("SetActiveAnnotation: %v", err)
	}
	if got, ok := img.ActiveAnnotation(); !ok || got != b {
		t.Errorf("ActiveAnnotation = %v, %v", got, ok)
	}

	// Removing the active annotation clears it.
	img.RemoveAnnotation(b)
	if _, ok := img.ActiveAnnotation(); ok {
		t.Error("active annotation survived its removal")
	}
	if len(img.AnnotationUIDs()) != 1 {
		t.Errorf("expected 1 annotation, got %d", len(img.AnnotationUIDs()))
	}
}

func TestStoreActiveImage(t *testing.T) {
	s := NewStore()
	if _, ok := s.ActiveImage(); ok {
		t.Error("empty store has an active image")
	}

	img1 := newTestImage(t, geometry.Vec3{X: 1, Y: 1, Z: 1}, nil)
	img2 := newTestImage(t, geometry.Vec3{X: 1, Y: 1, Z: 1}, nil)
	uid1 := s.Add(img1)
	uid2 := s.Add(img2)

	if got, ok := s.ActiveImage(); !ok || got != uid1 {
		t.Errorf("first added image should be active, got %v, %v", got, ok)
	}

	if !s.SetActiveImage(uid2) {
		t.Error("SetActiveImage rejected a known UID")
	}
	if s.SetActiveImage(UID(99)) {
		t.Error("SetActiveImage accepted an unknown UID")
	}

	// Removing the active image falls back to the first remaining one.
	s.Remove(uid2)
	if got, ok := s.ActiveImage(); !ok || got != uid1 {
		t.Errorf("expected fallback to %v, got %v, %v", uid1, got, ok)
	}

	s.Remove(uid1)
	if _, ok := s.ActiveImage(); ok {
		t.Error("empty store still reports an active image")
	}
}
