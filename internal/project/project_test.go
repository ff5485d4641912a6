package project

import (
	"path/filepath"
	"testing"

	"slice-annotator/internal/annotation"
	"slice-annotator/internal/image"
	"slice-annotator/pkg/geometry"
)

func buildStores(t *testing.T) (*image.Store, *annotation.Store) {
	t.Helper()

	images := image.NewStore()
	annots := annotation.NewStore()

	img, err := image.New("scan", geometry.Vec3{X: 0.5, Y: 0.5, Z: 2}, [3]int{128, 128, 40}, nil)
	if err != nil {
		t.Fatalf("image.New: %v", err)
	}
	img.SourceFileName = "/data/scan"
	images.Add(img)

	plane, err := geometry.NewPlaneFromPointNormal(geometry.Vec3{Z: 4}, geometry.Vec3{Z: 1})
	if err != nil {
		t.Fatalf("plane: %v", err)
	}

	a, err := annotation.New(plane)
	if err != nil {
		t.Fatalf("annotation.New: %v", err)
	}
	a.DisplayName = "lesion"
	a.AppendVertex(geometry.Point2D{X: 1, Y: 2})
	a.AppendVertex(geometry.Point2D{X: 5, Y: 2})
	a.AppendVertex(geometry.Point2D{X: 5, Y: 6})
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	a.Filled = true

	b, err := annotation.New(plane)
	if err != nil {
		t.Fatalf("annotation.New: %v", err)
	}
	b.DisplayName = "open contour"
	b.AppendVertex(geometry.Point2D{X: 10, Y: 10})
	b.AppendVertex(geometry.Point2D{X: 12, Y: 14})

	uidA := annots.Add(a)
	uidB := annots.Add(b)
	img.AddAnnotation(uidA)
	img.AddAnnotation(uidB)
	if err := img.SetActiveAnnotation(uidB); err != nil {
		t.Fatalf("SetActiveAnnotation: %v", err)
	}

	return images, annots
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	images, annots := buildStores(t)

	proj := New("session")
	proj.Snapshot(images, annots)

	path := filepath.Join(t.TempDir(), "session.annproj")
	if err := proj.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "session" || loaded.Version != 1 {
		t.Errorf("header lost: name=%q version=%d", loaded.Name, loaded.Version)
	}

	newImages := image.NewStore()
	newAnnots := annotation.NewStore()
	if err := loaded.Restore(newImages, newAnnots); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if len(newImages.UIDs()) != 1 {
		t.Fatalf("expected 1 image, got %d", len(newImages.UIDs()))
	}
	img := newImages.Get(newImages.UIDs()[0])
	if img.DisplayName != "scan" || img.SourceFileName != "/data/scan" {
		t.Errorf("image identity lost: %q %q", img.DisplayName, img.SourceFileName)
	}
	if img.Spacing != (geometry.Vec3{X: 0.5, Y: 0.5, Z: 2}) {
		t.Errorf("spacing lost: %+v", img.Spacing)
	}
	if img.Dims != [3]int{128, 128, 40} {
		t.Errorf("dims lost: %v", img.Dims)
	}

	uids := img.AnnotationUIDs()
	if len(uids) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(uids))
	}

	a := newAnnots.Get(uids[0])
	if a.DisplayName != "lesion" || !a.Closed || !a.Filled {
		t.Errorf("closed annotation lost: %q closed=%v filled=%v", a.DisplayName, a.Closed, a.Filled)
	}
	if a.NumVertices() != 3 {
		t.Errorf("expected 3 vertices, got %d", a.NumVertices())
	}
	if v, _ := a.Vertex(1); v != (geometry.Point2D{X: 5, Y: 2}) {
		t.Errorf("vertex 1 lost: %+v", v)
	}

	b := newAnnots.Get(uids[1])
	if b.DisplayName != "open contour" || b.Closed {
		t.Errorf("open annotation lost: %q closed=%v", b.DisplayName, b.Closed)
	}

	// The second annotation was active and must come back active.
	if active, ok := img.ActiveAnnotation(); !ok || active != uids[1] {
		t.Errorf("active annotation lost: %v, %v", active, ok)
	}
}

func TestSnapshotWithoutActiveAnnotation(t *testing.T) {
	images := image.NewStore()
	annots := annotation.NewStore()

	img, err := image.New("empty", geometry.Vec3{X: 1, Y: 1, Z: 1}, [3]int{8, 8, 8}, nil)
	if err != nil {
		t.Fatalf("image.New: %v", err)
	}
	images.Add(img)

	proj := New("bare")
	proj.Snapshot(images, annots)

	if len(proj.Images) != 1 {
		t.Fatalf("expected 1 image record, got %d", len(proj.Images))
	}
	if proj.Images[0].ActiveAnnotation != -1 {
		t.Errorf("expected active annotation -1, got %d", proj.Images[0].ActiveAnnotation)
	}
}

func TestRestorePlaneFrameMatches(t *testing.T) {
	images, annots := buildStores(t)

	proj := New("frames")
	proj.Snapshot(images, annots)

	newImages := image.NewStore()
	newAnnots := annotation.NewStore()
	if err := proj.Restore(newImages, newAnnots); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	orig := annots.Get(annots.UIDs()[0])
	restored := newAnnots.Get(newAnnots.UIDs()[0])

	// The plane equation round-trips, so the derived frame must be
	// identical and every vertex must resolve to the same 3D point.
	if orig.Plane != restored.Plane {
		t.Fatalf("plane changed: %+v vs %+v", restored.Plane, orig.Plane)
	}
	for i := 0; i < orig.NumVertices(); i++ {
		ov, _ := orig.Vertex(i)
		rv, _ := restored.Vertex(i)
		if orig.PlanePoint(ov) != restored.PlanePoint(rv) {
			t.Errorf("vertex %d resolves differently after restore", i)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.annproj")); err == nil {
		t.Error("expected error for missing project file")
	}
}

func TestSaveUpdatesModified(t *testing.T) {
	proj := New("stamp")
	created := proj.Modified

	path := filepath.Join(t.TempDir(), "stamp.annproj")
	if err := proj.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if proj.Modified.Before(created) {
		t.Error("Save must not move the modified stamp backwards")
	}
}
