package image

import (
	goimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"slice-annotator/pkg/geometry"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := goimage.NewGray(goimage.Rect(0, 0, w, h))
	img.SetGray(0, 0, color.Gray{Y: 128})

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestLoadStack(t *testing.T) {
	dir := t.TempDir()
	// Written out of order; loading sorts by filename.
	writeTestPNG(t, filepath.Join(dir, "slice_002.png"), 8, 6)
	writeTestPNG(t, filepath.Join(dir, "slice_000.png"), 8, 6)
	writeTestPNG(t, filepath.Join(dir, "slice_001.png"), 8, 6)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	img, err := LoadStack(dir, geometry.Vec3{X: 0.5, Y: 0.5, Z: 2})
	if err != nil {
		t.Fatalf("LoadStack: %v", err)
	}
	if img.Dims != [3]int{8, 6, 3} {
		t.Errorf("dims = %v, want [8 6 3]", img.Dims)
	}
	if len(img.Slices) != 3 {
		t.Errorf("expected 3 slices, got %d", len(img.Slices))
	}
	if img.Spacing != (geometry.Vec3{X: 0.5, Y: 0.5, Z: 2}) {
		t.Errorf("spacing = %+v", img.Spacing)
	}
	if img.SourceFileName != dir {
		t.Errorf("source dir = %q", img.SourceFileName)
	}
}

func TestLoadStackRejectsMixedDimensions(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), 8, 6)
	writeTestPNG(t, filepath.Join(dir, "b.png"), 4, 4)

	if _, err := LoadStack(dir, geometry.Vec3{X: 1, Y: 1, Z: 1}); err == nil {
		t.Error("expected error for mismatched slice dimensions")
	}
}

func TestLoadStackEmptyDirectory(t *testing.T) {
	if _, err := LoadStack(t.TempDir(), geometry.Vec3{X: 1, Y: 1, Z: 1}); err == nil {
		t.Error("expected error for directory without images")
	}
}

func TestIsSupportedFormat(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"scan.png", true},
		{"scan.PNG", true},
		{"scan.tif", true},
		{"scan.tiff", true},
		{"scan.jpeg", true},
		{"scan.txt", false},
		{"scan", false},
	}
	for _, tt := range tests {
		if got := IsSupportedFormat(tt.path); got != tt.want {
			t.Errorf("IsSupportedFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
