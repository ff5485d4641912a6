package image

import (
	"fmt"
	goimage "image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/tiff"

	"slice-annotator/pkg/geometry"
)

// LoadStack loads every supported image file in a directory as one
// slice stack, ordered by filename. All slices must share the same
// pixel dimensions. The returned image uses an identity subject-to-
// world transform; spacing gives the physical voxel size.
func LoadStack(dir string, spacing geometry.Vec3) (*Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read slice directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsSupportedFormat(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported image files in %s", dir)
	}
	sort.Strings(paths)

	var slices []goimage.Image
	var width, height int
	for _, path := range paths {
		img, err := loadSlice(path)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		if len(slices) == 0 {
			width, height = b.Dx(), b.Dy()
		} else if b.Dx() != width || b.Dy() != height {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d",
				filepath.Base(path), b.Dx(), b.Dy(), width, height)
		}
		slices = append(slices, img)
	}

	stack, err := New(filepath.Base(dir), spacing, [3]int{width, height, len(slices)}, nil)
	if err != nil {
		return nil, err
	}
	stack.SourceFileName = dir
	stack.Slices = slices
	return stack, nil
}

func loadSlice(path string) (goimage.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open slice: %w", err)
	}
	defer file.Close()

	img, _, err := goimage.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode slice %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// SupportedFormats returns the list of supported slice image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
