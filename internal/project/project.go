// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"slice-annotator/internal/annotation"
	"slice-annotator/internal/image"
	"slice-annotator/pkg/geometry"
)

// File represents a slice annotator project file (.annproj).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	Images []ImageRecord `json:"images"`
}

// ImageRecord is the serialized form of one image and its annotations.
type ImageRecord struct {
	DisplayName string        `json:"display_name"`
	SourceDir   string        `json:"source_dir,omitempty"`
	Spacing     geometry.Vec3 `json:"spacing"`
	Dims        [3]int        `json:"dims"`

	Annotations []AnnotationRecord `json:"annotations,omitempty"`

	// ActiveAnnotation indexes into Annotations; -1 means none.
	ActiveAnnotation int `json:"active_annotation"`
}

// AnnotationRecord is the serialized form of one annotation.
type AnnotationRecord struct {
	DisplayName    string `json:"display_name,omitempty"`
	SourceFileName string `json:"source_file,omitempty"`

	Plane      geometry.Plane       `json:"plane"`
	Boundaries [][]geometry.Point2D `json:"boundaries"`

	Closed           bool    `json:"closed"`
	Filled           bool    `json:"filled"`
	Visible          bool    `json:"visible"`
	VertexVisibility bool    `json:"vertex_visibility"`
	Smoothed         bool    `json:"smoothed"`
	SmoothingFactor  float64 `json:"smoothing_factor,omitempty"`

	Style annotation.Style `json:"style"`
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
	}
}

// Load loads a project from a .annproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, err
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Snapshot captures the current store contents into the project file,
// replacing its image records.
func (p *File) Snapshot(images *image.Store, annots *annotation.Store) {
	p.Images = nil
	for _, imgUID := range images.UIDs() {
		img := images.Get(imgUID)
		if img == nil {
			continue
		}
		rec := ImageRecord{
			DisplayName:      img.DisplayName,
			SourceDir:        img.SourceFileName,
			Spacing:          img.Spacing,
			Dims:             img.Dims,
			ActiveAnnotation: -1,
		}
		activeUID, hasActive := img.ActiveAnnotation()
		for i, uid := range img.AnnotationUIDs() {
			a := annots.Get(uid)
			if a == nil {
				continue
			}
			rec.Annotations = append(rec.Annotations, annotationRecord(a))
			if hasActive && uid == activeUID {
				rec.ActiveAnnotation = i
			}
		}
		p.Images = append(p.Images, rec)
	}
}

// Restore rebuilds stores from the project file. Existing store
// contents are not touched; restoring into fresh stores is the
// intended use.
func (p *File) Restore(images *image.Store, annots *annotation.Store) error {
	for _, rec := range p.Images {
		img, err := image.New(rec.DisplayName, rec.Spacing, rec.Dims, nil)
		if err != nil {
			return fmt.Errorf("project image %q: %w", rec.DisplayName, err)
		}
		img.SourceFileName = rec.SourceDir
		images.Add(img)

		for i, ar := range rec.Annotations {
			a, err := restoreAnnotation(ar)
			if err != nil {
				return fmt.Errorf("project image %q annotation %d: %w", rec.DisplayName, i, err)
			}
			uid := annots.Add(a)
			img.AddAnnotation(uid)
			if i == rec.ActiveAnnotation {
				if err := img.SetActiveAnnotation(uid); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func annotationRecord(a *annotation.Annotation) AnnotationRecord {
	return AnnotationRecord{
		DisplayName:      a.DisplayName,
		SourceFileName:   a.SourceFileName,
		Plane:            a.Plane,
		Boundaries:       a.Boundaries,
		Closed:           a.Closed,
		Filled:           a.Filled,
		Visible:          a.Visible,
		VertexVisibility: a.VertexVisibility,
		Smoothed:         a.Smoothed,
		SmoothingFactor:  a.SmoothingFactor,
		Style:            a.Style,
	}
}

func restoreAnnotation(rec AnnotationRecord) (*annotation.Annotation, error) {
	a, err := annotation.New(rec.Plane)
	if err != nil {
		return nil, err
	}
	a.DisplayName = rec.DisplayName
	a.SourceFileName = rec.SourceFileName
	if len(rec.Boundaries) > 0 {
		a.Boundaries = rec.Boundaries
	}
	a.Closed = rec.Closed
	a.Filled = rec.Filled
	a.Visible = rec.Visible
	a.VertexVisibility = rec.VertexVisibility
	a.Smoothed = rec.Smoothed
	a.SmoothingFactor = rec.SmoothingFactor
	a.Style = rec.Style
	return a, nil
}
