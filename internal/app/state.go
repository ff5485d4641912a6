// Package app provides application lifecycle management, shared state,
// and events.
package app

import (
	"path/filepath"
	"sync"

	"slice-annotator/internal/annotation"
	"slice-annotator/internal/image"
	"slice-annotator/internal/project"
	"slice-annotator/internal/view"
	"slice-annotator/pkg/config"
	"slice-annotator/pkg/geometry"
)

// State holds the application state: the loaded project, the stores
// the editor operates on, and the event listeners.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Modified    bool

	// Stores shared with the annotation editor
	Images      *image.Store
	Annotations *annotation.Store
	Views       *view.Registry
	Clipboard   *annotation.Clipboard

	Config *config.Config

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventImageLoaded
	EventAnnotationsChanged
	EventSelectionChanged
	EventAnnotationModeChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &State{
		Images:      image.NewStore(),
		Annotations: annotation.NewStore(),
		Views:       view.NewRegistry(),
		Clipboard:   annotation.NewClipboard(),
		Config:      cfg,
		listeners:   make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// LoadProject loads a project from the specified path into fresh
// stores.
func (s *State) LoadProject(path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}

	images := image.NewStore()
	annots := annotation.NewStore()
	if err := proj.Restore(images, annots); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.Images = images
	s.Annotations = annots
	s.mu.Unlock()

	s.Emit(EventProjectLoaded, path)
	s.Emit(EventAnnotationsChanged, nil)
	return nil
}

// SaveProject saves the current stores to the specified path.
func (s *State) SaveProject(path string) error {
	s.mu.RLock()
	proj := project.New(filepath.Base(path))
	proj.Snapshot(s.Images, s.Annotations)
	s.mu.RUnlock()

	if err := proj.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	return nil
}

// LoadImageStack loads a directory of slice images as a new image.
func (s *State) LoadImageStack(dir string) (image.UID, error) {
	spacing := geometry.Vec3{
		X: s.Config.Loading.PixelSpacing,
		Y: s.Config.Loading.PixelSpacing,
		Z: s.Config.Loading.SliceSpacing,
	}
	img, err := image.LoadStack(dir, spacing)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	uid := s.Images.Add(img)
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventImageLoaded, uid)
	return uid, nil
}
