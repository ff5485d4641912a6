// Package editor implements the interactive annotation editor: a
// finite-state controller that turns pointer and keyboard events into
// edits of planar polygon annotations anchored inside image volumes.
package editor

import (
	"fmt"
	"math"

	"slice-annotator/internal/annotation"
	"slice-annotator/internal/image"
	"slice-annotator/internal/view"
)

// State is the editor's interaction mode. States are a closed set
// dispatched from one transition table in Handle.
type State int

const (
	// StateOff is the initial state; annotation mode is disabled.
	StateOff State = iota
	// StateViewBeingSelected waits for the user to pick the one view
	// in which annotating is permitted.
	StateViewBeingSelected
	// StateStandby is the idle annotating state.
	StateStandby
	// StateCreatingNewAnnotation waits for the first click of a new
	// polygon.
	StateCreatingNewAnnotation
	// StateAddingVertexToNewAnnotation grows the new polygon vertex
	// by vertex.
	StateAddingVertexToNewAnnotation
	// StateVertexSelected has one vertex of the active annotation
	// selected for editing.
	StateVertexSelected
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "Off"
	case StateViewBeingSelected:
		return "ViewBeingSelected"
	case StateStandby:
		return "Standby"
	case StateCreatingNewAnnotation:
		return "CreatingNewAnnotation"
	case StateAddingVertexToNewAnnotation:
		return "AddingVertexToNewAnnotation"
	case StateVertexSelected:
		return "VertexSelected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FlipDirection selects the mirror axis of a flip, defined in view
// space.
type FlipDirection int

const (
	FlipHorizontal FlipDirection = iota
	FlipVertical
)

// Options holds the editor tunables.
type Options struct {
	// VertexHitRadiusPx is the on-screen pixel distance below which a
	// pointer position counts as hitting a vertex.
	VertexHitRadiusPx float64

	// PlaneAngleWarnDeg is the angle in degrees above which pasting an
	// annotation onto a non-parallel plane logs a warning.
	PlaneAngleWarnDeg float64
}

// DefaultOptions returns the stock editor tunables.
func DefaultOptions() Options {
	return Options{
		VertexHitRadiusPx: 6,
		PlaneAngleWarnDeg: 0.1,
	}
}

// loneVertexOffset is the in-plane delta used when insertVertex has to
// duplicate the only vertex of a one-vertex polygon.
const loneVertexOffset = 0.5

// Editor owns the annotation-mode session: the interaction state
// machine and the selection/hover registries. One Editor drives the
// annotations of all loaded images; everything is single-threaded and
// synchronous.
type Editor struct {
	images    *image.Store
	annots    *annotation.Store
	views     *view.Registry
	clipboard *annotation.Clipboard

	vertexHitRadiusPx float64
	planeAngleWarnRad float64

	state State

	// Selection/hover registries. Nil means unset.
	selectedViewUID *view.UID
	hoveredViewUID  *view.UID
	growingAnnotUID *annotation.UID
	selectedVertex  *int
	hoveredAnnotUID *annotation.UID
	hoveredVertex   *int
}

// New creates an editor over the given stores. The editor starts in
// StateOff.
func New(images *image.Store, annots *annotation.Store, views *view.Registry, clipboard *annotation.Clipboard, opts Options) *Editor {
	if opts.VertexHitRadiusPx <= 0 {
		opts.VertexHitRadiusPx = DefaultOptions().VertexHitRadiusPx
	}
	if opts.PlaneAngleWarnDeg <= 0 {
		opts.PlaneAngleWarnDeg = DefaultOptions().PlaneAngleWarnDeg
	}
	return &Editor{
		images:            images,
		annots:            annots,
		views:             views,
		clipboard:         clipboard,
		vertexHitRadiusPx: opts.VertexHitRadiusPx,
		planeAngleWarnRad: opts.PlaneAngleWarnDeg * math.Pi / 180,
	}
}

// State returns the current interaction state.
func (e *Editor) State() State {
	return e.state
}

// IsAnnotationModeOn reports whether annotation mode is enabled.
func (e *Editor) IsAnnotationModeOn() bool {
	return e.state != StateOff
}

// SelectedViewUID returns the view in which annotating is permitted.
func (e *Editor) SelectedViewUID() (view.UID, bool) {
	if e.selectedViewUID == nil {
		return 0, false
	}
	return *e.selectedViewUID, true
}

// HoveredViewUID returns the view currently under the pointer while a
// view is being selected.
func (e *Editor) HoveredViewUID() (view.UID, bool) {
	if e.hoveredViewUID == nil {
		return 0, false
	}
	return *e.hoveredViewUID, true
}

// GrowingAnnotationUID returns the annotation currently under
// construction.
func (e *Editor) GrowingAnnotationUID() (annotation.UID, bool) {
	if e.growingAnnotUID == nil {
		return 0, false
	}
	return *e.growingAnnotUID, true
}

// SelectedVertex returns the selected vertex index into the active
// annotation's outer boundary.
func (e *Editor) SelectedVertex() (int, bool) {
	if e.selectedVertex == nil {
		return 0, false
	}
	return *e.selectedVertex, true
}

// HoveredAnnotation returns the hovered annotation and vertex, if any.
func (e *Editor) HoveredAnnotation() (annotation.UID, int, bool) {
	if e.hoveredAnnotUID == nil || e.hoveredVertex == nil {
		return 0, 0, false
	}
	return *e.hoveredAnnotUID, *e.hoveredVertex, true
}

// IsInStateWhereVertexHighlightsAreVisible reports whether the UI
// should render vertex highlight decorations.
func (e *Editor) IsInStateWhereVertexHighlightsAreVisible() bool {
	switch e.state {
	case StateStandby, StateAddingVertexToNewAnnotation, StateVertexSelected:
		return true
	default:
		return false
	}
}

// ShowToolbarCreateButton reports whether the "new polygon" toolbar
// button applies in the current state.
func (e *Editor) ShowToolbarCreateButton() bool {
	return e.state == StateStandby
}

// ShowToolbarCompleteButton reports whether the "complete polygon"
// toolbar button applies in the current state.
func (e *Editor) ShowToolbarCompleteButton() bool {
	return e.state == StateAddingVertexToNewAnnotation
}

// ShowToolbarCloseButton reports whether the "close polygon" toolbar
// button applies: a growing polygon with at least three vertices.
func (e *Editor) ShowToolbarCloseButton() bool {
	if e.state != StateAddingVertexToNewAnnotation || e.growingAnnotUID == nil {
		return false
	}
	a := e.annots.Get(*e.growingAnnotUID)
	return a != nil && a.NumVertices() >= 3
}

// ShowToolbarCancelButton reports whether the "cancel polygon" toolbar
// button applies in the current state.
func (e *Editor) ShowToolbarCancelButton() bool {
	return e.state == StateCreatingNewAnnotation ||
		e.state == StateAddingVertexToNewAnnotation
}

// ShowToolbarVertexButtons reports whether the vertex insert/remove
// toolbar buttons apply in the current state.
func (e *Editor) ShowToolbarVertexButtons() bool {
	return e.state == StateVertexSelected
}

// ShowToolbarClipboardButtons reports whether cut/copy/paste toolbar
// buttons apply in the current state.
func (e *Editor) ShowToolbarClipboardButtons() bool {
	return e.state == StateStandby || e.state == StateVertexSelected
}

// activeAnnotation resolves the active image's active annotation.
func (e *Editor) activeAnnotation() (*annotation.Annotation, annotation.UID, error) {
	imgUID, ok := e.images.ActiveImage()
	if !ok {
		return nil, 0, fmt.Errorf("no active image")
	}
	img := e.images.Get(imgUID)
	if img == nil {
		return nil, 0, fmt.Errorf("active image %d not in store", imgUID)
	}
	uid, ok := img.ActiveAnnotation()
	if !ok {
		return nil, 0, fmt.Errorf("image %q has no active annotation", img.DisplayName)
	}
	a := e.annots.Get(uid)
	if a == nil {
		return nil, 0, fmt.Errorf("active annotation %d not in store", uid)
	}
	return a, uid, nil
}

// activeImage resolves the active image.
func (e *Editor) activeImage() (*image.Image, image.UID, error) {
	imgUID, ok := e.images.ActiveImage()
	if !ok {
		return nil, 0, fmt.Errorf("no active image")
	}
	img := e.images.Get(imgUID)
	if img == nil {
		return nil, 0, fmt.Errorf("active image %d not in store", imgUID)
	}
	return img, imgUID, nil
}

// selectedView resolves the selected view.
func (e *Editor) selectedView() (*view.View, error) {
	if e.selectedViewUID == nil {
		return nil, fmt.Errorf("no selected view")
	}
	v := e.views.Get(*e.selectedViewUID)
	if v == nil {
		return nil, fmt.Errorf("selected view %d not in registry", *e.selectedViewUID)
	}
	return v, nil
}

func intPtr(i int) *int { return &i }

func annotPtr(u annotation.UID) *annotation.UID { return &u }

func viewPtr(u view.UID) *view.UID { return &u }
