package editor

import "slice-annotator/internal/view"

// MouseButton identifies the pointer button of a press or drag.
type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
)

// Event is one input event dispatched to the editor. The concrete
// types below form a closed set; Handle pattern-matches on them.
type Event interface {
	eventName() string
}

// TurnOnEvent enables annotation mode.
type TurnOnEvent struct{}

// TurnOffEvent disables annotation mode from any state.
type TurnOffEvent struct{}

// PressEvent is a pointer button press resolved to a view hit.
type PressEvent struct {
	Hit    view.ViewHit
	Button MouseButton
}

// MoveEvent is a pointer move with no button held.
type MoveEvent struct {
	Hit view.ViewHit
}

// DragEvent is a pointer move with a button held. PrevHit is the hit
// of the previous pointer position.
type DragEvent struct {
	PrevHit view.ViewHit
	Hit     view.ViewHit
	Button  MouseButton
}

// CreateNewAnnotationEvent starts construction of a new polygon.
type CreateNewAnnotationEvent struct{}

// CompleteNewAnnotationEvent finishes the growing polygon, leaving it
// open.
type CompleteNewAnnotationEvent struct{}

// CloseNewAnnotationEvent finishes the growing polygon and closes it.
type CloseNewAnnotationEvent struct{}

// UndoVertexEvent removes the last vertex of the growing polygon.
type UndoVertexEvent struct{}

// CancelNewAnnotationEvent discards the growing polygon.
type CancelNewAnnotationEvent struct{}

// InsertVertexEvent inserts a vertex next to the selected vertex.
type InsertVertexEvent struct{}

// RemoveSelectedVertexEvent removes the selected vertex.
type RemoveSelectedVertexEvent struct{}

// RemoveSelectedAnnotationEvent removes the active annotation.
type RemoveSelectedAnnotationEvent struct{}

// CutEvent copies the active annotation to the clipboard and removes it.
type CutEvent struct{}

// CopyEvent copies the active annotation to the clipboard.
type CopyEvent struct{}

// PasteEvent pastes the clipboard annotation onto the current view's
// slice plane.
type PasteEvent struct{}

// FlipEvent mirrors the active annotation in view space.
type FlipEvent struct {
	Direction FlipDirection
}

func (TurnOnEvent) eventName() string                   { return "TurnOn" }
func (TurnOffEvent) eventName() string                  { return "TurnOff" }
func (PressEvent) eventName() string                    { return "Press" }
func (MoveEvent) eventName() string                     { return "Move" }
func (DragEvent) eventName() string                     { return "Drag" }
func (CreateNewAnnotationEvent) eventName() string      { return "CreateNewAnnotation" }
func (CompleteNewAnnotationEvent) eventName() string    { return "CompleteNewAnnotation" }
func (CloseNewAnnotationEvent) eventName() string       { return "CloseNewAnnotation" }
func (UndoVertexEvent) eventName() string               { return "UndoVertex" }
func (CancelNewAnnotationEvent) eventName() string      { return "CancelNewAnnotation" }
func (InsertVertexEvent) eventName() string             { return "InsertVertex" }
func (RemoveSelectedVertexEvent) eventName() string     { return "RemoveSelectedVertex" }
func (RemoveSelectedAnnotationEvent) eventName() string { return "RemoveSelectedAnnotation" }
func (CutEvent) eventName() string                      { return "Cut" }
func (CopyEvent) eventName() string                     { return "Copy" }
func (PasteEvent) eventName() string                    { return "Paste" }
func (FlipEvent) eventName() string                     { return "Flip" }
