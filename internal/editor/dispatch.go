package editor

import (
	"log"

	"slice-annotator/internal/view"
)

// Handle dispatches one input event through the transition table. It
// is the single entry point of the editor: one event in, at most one
// state transition and a bounded amount of geometry work out. After
// every event the highlight state of all annotations is resynchronized.
//
// Precondition failures inside operations are non-fatal: they are
// logged and the event is otherwise ignored, leaving state unchanged.
func (e *Editor) Handle(ev Event) {
	switch ev := ev.(type) {
	case TurnOnEvent:
		if e.state == StateOff {
			e.state = StateViewBeingSelected
		}

	case TurnOffEvent:
		e.turnOff()

	case PressEvent:
		e.handlePress(ev)

	case MoveEvent:
		e.handleMove(ev)

	case DragEvent:
		e.handleDrag(ev)

	case CreateNewAnnotationEvent:
		if e.state == StateStandby {
			e.state = StateCreatingNewAnnotation
		}

	case CompleteNewAnnotationEvent:
		if e.state == StateAddingVertexToNewAnnotation {
			if err := e.completeGrowingPolygon(false); err != nil {
				log.Printf("Editor: complete: %v", err)
			}
			e.state = StateStandby
		}

	case CloseNewAnnotationEvent:
		if e.state == StateAddingVertexToNewAnnotation {
			if err := e.completeGrowingPolygon(true); err != nil {
				log.Printf("Editor: close: %v", err)
			}
			e.state = StateStandby
		}

	case UndoVertexEvent:
		if e.state == StateAddingVertexToNewAnnotation {
			removed, err := e.undoLastVertexOfGrowingPolygon()
			if err != nil {
				log.Printf("Editor: undo vertex: %v", err)
			} else if removed {
				e.state = StateCreatingNewAnnotation
			}
		}

	case CancelNewAnnotationEvent:
		if e.state == StateCreatingNewAnnotation || e.state == StateAddingVertexToNewAnnotation {
			e.cancelGrowingPolygon()
			e.state = StateStandby
		}

	case InsertVertexEvent:
		if e.state == StateVertexSelected {
			if err := e.insertVertex(); err != nil {
				log.Printf("Editor: insert vertex: %v", err)
			}
		}

	case RemoveSelectedVertexEvent:
		if e.state == StateVertexSelected {
			if e.selectedVertex == nil {
				break // re-issuing with nothing selected is a no-op
			}
			removed, err := e.removeSelectedVertex()
			if err != nil {
				log.Printf("Editor: remove vertex: %v", err)
			} else if removed {
				e.leaveVertexSelected()
				e.state = StateStandby
			}
		}

	case RemoveSelectedAnnotationEvent:
		if e.state == StateStandby || e.state == StateVertexSelected {
			if err := e.removeActiveAnnotation(); err != nil {
				log.Printf("Editor: remove annotation: %v", err)
			}
			if e.state == StateVertexSelected {
				e.leaveVertexSelected()
			}
			e.state = StateStandby
		}

	case CutEvent:
		if e.state == StateStandby || e.state == StateVertexSelected {
			if err := e.cutActiveAnnotation(); err != nil {
				log.Printf("Editor: cut: %v", err)
			}
			if e.state == StateVertexSelected {
				e.leaveVertexSelected()
			}
			e.state = StateStandby
		}

	case CopyEvent:
		if e.state == StateStandby || e.state == StateVertexSelected {
			if err := e.copyActiveAnnotation(); err != nil {
				log.Printf("Editor: copy: %v", err)
			}
		}

	case PasteEvent:
		if e.state == StateStandby || e.state == StateVertexSelected {
			if err := e.pasteAnnotation(); err != nil {
				log.Printf("Editor: paste: %v", err)
			}
		}

	case FlipEvent:
		if e.state == StateStandby {
			if err := e.flipSelectedAnnotation(ev.Direction); err != nil {
				log.Printf("Editor: flip: %v", err)
			}
		}

	default:
		log.Printf("Editor: unhandled event %q in state %s", ev.eventName(), e.state)
	}

	e.synchronizeHighlights()
}

// hitInSelectedView reports whether a pointer hit comes from the one
// view in which annotating is permitted. Hits resolved in any other
// registered view carry that view's pixel scale and front axis and
// must not reach the editing operations.
func (e *Editor) hitInSelectedView(hit view.ViewHit) bool {
	return e.selectedViewUID != nil && hit.ViewUID == *e.selectedViewUID
}

func (e *Editor) handlePress(ev PressEvent) {
	if e.state != StateViewBeingSelected && !e.hitInSelectedView(ev.Hit) {
		return
	}
	switch e.state {
	case StateViewBeingSelected:
		e.selectedViewUID = viewPtr(ev.Hit.ViewUID)
		e.hoveredViewUID = nil
		e.state = StateStandby

	case StateStandby:
		if ev.Button != ButtonLeft {
			return
		}
		if hits := e.findHitVertices(ev.Hit); len(hits) > 0 {
			if e.selectVertexHit(hits[0]) {
				e.state = StateVertexSelected
			}
			return
		}
		e.selectPolygonUnderCursor(ev.Hit)

	case StateCreatingNewAnnotation:
		if ev.Button != ButtonLeft {
			return
		}
		if err := e.createGrowingPolygon(ev.Hit); err != nil {
			log.Printf("Editor: create polygon: %v", err)
			return
		}
		if _, err := e.addVertexToGrowingPolygon(ev.Hit); err != nil {
			log.Printf("Editor: first vertex: %v", err)
			e.cancelGrowingPolygon()
			return
		}
		e.state = StateAddingVertexToNewAnnotation

	case StateAddingVertexToNewAnnotation:
		if ev.Button != ButtonLeft {
			return
		}
		sealed, err := e.addVertexToGrowingPolygon(ev.Hit)
		if err != nil {
			log.Printf("Editor: add vertex: %v", err)
			return
		}
		if sealed {
			e.state = StateStandby
		}

	case StateVertexSelected:
		if ev.Button != ButtonLeft {
			return
		}
		if hits := e.findHitVertices(ev.Hit); len(hits) > 0 {
			e.selectVertexHit(hits[0])
			return
		}
		e.leaveVertexSelected()
		e.selectPolygonUnderCursor(ev.Hit)
		e.state = StateStandby
	}
}

func (e *Editor) handleMove(ev MoveEvent) {
	if e.state == StateViewBeingSelected {
		e.hoveredViewUID = viewPtr(ev.Hit.ViewUID)
		return
	}
	if e.state == StateOff || !e.hitInSelectedView(ev.Hit) {
		return
	}

	// Hover is transient: recomputed on every pointer move.
	if hits := e.findHitVertices(ev.Hit); len(hits) > 0 {
		e.hoveredAnnotUID = annotPtr(hits[0].AnnotUID)
		e.hoveredVertex = intPtr(hits[0].Vertex)
		return
	}
	e.hoveredVertex = nil
	if polys := e.findHitPolygon(ev.Hit); len(polys) > 0 {
		e.hoveredAnnotUID = annotPtr(polys[len(polys)-1])
		return
	}
	e.hoveredAnnotUID = nil
}

func (e *Editor) handleDrag(ev DragEvent) {
	if ev.Button != ButtonLeft || !e.hitInSelectedView(ev.Hit) {
		return
	}
	switch e.state {
	case StateStandby:
		if err := e.moveSelectedPolygon(ev.PrevHit, ev.Hit); err != nil {
			log.Printf("Editor: move polygon: %v", err)
		}

	case StateAddingVertexToNewAnnotation:
		// Dragging keeps adding vertices; the too-close-to-last check
		// throttles the stream.
		sealed, err := e.addVertexToGrowingPolygon(ev.Hit)
		if err != nil {
			log.Printf("Editor: add vertex: %v", err)
			return
		}
		if sealed {
			e.state = StateStandby
		}

	case StateVertexSelected:
		if err := e.moveSelectedVertex(ev.PrevHit, ev.Hit); err != nil {
			log.Printf("Editor: move vertex: %v", err)
		}
	}
}

// selectVertexHit makes the hit annotation active on the active image
// and selects the hit vertex.
func (e *Editor) selectVertexHit(h VertexHit) bool {
	img, _, err := e.activeImage()
	if err != nil {
		log.Printf("Editor: select vertex: %v", err)
		return false
	}
	if err := img.SetActiveAnnotation(h.AnnotUID); err != nil {
		log.Printf("Editor: select vertex: %v", err)
		return false
	}
	e.selectedVertex = intPtr(h.Vertex)
	return true
}

// selectPolygonUnderCursor makes the top-most polygon under the hit
// the active annotation of the active image, if any.
func (e *Editor) selectPolygonUnderCursor(hit view.ViewHit) {
	polys := e.findHitPolygon(hit)
	if len(polys) == 0 {
		return
	}
	img, _, err := e.activeImage()
	if err != nil {
		log.Printf("Editor: select polygon: %v", err)
		return
	}
	if err := img.SetActiveAnnotation(polys[len(polys)-1]); err != nil {
		log.Printf("Editor: select polygon: %v", err)
	}
}

// leaveVertexSelected is the exit action of StateVertexSelected.
func (e *Editor) leaveVertexSelected() {
	e.selectedVertex = nil
}

// turnOff is the unconditional transition to StateOff: the growing
// polygon is discarded and all transient selection/hover state is
// reset to defaults.
func (e *Editor) turnOff() {
	e.cancelGrowingPolygon()
	e.selectedViewUID = nil
	e.hoveredViewUID = nil
	e.growingAnnotUID = nil
	e.selectedVertex = nil
	e.hoveredAnnotUID = nil
	e.hoveredVertex = nil
	e.state = StateOff
}
