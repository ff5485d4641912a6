package editor

import (
	"log"

	"slice-annotator/internal/annotation"
)

// synchronizeHighlights recomputes the highlight flags of every
// annotation of every image. It runs once per handled event, after the
// event's effects. The active (selected) annotation of each image is
// highlighted as a whole, plus its selected vertex when one exists;
// the hovered annotation gets only its hovered vertex highlighted,
// because hover is deliberately less prominent than selection.
func (e *Editor) synchronizeHighlights() {
	activeImgUID, hasActiveImg := e.images.ActiveImage()

	for _, imgUID := range e.images.UIDs() {
		img := e.images.Get(imgUID)
		if img == nil {
			continue
		}
		activeAnnot, hasActiveAnnot := img.ActiveAnnotation()

		for _, uid := range img.AnnotationUIDs() {
			a := e.annots.Get(uid)
			if a == nil {
				log.Printf("Editor: image %q references missing annotation %d", img.DisplayName, uid)
				continue
			}
			a.ClearHighlights()

			if hasActiveAnnot && uid == activeAnnot {
				a.Highlighted = true
				if hasActiveImg && imgUID == activeImgUID && e.selectedVertex != nil {
					ref := annotation.VertexRef{Boundary: 0, Vertex: *e.selectedVertex}
					if err := a.HighlightVertex(ref); err != nil {
						log.Printf("Editor: highlight selected vertex: %v", err)
					}
				}
			}

			if e.hoveredAnnotUID != nil && uid == *e.hoveredAnnotUID && e.hoveredVertex != nil {
				ref := annotation.VertexRef{Boundary: 0, Vertex: *e.hoveredVertex}
				if err := a.HighlightVertex(ref); err != nil {
					log.Printf("Editor: highlight hovered vertex: %v", err)
				}
			}
		}
	}
}
