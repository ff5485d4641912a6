package editor

import (
	"fmt"
	"log"
	"math"

	"slice-annotator/internal/annotation"
	"slice-annotator/internal/view"
	"slice-annotator/pkg/geometry"
)

// createGrowingPolygon starts a new empty annotation on the slice
// plane under the hit and registers it as both the growing annotation
// and the active annotation of the image.
func (e *Editor) createGrowingPolygon(hit view.ViewHit) error {
	v, err := e.selectedView()
	if err != nil {
		return err
	}
	img, imgUID, err := e.activeImage()
	if err != nil {
		return err
	}
	if v.ImageUID != imgUID {
		return fmt.Errorf("active image %q is not visible in the selected view", img.DisplayName)
	}

	subjPoint := img.WorldToSubjectPoint(hit.WorldPosOffset)
	subjNormal := img.WorldToSubjectDir(hit.WorldFrontAxis)
	plane, err := geometry.NewPlaneFromPointNormal(subjPoint, subjNormal)
	if err != nil {
		return fmt.Errorf("cannot derive annotation plane: %w", err)
	}

	a, err := annotation.New(plane)
	if err != nil {
		return fmt.Errorf("cannot create annotation: %w", err)
	}
	a.DisplayName = fmt.Sprintf("Annotation %d", len(img.AnnotationUIDs())+1)

	uid := e.annots.Add(a)
	img.AddAnnotation(uid)
	if err := img.SetActiveAnnotation(uid); err != nil {
		return err
	}
	e.growingAnnotUID = annotPtr(uid)
	return nil
}

// addVertexToGrowingPolygon appends a vertex to the growing polygon.
// Three checks run in order before any vertex is added:
//  1. a hit on the growing polygon's last vertex is ignored (repeated
//     clicks in place must not produce duplicate vertices);
//  2. a hit on the growing polygon's first vertex seals the polygon:
//     closed, filled, vertex 0 selected, no vertex added (the caller
//     transitions to standby when sealed is returned);
//  3. a hit on any existing vertex reuses that vertex's exact local
//     coordinates instead of re-projecting the pointer position, so
//     independently drawn polygons can share seams.
//
// Otherwise the pointer hit is projected into the polygon's plane and
// appended.
func (e *Editor) addVertexToGrowingPolygon(hit view.ViewHit) (sealed bool, err error) {
	if e.growingAnnotUID == nil {
		return false, fmt.Errorf("no growing annotation")
	}
	a := e.annots.Get(*e.growingAnnotUID)
	if a == nil {
		return false, fmt.Errorf("growing annotation %d not in store", *e.growingAnnotUID)
	}

	hits := e.findHitVertices(hit)
	n := a.NumVertices()

	for _, h := range hits {
		if h.AnnotUID == *e.growingAnnotUID && h.Vertex == n-1 {
			return false, nil
		}
	}
	for _, h := range hits {
		if h.AnnotUID == *e.growingAnnotUID && h.Vertex == 0 && n >= 2 && !a.Closed {
			a.Closed = true
			a.Filled = true
			e.selectedVertex = intPtr(0)
			e.growingAnnotUID = nil
			return true, nil
		}
	}

	var pt geometry.Point2D
	if len(hits) > 0 {
		other := e.annots.Get(hits[0].AnnotUID)
		pt, err = other.Vertex(hits[0].Vertex)
		if err != nil {
			return false, err
		}
	} else {
		img, _, err := e.activeImage()
		if err != nil {
			return false, err
		}
		pt = a.ProjectToPlane(img.WorldToSubjectPoint(hit.WorldPosOffset))
	}

	a.AppendVertex(pt)
	e.selectedVertex = intPtr(a.NumVertices() - 1)
	return false, nil
}

// undoLastVertexOfGrowingPolygon removes the growing polygon's last
// vertex, selecting the new last one. With fewer than two vertices the
// whole growing annotation is removed instead; removedAnnot reports
// that case so the caller can fall back to the creating state.
func (e *Editor) undoLastVertexOfGrowingPolygon() (removedAnnot bool, err error) {
	if e.growingAnnotUID == nil {
		return false, fmt.Errorf("no growing annotation")
	}
	uid := *e.growingAnnotUID
	a := e.annots.Get(uid)
	if a == nil {
		return false, fmt.Errorf("growing annotation %d not in store", uid)
	}

	n := a.NumVertices()
	if n >= 2 {
		if err := a.RemoveVertex(n - 1); err != nil {
			return false, err
		}
		e.selectedVertex = intPtr(n - 2)
		return false, nil
	}

	e.removeAnnotation(uid)
	return true, nil
}

// completeGrowingPolygon finishes construction. With closePolygon the
// polygon is also closed and filled, which requires at least three
// vertices; closing fewer is a no-op.
func (e *Editor) completeGrowingPolygon(closePolygon bool) error {
	if e.growingAnnotUID == nil {
		return fmt.Errorf("no growing annotation")
	}
	a := e.annots.Get(*e.growingAnnotUID)
	if a == nil {
		return fmt.Errorf("growing annotation %d not in store", *e.growingAnnotUID)
	}

	if closePolygon {
		if err := a.Close(); err != nil {
			log.Printf("Editor: %v", err)
		} else {
			a.Filled = true
		}
	}
	e.growingAnnotUID = nil
	e.selectedVertex = nil
	return nil
}

// cancelGrowingPolygon discards the growing annotation entirely.
func (e *Editor) cancelGrowingPolygon() {
	if e.growingAnnotUID == nil {
		return
	}
	e.removeAnnotation(*e.growingAnnotUID)
}

// insertVertex inserts a vertex relative to the selected vertex of the
// active annotation and moves the selection onto it. When the selected
// vertex is the last one: a lone vertex is duplicated with a small
// offset, an open polygon extrapolates the final edge, and a closed
// polygon splits the wrap-around edge at its midpoint. Any other
// selection splits the edge to its successor at the midpoint.
func (e *Editor) insertVertex() error {
	a, _, err := e.activeAnnotation()
	if err != nil {
		return err
	}
	if e.selectedVertex == nil {
		return fmt.Errorf("no selected vertex")
	}
	sel := *e.selectedVertex
	n := a.NumVertices()
	if sel < 0 || sel >= n {
		return fmt.Errorf("selected vertex %d out of range [0,%d)", sel, n)
	}

	var newPt geometry.Point2D
	var insertAt int
	if sel == n-1 {
		switch {
		case n == 1:
			v0, _ := a.Vertex(0)
			newPt = v0.Add(geometry.Point2D{X: loneVertexOffset, Y: loneVertexOffset})
			insertAt = 1
		case !a.Closed:
			prev, _ := a.Vertex(n - 2)
			last, _ := a.Vertex(n - 1)
			newPt = last.Add(last.Sub(prev))
			insertAt = n
		default:
			last, _ := a.Vertex(n - 1)
			first, _ := a.Vertex(0)
			newPt = last.Midpoint(first)
			insertAt = n
		}
	} else {
		cur, _ := a.Vertex(sel)
		next, _ := a.Vertex(sel + 1)
		newPt = cur.Midpoint(next)
		insertAt = sel + 1
	}

	if err := a.InsertVertex(insertAt, newPt); err != nil {
		return err
	}
	e.selectedVertex = intPtr(insertAt)
	return nil
}

// removeSelectedVertex removes the selected vertex of the active
// annotation, selecting its predecessor (wrapping to the new last
// vertex when index 0 of a closed polygon is removed). Removing the
// only vertex removes the whole annotation; removedAnnot reports that
// so the caller can return to standby.
func (e *Editor) removeSelectedVertex() (removedAnnot bool, err error) {
	a, uid, err := e.activeAnnotation()
	if err != nil {
		return false, err
	}
	if e.selectedVertex == nil {
		return false, fmt.Errorf("no selected vertex")
	}
	sel := *e.selectedVertex
	n := a.NumVertices()
	if sel < 0 || sel >= n {
		return false, fmt.Errorf("selected vertex %d out of range [0,%d)", sel, n)
	}

	if n == 1 {
		e.removeAnnotation(uid)
		return true, nil
	}

	wasClosed := a.Closed
	if err := a.RemoveVertex(sel); err != nil {
		return false, err
	}
	switch {
	case sel > 0:
		sel--
	case wasClosed:
		sel = a.NumVertices() - 1
	default:
		sel = 0
	}
	e.selectedVertex = intPtr(sel)
	return false, nil
}

// moveSelectedVertex moves the selected vertex of the active
// annotation to the current hit. The seam and auto-close checks of
// vertex addition run against the vertex's new candidate position: a
// hit on the polygon's own first vertex (from its last) seals the
// polygon without moving, and a hit on any other existing vertex snaps
// the moving vertex exactly onto it.
func (e *Editor) moveSelectedVertex(prevHit, currHit view.ViewHit) error {
	if prevHit.WorldPos == currHit.WorldPos {
		return nil
	}
	a, uid, err := e.activeAnnotation()
	if err != nil {
		return err
	}
	if e.selectedVertex == nil {
		return fmt.Errorf("no selected vertex")
	}
	sel := *e.selectedVertex
	n := a.NumVertices()
	if sel < 0 || sel >= n {
		return fmt.Errorf("selected vertex %d out of range [0,%d)", sel, n)
	}

	var hits []VertexHit
	for _, h := range e.findHitVertices(currHit) {
		if h.AnnotUID == uid && h.Vertex == sel {
			continue // the vertex being moved
		}
		hits = append(hits, h)
	}

	for _, h := range hits {
		if h.AnnotUID == uid && h.Vertex == 0 && sel == n-1 && n >= 2 && !a.Closed {
			a.Closed = true
			a.Filled = true
			e.selectedVertex = intPtr(0)
			return nil
		}
	}

	if len(hits) > 0 {
		other := e.annots.Get(hits[0].AnnotUID)
		pt, err := other.Vertex(hits[0].Vertex)
		if err != nil {
			return err
		}
		return a.SetVertex(sel, pt)
	}

	img, _, err := e.activeImage()
	if err != nil {
		return err
	}
	pt := a.ProjectToPlane(img.WorldToSubjectPoint(currHit.WorldPosOffset))
	return a.SetVertex(sel, pt)
}

// moveSelectedPolygon translates every vertex of the active annotation
// by the in-plane delta between the previous and current hit. The
// translation uses the raw plane-space delta; per-vertex re-projection
// is deliberately skipped even though strongly oblique planes can
// accumulate drift over many small moves.
func (e *Editor) moveSelectedPolygon(prevHit, currHit view.ViewHit) error {
	a, _, err := e.activeAnnotation()
	if err != nil {
		return err
	}
	img, _, err := e.activeImage()
	if err != nil {
		return err
	}

	prev := a.ProjectToPlane(img.WorldToSubjectPoint(prevHit.WorldPosOffset))
	curr := a.ProjectToPlane(img.WorldToSubjectPoint(currHit.WorldPosOffset))
	delta := curr.Sub(prev)
	if delta.X == 0 && delta.Y == 0 {
		return nil
	}
	a.Translate(delta)
	return nil
}

// flipSelectedAnnotation mirrors the active annotation about its
// centroid in the selected view's 2D clip coordinates. The flip is
// defined in view space, not polygon space, so its effect depends on
// the current camera orientation.
func (e *Editor) flipSelectedAnnotation(direction FlipDirection) error {
	a, _, err := e.activeAnnotation()
	if err != nil {
		return err
	}
	img, _, err := e.activeImage()
	if err != nil {
		return err
	}
	v, err := e.selectedView()
	if err != nil {
		return err
	}

	centroidClip := v.WorldToClip(img.SubjectToWorldPoint(a.PlanePoint(a.Centroid())))

	boundary := a.OuterBoundary()
	for i, vtx := range boundary {
		clip := v.WorldToClip(img.SubjectToWorldPoint(a.PlanePoint(vtx)))
		if direction == FlipHorizontal {
			clip.X = 2*centroidClip.X - clip.X
		} else {
			clip.Y = 2*centroidClip.Y - clip.Y
		}
		world := v.ClipToWorld(clip)
		if err := a.SetVertex(i, a.ProjectToPlane(img.WorldToSubjectPoint(world))); err != nil {
			return err
		}
	}
	return nil
}

// copyActiveAnnotation copies the active annotation into the
// process-wide clipboard slot.
func (e *Editor) copyActiveAnnotation() error {
	a, _, err := e.activeAnnotation()
	if err != nil {
		return err
	}
	e.clipboard.Put(a)
	return nil
}

// cutActiveAnnotation copies the active annotation and removes it.
func (e *Editor) cutActiveAnnotation() error {
	a, uid, err := e.activeAnnotation()
	if err != nil {
		return err
	}
	e.clipboard.Put(a)
	e.removeAnnotation(uid)
	return nil
}

// pasteAnnotation re-anchors the clipboard annotation onto the current
// view's slice plane and makes it the active annotation. A clipboard
// plane whose normal is not parallel to the new plane (within the warn
// threshold) logs a warning but does not block the paste.
func (e *Editor) pasteAnnotation() error {
	pasted := e.clipboard.Get()
	if pasted == nil {
		return fmt.Errorf("no copied annotation")
	}
	v, err := e.selectedView()
	if err != nil {
		return err
	}
	img, imgUID, err := e.activeImage()
	if err != nil {
		return err
	}
	if v.ImageUID != imgUID {
		return fmt.Errorf("active image %q is not visible in the selected view", img.DisplayName)
	}

	// The paste lands on the slice currently shown, so the view's
	// slice offset applies, same as for hits.
	cursor := v.Crosshair.Add(v.FrontAxis.Scale(v.SliceOffset))
	subjPoint := img.WorldToSubjectPoint(cursor)
	subjNormal := img.WorldToSubjectDir(v.FrontAxis)
	newPlane, err := geometry.NewPlaneFromPointNormal(subjPoint, subjNormal)
	if err != nil {
		return fmt.Errorf("cannot derive paste plane: %w", err)
	}

	if angle := geometry.NormalAngle(pasted.Plane, newPlane); angle > e.planeAngleWarnRad {
		log.Printf("Editor: pasted annotation plane differs from view plane by %.3f°",
			angle*180/math.Pi)
	}

	if err := pasted.SetPlane(newPlane); err != nil {
		return err
	}
	pasted.DisplayName += " (copy)"

	uid := e.annots.Add(pasted)
	img.AddAnnotation(uid)
	return img.SetActiveAnnotation(uid)
}

// removeActiveAnnotation removes the active annotation of the active
// image.
func (e *Editor) removeActiveAnnotation() error {
	_, uid, err := e.activeAnnotation()
	if err != nil {
		return err
	}
	e.removeAnnotation(uid)
	return nil
}

// removeAnnotation deletes an annotation from its images and the
// store, clearing every registry reference to it.
func (e *Editor) removeAnnotation(uid annotation.UID) {
	for _, imgUID := range e.images.UIDs() {
		if img := e.images.Get(imgUID); img != nil {
			img.RemoveAnnotation(uid)
		}
	}
	e.annots.Remove(uid)

	if e.growingAnnotUID != nil && *e.growingAnnotUID == uid {
		e.growingAnnotUID = nil
	}
	if e.hoveredAnnotUID != nil && *e.hoveredAnnotUID == uid {
		e.hoveredAnnotUID = nil
		e.hoveredVertex = nil
	}
	e.selectedVertex = nil
}
