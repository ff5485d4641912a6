package editor

import (
	"math"

	"slice-annotator/internal/annotation"
	"slice-annotator/internal/view"
)

// VertexHit is one vertex candidate found under a pointer hit.
type VertexHit struct {
	AnnotUID annotation.UID
	Vertex   int
	DistPx   float64
}

// findHitVertices returns every outer-boundary vertex of the active
// image's annotations within the pixel hit radius of the pointer.
// Search is slice-local: only annotations whose plane lies within half
// the image's slice spacing (along the view front axis) of the hit are
// considered. The closest candidate is moved to index 0; ties keep
// store-iteration order. Callers wanting "the" hit vertex use index 0;
// callers wanting "any vertex at this position" scan the whole list.
func (e *Editor) findHitVertices(hit view.ViewHit) []VertexHit {
	img, _, err := e.activeImage()
	if err != nil {
		return nil
	}
	v := e.views.Get(hit.ViewUID)
	if v == nil {
		return nil
	}

	halfSpacing := img.SliceSpacingAlong(hit.WorldFrontAxis) / 2
	subjPos := img.WorldToSubjectPoint(hit.WorldPosOffset)

	var hits []VertexHit
	for _, uid := range img.AnnotationUIDs() {
		a := e.annots.Get(uid)
		if a == nil {
			continue
		}
		if math.Abs(a.Plane.SignedDistance(subjPos)) > halfSpacing {
			continue
		}
		local := a.ProjectToPlane(subjPos)
		for i, vtx := range a.OuterBoundary() {
			distPx := local.Distance(vtx) / v.WorldPixelScale
			if distPx <= e.vertexHitRadiusPx {
				hits = append(hits, VertexHit{AnnotUID: uid, Vertex: i, DistPx: distPx})
			}
		}
	}

	// Move the closest candidate to the front. Strict less-than keeps
	// the earliest candidate on ties (store-iteration order).
	best := 0
	for i := 1; i < len(hits); i++ {
		if hits[i].DistPx < hits[best].DistPx {
			best = i
		}
	}
	if len(hits) > 0 && best != 0 {
		hits[0], hits[best] = hits[best], hits[0]
	}
	return hits
}

// findHitPolygon returns the UIDs of every annotation of the active
// image whose outer boundary contains the pointer hit, using the same
// slice-local plane prefilter as findHitVertices. Results are in
// bottom-to-top draw order; the caller picks the top-most with the
// last element.
func (e *Editor) findHitPolygon(hit view.ViewHit) []annotation.UID {
	img, _, err := e.activeImage()
	if err != nil {
		return nil
	}

	halfSpacing := img.SliceSpacingAlong(hit.WorldFrontAxis) / 2
	subjPos := img.WorldToSubjectPoint(hit.WorldPosOffset)

	var hits []annotation.UID
	for _, uid := range img.AnnotationUIDs() {
		a := e.annots.Get(uid)
		if a == nil {
			continue
		}
		if math.Abs(a.Plane.SignedDistance(subjPos)) > halfSpacing {
			continue
		}
		if a.ContainsPlanePoint(a.ProjectToPlane(subjPos)) {
			hits = append(hits, uid)
		}
	}
	return hits
}
