// Package annotation provides planar polygon annotations anchored to a
// 3D plane in an image's subject space, plus their UID-keyed store and
// the copy/paste clipboard.
package annotation

import (
	"fmt"
	"image/color"

	"slice-annotator/pkg/geometry"
)

// UID identifies an annotation within the store.
type UID int64

// VertexRef identifies one vertex as (boundary, vertex index).
type VertexRef struct {
	Boundary int `json:"boundary"`
	Vertex   int `json:"vertex"`
}

// EdgeRef identifies one edge of a boundary by its two vertex indices.
// An edge is valid only if the indices are adjacent, including the
// wrap-around pair of a closed boundary.
type EdgeRef struct {
	Boundary int `json:"boundary"`
	V0       int `json:"v0"`
	V1       int `json:"v1"`
}

// Style holds the presentation attributes of an annotation.
type Style struct {
	LineColor   color.RGBA `json:"line_color"`
	FillColor   color.RGBA `json:"fill_color"`
	FillOpacity float64    `json:"fill_opacity"`
}

// DefaultStyle returns the style applied to newly created annotations.
func DefaultStyle() Style {
	return Style{
		LineColor:   color.RGBA{R: 255, G: 210, B: 80, A: 255},
		FillColor:   color.RGBA{R: 255, G: 210, B: 80, A: 255},
		FillOpacity: 0.25,
	}
}

// Annotation is a planar polygon anchored inside one image's subject
// space. Boundary 0 is the outer boundary; further boundaries are
// reserved for holes but no editing operation creates them.
//
// Fields are exported for persistence, but the plane and its derived
// origin/axes must be changed through SetPlane so they stay consistent.
type Annotation struct {
	DisplayName    string
	SourceFileName string

	Boundaries [][]geometry.Point2D

	Closed           bool
	Filled           bool
	Visible          bool
	VertexVisibility bool
	Smoothed         bool
	SmoothingFactor  float64

	Style Style

	Plane       geometry.Plane
	PlaneOrigin geometry.Vec3
	PlaneAxisU  geometry.Vec3
	PlaneAxisV  geometry.Vec3

	Highlighted         bool
	HighlightedVertices map[VertexRef]struct{}
	HighlightedEdges    map[EdgeRef]struct{}
}

// New creates an empty annotation anchored to the given subject-space
// plane. The plane normal must be non-zero.
func New(plane geometry.Plane) (*Annotation, error) {
	a := &Annotation{
		Boundaries:          [][]geometry.Point2D{{}},
		Visible:             true,
		VertexVisibility:    true,
		Style:               DefaultStyle(),
		HighlightedVertices: make(map[VertexRef]struct{}),
		HighlightedEdges:    make(map[EdgeRef]struct{}),
	}
	if err := a.SetPlane(plane); err != nil {
		return nil, err
	}
	return a, nil
}

// SetPlane sets the subject plane equation and recomputes the derived
// plane origin and in-plane axes.
func (a *Annotation) SetPlane(plane geometry.Plane) error {
	if plane.Normal().Norm() < 1e-12 {
		return fmt.Errorf("annotation plane has zero normal")
	}
	a.Plane = plane
	a.PlaneOrigin = plane.Origin()
	a.PlaneAxisU, a.PlaneAxisV = plane.Basis()
	return nil
}

// OuterBoundary returns the outer boundary's vertices.
func (a *Annotation) OuterBoundary() []geometry.Point2D {
	if len(a.Boundaries) == 0 {
		return nil
	}
	return a.Boundaries[0]
}

// NumVertices returns the number of vertices of the outer boundary.
func (a *Annotation) NumVertices() int {
	return len(a.OuterBoundary())
}

// Vertex returns the outer-boundary vertex at the given index.
func (a *Annotation) Vertex(i int) (geometry.Point2D, error) {
	b := a.OuterBoundary()
	if i < 0 || i >= len(b) {
		return geometry.Point2D{}, fmt.Errorf("vertex index %d out of range [0,%d)", i, len(b))
	}
	return b[i], nil
}

// AppendVertex appends a vertex to the outer boundary.
func (a *Annotation) AppendVertex(p geometry.Point2D) {
	if len(a.Boundaries) == 0 {
		a.Boundaries = [][]geometry.Point2D{{}}
	}
	a.Boundaries[0] = append(a.Boundaries[0], p)
}

// InsertVertex inserts a vertex into the outer boundary before index i.
func (a *Annotation) InsertVertex(i int, p geometry.Point2D) error {
	b := a.OuterBoundary()
	if i < 0 || i > len(b) {
		return fmt.Errorf("insert index %d out of range [0,%d]", i, len(b))
	}
	b = append(b, geometry.Point2D{})
	copy(b[i+1:], b[i:])
	b[i] = p
	a.Boundaries[0] = b
	return nil
}

// RemoveVertex removes the outer-boundary vertex at index i. If the
// boundary drops below three vertices the polygon can no longer be a
// closed loop, so the closed and filled flags are cleared.
func (a *Annotation) RemoveVertex(i int) error {
	b := a.OuterBoundary()
	if i < 0 || i >= len(b) {
		return fmt.Errorf("remove index %d out of range [0,%d)", i, len(b))
	}
	a.Boundaries[0] = append(b[:i], b[i+1:]...)
	if len(a.Boundaries[0]) < 3 {
		a.Closed = false
		a.Filled = false
	}
	return nil
}

// SetVertex overwrites the outer-boundary vertex at index i.
func (a *Annotation) SetVertex(i int, p geometry.Point2D) error {
	b := a.OuterBoundary()
	if i < 0 || i >= len(b) {
		return fmt.Errorf("vertex index %d out of range [0,%d)", i, len(b))
	}
	b[i] = p
	return nil
}

// Close marks the polygon closed. Closing requires at least three
// vertices; with fewer this is a no-op and an error is returned.
func (a *Annotation) Close() error {
	if a.NumVertices() < 3 {
		return fmt.Errorf("cannot close polygon with %d vertices", a.NumVertices())
	}
	a.Closed = true
	return nil
}

// Translate shifts every vertex of every boundary by the given
// in-plane delta.
func (a *Annotation) Translate(delta geometry.Point2D) {
	for bi := range a.Boundaries {
		for vi := range a.Boundaries[bi] {
			a.Boundaries[bi][vi] = a.Boundaries[bi][vi].Add(delta)
		}
	}
}

// ProjectToPlane returns the local in-plane coordinates of a 3D
// subject-space point.
func (a *Annotation) ProjectToPlane(p geometry.Vec3) geometry.Point2D {
	rel := p.Sub(a.PlaneOrigin)
	return geometry.Point2D{X: rel.Dot(a.PlaneAxisU), Y: rel.Dot(a.PlaneAxisV)}
}

// PlanePoint maps local in-plane coordinates back to subject space.
func (a *Annotation) PlanePoint(pt geometry.Point2D) geometry.Vec3 {
	return a.PlaneOrigin.
		Add(a.PlaneAxisU.Scale(pt.X)).
		Add(a.PlaneAxisV.Scale(pt.Y))
}

// Centroid returns the centroid of the outer boundary in local
// plane coordinates.
func (a *Annotation) Centroid() geometry.Point2D {
	return geometry.Centroid(a.OuterBoundary())
}

// ContainsPlanePoint tests whether a local-plane point lies inside the
// outer boundary. The bounding box is checked first to skip the
// ray-cast scan for points nowhere near the polygon.
func (a *Annotation) ContainsPlanePoint(p geometry.Point2D) bool {
	b := a.OuterBoundary()
	if !geometry.BoundingBox(b).Contains(p) {
		return false
	}
	return geometry.PointInPolygon(p, b)
}

// ClearHighlights resets all highlight state.
func (a *Annotation) ClearHighlights() {
	a.Highlighted = false
	for k := range a.HighlightedVertices {
		delete(a.HighlightedVertices, k)
	}
	for k := range a.HighlightedEdges {
		delete(a.HighlightedEdges, k)
	}
}

// HighlightVertex marks one vertex as highlighted.
func (a *Annotation) HighlightVertex(ref VertexRef) error {
	if ref.Boundary < 0 || ref.Boundary >= len(a.Boundaries) {
		return fmt.Errorf("boundary index %d out of range", ref.Boundary)
	}
	if ref.Vertex < 0 || ref.Vertex >= len(a.Boundaries[ref.Boundary]) {
		return fmt.Errorf("vertex index %d out of range", ref.Vertex)
	}
	a.HighlightedVertices[ref] = struct{}{}
	return nil
}

// HighlightEdge marks one edge as highlighted. The two vertex indices
// must be adjacent; for a closed boundary the (last, 0) pair counts.
func (a *Annotation) HighlightEdge(ref EdgeRef) error {
	if ref.Boundary < 0 || ref.Boundary >= len(a.Boundaries) {
		return fmt.Errorf("boundary index %d out of range", ref.Boundary)
	}
	n := len(a.Boundaries[ref.Boundary])
	if ref.V0 < 0 || ref.V0 >= n || ref.V1 < 0 || ref.V1 >= n {
		return fmt.Errorf("edge (%d,%d) out of range [0,%d)", ref.V0, ref.V1, n)
	}
	adjacent := ref.V1 == ref.V0+1 || ref.V0 == ref.V1+1
	wrap := a.Closed && n >= 3 &&
		((ref.V0 == n-1 && ref.V1 == 0) || (ref.V1 == n-1 && ref.V0 == 0))
	if !adjacent && !wrap {
		return fmt.Errorf("edge (%d,%d) is not adjacent", ref.V0, ref.V1)
	}
	a.HighlightedEdges[ref] = struct{}{}
	return nil
}

// Clone returns a deep copy of the annotation with highlight state
// cleared.
func (a *Annotation) Clone() *Annotation {
	c := *a
	c.Boundaries = make([][]geometry.Point2D, len(a.Boundaries))
	for i, b := range a.Boundaries {
		c.Boundaries[i] = append([]geometry.Point2D(nil), b...)
	}
	c.Highlighted = false
	c.HighlightedVertices = make(map[VertexRef]struct{})
	c.HighlightedEdges = make(map[EdgeRef]struct{})
	return &c
}
