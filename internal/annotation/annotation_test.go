package annotation

import (
	"testing"

	"slice-annotator/pkg/geometry"
)

func newTestAnnotation(t *testing.T, vertices ...geometry.Point2D) *Annotation {
	t.Helper()
	plane, err := geometry.NewPlaneFromPointNormal(geometry.Vec3{}, geometry.Vec3{Z: 1})
	if err != nil {
		t.Fatalf("plane: %v", err)
	}
	a, err := New(plane)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for _, v := range vertices {
		a.AppendVertex(v)
	}
	return a
}

func TestNewRejectsZeroNormal(t *testing.T) {
	if _, err := New(geometry.Plane{}); err == nil {
		t.Error("expected error for zero-normal plane")
	}
}

func TestCloseRequiresThreeVertices(t *testing.T) {
	a := newTestAnnotation(t, geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 1, Y: 0})

	if err := a.Close(); err == nil {
		t.Error("closing a two-vertex polygon should fail")
	}
	if a.Closed {
		t.Error("failed close must not set the closed flag")
	}

	a.AppendVertex(geometry.Point2D{X: 0, Y: 1})
	if err := a.Close(); err != nil {
		t.Errorf("closing a triangle failed: %v", err)
	}
	if !a.Closed {
		t.Error("close did not set the closed flag")
	}
}

func TestRemoveVertexUnclosesBelowThree(t *testing.T) {
	a := newTestAnnotation(t,
		geometry.Point2D{X: 0, Y: 0},
		geometry.Point2D{X: 4, Y: 0},
		geometry.Point2D{X: 4, Y: 4},
		geometry.Point2D{X: 0, Y: 4})
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	a.Filled = true

	// Four -> three: still a valid loop.
	if err := a.RemoveVertex(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !a.Closed || !a.Filled {
		t.Error("triangle should stay closed and filled")
	}

	// Three -> two: the loop degenerates.
	if err := a.RemoveVertex(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if a.Closed || a.Filled {
		t.Error("two-vertex polygon must not stay closed or filled")
	}
}

func TestInsertVertexOrder(t *testing.T) {
	a := newTestAnnotation(t, geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 2, Y: 0})

	if err := a.InsertVertex(1, geometry.Point2D{X: 1, Y: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	want := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}
	got := a.OuterBoundary()
	if len(got) != len(want) {
		t.Fatalf("expected %d vertices, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vertex %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	if err := a.InsertVertex(5, geometry.Point2D{}); err == nil {
		t.Error("expected error for out-of-range insert index")
	}
}

func TestTranslate(t *testing.T) {
	a := newTestAnnotation(t, geometry.Point2D{X: 1, Y: 1}, geometry.Point2D{X: 3, Y: 1})
	a.Translate(geometry.Point2D{X: 2, Y: -1})

	v0, _ := a.Vertex(0)
	v1, _ := a.Vertex(1)
	if v0 != (geometry.Point2D{X: 3, Y: 0}) || v1 != (geometry.Point2D{X: 5, Y: 0}) {
		t.Errorf("translate produced %+v, %+v", v0, v1)
	}
}

func TestProjectPlanePointRoundTrip(t *testing.T) {
	plane, err := geometry.NewPlaneFromPointNormal(geometry.Vec3{X: 1, Y: 2, Z: 3}, geometry.Vec3{X: 1, Y: 1, Z: 0})
	if err != nil {
		t.Fatalf("plane: %v", err)
	}
	a, err := New(plane)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	local := geometry.Point2D{X: -2.5, Y: 4}
	back := a.ProjectToPlane(a.PlanePoint(local))
	if local.Distance(back) > 1e-12 {
		t.Errorf("round trip failed: got %+v, want %+v", back, local)
	}
}

func TestSetPlaneRecomputesFrame(t *testing.T) {
	a := newTestAnnotation(t)

	p2, err := geometry.NewPlaneFromPointNormal(geometry.Vec3{Z: 5}, geometry.Vec3{X: 1})
	if err != nil {
		t.Fatalf("plane: %v", err)
	}
	if err := a.SetPlane(p2); err != nil {
		t.Fatalf("SetPlane: %v", err)
	}

	if a.PlaneOrigin != p2.Origin() {
		t.Errorf("origin not recomputed: %+v", a.PlaneOrigin)
	}
	u, v := p2.Basis()
	if a.PlaneAxisU != u || a.PlaneAxisV != v {
		t.Errorf("axes not recomputed")
	}
}

func TestHighlightEdgeAdjacency(t *testing.T) {
	a := newTestAnnotation(t,
		geometry.Point2D{X: 0, Y: 0},
		geometry.Point2D{X: 1, Y: 0},
		geometry.Point2D{X: 1, Y: 1},
		geometry.Point2D{X: 0, Y: 1})

	if err := a.HighlightEdge(EdgeRef{V0: 0, V1: 1}); err != nil {
		t.Errorf("adjacent edge rejected: %v", err)
	}
	if err := a.HighlightEdge(EdgeRef{V0: 0, V1: 2}); err == nil {
		t.Error("non-adjacent edge accepted")
	}

	// The wrap edge exists only once the polygon is closed.
	if err := a.HighlightEdge(EdgeRef{V0: 3, V1: 0}); err == nil {
		t.Error("wrap edge accepted on open polygon")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.HighlightEdge(EdgeRef{V0: 3, V1: 0}); err != nil {
		t.Errorf("wrap edge rejected on closed polygon: %v", err)
	}
}

func TestClearHighlights(t *testing.T) {
	a := newTestAnnotation(t, geometry.Point2D{}, geometry.Point2D{X: 1}, geometry.Point2D{Y: 1})
	a.Highlighted = true
	if err := a.HighlightVertex(VertexRef{Vertex: 1}); err != nil {
		t.Fatalf("highlight vertex: %v", err)
	}

	a.ClearHighlights()
	if a.Highlighted || len(a.HighlightedVertices) != 0 || len(a.HighlightedEdges) != 0 {
		t.Error("highlights not cleared")
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := newTestAnnotation(t, geometry.Point2D{X: 1, Y: 1}, geometry.Point2D{X: 2, Y: 2})
	a.Highlighted = true
	if err := a.HighlightVertex(VertexRef{Vertex: 0}); err != nil {
		t.Fatalf("highlight: %v", err)
	}

	c := a.Clone()
	if c.Highlighted || len(c.HighlightedVertices) != 0 {
		t.Error("clone must start with highlights cleared")
	}

	c.Boundaries[0][0] = geometry.Point2D{X: 99, Y: 99}
	if v, _ := a.Vertex(0); v == (geometry.Point2D{X: 99, Y: 99}) {
		t.Error("clone shares boundary storage with the original")
	}
}

func TestStoreUIDsInsertionOrder(t *testing.T) {
	s := NewStore()
	a := newTestAnnotation(t)
	b := newTestAnnotation(t)

	uidA := s.Add(a)
	uidB := s.Add(b)
	if uidA == uidB {
		t.Fatal("store assigned duplicate UIDs")
	}

	uids := s.UIDs()
	if len(uids) != 2 || uids[0] != uidA || uids[1] != uidB {
		t.Errorf("UIDs not in insertion order: %v", uids)
	}

	s.Remove(uidA)
	if s.Get(uidA) != nil {
		t.Error("removed annotation still retrievable")
	}
	if s.Len() != 1 {
		t.Errorf("expected length 1, got %d", s.Len())
	}
}

func TestClipboardIsolation(t *testing.T) {
	cb := NewClipboard()
	if cb.Get() != nil {
		t.Error("empty clipboard should return nil")
	}

	a := newTestAnnotation(t, geometry.Point2D{X: 1, Y: 2})
	cb.Put(a)

	// Mutating the original must not leak into the stored copy.
	a.Boundaries[0][0] = geometry.Point2D{X: 50, Y: 50}

	got := cb.Get()
	if got == nil {
		t.Fatal("clipboard lost its contents")
	}
	if v, _ := got.Vertex(0); v != (geometry.Point2D{X: 1, Y: 2}) {
		t.Errorf("clipboard copy shares storage: got %+v", v)
	}

	// Each Get returns an independent copy.
	got2 := cb.Get()
	if got == got2 {
		t.Error("Get returned the same instance twice")
	}

	cb.Clear()
	if cb.Get() != nil {
		t.Error("clipboard not cleared")
	}
}
