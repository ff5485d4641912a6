package canvas

import (
	"image"
	"image/color"
	"sort"

	"slice-annotator/internal/annotation"
	imagevol "slice-annotator/internal/image"
	"slice-annotator/internal/view"
	"slice-annotator/pkg/colorutil"
	"slice-annotator/pkg/geometry"
)

const (
	vertexRadiusPx      = 3
	highlightedVertexPx = 5
)

// drawSlice renders the image slice visible in the view by inverse
// mapping: each output pixel goes through clip space into the volume's
// subject space and samples the nearest voxel. The clip-to-world map is
// affine, so per-pixel steps are precomputed from three corner probes.
func (sc *SliceCanvas) drawSlice(output *image.RGBA, w, h int) {
	v := sc.View()
	if v == nil || w <= 0 || h <= 0 {
		return
	}
	img := sc.state.Images.Get(v.ImageUID)
	if img == nil || len(img.Slices) == 0 {
		return
	}

	origin := v.ClipToWorld(geometry.Vec3{X: -1, Y: 1})
	right := v.ClipToWorld(geometry.Vec3{X: 1, Y: 1})
	down := v.ClipToWorld(geometry.Vec3{X: -1, Y: -1})

	subjOrigin := img.WorldToSubjectPoint(origin.Add(v.FrontAxis.Scale(v.SliceOffset)))
	subjDX := img.WorldToSubjectPoint(right).Sub(img.WorldToSubjectPoint(origin)).Scale(1 / float64(w))
	subjDY := img.WorldToSubjectPoint(down).Sub(img.WorldToSubjectPoint(origin)).Scale(1 / float64(h))

	for y := 0; y < h; y++ {
		rowBase := subjOrigin.Add(subjDY.Scale(float64(y) + 0.5))
		for x := 0; x < w; x++ {
			subj := rowBase.Add(subjDX.Scale(float64(x) + 0.5))

			xi := int(subj.X/img.Spacing.X + 0.5)
			yi := int(subj.Y/img.Spacing.Y + 0.5)
			zi := int(subj.Z/img.Spacing.Z + 0.5)
			if xi < 0 || xi >= img.Dims[0] || yi < 0 || yi >= img.Dims[1] || zi < 0 || zi >= len(img.Slices) {
				continue
			}

			slice := img.Slices[zi]
			if slice == nil {
				continue
			}
			b := slice.Bounds()
			output.Set(x, y, slice.At(b.Min.X+xi, b.Min.Y+yi))
		}
	}
}

// drawAnnotations renders every visible annotation of the view's image
// whose plane lies within half a slice spacing of the view's slice.
func (sc *SliceCanvas) drawAnnotations(output *image.RGBA, w, h int) {
	v := sc.View()
	if v == nil || w <= 0 || h <= 0 {
		return
	}
	img := sc.state.Images.Get(v.ImageUID)
	if img == nil {
		return
	}

	subjCursor := img.WorldToSubjectPoint(v.Crosshair.Add(v.FrontAxis.Scale(v.SliceOffset)))
	halfSpacing := img.SliceSpacingAlong(v.FrontAxis) / 2

	for _, uid := range img.AnnotationUIDs() {
		a := sc.state.Annotations.Get(uid)
		if a == nil || !a.Visible {
			continue
		}
		dist := a.Plane.SignedDistance(subjCursor)
		if dist < 0 {
			dist = -dist
		}
		if dist > halfSpacing {
			continue
		}
		sc.drawAnnotation(output, v, img, a, w, h)
	}
}

func (sc *SliceCanvas) drawAnnotation(output *image.RGBA, v *view.View, img *imagevol.Image, a *annotation.Annotation, w, h int) {
	boundary := a.OuterBoundary()
	n := len(boundary)
	if n == 0 {
		return
	}

	// Project plane-space vertices through the view camera to pixels.
	pts := make([]geometry.Point2D, n)
	for i, p := range boundary {
		world := img.SubjectToWorldPoint(a.PlanePoint(p))
		clip := v.WorldToClip(world)
		pts[i] = geometry.Point2D{
			X: (clip.X + 1) / 2 * float64(w),
			Y: (1 - clip.Y) / 2 * float64(h),
		}
	}

	lineCol := a.Style.LineColor
	if a.Highlighted {
		lineCol = colorutil.Lighten(lineCol, 0.6)
	}

	if a.Filled && a.Closed && n >= 3 {
		fillCol := colorutil.WithOpacity(a.Style.FillColor, a.Style.FillOpacity)
		fillPolygon(output, pts, fillCol)
	}

	thickness := 2
	if a.Highlighted {
		thickness = 3
	}
	edges := n - 1
	if a.Closed {
		edges = n
	}
	for i := 0; i < edges; i++ {
		j := (i + 1) % n
		col := lineCol
		t := thickness
		if edgeHighlighted(a, i, j) {
			col = colorutil.Yellow
			t = thickness + 1
		}
		drawLine(output, int(pts[i].X), int(pts[i].Y), int(pts[j].X), int(pts[j].Y), col, t)
	}

	if a.VertexVisibility && sc.editor.IsInStateWhereVertexHighlightsAreVisible() {
		for i, p := range pts {
			ref := annotation.VertexRef{Boundary: 0, Vertex: i}
			if _, hl := a.HighlightedVertices[ref]; hl {
				drawCircle(output, p, highlightedVertexPx, colorutil.Yellow)
			} else {
				drawCircle(output, p, vertexRadiusPx, lineCol)
			}
		}
	}
}

func edgeHighlighted(a *annotation.Annotation, i, j int) bool {
	if _, ok := a.HighlightedEdges[annotation.EdgeRef{Boundary: 0, V0: i, V1: j}]; ok {
		return true
	}
	_, ok := a.HighlightedEdges[annotation.EdgeRef{Boundary: 0, V0: j, V1: i}]
	return ok
}

// fillPolygon fills a polygon using a scanline algorithm, alpha
// blending the fill color over the existing pixels.
func fillPolygon(output *image.RGBA, pts []geometry.Point2D, col color.RGBA) {
	n := len(pts)
	if n < 3 {
		return
	}
	bounds := output.Bounds()

	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	for y := int(minY); y <= int(maxY); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}

		var xs []float64
		for i := 0; i < n; i++ {
			p1 := pts[i]
			p2 := pts[(i+1)%n]
			if (p1.Y <= float64(y) && p2.Y > float64(y)) ||
				(p2.Y <= float64(y) && p1.Y > float64(y)) {
				t := (float64(y) - p1.Y) / (p2.Y - p1.Y)
				xs = append(xs, p1.X+t*(p2.X-p1.X))
			}
		}
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			x1, x2 := int(xs[i]), int(xs[i+1])
			for x := x1; x <= x2; x++ {
				if x >= bounds.Min.X && x < bounds.Max.X {
					output.SetRGBA(x, y, colorutil.Blend(output.RGBAAt(x, y), col))
				}
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawCircle draws a filled circle centered at p.
func drawCircle(output *image.RGBA, p geometry.Point2D, radius float64, col color.RGBA) {
	bounds := output.Bounds()
	r2 := radius * radius

	minX := int(p.X - radius - 1)
	maxX := int(p.X + radius + 1)
	minY := int(p.Y - radius - 1)
	maxY := int(p.Y + radius + 1)

	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x) - p.X
			dy := float64(y) - p.Y
			if dx*dx+dy*dy <= r2 {
				output.Set(x, y, col)
			}
		}
	}
}
