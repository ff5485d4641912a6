// Package canvas provides the slice canvas: an image display with pan,
// zoom, and pointer events feeding the annotation editor.
package canvas

import (
	"image"

	"slice-annotator/internal/app"
	"slice-annotator/internal/editor"
	"slice-annotator/internal/view"
	"slice-annotator/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25
)

// SliceCanvas displays one view onto an image volume and forwards
// pointer events to the annotation editor.
type SliceCanvas struct {
	widget.BaseWidget

	state  *app.State
	editor *editor.Editor

	viewUID view.UID

	// Display state
	raster *fynecanvas.Raster
	zoom   float64

	// Drag state; a drag needs the hit of the previous pointer
	// position, and the first drag event doubles as the press.
	dragging    bool
	dragPrevHit view.ViewHit

	scroll  *zoomScroll
	content *interactiveContent
	imgSize fyne.Size

	// Last rendered output for sampling
	lastOutput *image.RGBA

	onZoomChange func(zoom float64)

	// onEditorChange runs after any pointer event was handled, so the
	// window can refresh toolbar visibility.
	onEditorChange func()
}

// zoomScroll wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *SliceCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *SliceCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	// Vertical wheel zooms, horizontal wheel pages through slices.
	zs.canvas.handleWheel(ev)
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// interactiveContent wraps the raster to handle mouse events.
type interactiveContent struct {
	widget.BaseWidget
	canvas *SliceCanvas
	raster *fynecanvas.Raster
}

func newInteractiveContent(sc *SliceCanvas, raster *fynecanvas.Raster) *interactiveContent {
	ic := &interactiveContent{
		canvas: sc,
		raster: raster,
	}
	ic.ExtendBaseWidget(ic)
	return ic
}

func (ic *interactiveContent) CreateRenderer() fyne.WidgetRenderer {
	return &interactiveContentRenderer{content: ic}
}

func (ic *interactiveContent) MinSize() fyne.Size {
	return ic.raster.MinSize()
}

// Tapped handles left-click events.
func (ic *interactiveContent) Tapped(ev *fyne.PointEvent) {
	hit, ok := ic.canvas.hitAt(ev.Position)
	if !ok {
		return
	}
	ic.canvas.editor.Handle(editor.PressEvent{Hit: hit, Button: editor.ButtonLeft})
	ic.canvas.editorChanged()
}

// TappedSecondary handles right-click events.
func (ic *interactiveContent) TappedSecondary(ev *fyne.PointEvent) {
	hit, ok := ic.canvas.hitAt(ev.Position)
	if !ok {
		return
	}
	ic.canvas.editor.Handle(editor.PressEvent{Hit: hit, Button: editor.ButtonRight})
	ic.canvas.editorChanged()
}

// Dragged forwards pointer drags. Fyne reports no separate press for a
// drag, so the first drag event is dispatched as the press.
func (ic *interactiveContent) Dragged(ev *fyne.DragEvent) {
	hit, ok := ic.canvas.hitAt(ev.Position)
	if !ok {
		return
	}

	if !ic.canvas.dragging {
		startPos := fyne.Position{
			X: ev.Position.X - ev.Dragged.DX,
			Y: ev.Position.Y - ev.Dragged.DY,
		}
		startHit, ok := ic.canvas.hitAt(startPos)
		if !ok {
			startHit = hit
		}
		ic.canvas.editor.Handle(editor.PressEvent{Hit: startHit, Button: editor.ButtonLeft})
		ic.canvas.dragging = true
		ic.canvas.dragPrevHit = startHit
	}

	ic.canvas.editor.Handle(editor.DragEvent{
		PrevHit: ic.canvas.dragPrevHit,
		Hit:     hit,
		Button:  editor.ButtonLeft,
	})
	ic.canvas.dragPrevHit = hit
	ic.canvas.editorChanged()
}

func (ic *interactiveContent) DragEnd() {
	ic.canvas.dragging = false
}

// MouseMoved forwards hover moves for vertex and polygon highlighting.
func (ic *interactiveContent) MouseMoved(ev *desktop.MouseEvent) {
	hit, ok := ic.canvas.hitAt(ev.Position)
	if !ok {
		return
	}
	ic.canvas.editor.Handle(editor.MoveEvent{Hit: hit})
	ic.canvas.editorChanged()
}

func (ic *interactiveContent) MouseIn(*desktop.MouseEvent) {}

func (ic *interactiveContent) MouseOut() {}

func (ic *interactiveContent) Scrolled(ev *fyne.ScrollEvent) {
	ic.canvas.handleWheel(ev)
}

type interactiveContentRenderer struct {
	content *interactiveContent
}

func (r *interactiveContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *interactiveContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *interactiveContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *interactiveContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *interactiveContentRenderer) Destroy() {}

// NewSliceCanvas creates a canvas bound to one view.
func NewSliceCanvas(state *app.State, ed *editor.Editor, viewUID view.UID) *SliceCanvas {
	sc := &SliceCanvas{
		state:   state,
		editor:  ed,
		viewUID: viewUID,
		zoom:    1.0,
		imgSize: fyne.NewSize(400, 300),
	}

	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels
	sc.raster.SetMinSize(sc.imgSize)

	sc.content = newInteractiveContent(sc, sc.raster)
	sc.scroll = newZoomScroll(sc.content, sc)

	sc.ExtendBaseWidget(sc)
	return sc
}

// Container returns the canvas container for embedding in layouts.
func (sc *SliceCanvas) Container() fyne.CanvasObject {
	return sc.scroll
}

// View returns the view this canvas renders.
func (sc *SliceCanvas) View() *view.View {
	return sc.state.Views.Get(sc.viewUID)
}

// SetView points the canvas at a different view.
func (sc *SliceCanvas) SetView(uid view.UID) {
	sc.viewUID = uid
	sc.dragging = false
	sc.updateContentSize()
}

// hitAt converts a widget-local pointer position to a view hit. The
// position maps through the raster into the view's clip space and from
// there into world space.
func (sc *SliceCanvas) hitAt(pos fyne.Position) (view.ViewHit, bool) {
	v := sc.View()
	if v == nil {
		return view.ViewHit{}, false
	}
	size := sc.content.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return view.ViewHit{}, false
	}

	// Clip space runs [-1,1] with Y up; widget Y runs down.
	clipX := 2*float64(pos.X)/float64(size.Width) - 1
	clipY := 1 - 2*float64(pos.Y)/float64(size.Height)

	world := v.ClipToWorld(geometry.Vec3{X: clipX, Y: clipY})
	return v.HitAt(world), true
}

func (sc *SliceCanvas) editorChanged() {
	sc.Refresh()
	if sc.onEditorChange != nil {
		sc.onEditorChange()
	}
}

// SetZoom sets the zoom level.
func (sc *SliceCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	sc.zoom = zoom
	sc.updateContentSize()

	if sc.onZoomChange != nil {
		sc.onZoomChange(zoom)
	}
}

// GetZoom returns the current zoom level.
func (sc *SliceCanvas) GetZoom() float64 {
	return sc.zoom
}

func (sc *SliceCanvas) handleWheel(ev *fyne.ScrollEvent) {
	dx, dy := ev.Scrolled.DX, ev.Scrolled.DY
	if abs32(dx) > abs32(dy) {
		if dx > 0 {
			sc.PageSlice(1)
		} else if dx < 0 {
			sc.PageSlice(-1)
		}
		return
	}
	if dy > 0 {
		sc.ZoomIn()
	} else if dy < 0 {
		sc.ZoomOut()
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// PageSlice steps the view through the volume along its front axis by
// the given number of slices.
func (sc *SliceCanvas) PageSlice(steps int) {
	v := sc.View()
	if v == nil {
		return
	}
	img := sc.state.Images.Get(v.ImageUID)
	if img == nil {
		return
	}
	v.SliceOffset += float64(steps) * img.SliceSpacingAlong(v.FrontAxis)
	sc.Refresh()
}

// ZoomIn increases the zoom level.
func (sc *SliceCanvas) ZoomIn() {
	sc.SetZoom(sc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (sc *SliceCanvas) ZoomOut() {
	sc.SetZoom(sc.zoom / zoomStep)
}

// OnZoomChange sets a callback for zoom changes.
func (sc *SliceCanvas) OnZoomChange(callback func(zoom float64)) {
	sc.onZoomChange = callback
}

// OnEditorChange sets a callback invoked after any pointer event was
// dispatched to the editor.
func (sc *SliceCanvas) OnEditorChange(callback func()) {
	sc.onEditorChange = callback
}

// GetRenderedOutput returns the last rendered canvas output for sampling.
func (sc *SliceCanvas) GetRenderedOutput() *image.RGBA {
	return sc.lastOutput
}

// Refresh refreshes the canvas display.
func (sc *SliceCanvas) Refresh() {
	sc.raster.Refresh()
}

func (sc *SliceCanvas) sliceBounds() image.Rectangle {
	v := sc.View()
	if v == nil {
		return image.Rect(0, 0, 0, 0)
	}
	img := sc.state.Images.Get(v.ImageUID)
	if img == nil || len(img.Slices) == 0 {
		return image.Rect(0, 0, 0, 0)
	}
	return img.Slices[0].Bounds()
}

func (sc *SliceCanvas) updateContentSize() {
	bounds := sc.sliceBounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		sc.imgSize = fyne.NewSize(400, 300)
	} else {
		width := float32(float64(bounds.Dx()) * sc.zoom)
		height := float32(float64(bounds.Dy()) * sc.zoom)
		sc.imgSize = fyne.NewSize(width, height)
	}

	sc.raster.SetMinSize(sc.imgSize)
	sc.raster.Resize(sc.imgSize)
	if sc.content != nil {
		sc.content.Resize(sc.imgSize)
		sc.content.Refresh()
	}
	sc.raster.Refresh()
	if sc.scroll != nil {
		sc.scroll.Refresh()
	}
}

// draw is the raster drawing function.
func (sc *SliceCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Fill with black background (set alpha channel)
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	sc.drawSlice(output, w, h)
	sc.lastOutput = output

	sc.drawAnnotations(output, w, h)

	return output
}

// CreateRenderer implements fyne.Widget.
func (sc *SliceCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &sliceCanvasRenderer{canvas: sc}
}

type sliceCanvasRenderer struct {
	canvas *SliceCanvas
}

func (r *sliceCanvasRenderer) Layout(size fyne.Size) {
	if r.canvas.scroll != nil {
		r.canvas.scroll.Resize(size)
	} else if r.canvas.content != nil {
		r.canvas.content.Resize(size)
	}
}

func (r *sliceCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *sliceCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *sliceCanvasRenderer) Objects() []fyne.CanvasObject {
	if r.canvas.scroll != nil {
		return []fyne.CanvasObject{r.canvas.scroll}
	}
	return []fyne.CanvasObject{r.canvas.content}
}

func (r *sliceCanvasRenderer) Destroy() {}
