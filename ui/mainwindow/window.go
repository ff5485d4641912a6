// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"

	"slice-annotator/internal/app"
	"slice-annotator/internal/editor"
	"slice-annotator/internal/image"
	"slice-annotator/internal/view"
	"slice-annotator/pkg/geometry"
	"slice-annotator/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const prefKeyLastDir = "lastDirectory"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	editor *editor.Editor
	canvas *canvas.SliceCanvas

	statusBar *widget.Label

	// Toolbar buttons shown and hidden as the editor state changes
	modeBtn      *widget.Button
	createBtn    *widget.Button
	completeBtn  *widget.Button
	closeBtn     *widget.Button
	undoBtn      *widget.Button
	cancelBtn    *widget.Button
	insertBtn    *widget.Button
	removeVtxBtn *widget.Button
	removeBtn    *widget.Button
	cutBtn       *widget.Button
	copyBtn      *widget.Button
	pasteBtn     *widget.Button
	flipHBtn     *widget.Button
	flipVBtn     *widget.Button
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, ed *editor.Editor) *MainWindow {
	win := fyneApp.NewWindow("Slice Annotator")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		editor: ed,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()
	mw.syncToolbar()

	return mw
}

// setupKeys binds slice paging to PageUp/PageDown.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyPageUp:
			mw.canvas.PageSlice(1)
		case fyne.KeyPageDown:
			mw.canvas.PageSlice(-1)
		}
	})
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewSliceCanvas(mw.state, mw.editor, 0)
	mw.canvas.OnEditorChange(func() {
		mw.syncToolbar()
	})

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar, // top
		nil,     // bottom
		nil,     // left
		nil,     // right
		mw.canvas.Container(), // center
	)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		canvasArea,                        // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1000, 750))
}

// createToolbar creates the annotation toolbar.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.modeBtn = widget.NewButton("Annotate", mw.onToggleMode)
	mw.createBtn = widget.NewButton("New Polygon", func() {
		mw.dispatch(editor.CreateNewAnnotationEvent{})
	})
	mw.completeBtn = widget.NewButton("Complete", func() {
		mw.dispatch(editor.CompleteNewAnnotationEvent{})
	})
	mw.closeBtn = widget.NewButton("Close", func() {
		mw.dispatch(editor.CloseNewAnnotationEvent{})
	})
	mw.undoBtn = widget.NewButton("Undo Vertex", func() {
		mw.dispatch(editor.UndoVertexEvent{})
	})
	mw.cancelBtn = widget.NewButton("Cancel", func() {
		mw.dispatch(editor.CancelNewAnnotationEvent{})
	})
	mw.insertBtn = widget.NewButton("Insert Vertex", func() {
		mw.dispatch(editor.InsertVertexEvent{})
	})
	mw.removeVtxBtn = widget.NewButton("Remove Vertex", func() {
		mw.dispatch(editor.RemoveSelectedVertexEvent{})
	})
	mw.removeBtn = widget.NewButton("Remove", func() {
		mw.dispatch(editor.RemoveSelectedAnnotationEvent{})
	})
	mw.cutBtn = widget.NewButton("Cut", func() {
		mw.dispatch(editor.CutEvent{})
	})
	mw.copyBtn = widget.NewButton("Copy", func() {
		mw.dispatch(editor.CopyEvent{})
	})
	mw.pasteBtn = widget.NewButton("Paste", func() {
		mw.dispatch(editor.PasteEvent{})
	})
	mw.flipHBtn = widget.NewButton("Flip H", func() {
		mw.dispatch(editor.FlipEvent{Direction: editor.FlipHorizontal})
	})
	mw.flipVBtn = widget.NewButton("Flip V", func() {
		mw.dispatch(editor.FlipEvent{Direction: editor.FlipVertical})
	})

	zoomOutBtn := widget.NewButton("-", func() { mw.canvas.ZoomOut() })
	zoomInBtn := widget.NewButton("+", func() { mw.canvas.ZoomIn() })

	return container.NewHBox(
		mw.modeBtn,
		widget.NewSeparator(),
		mw.createBtn,
		mw.completeBtn,
		mw.closeBtn,
		mw.undoBtn,
		mw.cancelBtn,
		widget.NewSeparator(),
		mw.insertBtn,
		mw.removeVtxBtn,
		mw.removeBtn,
		widget.NewSeparator(),
		mw.cutBtn,
		mw.copyBtn,
		mw.pasteBtn,
		mw.flipHBtn,
		mw.flipVBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Image Stack...", mw.onImportStack),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Cut", func() { mw.dispatch(editor.CutEvent{}) }),
		fyne.NewMenuItem("Copy", func() { mw.dispatch(editor.CopyEvent{}) }),
		fyne.NewMenuItem("Paste", func() { mw.dispatch(editor.PasteEvent{}) }),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu))
}

// setupEventHandlers wires application state events to the UI.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		uid, ok := data.(image.UID)
		if !ok {
			return
		}
		if err := mw.bindView(uid); err != nil {
			log.Printf("MainWindow: bind view: %v", err)
			return
		}
		mw.canvas.Refresh()
		mw.syncToolbar()
	})

	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		mw.canvas.Refresh()
		mw.updateStatus(fmt.Sprintf("Loaded %v", data))
	})

	mw.state.On(app.EventModified, func(interface{}) {
		mw.syncToolbar()
	})
}

// bindView creates an axial view centered on the loaded volume and
// points the canvas at it.
func (mw *MainWindow) bindView(uid image.UID) error {
	img := mw.state.Images.Get(uid)
	if img == nil {
		return fmt.Errorf("image %d not in store", uid)
	}

	center := geometry.Vec3{
		X: float64(img.Dims[0]) * img.Spacing.X / 2,
		Y: float64(img.Dims[1]) * img.Spacing.Y / 2,
		Z: float64(img.Dims[2]) * img.Spacing.Z / 2,
	}
	crosshair := img.SubjectToWorldPoint(center)
	front := img.SubjectToWorldDir(geometry.Vec3{Z: 1})
	up := img.SubjectToWorldDir(geometry.Vec3{Y: 1})

	extent := float64(img.Dims[0]) * img.Spacing.X
	if e := float64(img.Dims[1]) * img.Spacing.Y; e > extent {
		extent = e
	}
	pixelScale := extent / 512

	viewUID, err := mw.state.Views.Add(func(vuid view.UID) (*view.View, error) {
		return view.NewOrtho(vuid, uid, crosshair, front, up, extent, pixelScale)
	})
	if err != nil {
		return err
	}

	mw.canvas.SetView(viewUID)
	return nil
}

// dispatch sends an event to the editor and refreshes the UI.
func (mw *MainWindow) dispatch(ev editor.Event) {
	mw.editor.Handle(ev)
	mw.canvas.Refresh()
	mw.syncToolbar()
}

// syncToolbar shows and hides toolbar buttons to match the editor state.
func (mw *MainWindow) syncToolbar() {
	if mw.editor.IsAnnotationModeOn() {
		mw.modeBtn.SetText("Stop Annotating")
	} else {
		mw.modeBtn.SetText("Annotate")
	}

	setVisible(mw.createBtn, mw.editor.ShowToolbarCreateButton())
	setVisible(mw.completeBtn, mw.editor.ShowToolbarCompleteButton())
	setVisible(mw.closeBtn, mw.editor.ShowToolbarCloseButton())
	setVisible(mw.undoBtn, mw.editor.ShowToolbarCancelButton())
	setVisible(mw.cancelBtn, mw.editor.ShowToolbarCancelButton())
	setVisible(mw.insertBtn, mw.editor.ShowToolbarVertexButtons())
	setVisible(mw.removeVtxBtn, mw.editor.ShowToolbarVertexButtons())
	setVisible(mw.removeBtn, mw.editor.ShowToolbarClipboardButtons())
	setVisible(mw.cutBtn, mw.editor.ShowToolbarClipboardButtons())
	setVisible(mw.copyBtn, mw.editor.ShowToolbarClipboardButtons())
	setVisible(mw.pasteBtn, mw.editor.ShowToolbarClipboardButtons())
	setVisible(mw.flipHBtn, mw.editor.State() == editor.StateStandby)
	setVisible(mw.flipVBtn, mw.editor.State() == editor.StateStandby)

	mw.updateStatus(mw.editor.State().String())
}

func setVisible(btn *widget.Button, visible bool) {
	if visible {
		btn.Show()
	} else {
		btn.Hide()
	}
}

func (mw *MainWindow) onToggleMode() {
	if mw.editor.IsAnnotationModeOn() {
		mw.dispatch(editor.TurnOffEvent{})
	} else {
		mw.dispatch(editor.TurnOnEvent{})
	}
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) onOpenProject() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if err := mw.state.LoadProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.saveLastDir(path)
		mw.updateStatus(fmt.Sprintf("Opened %s", filepath.Base(path)))
	}, mw.Window)
}

func (mw *MainWindow) onSaveProjectAs() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := mw.state.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.saveLastDir(path)
		mw.updateStatus(fmt.Sprintf("Saved %s", filepath.Base(path)))
	}, mw.Window)
}

func (mw *MainWindow) onImportStack() {
	dialog.ShowFolderOpen(func(list fyne.ListableURI, err error) {
		if err != nil || list == nil {
			return
		}
		dir := list.Path()
		if _, err := mw.state.LoadImageStack(dir); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.saveLastDir(dir)
		mw.updateStatus(fmt.Sprintf("Imported %s", filepath.Base(dir)))
	}, mw.Window)
}

func (mw *MainWindow) saveLastDir(filePath string) {
	dir := filepath.Dir(filePath)
	mw.app.Preferences().SetString(prefKeyLastDir, dir)
}
