package views

import (
	"image"
	"time"

	"filter-forge/internal/models"
	"filter-forge/internal/render"
	"filter-forge/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
)

// MainView is the viewer window: effect shortcut and status in the top bar,
// effect controls in the side panel, the composited image in the rest.
//
// Methods touch fyne widgets and must run on the fyne goroutine.
type MainView struct {
	window        fyne.Window
	chrome        render.Chrome
	mainContainer *fyne.Container
	effectSelect  *components.EffectSelect
	statusBar     *components.StatusBar
	controlPanel  *components.ControlPanel
	imageDisplay  *components.ImageDisplay

	// Event handlers - connected to controller
	updateHandler func(models.EffectState)
	selectHandler func(string)
}

// NewMainView builds the view and installs it as the window content
func NewMainView(window fyne.Window, chrome render.Chrome) *MainView {
	view := &MainView{
		window: window,
		chrome: chrome,
	}

	view.initializeComponents()
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

func (mv *MainView) initializeComponents() {
	mv.effectSelect = components.NewEffectSelect()
	mv.statusBar = components.NewStatusBar()
	mv.controlPanel = components.NewControlPanel()
	mv.imageDisplay = components.NewImageDisplay()
}

func (mv *MainView) buildLayout() {
	topBar := container.NewHBox(
		mv.effectSelect.GetContainer(),
		mv.statusBar.GetContainer(),
	)
	sidePanel := container.NewVScroll(mv.controlPanel.GetContainer())

	mv.mainContainer = container.New(newChromeLayout(mv.chrome),
		topBar,
		sidePanel,
		mv.imageDisplay.GetContainer(),
	)

	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) setupEventHandlers() {
	mv.controlPanel.SetUpdateHandler(func(st models.EffectState) {
		if mv.updateHandler != nil {
			mv.updateHandler(st)
		}
	})

	mv.effectSelect.SetSelectHandler(func(option string) {
		if mv.selectHandler != nil {
			mv.selectHandler(option)
		}
	})
}

// SetUpdateHandler sets the handler for control panel changes
func (mv *MainView) SetUpdateHandler(handler func(models.EffectState)) {
	mv.updateHandler = handler
}

// SetSelectHandler sets the handler for the effect shortcut
func (mv *MainView) SetSelectHandler(handler func(string)) {
	mv.selectHandler = handler
}

// SetEffectState mirrors snap into the controls and the shortcut selector
func (mv *MainView) SetEffectState(snap models.Snapshot) {
	mv.controlPanel.SetState(snap)

	active := snap.Active()
	switch len(active) {
	case 0:
		mv.effectSelect.Show(components.NormalOption)
	case 1:
		mv.effectSelect.Show(active[0].Effect.DisplayName())
	default:
		mv.effectSelect.Clear()
	}
}

// SetControlsEnabled enables or disables all effect inputs
func (mv *MainView) SetControlsEnabled(enabled bool) {
	mv.controlPanel.SetEnabled(enabled)
	mv.effectSelect.SetEnabled(enabled)
}

// ShowFrame displays a composited frame
func (mv *MainView) ShowFrame(img image.Image) {
	mv.imageDisplay.SetFrame(img)
}

// ShowLoadFailure marks the image plane and status bar as failed
func (mv *MainView) ShowLoadFailure(err error) {
	msg := "Image could not be loaded"
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	mv.imageDisplay.ShowMessage(msg)
	mv.statusBar.SetFailure("Decode failed")
	mv.statusBar.SetStatus("No image")
}

// SetImageInfo updates the image description
func (mv *MainView) SetImageInfo(info string) {
	mv.statusBar.SetImageInfo(info)
}

// SetFrameInfo updates the resolution and frame rate readouts
func (mv *MainView) SetFrameInfo(width, height int, fps float64, lastDraw time.Duration) {
	mv.statusBar.SetFrameInfo(width, height, fps, lastDraw)
}

// UpdateStatus updates the status bar message
func (mv *MainView) UpdateStatus(status string) {
	mv.statusBar.SetStatus(status)
}

// CanvasSize returns the window canvas size and its display scale
func (mv *MainView) CanvasSize() (width, height, scale float32) {
	c := mv.window.Canvas()
	size := c.Size()
	return size.Width, size.Height, c.Scale()
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(err error) {
	dialog.ShowError(err, mv.window)
}

// GetControlPanel returns the control panel component
func (mv *MainView) GetControlPanel() *components.ControlPanel {
	return mv.controlPanel
}

// GetEffectSelect returns the effect shortcut component
func (mv *MainView) GetEffectSelect() *components.EffectSelect {
	return mv.effectSelect
}

// GetStatusBar returns the status bar component
func (mv *MainView) GetStatusBar() *components.StatusBar {
	return mv.statusBar
}

// GetImageDisplay returns the image display component
func (mv *MainView) GetImageDisplay() *components.ImageDisplay {
	return mv.imageDisplay
}
