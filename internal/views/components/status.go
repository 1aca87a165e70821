package components

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays application status and frame information
type StatusBar struct {
	container    *fyne.Container
	statusLabel  *widget.Label
	imageInfo    *widget.Label
	resolution   *widget.Label
	fpsLabel     *widget.Label
	failureLabel *widget.Label
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.imageInfo = widget.NewLabel("No image loaded")
	sb.resolution = widget.NewLabel("Viewport: --")
	sb.fpsLabel = widget.NewLabel("FPS: --")

	sb.failureLabel = widget.NewLabel("")
	sb.failureLabel.Importance = widget.DangerImportance
	sb.failureLabel.Hide()
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewHBox(
		sb.statusLabel,
		sb.failureLabel,
		widget.NewSeparator(),
		sb.imageInfo,
		widget.NewSeparator(),
		sb.resolution,
		widget.NewSeparator(),
		sb.fpsLabel,
	)
}

// SetStatus updates the main status message
func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

// GetStatus returns the current status message
func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetImageInfo updates the image information display
func (sb *StatusBar) SetImageInfo(info string) {
	sb.imageInfo.SetText(info)
}

// GetImageInfo returns the image information text
func (sb *StatusBar) GetImageInfo() string {
	return sb.imageInfo.Text
}

// SetFrameInfo updates the render resolution and frame rate readouts
func (sb *StatusBar) SetFrameInfo(width, height int, fps float64, lastDraw time.Duration) {
	if width <= 0 || height <= 0 {
		sb.resolution.SetText("Viewport: --")
	} else {
		sb.resolution.SetText(fmt.Sprintf("Viewport: %dx%d", width, height))
	}
	sb.fpsLabel.SetText(fmt.Sprintf("FPS: %.1f | Draw: %s", fps, lastDraw.Round(100*time.Microsecond)))
}

// GetFrameInfo returns the resolution and frame rate text
func (sb *StatusBar) GetFrameInfo() (string, string) {
	return sb.resolution.Text, sb.fpsLabel.Text
}

// SetFailure shows msg in the failure indicator. An empty msg hides it.
func (sb *StatusBar) SetFailure(msg string) {
	if msg == "" {
		sb.failureLabel.SetText("")
		sb.failureLabel.Hide()
		return
	}
	sb.failureLabel.SetText(msg)
	sb.failureLabel.Show()
}

// HasFailure reports whether the failure indicator is visible
func (sb *StatusBar) HasFailure() bool {
	return sb.failureLabel.Visible()
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
