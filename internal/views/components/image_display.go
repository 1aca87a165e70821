package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const placeholderText = "Load an image to begin"

// ImageDisplay presents the composited frame. The frame already matches the
// viewport aspect, so it is stretched over the whole area.
type ImageDisplay struct {
	container  *fyne.Container
	background *canvas.Rectangle
	frame      *canvas.Image
	message    *widget.Label

	hasFrame bool
}

// NewImageDisplay creates a new image display component
func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (id *ImageDisplay) createComponents() {
	id.background = canvas.NewRectangle(color.NRGBA{R: 24, G: 24, B: 28, A: 255})

	id.frame = canvas.NewImageFromImage(nil)
	id.frame.FillMode = canvas.ImageFillStretch
	id.frame.ScaleMode = canvas.ImageScaleFastest
	id.frame.Hide()

	id.message = widget.NewLabel(placeholderText)
	id.message.Alignment = fyne.TextAlignCenter
	id.message.Wrapping = fyne.TextWrapWord
}

func (id *ImageDisplay) setupLayout() {
	id.container = container.NewStack(
		id.background,
		id.frame,
		container.NewCenter(id.message),
	)
}

// SetFrame replaces the displayed frame. A nil frame restores the placeholder.
func (id *ImageDisplay) SetFrame(img image.Image) {
	if img == nil {
		id.hasFrame = false
		id.frame.Image = nil
		id.frame.Hide()
		id.message.SetText(placeholderText)
		id.message.Show()
		return
	}

	id.frame.Image = img
	id.frame.Show()
	id.frame.Refresh()
	if !id.hasFrame {
		id.message.Hide()
	}
	id.hasFrame = true
}

// ShowMessage hides any frame and shows msg in its place.
func (id *ImageDisplay) ShowMessage(msg string) {
	id.hasFrame = false
	id.frame.Image = nil
	id.frame.Hide()
	id.message.SetText(msg)
	id.message.Show()
}

// HasFrame reports whether a rendered frame is on screen
func (id *ImageDisplay) HasFrame() bool {
	return id.hasFrame
}

// Frame returns the displayed frame, or nil
func (id *ImageDisplay) Frame() image.Image {
	return id.frame.Image
}

// Message returns the placeholder text
func (id *ImageDisplay) Message() string {
	return id.message.Text
}

// GetContainer returns the main container
func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}
