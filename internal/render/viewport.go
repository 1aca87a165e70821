package render

import (
	"image"
	"math"
)

// Chrome is the window area reserved for controls, in device-independent units.
type Chrome struct {
	TopBarHeight   float32
	SidePanelWidth float32
}

var DefaultChrome = Chrome{TopBarHeight: 56, SidePanelWidth: 320}

// Viewport is where the image plane lands in the window, in device pixels.
type Viewport struct {
	Rect  image.Rectangle
	Scale float32
}

// ComputeViewport derives the image rectangle from the window size, the
// chrome and the display scale. The image sits below the top bar and left
// of the side panel.
func ComputeViewport(windowWidth, windowHeight, scale float32, chrome Chrome) Viewport {
	if scale <= 0 {
		scale = 1
	}
	w := windowWidth - chrome.SidePanelWidth
	h := windowHeight - chrome.TopBarHeight
	if w <= 0 || h <= 0 {
		return Viewport{Scale: scale}
	}

	top := toPixels(chrome.TopBarHeight, scale)
	return Viewport{
		Rect:  image.Rect(0, top, toPixels(w, scale), top+toPixels(h, scale)),
		Scale: scale,
	}
}

func toPixels(v, scale float32) int {
	return int(math.Round(float64(v * scale)))
}

func (v Viewport) Empty() bool {
	return v.Rect.Empty()
}

// RenderSize is the render target size: the viewport size with the longer
// side capped at maxDim (0 disables the cap), aspect preserved.
func (v Viewport) RenderSize(maxDim int) (int, int) {
	w, h := v.Rect.Dx(), v.Rect.Dy()
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	longest := max(w, h)
	if maxDim <= 0 || longest <= maxDim {
		return w, h
	}
	k := float64(maxDim) / float64(longest)
	return max(1, int(math.Round(float64(w)*k))), max(1, int(math.Round(float64(h)*k)))
}
