package views

import (
	"fyne.io/fyne/v2"

	"filter-forge/internal/render"
)

// chromeLayout pins the top bar and side panel to the sizes the renderer
// assumes, so the image area always matches the computed viewport.
// Objects are expected in order: top bar, side panel, image area.
type chromeLayout struct {
	chrome render.Chrome
}

func newChromeLayout(chrome render.Chrome) *chromeLayout {
	return &chromeLayout{chrome: chrome}
}

func (cl *chromeLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 3 {
		return
	}
	top, side, center := objects[0], objects[1], objects[2]

	bodyHeight := max(size.Height-cl.chrome.TopBarHeight, 0)
	centerWidth := max(size.Width-cl.chrome.SidePanelWidth, 0)

	top.Move(fyne.NewPos(0, 0))
	top.Resize(fyne.NewSize(size.Width, cl.chrome.TopBarHeight))

	side.Move(fyne.NewPos(centerWidth, cl.chrome.TopBarHeight))
	side.Resize(fyne.NewSize(min(cl.chrome.SidePanelWidth, size.Width), bodyHeight))

	center.Move(fyne.NewPos(0, cl.chrome.TopBarHeight))
	center.Resize(fyne.NewSize(centerWidth, bodyHeight))
}

func (cl *chromeLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	minHeight := cl.chrome.TopBarHeight
	if len(objects) > 1 {
		minHeight += objects[1].MinSize().Height
	}
	return fyne.NewSize(cl.chrome.SidePanelWidth, minHeight)
}
