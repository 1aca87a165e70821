package views

import (
	"errors"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filter-forge/internal/models"
	"filter-forge/internal/render"
	"filter-forge/internal/views/components"
)

func newTestView(t *testing.T) (*MainView, fyne.Window) {
	t.Helper()
	a := test.NewTempApp(t)
	w := a.NewWindow("filter-forge")
	t.Cleanup(w.Close)
	w.SetPadded(false)

	view := NewMainView(w, render.DefaultChrome)
	w.Resize(fyne.NewSize(1280, 720))
	return view, w
}

func TestImageAreaMatchesViewport(t *testing.T) {
	view, _ := newTestView(t)

	w, h, scale := view.CanvasSize()
	assert.Equal(t, float32(1280), w)
	assert.Equal(t, float32(720), h)
	assert.Equal(t, float32(1), scale)

	area := view.GetImageDisplay().GetContainer()
	assert.Equal(t, fyne.NewPos(0, 56), area.Position())
	assert.Equal(t, fyne.NewSize(960, 664), area.Size())

	vp := render.ComputeViewport(w, h, scale, render.DefaultChrome)
	assert.Equal(t, int(area.Size().Width), vp.Rect.Dx())
	assert.Equal(t, int(area.Size().Height), vp.Rect.Dy())
}

func TestHandlersForwarded(t *testing.T) {
	view, _ := newTestView(t)

	var updates []models.EffectState
	var options []string
	view.SetUpdateHandler(func(st models.EffectState) { updates = append(updates, st) })
	view.SetSelectHandler(func(option string) { options = append(options, option) })

	view.GetEffectSelect().Choose("Invert")
	require.Equal(t, []string{"Invert"}, options)

	st, err := view.GetControlPanel().State(models.Invert)
	require.NoError(t, err)
	assert.False(t, st.Enabled)
	assert.Empty(t, updates)
}

func TestSetEffectStateSyncsSelector(t *testing.T) {
	view, _ := newTestView(t)
	stack := models.NewEffectStack()

	view.SetEffectState(stack.Snapshot())
	assert.Equal(t, components.NormalOption, view.GetEffectSelect().Selected())

	require.NoError(t, stack.Select(models.Grayscale))
	view.SetEffectState(stack.Snapshot())
	assert.Equal(t, "Grayscale", view.GetEffectSelect().Selected())

	st, err := view.GetControlPanel().State(models.Grayscale)
	require.NoError(t, err)
	assert.True(t, st.Enabled)
	assert.InDelta(t, 1.0, st.Intensity, 1e-9)

	require.NoError(t, stack.Set(models.Invert, true, 0.5))
	view.SetEffectState(stack.Snapshot())
	assert.Equal(t, "", view.GetEffectSelect().Selected())
}

func TestShowLoadFailure(t *testing.T) {
	view, _ := newTestView(t)

	view.ShowLoadFailure(errors.New("bad header"))
	view.SetControlsEnabled(false)

	assert.True(t, view.GetStatusBar().HasFailure())
	assert.Equal(t, "Image could not be loaded: bad header", view.GetImageDisplay().Message())
	assert.False(t, view.GetImageDisplay().HasFrame())
	assert.False(t, view.GetControlPanel().Enabled())
}
