package controllers

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filter-forge/internal/logger"
	"filter-forge/internal/models"
	"filter-forge/internal/pipeline"
	"filter-forge/internal/shader"
)

type syncThread struct{}

func (syncThread) Do(fn func())        { fn() }
func (syncThread) DoAndWait(fn func()) { fn() }

type fakeView struct {
	updateHandler func(models.EffectState)
	selectHandler func(string)

	snapshot        models.Snapshot
	controlsEnabled bool
	frames          []image.Image
	loadFailure     error
	shownErrors     []error
	imageInfo       string
	status          string
	frameW, frameH  int

	width, height, scale float32
}

func newFakeView() *fakeView {
	return &fakeView{width: 1280, height: 720, scale: 1}
}

func (v *fakeView) SetUpdateHandler(h func(models.EffectState)) { v.updateHandler = h }
func (v *fakeView) SetSelectHandler(h func(string))             { v.selectHandler = h }
func (v *fakeView) SetEffectState(s models.Snapshot)            { v.snapshot = s }
func (v *fakeView) SetControlsEnabled(enabled bool)             { v.controlsEnabled = enabled }
func (v *fakeView) ShowFrame(img image.Image)                   { v.frames = append(v.frames, img) }
func (v *fakeView) ShowLoadFailure(err error)                   { v.loadFailure = err }
func (v *fakeView) SetImageInfo(info string)                    { v.imageInfo = info }
func (v *fakeView) UpdateStatus(status string)                  { v.status = status }
func (v *fakeView) ShowError(err error)                         { v.shownErrors = append(v.shownErrors, err) }

func (v *fakeView) SetFrameInfo(width, height int, fps float64, lastDraw time.Duration) {
	v.frameW, v.frameH = width, height
}

func (v *fakeView) CanvasSize() (float32, float32, float32) {
	return v.width, v.height, v.scale
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 20), B: 90, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "input.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func newTestController(t *testing.T) (*MainController, *fakeView) {
	t.Helper()
	program, err := shader.Compile(shader.DefaultOptions())
	require.NoError(t, err)

	mc := NewMainController(
		models.NewEffectStack(),
		models.NewImageRepository(),
		pipeline.NewLoader(logger.Nop()),
		program,
		logger.Nop(),
		Options{MaxRenderDim: 64, UI: syncThread{}},
	)
	view := newFakeView()
	mc.SetMainView(view)
	t.Cleanup(mc.Shutdown)
	return mc, view
}

func TestLoadSource(t *testing.T) {
	mc, view := newTestController(t)

	require.NoError(t, mc.LoadSource(context.Background(), writePNG(t, 8, 6)))

	assert.False(t, mc.repo.Inert())
	assert.True(t, view.controlsEnabled)
	assert.Equal(t, "8x6, 3 channels, png", view.imageInfo)
	assert.Equal(t, "Loaded input.png", view.status)
	require.NotNil(t, mc.Renderer())
	assert.False(t, mc.Renderer().Inert())
}

func TestLoadSourceFailureIsInert(t *testing.T) {
	mc, view := newTestController(t)

	err := mc.LoadSource(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	require.ErrorIs(t, err, pipeline.ErrDecodeFailure)

	assert.True(t, mc.repo.Inert())
	assert.ErrorIs(t, mc.repo.LoadError(), pipeline.ErrDecodeFailure)
	assert.ErrorIs(t, view.loadFailure, pipeline.ErrDecodeFailure)
	assert.False(t, view.controlsEnabled)
	require.Len(t, view.shownErrors, 1)
	assert.ErrorIs(t, view.shownErrors[0], pipeline.ErrDecodeFailure)

	mc.RenderFrame()
	assert.Empty(t, view.frames)
}

func TestApplyUpdate(t *testing.T) {
	mc, view := newTestController(t)

	require.NoError(t, mc.ApplyUpdate(models.EffectState{Effect: models.Blur, Enabled: true, Intensity: 1.7}))
	st := view.snapshot.Get(models.Blur)
	assert.True(t, st.Enabled)
	assert.Equal(t, 1.0, st.Intensity)

	view.updateHandler(models.EffectState{Effect: models.Invert, Enabled: true, Intensity: 0.25})
	assert.True(t, view.snapshot.Get(models.Invert).Enabled)
	assert.True(t, view.snapshot.Get(models.Blur).Enabled)
}

func TestApplyUpdateRejectsInvalidEffect(t *testing.T) {
	mc, view := newTestController(t)
	before := mc.stack.Version()

	err := mc.ApplyUpdate(models.EffectState{Effect: models.Effect(9), Enabled: true, Intensity: 1})
	require.ErrorIs(t, err, models.ErrInvalidEffect)

	assert.Equal(t, before, mc.stack.Version())
	assert.Contains(t, view.status, "invalid effect")
}

func TestSelectEffect(t *testing.T) {
	mc, view := newTestController(t)
	require.NoError(t, mc.ApplyUpdate(models.EffectState{Effect: models.Mosaic, Enabled: true, Intensity: 0.5}))

	require.NoError(t, mc.SelectEffect("Grayscale"))
	active := view.snapshot.Active()
	require.Len(t, active, 1)
	assert.Equal(t, models.Grayscale, active[0].Effect)
	assert.Equal(t, 1.0, active[0].Intensity)

	view.selectHandler("Normal")
	assert.Empty(t, view.snapshot.Active())
	assert.InDelta(t, 0.5, view.snapshot.Get(models.Mosaic).Intensity, 1e-9)

	err := mc.SelectEffect("sepia")
	assert.ErrorIs(t, err, models.ErrInvalidEffect)
}

func TestRenderFrameRedrawsOnlyOnChange(t *testing.T) {
	mc, view := newTestController(t)
	require.NoError(t, mc.LoadSource(context.Background(), writePNG(t, 8, 6)))

	mc.RenderFrame()
	require.Len(t, view.frames, 1)
	b := view.frames[0].Bounds()
	assert.Equal(t, 64, b.Dx())
	assert.Equal(t, 44, b.Dy())
	assert.Equal(t, 960, view.frameW)
	assert.Equal(t, 664, view.frameH)

	mc.RenderFrame()
	assert.Len(t, view.frames, 1)

	require.NoError(t, mc.SelectEffect("Invert"))
	mc.RenderFrame()
	assert.Len(t, view.frames, 2)

	view.width = 1000
	mc.RenderFrame()
	require.Len(t, view.frames, 3)
	assert.Equal(t, 64, view.frames[2].Bounds().Dx())
}

func TestRunStopsOnShutdown(t *testing.T) {
	mc, _ := newTestController(t)
	require.NoError(t, mc.LoadSource(context.Background(), writePNG(t, 4, 4)))

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		mc.Run(context.Background())
	}()

	require.Eventually(t, func() bool {
		mc.mu.Lock()
		defer mc.mu.Unlock()
		return mc.done != nil
	}, time.Second, 5*time.Millisecond)

	mc.Shutdown()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("frame loop did not stop")
	}
	assert.Nil(t, mc.Renderer())
}
