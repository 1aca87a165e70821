package controllers

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"filter-forge/internal/logger"
	"filter-forge/internal/models"
	"filter-forge/internal/pipeline"
	"filter-forge/internal/render"
	"filter-forge/internal/shader"
	"filter-forge/internal/views/components"

	"fyne.io/fyne/v2"
)

const (
	DefaultFrameRate = 60
	statsInterval    = 250 * time.Millisecond
	stopTimeout      = 2 * time.Second
)

// View is what the controller drives. All methods run on the UI goroutine.
type View interface {
	SetUpdateHandler(func(models.EffectState))
	SetSelectHandler(func(string))
	SetEffectState(models.Snapshot)
	SetControlsEnabled(bool)
	ShowFrame(image.Image)
	ShowLoadFailure(error)
	ShowError(error)
	SetImageInfo(string)
	SetFrameInfo(width, height int, fps float64, lastDraw time.Duration)
	UpdateStatus(string)
	CanvasSize() (width, height, scale float32)
}

// UIThread hands work to the goroutine that owns the widgets.
type UIThread interface {
	Do(func())
	DoAndWait(func())
}

type fyneThread struct{}

func (fyneThread) Do(fn func())        { fyne.Do(fn) }
func (fyneThread) DoAndWait(fn func()) { fyne.DoAndWait(fn) }

// FyneThread dispatches through fyne.Do and fyne.DoAndWait.
func FyneThread() UIThread { return fyneThread{} }

type Options struct {
	FrameRate    int
	MaxRenderDim int
	Chrome       render.Chrome
	// UI defaults to FyneThread.
	UI UIThread
}

// MainController connects the effect controls to the stack and drives the
// frame loop that composites the source image.
//
// The effect stack is only touched on the UI goroutine: handlers run there
// and the frame loop snapshots it through UIThread.DoAndWait.
type MainController struct {
	stack   *models.EffectStack
	repo    *models.ImageRepository
	loader  *pipeline.Loader
	program *shader.Program
	view    View
	ui      UIThread
	logger  logger.Logger
	opts    Options

	mu       sync.Mutex
	renderer *render.Renderer
	cancel   context.CancelFunc
	done     chan struct{}

	lastStats time.Time
}

func NewMainController(
	stack *models.EffectStack,
	repo *models.ImageRepository,
	loader *pipeline.Loader,
	program *shader.Program,
	log logger.Logger,
	opts Options,
) *MainController {
	if log == nil {
		log = logger.Nop()
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultFrameRate
	}
	if opts.Chrome == (render.Chrome{}) {
		opts.Chrome = render.DefaultChrome
	}
	ui := opts.UI
	if ui == nil {
		ui = FyneThread()
	}

	return &MainController{
		stack:   stack,
		repo:    repo,
		loader:  loader,
		program: program,
		ui:      ui,
		logger:  log.With("controller"),
		opts:    opts,
	}
}

// SetMainView associates the view and connects its handlers
func (mc *MainController) SetMainView(view View) {
	mc.view = view
	view.SetUpdateHandler(func(st models.EffectState) {
		_ = mc.ApplyUpdate(st)
	})
	view.SetSelectHandler(func(option string) {
		_ = mc.SelectEffect(option)
	})
}

// LoadSource decodes path and uploads it for rendering. A failed decode is
// recorded and leaves the viewer inert: no frames, controls disabled.
func (mc *MainController) LoadSource(ctx context.Context, path string) error {
	src, err := mc.loader.LoadFile(ctx, path)
	if err != nil {
		mc.repo.SetLoadError(err)
		mc.logger.Error("image load failed", err, map[string]interface{}{
			"path":    path,
			"decode":  errors.Is(err, pipeline.ErrDecodeFailure),
			"channel": errors.Is(err, pipeline.ErrUnsupportedChannels),
		})
		mc.setRenderer(render.NewRenderer(mc.program, nil, mc.rendererOptions()))
		mc.ui.Do(func() {
			if mc.view != nil {
				mc.view.ShowLoadFailure(err)
				mc.view.SetControlsEnabled(false)
				mc.view.ShowError(err)
			}
		})
		return err
	}

	mc.repo.SetSource(src)
	mc.setRenderer(render.NewRenderer(mc.program, src, mc.rendererOptions()))

	mc.ui.Do(func() {
		if mc.view != nil {
			mc.view.SetImageInfo(src.Describe())
			mc.view.SetControlsEnabled(true)
			mc.view.SetEffectState(mc.stack.Snapshot())
			mc.view.UpdateStatus(fmt.Sprintf("Loaded %s", filepath.Base(path)))
		}
	})
	return nil
}

func (mc *MainController) rendererOptions() render.Options {
	return render.Options{
		MaxRenderDim: mc.opts.MaxRenderDim,
		Logger:       mc.logger.With("renderer"),
	}
}

func (mc *MainController) setRenderer(r *render.Renderer) {
	mc.mu.Lock()
	prev := mc.renderer
	mc.renderer = r
	mc.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

func (mc *MainController) currentRenderer() *render.Renderer {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.renderer
}

// ApplyUpdate applies one control change. Must run on the UI goroutine.
func (mc *MainController) ApplyUpdate(st models.EffectState) error {
	if err := mc.stack.Set(st.Effect, st.Enabled, st.Intensity); err != nil {
		mc.handleError("Effect update rejected", err)
		return err
	}

	mc.logger.Debug("effect updated", map[string]interface{}{
		"effect":    st.Effect.String(),
		"enabled":   st.Enabled,
		"intensity": st.Intensity,
	})
	mc.syncView()
	return nil
}

// SelectEffect enables option exclusively. The Normal option disables every
// effect. Must run on the UI goroutine.
func (mc *MainController) SelectEffect(option string) error {
	if strings.EqualFold(strings.TrimSpace(option), components.NormalOption) {
		mc.stack.Reset()
		mc.logger.Debug("effects reset", nil)
		mc.syncView()
		return nil
	}

	e, err := models.ParseEffect(option)
	if err == nil {
		err = mc.stack.Select(e)
	}
	if err != nil {
		mc.handleError("Effect selection rejected", err)
		return err
	}

	mc.logger.Debug("effect selected", map[string]interface{}{"effect": e.String()})
	mc.syncView()
	return nil
}

func (mc *MainController) syncView() {
	if mc.view != nil {
		mc.view.SetEffectState(mc.stack.Snapshot())
	}
}

// Run drives the frame loop until ctx is cancelled or Shutdown is called.
func (mc *MainController) Run(ctx context.Context) {
	mc.mu.Lock()
	if mc.done != nil {
		mc.mu.Unlock()
		mc.logger.Warning("frame loop already running", nil)
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	mc.cancel, mc.done = cancel, done
	mc.mu.Unlock()

	defer close(done)
	defer cancel()

	interval := time.Second / time.Duration(mc.opts.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	mc.logger.Info("frame loop started", map[string]interface{}{
		"frame_rate": mc.opts.FrameRate,
		"interval":   interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			mc.logger.Info("frame loop stopped", nil)
			return
		case <-ticker.C:
			mc.RenderFrame()
		}
	}
}

// RenderFrame runs one frame: snapshot and viewport on the UI goroutine,
// shading on the caller's goroutine, presentation back on the UI goroutine.
func (mc *MainController) RenderFrame() {
	r := mc.currentRenderer()
	if r == nil || mc.view == nil {
		return
	}

	var snap models.Snapshot
	var width, height, scale float32
	mc.ui.DoAndWait(func() {
		snap = mc.stack.Snapshot()
		width, height, scale = mc.view.CanvasSize()
	})

	vp := render.ComputeViewport(width, height, scale, mc.opts.Chrome)
	img, drawn, err := r.Frame(snap, vp)
	if err != nil {
		if !errors.Is(err, render.ErrClosed) {
			mc.logger.Error("frame failed", err, nil)
		}
		return
	}

	now := time.Now()
	refreshStats := now.Sub(mc.lastStats) >= statsInterval
	if !drawn && !refreshStats {
		return
	}
	if refreshStats {
		mc.lastStats = now
	}
	stats := r.Stats()

	mc.ui.Do(func() {
		if drawn {
			mc.view.ShowFrame(img)
		}
		if refreshStats {
			mc.view.SetFrameInfo(vp.Rect.Dx(), vp.Rect.Dy(), stats.FPS, stats.LastDraw)
		}
	})
}

// Renderer returns the active renderer, nil before LoadSource
func (mc *MainController) Renderer() *render.Renderer {
	return mc.currentRenderer()
}

func (mc *MainController) handleError(title string, err error) {
	mc.logger.Warning(title, map[string]interface{}{"error": err.Error()})
	if mc.view != nil {
		mc.view.UpdateStatus(fmt.Sprintf("%s: %v", title, err))
	}
}

// Shutdown stops the frame loop and releases the renderer
func (mc *MainController) Shutdown() {
	mc.mu.Lock()
	cancel, done := mc.cancel, mc.done
	mc.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-time.After(stopTimeout):
			mc.logger.Warning("frame loop did not stop in time", nil)
		}
	}

	mc.setRenderer(nil)
	mc.logger.Info("controller shut down", nil)
}
