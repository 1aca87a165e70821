package main

import (
	"context"
	"log"
	"runtime"
	"time"

	"filter-forge/internal/config"
	"filter-forge/internal/controllers"
	"filter-forge/internal/logger"
	"filter-forge/internal/models"
	"filter-forge/internal/opencv"
	"filter-forge/internal/pipeline"
	"filter-forge/internal/render"
	"filter-forge/internal/shader"
	"filter-forge/internal/shutdown"
	"filter-forge/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName    = "Filter Forge"
	AppID      = "io.filterforge.viewer"
	AppVersion = "1.0.0"

	metricsInterval = 30 * time.Second
)

// Application wires the viewer's models, view and controller together
type Application struct {
	cfg     config.Config
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	controller *controllers.MainController
	view       *views.MainView

	stack     *models.EffectStack
	imageRepo *models.ImageRepository
	shutdown  *shutdown.Manager
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	application, err := NewApplication(cfg)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	application.Run()
	log.Println("Application terminated successfully")
}

// NewApplication compiles the compositing program and builds the window.
// A program that fails to compile is fatal: there is nothing to show.
func NewApplication(cfg config.Config) (*Application, error) {
	appLogger := cfg.NewLogger()

	appLogger.Info("Application starting", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
		"log_level":  cfg.LogLevel.String(),
		"image":      cfg.ImagePath,
	})

	program, err := shader.Compile(shader.Options{
		BlurMaxRadius: cfg.BlurMaxRadius,
		BlurStride:    cfg.BlurStride,
	})
	if err != nil {
		appLogger.Error("shader compilation failed", err, nil)
		return nil, err
	}
	opts := program.Options()
	appLogger.Debug("shader compiled", map[string]interface{}{
		"spirv_bytes":     len(program.SPIRV()),
		"blur_max_radius": opts.BlurMaxRadius,
		"blur_stride":     opts.BlurStride,
	})

	fyneApp := app.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(float32(cfg.WindowWidth), float32(cfg.WindowHeight)))
	window.CenterOnScreen()

	stack := models.NewEffectStack()
	imageRepo := models.NewImageRepository()
	loader := pipeline.NewLoader(appLogger.With("loader"), opencv.NewDecoder())

	mainView := views.NewMainView(window, render.DefaultChrome)
	mainController := controllers.NewMainController(
		stack, imageRepo, loader, program, appLogger,
		controllers.Options{
			FrameRate:    cfg.FrameRate,
			MaxRenderDim: cfg.MaxRenderDim,
			Chrome:       render.DefaultChrome,
		},
	)
	mainController.SetMainView(mainView)

	// Components stop in reverse order: controller, repository, then the UI.
	mgr := shutdown.NewManager(appLogger)
	mgr.Register(shutdown.Func(func() { fyne.Do(fyneApp.Quit) }))
	mgr.Register(imageRepo)
	mgr.Register(mainController)

	application := &Application{
		cfg:        cfg,
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger,
		controller: mainController,
		view:       mainView,
		stack:      stack,
		imageRepo:  imageRepo,
		shutdown:   mgr,
	}
	application.setupWindowEvents()

	return application, nil
}

// Run blocks until the window is closed or a signal arrives
func (app *Application) Run() {
	ctx := app.shutdown.Context()
	app.shutdown.Listen()

	app.fyneApp.Lifecycle().SetOnStarted(func() {
		go app.start(ctx)
	})

	app.window.ShowAndRun()

	app.shutdown.Shutdown()
	app.performCleanup()
}

func (app *Application) start(ctx context.Context) {
	// A failed load leaves the viewer inert; the window stays up to say so.
	_ = app.controller.LoadSource(ctx, app.cfg.ImagePath)

	go app.startPerformanceMonitoring(ctx)
	app.controller.Run(ctx)
}

func (app *Application) setupWindowEvents() {
	app.window.SetCloseIntercept(func() {
		app.logger.Info("Window close requested", nil)
		go app.shutdown.Shutdown()
	})
}

func (app *Application) startPerformanceMonitoring(ctx context.Context) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			app.logPerformanceMetrics()
		case <-ctx.Done():
			return
		}
	}
}

func (app *Application) logPerformanceMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fields := map[string]interface{}{
		"go_memory_mb":    memStats.Alloc / 1024 / 1024,
		"go_gc_runs":      memStats.NumGC,
		"source_bytes":    app.imageRepo.MemoryUsage(),
		"goroutine_count": runtime.NumGoroutine(),
	}
	if r := app.controller.Renderer(); r != nil {
		stats := r.Stats()
		fields["fps"] = stats.FPS
		fields["frames"] = stats.Frames
		fields["draws"] = stats.Draws
		fields["avg_draw_ms"] = stats.AverageDraw.Milliseconds()
	}

	app.logger.Debug("Performance metrics", fields)
}

func (app *Application) performCleanup() {
	runtime.GC()
	app.logger.Info("Application cleanup completed", nil)
}
