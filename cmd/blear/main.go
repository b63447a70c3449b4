package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"blear/internal/config"
	"blear/internal/controllers"
	"blear/internal/dispatch"
	"blear/internal/library"
	"blear/internal/logger"
	"blear/internal/scheduler"
	"blear/internal/session"
	"blear/internal/shutdown"
	"blear/internal/transform"
	"blear/internal/transform/opencv"
	"blear/internal/views"
)

const (
	AppName    = "Blear"
	AppID      = "com.blear.wallpapers"
	AppVersion = "1.0.0"

	statsInterval = 30 * time.Second
	memoryLimit   = 2 << 30
)

// Application owns every long-lived component of the editor.
type Application struct {
	cfg     *config.Config
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	controller  *controllers.MainController
	view        *views.MainView
	scheduler   *scheduler.Scheduler
	session     *session.Session
	transformer transform.Transformer

	shutdown *shutdown.Manager
	ctx      context.Context
	cancel   context.CancelFunc
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	configureRuntime()

	application, err := NewApplication(cfg)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	application.Run()
}

// configureRuntime leaves headroom for large decoded photos.
func configureRuntime() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	if os.Getenv("GOMEMLIMIT") == "" {
		debug.SetMemoryLimit(memoryLimit)
	}
}

func NewApplication(cfg *config.Config) (*Application, error) {
	appLogger := logger.New(cfg.AppEnv, cfg.LogLevel)

	fyneApp := app.NewWithID(AppID)
	fyneApp.SetMetadata(&fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})

	window := fyneApp.NewWindow(AppName)
	window.Resize(windowSize(cfg))
	window.CenterOnScreen()

	view := views.NewMainView(window)

	profile := transform.BlurProfile{LargeScreen: cfg.LargeScreen, Tablet: cfg.IsTablet()}
	transformer := newTransformer(cfg.Backend, profile)
	sched, err := scheduler.New(transformer, view, dispatch.Fyne{}, scheduler.Options{
		FastDelay:   cfg.FastDebounce,
		SettleDelay: cfg.SettleDebounce,
		Logger:      appLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	sess, err := session.New(sched, library.NewAlbum(cfg.AlbumDir, appLogger), appLogger)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	controller := controllers.NewMainController(
		sess,
		library.NewLoader(cfg.MaxSourceDimension, appLogger),
		library.NewBundle(cfg.BundledPhotosDir),
		dispatch.Fyne{},
		appLogger,
	)
	controller.SetMainView(view)

	ctx, cancel := context.WithCancel(context.Background())
	manager := shutdown.NewManager(appLogger, shutdown.DefaultTimeout)
	manager.Register("scheduler", sched)
	manager.Register("controller", controller)
	manager.Register("stats monitor", shutdown.Func(cancel))

	application := &Application{
		cfg:         cfg,
		fyneApp:     fyneApp,
		window:      window,
		logger:      appLogger,
		controller:  controller,
		view:        view,
		scheduler:   sched,
		session:     sess,
		transformer: transformer,
		shutdown:    manager,
		ctx:         ctx,
		cancel:      cancel,
	}

	application.setupMenu()
	application.setupWindowEvents()

	appLogger.Info("Application", "application initialized", map[string]interface{}{
		"version":         AppVersion,
		"backend":         string(cfg.Backend),
		"form_factor":     string(cfg.FormFactor),
		"large_screen":    cfg.LargeScreen,
		"fast_debounce":   cfg.FastDebounce.String(),
		"settle_debounce": cfg.SettleDebounce.String(),
		"go_version":      runtime.Version(),
	})

	return application, nil
}

func newTransformer(backend config.Backend, profile transform.BlurProfile) transform.Transformer {
	if backend == config.BackendOpenCV {
		return opencv.NewTransformer(profile)
	}
	return transform.NewImaging(profile)
}

// Run blocks until the window closes.
func (a *Application) Run() {
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	go a.startStatsMonitoring()

	if _, err := os.Stat(a.cfg.BundledPhotosDir); err == nil {
		a.controller.RandomImage()
	}

	a.window.ShowAndRun()
	a.shutdown.Shutdown()
}

func (a *Application) setupMenu() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", a.controller.OpenImage),
		fyne.NewMenuItem("Random Photo", a.controller.RandomImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save to Album", a.controller.SaveImage),
		fyne.NewMenuItem("Export...", a.controller.ExportImage),
	)
	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu))
}

func (a *Application) setupWindowEvents() {
	a.window.SetOnClosed(func() {
		a.logger.Info("Application", "window closed", nil)
		a.shutdown.Shutdown()
	})
}

func (a *Application) startStatsMonitoring() {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.logStats()
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *Application) logStats() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	st := a.scheduler.Stats()
	fields := map[string]interface{}{
		"requests":        st.Requests,
		"fast_launches":   st.FastLaunches,
		"settle_launches": st.SettleLaunches,
		"deferred":        st.Deferred,
		"applied":         st.Applied,
		"discarded":       st.Discarded,
		"failed":          st.Failed,
		"generation":      st.Generation,
		"in_flight":       st.InFlight,
		"params":          a.session.Params().String(),
		"go_memory_mb":    memStats.Alloc / 1024 / 1024,
		"goroutine_count": runtime.NumGoroutine(),
	}

	if cv, ok := a.transformer.(*opencv.Transformer); ok {
		mem := cv.MemoryStats()
		fields["opencv_active_mats"] = mem.ActiveMats
		fields["opencv_peak_mats"] = mem.PeakMats
		fields["opencv_memory_mb"] = (mem.TotalAllocated - mem.TotalReleased) / 1024 / 1024
	}

	a.logger.Debug("Application", "scheduler stats", fields)
}

func windowSize(cfg *config.Config) fyne.Size {
	if cfg.IsTablet() {
		return fyne.NewSize(900, 1100)
	}
	return fyne.NewSize(480, 860)
}
