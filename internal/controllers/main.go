package controllers

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"blear/internal/dispatch"
	"blear/internal/effects"
	"blear/internal/library"
	"blear/internal/logger"
	"blear/internal/session"
	"blear/internal/views"
)

const component = "MainController"

const ioTimeout = 30 * time.Second

// MainController connects view events to the session and runs file work
// off the UI goroutine.
type MainController struct {
	session    *session.Session
	loader     *library.Loader
	bundle     *library.Bundle
	dispatcher dispatch.Dispatcher
	log        logger.Logger

	mainView *views.MainView

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	loading    bool
	lastLoaded time.Time
}

func NewMainController(
	sess *session.Session,
	loader *library.Loader,
	bundle *library.Bundle,
	d dispatch.Dispatcher,
	log logger.Logger,
) *MainController {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MainController{
		session:    sess,
		loader:     loader,
		bundle:     bundle,
		dispatcher: d,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetMainView associates the view and installs its handlers.
func (mc *MainController) SetMainView(view *views.MainView) {
	mc.mainView = view

	view.SetOpenHandler(mc.OpenImage)
	view.SetRandomHandler(mc.RandomImage)
	view.SetSaveHandler(mc.SaveImage)
	view.SetBlurChangeHandler(mc.ChangeBlur)
	view.SetNavigateHandler(mc.Navigate)
}

// ChangeBlur runs on the UI goroutine for every slider movement.
func (mc *MainController) ChangeBlur(value float64) {
	mc.session.OnContinuousChange(value)
	mc.mainView.SetParams(mc.session.Params())
}

func (mc *MainController) Navigate(dir session.Direction) {
	p := mc.session.OnNavigate(dir)
	mc.mainView.SetParams(p)
}

func (mc *MainController) OpenImage() {
	mc.mainView.ShowFileOpenDialog(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mc.handleError("File selection failed", err)
			return
		}
		if reader == nil {
			return
		}
		go mc.loadFromReader(reader)
	})
}

// RandomImage loads the next bundled photo.
func (mc *MainController) RandomImage() {
	if mc.bundle == nil {
		return
	}
	go func() {
		path, err := mc.bundle.Next()
		if err != nil {
			mc.handleError("No bundled photos", err)
			return
		}
		mc.load(filepath.Base(path), func(ctx context.Context) (effects.SourceImage, error) {
			return mc.loader.Load(ctx, path)
		})
	}()
}

func (mc *MainController) loadFromReader(reader fyne.URIReadCloser) {
	defer reader.Close()
	name := reader.URI().Name()
	mc.load(name, func(ctx context.Context) (effects.SourceImage, error) {
		return mc.loader.Decode(ctx, reader, name)
	})
}

// load runs decode on the calling goroutine and hands the result to the
// session on the UI goroutine. Overlapping loads are dropped.
func (mc *MainController) load(name string, decode func(context.Context) (effects.SourceImage, error)) {
	mc.mu.Lock()
	if mc.loading {
		mc.mu.Unlock()
		mc.log.Debug(component, "load ignored while another is running", map[string]interface{}{
			"name": name,
		})
		return
	}
	mc.loading = true
	ctx, cancel := context.WithTimeout(mc.ctx, ioTimeout)
	mc.mu.Unlock()

	defer func() {
		cancel()
		mc.mu.Lock()
		mc.loading = false
		mc.mu.Unlock()
	}()

	mc.dispatcher.Do(func() {
		mc.mainView.UpdateStatus(fmt.Sprintf("Loading %s...", name))
	})

	src, err := decode(ctx)
	if err != nil {
		mc.handleError("Image load failed", err)
		return
	}

	mc.mu.Lock()
	mc.lastLoaded = time.Now()
	mc.mu.Unlock()

	mc.dispatcher.Do(func() {
		mc.session.OnSourceImageChanged(src)
		mc.mainView.SetParams(mc.session.Params())
		mc.mainView.SetSourceInfo(src.Bounds().Dx(), src.Bounds().Dy())
		mc.mainView.UpdateStatus(name)
	})
}

// SaveImage writes the image on screen to the album.
func (mc *MainController) SaveImage() {
	img := mc.mainView.CurrentImage()
	if img == nil {
		mc.handleError("Save failed", fmt.Errorf("no image to save"))
		return
	}

	mc.mainView.UpdateStatus("Saving...")
	go func() {
		ctx, cancel := context.WithTimeout(mc.ctx, ioTimeout)
		defer cancel()

		path, err := mc.session.Save(ctx, img)
		if err != nil {
			mc.handleError("Image save failed", err)
			return
		}
		mc.dispatcher.Do(func() {
			mc.mainView.UpdateStatus(fmt.Sprintf("Saved to %s", path))
		})
	}()
}

// ExportImage writes the image on screen to a file the user picks.
func (mc *MainController) ExportImage() {
	img := mc.mainView.CurrentImage()
	if img == nil {
		mc.handleError("Export failed", fmt.Errorf("no image to export"))
		return
	}

	mc.mainView.ShowFileSaveDialog("blear.jpg", func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mc.handleError("File selection failed", err)
			return
		}
		if writer == nil {
			return
		}
		go func() {
			defer writer.Close()
			if err := library.Encode(writer, img, writer.URI().Extension()); err != nil {
				mc.handleError("Export failed", err)
				return
			}
			mc.dispatcher.Do(func() {
				mc.mainView.UpdateStatus(fmt.Sprintf("Exported %s", writer.URI().Name()))
			})
		}()
	})
}

// LastLoaded reports when the current source finished loading.
func (mc *MainController) LastLoaded() time.Time {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lastLoaded
}

func (mc *MainController) handleError(title string, err error) {
	mc.log.Error(component, err, map[string]interface{}{
		"title": title,
	})
	mc.dispatcher.Do(func() {
		if mc.mainView != nil {
			mc.mainView.UpdateStatus(title)
			mc.mainView.ShowErrorDialog(err)
		}
	})
}

// Shutdown cancels pending file work.
func (mc *MainController) Shutdown() {
	mc.cancel()
}
