package views

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"

	"blear/internal/effects"
	"blear/internal/session"
	"blear/internal/views/components"
)

// MainView is the editor window: toolbar, swipeable image, blur slider and
// status bar. It is the scheduler's display sink, so every method must run
// on the UI goroutine.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	imageDisplay  *components.ImageDisplay
	swipeArea     *components.SwipeArea
	blurSlider    *components.BlurSlider
	statusBar     *components.StatusBar

	randomHandler   func()
	navigateHandler func(session.Direction)
}

func NewMainView(window fyne.Window) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents()
	view.buildLayout()
	view.setupKeyboard()

	return view
}

func (mv *MainView) initializeComponents() {
	mv.toolbar = components.NewToolbar()
	mv.imageDisplay = components.NewImageDisplay()
	mv.blurSlider = components.NewBlurSlider()
	mv.statusBar = components.NewStatusBar()
	mv.swipeArea = components.NewSwipeArea(mv.imageDisplay.GetContainer(), func(left bool) {
		if left {
			mv.navigate(session.Forward)
		} else {
			mv.navigate(session.Backward)
		}
	})
}

func (mv *MainView) buildLayout() {
	bottomArea := container.NewVBox(
		mv.blurSlider.GetContainer(),
		mv.statusBar.GetContainer(),
	)

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		bottomArea,
		nil,
		nil,
		mv.swipeArea,
	)

	mv.window.SetContent(mv.mainContainer)
}

// setupKeyboard maps the arrow keys to filter navigation and R to a random
// bundled photo.
func (mv *MainView) setupKeyboard() {
	mv.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyRight:
			mv.navigate(session.Forward)
		case fyne.KeyLeft:
			mv.navigate(session.Backward)
		case fyne.KeyR:
			if mv.randomHandler != nil {
				mv.randomHandler()
			}
		}
	})
}

func (mv *MainView) navigate(dir session.Direction) {
	if mv.navigateHandler != nil {
		mv.navigateHandler(dir)
	}
}

// Event handler setters, called by the controller.

func (mv *MainView) SetOpenHandler(handler func()) {
	mv.toolbar.SetOpenHandler(handler)
}

func (mv *MainView) SetRandomHandler(handler func()) {
	mv.randomHandler = handler
	mv.toolbar.SetRandomHandler(handler)
}

func (mv *MainView) SetSaveHandler(handler func()) {
	mv.toolbar.SetSaveHandler(handler)
}

func (mv *MainView) SetBlurChangeHandler(handler func(float64)) {
	mv.blurSlider.SetChangeHandler(handler)
}

func (mv *MainView) SetNavigateHandler(handler func(session.Direction)) {
	mv.navigateHandler = handler
}

// Show displays a finished render.
func (mv *MainView) Show(img image.Image) {
	mv.imageDisplay.SetImage(img)
	mv.toolbar.EnableSave(img != nil)
	if mv.statusBar.IsError() {
		mv.statusBar.SetStatus("Ready")
	}
}

// ShowError reports a failed render without touching the displayed image.
func (mv *MainView) ShowError(message string) {
	mv.statusBar.SetError(message)
}

// SetParams syncs the controls with the session state.
func (mv *MainView) SetParams(p effects.Parameters) {
	mv.blurSlider.SetValue(p.BlurAmount)
	mv.toolbar.SetMode(modeText(p))
}

func modeText(p effects.Parameters) string {
	if p.HasFilter() {
		return fmt.Sprintf("Filter: %s", p.Filter)
	}
	return fmt.Sprintf("Blur %.0f", p.BlurAmount)
}

func (mv *MainView) SetSourceInfo(width, height int) {
	mv.statusBar.SetImageInfo(width, height)
}

func (mv *MainView) UpdateStatus(status string) {
	mv.statusBar.SetStatus(status)
}

// CurrentImage returns the image on screen, or nil before the first render.
func (mv *MainView) CurrentImage() image.Image {
	return mv.imageDisplay.Image()
}

func (mv *MainView) ShowErrorDialog(err error) {
	dialog.ShowError(err, mv.window)
}

func (mv *MainView) ShowInfo(title, message string) {
	dialog.ShowInformation(title, message, mv.window)
}

func (mv *MainView) ShowFileOpenDialog(callback func(fyne.URIReadCloser, error)) {
	dialog.ShowFileOpen(callback, mv.window)
}

func (mv *MainView) ShowFileSaveDialog(name string, callback func(fyne.URIWriteCloser, error)) {
	d := dialog.NewFileSave(callback, mv.window)
	d.SetFileName(name)
	d.Show()
}

func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}
