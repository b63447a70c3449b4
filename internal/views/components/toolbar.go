package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar holds the photo actions and the current mode label.
type Toolbar struct {
	container    *fyne.Container
	openButton   *widget.Button
	randomButton *widget.Button
	saveButton   *widget.Button
	modeLabel    *widget.Label

	openHandler   func()
	randomHandler func()
	saveHandler   func()
}

func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents()
	toolbar.buildLayout()
	return toolbar
}

func (t *Toolbar) createComponents() {
	t.openButton = widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), func() {
		if t.openHandler != nil {
			t.openHandler()
		}
	})

	t.randomButton = widget.NewButtonWithIcon("Random", theme.ViewRefreshIcon(), func() {
		if t.randomHandler != nil {
			t.randomHandler()
		}
	})

	t.saveButton = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		if t.saveHandler != nil {
			t.saveHandler()
		}
	})
	t.saveButton.Importance = widget.HighImportance
	t.saveButton.Disable()

	t.modeLabel = widget.NewLabel("Blur")
	t.modeLabel.TextStyle = fyne.TextStyle{Bold: true}
}

func (t *Toolbar) buildLayout() {
	t.container = container.NewHBox(
		t.openButton,
		t.randomButton,
		widget.NewSeparator(),
		t.modeLabel,
		layout.NewSpacer(),
		t.saveButton,
	)
}

func (t *Toolbar) SetOpenHandler(handler func()) {
	t.openHandler = handler
}

func (t *Toolbar) SetRandomHandler(handler func()) {
	t.randomHandler = handler
}

func (t *Toolbar) SetSaveHandler(handler func()) {
	t.saveHandler = handler
}

func (t *Toolbar) SetMode(text string) {
	t.modeLabel.SetText(text)
}

func (t *Toolbar) Mode() string {
	return t.modeLabel.Text
}

// EnableSave toggles the save action; it needs a rendered image.
func (t *Toolbar) EnableSave(enabled bool) {
	if enabled {
		t.saveButton.Enable()
	} else {
		t.saveButton.Disable()
	}
}

func (t *Toolbar) SaveEnabled() bool {
	return !t.saveButton.Disabled()
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
