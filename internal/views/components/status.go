package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar shows the last status or error message and the source size.
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	imageInfo   *widget.Label
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Open a photo or pick a random one")
	sb.statusLabel.Truncation = fyne.TextTruncateEllipsis
	sb.imageInfo = widget.NewLabel("No image loaded")
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewBorder(nil, nil, nil, sb.imageInfo, sb.statusLabel)
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.Importance = widget.MediumImportance
	sb.statusLabel.SetText(status)
}

// SetError shows message in the danger color until the next status.
func (sb *StatusBar) SetError(message string) {
	sb.statusLabel.Importance = widget.DangerImportance
	sb.statusLabel.SetText(message)
}

func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

func (sb *StatusBar) IsError() bool {
	return sb.statusLabel.Importance == widget.DangerImportance
}

func (sb *StatusBar) SetImageInfo(width, height int) {
	sb.imageInfo.SetText(fmt.Sprintf("%d×%d", width, height))
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
