package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

const (
	ImageAreaWidth  = 480
	ImageAreaHeight = 640
)

// ImageDisplay shows the current wallpaper, or a placeholder before the
// first result arrives.
type ImageDisplay struct {
	container   *fyne.Container
	image       *canvas.Image
	placeholder image.Image
	current     image.Image
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (id *ImageDisplay) createComponents() {
	id.placeholder = placeholderImage(ImageAreaWidth/8, ImageAreaHeight/8)

	id.image = canvas.NewImageFromImage(id.placeholder)
	id.image.FillMode = canvas.ImageFillContain
	id.image.ScaleMode = canvas.ImageScaleSmooth
	id.image.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
}

// placeholderImage is a flat light gray tile with a one pixel border.
func placeholderImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: 240, G: 240, B: 240, A: 255}
	border := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				img.SetRGBA(x, y, border)
			} else {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	return img
}

func (id *ImageDisplay) setupLayout() {
	bg := canvas.NewRectangle(color.RGBA{R: 24, G: 24, B: 24, A: 255})
	id.container = container.NewStack(bg, id.image)
}

// SetImage must be called from the UI goroutine. nil restores the
// placeholder.
func (id *ImageDisplay) SetImage(img image.Image) {
	id.current = img
	if img == nil {
		id.image.Image = id.placeholder
	} else {
		id.image.Image = img
	}
	id.image.Refresh()
}

// Image returns the last image shown, or nil.
func (id *ImageDisplay) Image() image.Image {
	return id.current
}

func (id *ImageDisplay) HasImage() bool {
	return id.current != nil
}

func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}
