package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"blear/internal/effects"
)

// BlurSlider is the continuous blur control. Programmatic updates through
// SetValue do not call the change handler.
type BlurSlider struct {
	container *fyne.Container
	Slider    *widget.Slider
	value     *widget.Label
	silent    bool

	changeHandler func(float64)
}

func NewBlurSlider() *BlurSlider {
	bs := &BlurSlider{}
	bs.Slider = widget.NewSlider(effects.MinBlur, effects.MaxBlur)
	bs.Slider.Step = 1
	bs.value = widget.NewLabel(formatBlur(0))
	bs.Slider.OnChanged = bs.onChanged

	bs.container = container.NewBorder(nil, nil, widget.NewLabel("Blur"), bs.value, bs.Slider)
	return bs
}

func (bs *BlurSlider) onChanged(v float64) {
	bs.value.SetText(formatBlur(v))
	if bs.silent || bs.changeHandler == nil {
		return
	}
	bs.changeHandler(v)
}

func (bs *BlurSlider) SetChangeHandler(handler func(float64)) {
	bs.changeHandler = handler
}

func (bs *BlurSlider) SetValue(v float64) {
	bs.silent = true
	bs.Slider.SetValue(v)
	bs.silent = false
	bs.value.SetText(formatBlur(v))
}

func (bs *BlurSlider) Value() float64 {
	return bs.Slider.Value
}

func (bs *BlurSlider) GetContainer() *fyne.Container {
	return bs.container
}

func formatBlur(v float64) string {
	return fmt.Sprintf("%3.0f", v)
}
