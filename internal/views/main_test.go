package views

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"blear/internal/effects"
	"blear/internal/session"
)

func newTestView(t *testing.T) *MainView {
	t.Helper()
	a := test.NewTempApp(t)
	w := a.NewWindow("blear")
	t.Cleanup(w.Close)
	return NewMainView(w)
}

func TestShowAndError(t *testing.T) {
	mv := newTestView(t)

	if mv.CurrentImage() != nil {
		t.Fatal("expected no image before the first render")
	}
	if mv.toolbar.SaveEnabled() {
		t.Fatal("save should be disabled before the first render")
	}

	img := image.NewGray(image.Rect(0, 0, 3, 3))
	mv.Show(img)
	if mv.CurrentImage() != img {
		t.Fatal("Show did not update the display")
	}
	if !mv.toolbar.SaveEnabled() {
		t.Fatal("save should be enabled after a render")
	}

	mv.ShowError("processing failed for blur=5.0: boom")
	if !mv.statusBar.IsError() || mv.statusBar.GetStatus() != "processing failed for blur=5.0: boom" {
		t.Fatalf("status %q not shown as error", mv.statusBar.GetStatus())
	}
	if mv.CurrentImage() != img {
		t.Fatal("ShowError replaced the displayed image")
	}

	mv.Show(img)
	if mv.statusBar.IsError() {
		t.Fatal("error status kept after a successful render")
	}
}

func TestSliderForwardsUserChangesOnly(t *testing.T) {
	mv := newTestView(t)

	var got []float64
	mv.SetBlurChangeHandler(func(v float64) { got = append(got, v) })

	mv.blurSlider.Slider.SetValue(40)
	mv.SetParams(effects.Blur(10))

	if len(got) != 1 || got[0] != 40 {
		t.Fatalf("handler calls %v, want [40]", got)
	}
	if mv.blurSlider.Value() != 10 {
		t.Fatalf("slider value %v, want 10", mv.blurSlider.Value())
	}
	if mv.toolbar.Mode() != "Blur 10" {
		t.Fatalf("mode %q", mv.toolbar.Mode())
	}

	mv.SetParams(effects.WithFilter(effects.FilterSepiaTone, 10))
	if mv.toolbar.Mode() != "Filter: sepia_tone" {
		t.Fatalf("mode %q", mv.toolbar.Mode())
	}
}

func TestKeysAndSwipesNavigate(t *testing.T) {
	mv := newTestView(t)

	var dirs []session.Direction
	mv.SetNavigateHandler(func(d session.Direction) { dirs = append(dirs, d) })
	random := 0
	mv.SetRandomHandler(func() { random++ })

	onKey := mv.window.Canvas().OnTypedKey()
	onKey(&fyne.KeyEvent{Name: fyne.KeyRight})
	onKey(&fyne.KeyEvent{Name: fyne.KeyLeft})
	onKey(&fyne.KeyEvent{Name: fyne.KeyR})

	mv.swipeArea.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: -80, DY: 5}})
	mv.swipeArea.DragEnd()

	// Too short to count.
	mv.swipeArea.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 20}})
	mv.swipeArea.DragEnd()

	mv.swipeArea.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 50}})
	mv.swipeArea.Dragged(&fyne.DragEvent{Dragged: fyne.Delta{DX: 50}})
	mv.swipeArea.DragEnd()

	want := []session.Direction{session.Forward, session.Backward, session.Forward, session.Backward}
	if len(dirs) != len(want) {
		t.Fatalf("directions %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Fatalf("directions %v, want %v", dirs, want)
		}
	}
	if random != 1 {
		t.Fatalf("random handler called %d times, want 1", random)
	}
}
