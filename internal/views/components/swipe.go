package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// SwipeThreshold is the horizontal drag distance that counts as a swipe.
const SwipeThreshold float32 = 60

// SwipeArea wraps content and reports horizontal swipes. A negative delta
// means the finger moved left.
type SwipeArea struct {
	widget.BaseWidget

	content fyne.CanvasObject
	dx      float32
	dy      float32

	OnSwipe func(left bool)
}

func NewSwipeArea(content fyne.CanvasObject, onSwipe func(left bool)) *SwipeArea {
	s := &SwipeArea{content: content, OnSwipe: onSwipe}
	s.ExtendBaseWidget(s)
	return s
}

func (s *SwipeArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.content)
}

func (s *SwipeArea) Dragged(e *fyne.DragEvent) {
	s.dx += e.Dragged.DX
	s.dy += e.Dragged.DY
}

// DragEnd fires OnSwipe for mostly horizontal drags past the threshold.
func (s *SwipeArea) DragEnd() {
	dx, dy := s.dx, s.dy
	s.dx, s.dy = 0, 0

	if abs32(dx) < SwipeThreshold || abs32(dx) < abs32(dy) {
		return
	}
	if s.OnSwipe != nil {
		s.OnSwipe(dx < 0)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
