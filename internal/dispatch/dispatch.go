// Package dispatch marshals work onto the single interactive execution
// context that owns display state.
package dispatch

import "fyne.io/fyne/v2"

// Dispatcher runs fn on the interactive context. Implementations must keep
// submission order.
type Dispatcher interface {
	Do(fn func())
}

// Fyne posts onto the Fyne main goroutine.
type Fyne struct{}

func (Fyne) Do(fn func()) {
	fyne.Do(fn)
}
