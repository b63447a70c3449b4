// Package filtercycle keeps the bounded swipe cursor over the filter catalog.
//
// The cursor holds values 0..N inclusive where N is the catalog length and
// doubles as the blur-only sentinel.
package filtercycle

import "fmt"

type State struct {
	index int
	n     int
}

// Transition describes the outcome of a navigation step.
type Transition struct {
	Index int
	// Active is false when the cursor sits on the blur-only sentinel.
	Active bool
	// ResetBlur is set when retreating past the first filter.
	ResetBlur bool
}

func New(n int) (*State, error) {
	if n < 1 {
		return nil, fmt.Errorf("filter catalog must not be empty, got %d entries", n)
	}
	return &State{index: n, n: n}, nil
}

// Advance moves forward; from the sentinel it wraps to the first filter.
func (s *State) Advance() Transition {
	if s.index < s.n {
		s.index++
	} else {
		s.index = 0
	}
	return s.transition(false)
}

// Retreat moves backward; from the first filter it leaves filter mode and
// asks the caller to zero the blur.
func (s *State) Retreat() Transition {
	if s.index > 0 {
		s.index--
		return s.transition(false)
	}
	s.index = s.n
	return s.transition(true)
}

func (s *State) Reset() {
	s.index = s.n
}

func (s *State) Index() int {
	return s.index
}

func (s *State) Len() int {
	return s.n
}

// Active returns the catalog position of the active filter.
func (s *State) Active() (int, bool) {
	if s.index == s.n {
		return 0, false
	}
	return s.index, true
}

func (s *State) transition(resetBlur bool) Transition {
	return Transition{Index: s.index, Active: s.index < s.n, ResetBlur: resetBlur}
}
