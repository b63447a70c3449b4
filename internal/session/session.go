// Package session owns the editor state and translates user input into
// scheduler requests.
package session

import (
	"context"
	"fmt"
	"image"
	"sync"

	"blear/internal/effects"
	"blear/internal/filtercycle"
	"blear/internal/logger"
)

const component = "Session"

type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Scheduler is the part of scheduler.Scheduler the session drives.
type Scheduler interface {
	SetSource(src effects.SourceImage)
	RequestUpdate(p effects.Parameters)
}

// Saver persists a rendered image and returns where it went.
type Saver interface {
	Save(ctx context.Context, img image.Image) (string, error)
}

type Session struct {
	mu        sync.Mutex
	scheduler Scheduler
	saver     Saver
	log       logger.Logger
	catalog   []effects.FilterKind
	cycle     *filtercycle.State
	source    effects.SourceImage
	blur      float64
}

func New(s Scheduler, saver Saver, log logger.Logger) (*Session, error) {
	if s == nil {
		return nil, fmt.Errorf("session requires a scheduler")
	}
	if log == nil {
		log = logger.NewNop()
	}

	catalog := effects.Catalog()
	cycle, err := filtercycle.New(len(catalog))
	if err != nil {
		return nil, fmt.Errorf("filter cycle: %w", err)
	}

	return &Session{
		scheduler: s,
		saver:     saver,
		log:       log,
		catalog:   catalog,
		cycle:     cycle,
	}, nil
}

// OnContinuousChange handles a slider move. Moving the slider leaves filter
// mode.
func (s *Session) OnContinuousChange(value float64) {
	s.mu.Lock()
	s.blur = effects.ClampBlur(value)
	s.cycle.Reset()
	p := effects.Blur(s.blur)
	s.mu.Unlock()

	s.scheduler.RequestUpdate(p)
}

// OnNavigate steps through the filter catalog.
func (s *Session) OnNavigate(dir Direction) effects.Parameters {
	s.mu.Lock()
	var tr filtercycle.Transition
	switch dir {
	case Backward:
		tr = s.cycle.Retreat()
	default:
		tr = s.cycle.Advance()
	}
	if tr.ResetBlur {
		s.blur = 0
	}
	p := s.paramsLocked()
	s.mu.Unlock()

	s.log.Debug(component, "filter navigation", map[string]interface{}{
		"direction":  dir.String(),
		"index":      tr.Index,
		"filter":     p.Filter.String(),
		"reset_blur": tr.ResetBlur,
	})

	s.scheduler.RequestUpdate(p)
	return p
}

// OnSourceImageChanged swaps the photo. Work for the previous photo is
// cancelled and the editor returns to blur-only at zero.
func (s *Session) OnSourceImageChanged(src effects.SourceImage) {
	s.mu.Lock()
	s.source = src
	s.blur = 0
	s.cycle.Reset()
	s.mu.Unlock()

	s.scheduler.SetSource(src)
	s.scheduler.RequestUpdate(effects.Blur(0))

	s.log.Info(component, "source image changed", map[string]interface{}{
		"source_id": src.ID().String(),
		"bounds":    src.Bounds().String(),
	})
}

// Save writes img through the configured saver.
func (s *Session) Save(ctx context.Context, img image.Image) (string, error) {
	if s.saver == nil {
		return "", fmt.Errorf("no saver configured")
	}
	if img == nil {
		return "", fmt.Errorf("nothing to save")
	}

	path, err := s.saver.Save(ctx, img)
	if err != nil {
		return "", err
	}

	s.log.Info(component, "image saved", map[string]interface{}{
		"path":   path,
		"params": s.Params().String(),
	})
	return path, nil
}

// Params returns the parameters matching the current state.
func (s *Session) Params() effects.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paramsLocked()
}

func (s *Session) BlurAmount() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blur
}

func (s *Session) Source() effects.SourceImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Session) HasSource() bool {
	return !s.Source().IsZero()
}

func (s *Session) paramsLocked() effects.Parameters {
	if pos, ok := s.cycle.Active(); ok {
		return effects.WithFilter(s.catalog[pos], s.blur)
	}
	return effects.Blur(s.blur)
}
