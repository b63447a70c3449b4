package scheduler

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"blear/internal/dispatch"
	"blear/internal/effects"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *fakeClock
	at    time.Time
	f     func()
	done  bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance moves time forward, firing due timers in order on the caller's
// goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.done || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			break
		}
		next.done = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// recordingTransform encodes the blur amount into a 1x1 gray image.
type recordingTransform struct {
	mu      sync.Mutex
	calls   []effects.Parameters
	active  int
	peak    int
	err     error
	panics  bool
	delay   time.Duration
	gate    chan struct{}
	started chan effects.Parameters
}

func (r *recordingTransform) Transform(_ context.Context, _ effects.SourceImage, p effects.Parameters) (image.Image, error) {
	r.mu.Lock()
	r.calls = append(r.calls, p)
	r.active++
	if r.active > r.peak {
		r.peak = r.active
	}
	err, panics := r.err, r.panics
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
	}()

	if r.started != nil {
		r.started <- p
	}
	if r.gate != nil {
		<-r.gate
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if panics {
		panic("kernel exploded")
	}
	if err != nil {
		return nil, err
	}
	return encode(p), nil
}

func (r *recordingTransform) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *recordingTransform) callsSnapshot() []effects.Parameters {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]effects.Parameters, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recordingTransform) peakConcurrency() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak
}

func encode(p effects.Parameters) image.Image {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.SetGray(0, 0, color.Gray{Y: uint8(p.BlurAmount)})
	return img
}

type recordingSink struct {
	mu     sync.Mutex
	shown  []uint8
	errors []string
}

func (s *recordingSink) Show(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, img.(*image.Gray).GrayAt(0, 0).Y)
}

func (s *recordingSink) ShowError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, message)
}

func (s *recordingSink) values() []uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint8, len(s.shown))
	copy(out, s.shown)
	return out
}

func (s *recordingSink) errorMessages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.errors))
	copy(out, s.errors)
	return out
}

func newHarness(t *testing.T, tr *recordingTransform, fast, settle time.Duration, clock Clock) (*Scheduler, *recordingSink, *dispatch.Loop) {
	t.Helper()

	loop := dispatch.NewLoop(64)
	loop.Start()
	t.Cleanup(loop.Stop)

	sink := &recordingSink{}
	s, err := New(tr, sink, loop, Options{FastDelay: fast, SettleDelay: settle, Clock: clock})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(s.Shutdown)

	s.SetSource(effects.NewSource(image.NewGray(image.Rect(0, 0, 1, 1))))
	return s, sink, loop
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func receive(t *testing.T, ch <-chan effects.Parameters) effects.Parameters {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for a transform to start")
		return effects.Parameters{}
	}
}
