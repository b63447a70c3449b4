package scheduler

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"blear/internal/effects"
)

const (
	testFast   = 80 * time.Millisecond
	testSettle = 200 * time.Millisecond
)

func TestNewValidatesArguments(t *testing.T) {
	tr := &recordingTransform{}
	sink := &recordingSink{}

	tests := []struct {
		name string
		opts Options
	}{
		{"zero fast delay", Options{FastDelay: 0, SettleDelay: testSettle}},
		{"zero settle delay", Options{FastDelay: testFast, SettleDelay: 0}},
		{"negative delay", Options{FastDelay: -time.Millisecond, SettleDelay: testSettle}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tr, sink, noopDispatcher{}, tt.opts); err == nil {
				t.Fatalf("expected error for %+v", tt.opts)
			}
		})
	}

	if _, err := New(nil, sink, noopDispatcher{}, Options{FastDelay: testFast, SettleDelay: testSettle}); err == nil {
		t.Fatal("expected error for nil transformer")
	}
	if _, err := New(tr, nil, noopDispatcher{}, Options{FastDelay: testFast, SettleDelay: testSettle}); err == nil {
		t.Fatal("expected error for nil sink")
	}
}

type noopDispatcher struct{}

func (noopDispatcher) Do(fn func()) { fn() }

func TestBurstLaunchesOnceAfterQuiet(t *testing.T) {
	clock := newFakeClock()
	tr := &recordingTransform{}
	s, sink, _ := newHarness(t, tr, testFast, testSettle, clock)

	for i := 1; i <= 10; i++ {
		s.RequestUpdate(effects.Blur(float64(i)))
		clock.Advance(10 * time.Millisecond)
	}

	if st := s.Stats(); st.FastLaunches+st.SettleLaunches != 0 {
		t.Fatalf("launched during burst: %+v", st)
	}

	// 80ms after the last request
	clock.Advance(70 * time.Millisecond)
	waitFor(t, "fast result", func() bool { return s.Stats().Applied == 1 })

	// 200ms after the last request
	clock.Advance(120 * time.Millisecond)
	waitFor(t, "settle result", func() bool { return s.Stats().Applied == 2 })

	st := s.Stats()
	if st.FastLaunches != 1 || st.SettleLaunches != 1 {
		t.Fatalf("expected one fast and one settle launch, got %+v", st)
	}
	if st.Requests != 10 {
		t.Fatalf("expected 10 requests, got %d", st.Requests)
	}

	for i, p := range tr.callsSnapshot() {
		if p != effects.Blur(10) {
			t.Errorf("call %d used %s, want blur=10.0", i, p)
		}
	}

	got := sink.values()
	if len(got) != 2 || got[0] != 10 || got[1] != 10 {
		t.Fatalf("unexpected shown values %v", got)
	}

	waitFor(t, "idle", s.Idle)
}

func TestDeferredLaunchUsesLatestParams(t *testing.T) {
	clock := newFakeClock()
	tr := &recordingTransform{
		gate:    make(chan struct{}),
		started: make(chan effects.Parameters, 8),
	}
	s, sink, _ := newHarness(t, tr, testFast, testSettle, clock)

	s.RequestUpdate(effects.Blur(1))
	clock.Advance(testFast)
	if p := receive(t, tr.started); p != effects.Blur(1) {
		t.Fatalf("first launch used %s", p)
	}

	s.RequestUpdate(effects.Blur(2))
	clock.Advance(testFast)
	s.RequestUpdate(effects.Blur(3))
	clock.Advance(testFast)

	if st := s.Stats(); st.Deferred != 2 || st.FastLaunches != 1 {
		t.Fatalf("expected two deferred fires behind one launch, got %+v", st)
	}

	tr.gate <- struct{}{}
	if p := receive(t, tr.started); p != effects.Blur(3) {
		t.Fatalf("deferred launch used %s, want blur=3.0", p)
	}
	tr.gate <- struct{}{}
	waitFor(t, "deferred result", func() bool { return s.Stats().Applied == 2 })

	clock.Advance(testSettle)
	if p := receive(t, tr.started); p != effects.Blur(3) {
		t.Fatalf("settle launch used %s, want blur=3.0", p)
	}
	tr.gate <- struct{}{}
	waitFor(t, "settle result", func() bool { return s.Stats().Applied == 3 })

	got := sink.values()
	want := []uint8{1, 3, 3}
	if len(got) != len(want) {
		t.Fatalf("shown %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("shown %v, want %v", got, want)
		}
	}
	if peak := tr.peakConcurrency(); peak != 1 {
		t.Fatalf("peak concurrency %d, want 1", peak)
	}
}

func TestSourceSwapDiscardsInFlightResult(t *testing.T) {
	clock := newFakeClock()
	tr := &recordingTransform{
		gate:    make(chan struct{}),
		started: make(chan effects.Parameters, 8),
	}
	s, sink, _ := newHarness(t, tr, testFast, testSettle, clock)

	s.RequestUpdate(effects.Blur(1))
	clock.Advance(testFast)
	receive(t, tr.started)

	s.SetSource(effects.NewSource(encode(effects.Blur(50))))

	// The stale job still occupies the single slot.
	s.RequestUpdate(effects.Blur(2))
	clock.Advance(testFast)
	if st := s.Stats(); st.Deferred != 1 {
		t.Fatalf("expected fire to be deferred behind stale job, got %+v", st)
	}

	tr.gate <- struct{}{}
	if p := receive(t, tr.started); p != effects.Blur(2) {
		t.Fatalf("relaunch used %s, want blur=2.0", p)
	}
	tr.gate <- struct{}{}
	waitFor(t, "fresh result", func() bool { return s.Stats().Applied == 1 })

	st := s.Stats()
	if st.Discarded != 1 {
		t.Fatalf("expected one discarded result, got %+v", st)
	}
	got := sink.values()
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("shown %v, want [2]", got)
	}
}

func TestCancelLeavesDisplayUntouched(t *testing.T) {
	clock := newFakeClock()
	tr := &recordingTransform{
		gate:    make(chan struct{}),
		started: make(chan effects.Parameters, 8),
	}
	s, sink, _ := newHarness(t, tr, testFast, testSettle, clock)

	s.RequestUpdate(effects.Blur(7))
	clock.Advance(testFast)
	receive(t, tr.started)

	s.Cancel()
	tr.gate <- struct{}{}
	waitFor(t, "discard", func() bool { return s.Stats().Discarded == 1 })

	// Settle timer was stopped by Cancel.
	clock.Advance(testSettle)

	if got := sink.values(); len(got) != 0 {
		t.Fatalf("sink received %v after cancel", got)
	}
	if st := s.Stats(); st.SettleLaunches != 0 || st.Applied != 0 {
		t.Fatalf("unexpected launches after cancel: %+v", st)
	}
	if !s.Idle() {
		t.Fatal("scheduler should be idle after cancel")
	}
}

func TestFailureReportsErrorAndKeepsImage(t *testing.T) {
	clock := newFakeClock()
	tr := &recordingTransform{}
	s, sink, _ := newHarness(t, tr, testFast, testSettle, clock)

	s.RequestUpdate(effects.Blur(1))
	clock.Advance(testFast)
	waitFor(t, "first result", func() bool { return s.Stats().Applied == 1 })

	tr.setErr(errors.New("out of memory"))
	s.RequestUpdate(effects.Blur(2))
	clock.Advance(testFast)
	waitFor(t, "failure", func() bool { return s.Stats().Failed == 1 })

	msgs := sink.errorMessages()
	if len(msgs) != 1 {
		t.Fatalf("expected one error message, got %v", msgs)
	}
	if !strings.Contains(msgs[0], "processing failed for blur=2.0") || !strings.Contains(msgs[0], "out of memory") {
		t.Fatalf("unexpected error message %q", msgs[0])
	}
	if got := sink.values(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("previous image replaced: %v", got)
	}

	// Recovery on the next request.
	tr.setErr(nil)
	clock.Advance(testSettle)
	waitFor(t, "settle result", func() bool { return s.Stats().Applied == 2 })
	if got := sink.values(); got[len(got)-1] != 2 {
		t.Fatalf("settle did not show latest params: %v", got)
	}
}

func TestPanickingTransformIsReported(t *testing.T) {
	clock := newFakeClock()
	tr := &recordingTransform{panics: true}
	s, sink, _ := newHarness(t, tr, testFast, testSettle, clock)

	s.RequestUpdate(effects.Blur(4))
	clock.Advance(testFast)
	waitFor(t, "failure", func() bool { return s.Stats().Failed == 1 })

	msgs := sink.errorMessages()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "panicked") {
		t.Fatalf("unexpected error messages %v", msgs)
	}
	if s.Stats().InFlight {
		t.Fatal("panicking job left in flight")
	}
}

func TestNoLaunchWithoutSource(t *testing.T) {
	clock := newFakeClock()
	tr := &recordingTransform{}
	sink := &recordingSink{}
	s, err := New(tr, sink, noopDispatcher{}, Options{FastDelay: testFast, SettleDelay: testSettle, Clock: clock})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer s.Shutdown()

	s.RequestUpdate(effects.Blur(9))
	clock.Advance(testSettle)

	if calls := tr.callsSnapshot(); len(calls) != 0 {
		t.Fatalf("transform called without a source: %v", calls)
	}
}

func TestShutdownIgnoresRequests(t *testing.T) {
	clock := newFakeClock()
	tr := &recordingTransform{}
	s, sink, _ := newHarness(t, tr, testFast, testSettle, clock)

	s.RequestUpdate(effects.Blur(1))
	s.Shutdown()
	s.RequestUpdate(effects.Blur(2))
	clock.Advance(testSettle)

	st := s.Stats()
	if st.Requests != 1 {
		t.Fatalf("request accepted after shutdown: %+v", st)
	}
	if st.FastLaunches+st.SettleLaunches != 0 {
		t.Fatalf("launched after shutdown: %+v", st)
	}
	if got := sink.values(); len(got) != 0 {
		t.Fatalf("sink written after shutdown: %v", got)
	}

	// Second call is a no-op.
	s.Shutdown()
}

func TestConvergesOnLastRequest(t *testing.T) {
	tr := &recordingTransform{delay: 3 * time.Millisecond}
	s, sink, loop := newHarness(t, tr, 2*time.Millisecond, 8*time.Millisecond, nil)

	rng := rand.New(rand.NewSource(42))
	const n = 60
	for i := 1; i <= n; i++ {
		s.RequestUpdate(effects.Blur(float64(i)))
		time.Sleep(time.Duration(rng.Intn(4)) * time.Millisecond)
	}

	waitFor(t, "idle", s.Idle)
	loop.Sync(func() {})

	got := sink.values()
	if len(got) == 0 {
		t.Fatal("nothing was shown")
	}
	if last := got[len(got)-1]; last != n {
		t.Fatalf("last shown value %d, want %d (sequence %v)", last, n, got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("display regressed at %d: %v", i, got)
		}
	}
	if peak := tr.peakConcurrency(); peak != 1 {
		t.Fatalf("peak concurrency %d, want 1", peak)
	}
	if st := s.Stats(); st.Applied+st.Discarded+st.Failed != st.FastLaunches+st.SettleLaunches {
		t.Fatalf("launch accounting mismatch: %+v", st)
	}
}
