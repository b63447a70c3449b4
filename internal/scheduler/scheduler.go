// Package scheduler turns a burst of parameter updates into a small number
// of transform runs and makes sure the display ends on the latest request.
//
// Every RequestUpdate restarts two debounce timers. The fast timer gives
// feedback while a slider is still moving; the settle timer fires once the
// input has been quiet long enough and is the authoritative recompute. Both
// read the latest-params slot at fire time.
//
// At most one transform runs at a time. A fire that lands while a job is in
// flight is deferred; when the job completes the scheduler launches a single
// new job with whatever params are latest at that point.
//
// Each launch bumps a generation counter. Completions are applied only if
// their generation is still current and newer than the last applied one.
// Cancel bumps the generation without launching, so in-flight work is
// discarded on arrival.
package scheduler

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"blear/internal/dispatch"
	"blear/internal/effects"
	"blear/internal/logger"
	"blear/internal/transform"
)

const component = "Scheduler"

// Sink renders results. It is only called from the dispatcher's context.
type Sink interface {
	Show(img image.Image)
	ShowError(message string)
}

type Trigger int

const (
	TriggerFast Trigger = iota
	TriggerSettle
)

func (t Trigger) String() string {
	if t == TriggerSettle {
		return "settle"
	}
	return "fast"
}

type Options struct {
	FastDelay   time.Duration
	SettleDelay time.Duration
	Clock       Clock
	Logger      logger.Logger
}

type Stats struct {
	Requests       uint64
	FastLaunches   uint64
	SettleLaunches uint64
	Deferred       uint64
	Applied        uint64
	Discarded      uint64
	Failed         uint64
	Generation     uint64
	InFlight       bool
}

type request struct {
	params      effects.Parameters
	submittedAt time.Time
}

type job struct {
	params      effects.Parameters
	source      effects.SourceImage
	generation  uint64
	trigger     Trigger
	submittedAt time.Time
	ctx         context.Context
	cancel      context.CancelFunc
}

type Scheduler struct {
	transform  transform.Transformer
	sink       Sink
	dispatcher dispatch.Dispatcher
	clock      Clock
	log        logger.Logger

	fastDelay   time.Duration
	settleDelay time.Duration

	rootCtx    context.Context
	rootCancel context.CancelFunc

	mu          sync.Mutex
	source      effects.SourceImage
	latest      *request
	fastTimer   Timer
	settleTimer Timer
	fastEpoch   uint64
	settleEpoch uint64
	inFlight    *job
	deferred    bool
	deferredBy  Trigger
	generation  uint64
	applied     uint64
	closed      bool
	stats       Stats
}

func New(t transform.Transformer, sink Sink, d dispatch.Dispatcher, opts Options) (*Scheduler, error) {
	if t == nil || sink == nil || d == nil {
		return nil, fmt.Errorf("scheduler requires a transformer, a sink and a dispatcher")
	}
	if opts.FastDelay <= 0 || opts.SettleDelay <= 0 {
		return nil, fmt.Errorf("debounce delays must be positive (fast %s, settle %s)", opts.FastDelay, opts.SettleDelay)
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		transform:   t,
		sink:        sink,
		dispatcher:  d,
		clock:       opts.Clock,
		log:         opts.Logger,
		fastDelay:   opts.FastDelay,
		settleDelay: opts.SettleDelay,
		rootCtx:     ctx,
		rootCancel:  cancel,
	}, nil
}

// SetSource attaches a new source image and drops everything tied to the
// previous one.
func (s *Scheduler) SetSource(src effects.SourceImage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.source = src

	s.log.Debug(component, "source attached", map[string]interface{}{
		"source_id":  src.ID().String(),
		"bounds":     src.Bounds().String(),
		"generation": s.generation,
	})
}

// RequestUpdate records p as the desired state and restarts both debounce
// timers. It never blocks on transform work.
func (s *Scheduler) RequestUpdate(p effects.Parameters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.latest = &request{params: p, submittedAt: s.clock.Now()}
	s.stats.Requests++

	if s.fastTimer != nil {
		s.fastTimer.Stop()
	}
	s.fastEpoch++
	fastEpoch := s.fastEpoch
	s.fastTimer = s.clock.AfterFunc(s.fastDelay, func() {
		s.fire(TriggerFast, fastEpoch)
	})

	if s.settleTimer != nil {
		s.settleTimer.Stop()
	}
	s.settleEpoch++
	settleEpoch := s.settleEpoch
	s.settleTimer = s.clock.AfterFunc(s.settleDelay, func() {
		s.fire(TriggerSettle, settleEpoch)
	})
}

// Cancel stops pending timers and invalidates the in-flight job's result.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Shutdown cancels all work and ignores later requests.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancelLocked()
	s.rootCancel()

	s.log.Info(component, "scheduler shut down", map[string]interface{}{
		"applied":   s.stats.Applied,
		"discarded": s.stats.Discarded,
	})
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	st.Generation = s.generation
	st.InFlight = s.inFlight != nil
	return st
}

// Idle reports whether no timer, deferred launch or job is outstanding.
func (s *Scheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fastTimer == nil && s.settleTimer == nil && s.inFlight == nil && !s.deferred
}

func (s *Scheduler) cancelLocked() {
	if s.fastTimer != nil {
		s.fastTimer.Stop()
		s.fastTimer = nil
	}
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	s.fastEpoch++
	s.settleEpoch++
	s.latest = nil
	s.deferred = false

	// No job carries the new generation yet, so whatever is in flight is
	// stale on arrival. The job itself keeps running until it returns.
	s.generation++
	if s.inFlight != nil {
		s.inFlight.cancel()
	}
}

func (s *Scheduler) fire(trigger Trigger, epoch uint64) {
	s.mu.Lock()

	switch trigger {
	case TriggerFast:
		if epoch != s.fastEpoch {
			s.mu.Unlock()
			return
		}
		s.fastTimer = nil
	case TriggerSettle:
		if epoch != s.settleEpoch {
			s.mu.Unlock()
			return
		}
		s.settleTimer = nil
	}

	if s.closed || s.latest == nil || s.source.IsZero() {
		s.mu.Unlock()
		return
	}

	if s.inFlight != nil {
		if !s.deferred || trigger == TriggerSettle {
			s.deferredBy = trigger
		}
		s.deferred = true
		s.stats.Deferred++
		inFlightGen := s.inFlight.generation
		s.mu.Unlock()

		s.log.Debug(component, "launch deferred behind in-flight job", map[string]interface{}{
			"trigger":              trigger.String(),
			"in_flight_generation": inFlightGen,
		})
		return
	}

	j := s.launchLocked(trigger)
	s.mu.Unlock()

	go s.run(j)
}

func (s *Scheduler) launchLocked(trigger Trigger) *job {
	s.generation++
	ctx, cancel := context.WithCancel(s.rootCtx)

	j := &job{
		params:      s.latest.params,
		source:      s.source,
		generation:  s.generation,
		trigger:     trigger,
		submittedAt: s.latest.submittedAt,
		ctx:         ctx,
		cancel:      cancel,
	}
	s.inFlight = j

	switch trigger {
	case TriggerFast:
		s.stats.FastLaunches++
	case TriggerSettle:
		s.stats.SettleLaunches++
	}

	fields := j.params.Fields()
	fields["generation"] = j.generation
	fields["trigger"] = trigger.String()
	s.log.Debug(component, "transform launched", fields)

	return j
}

func (s *Scheduler) run(j *job) {
	start := s.clock.Now()
	img, err := s.safeTransform(j)
	elapsed := s.clock.Now().Sub(start)

	s.dispatcher.Do(func() {
		s.complete(j, img, err, elapsed)
	})
}

func (s *Scheduler) safeTransform(j *job) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()

	img, err = s.transform.Transform(j.ctx, j.source, j.params)
	if err == nil && img == nil {
		err = fmt.Errorf("transform returned no image")
	}
	return img, err
}

// complete runs on the dispatcher. The sink is written while mu is held so
// a concurrent Cancel cannot land between the generation check and the write.
func (s *Scheduler) complete(j *job, img image.Image, err error, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight == j {
		s.inFlight = nil
	}
	j.cancel()

	current := !s.closed && j.generation == s.generation && j.generation > s.applied

	switch {
	case !current:
		s.stats.Discarded++
		s.log.Debug(component, "stale result discarded", map[string]interface{}{
			"generation":         j.generation,
			"current_generation": s.generation,
			"trigger":            j.trigger.String(),
		})
	case err != nil:
		s.stats.Failed++
		failure := &TransformFailure{Params: j.params, Err: err}
		s.log.Error(component, failure, map[string]interface{}{
			"generation": j.generation,
			"elapsed_ms": elapsed.Milliseconds(),
		})
		s.sink.ShowError(failure.Error())
	default:
		s.applied = j.generation
		s.stats.Applied++
		s.sink.Show(img)
		s.log.Debug(component, "result applied", map[string]interface{}{
			"generation": j.generation,
			"trigger":    j.trigger.String(),
			"elapsed_ms": elapsed.Milliseconds(),
			"latency_ms": s.clock.Now().Sub(j.submittedAt).Milliseconds(),
		})
	}

	if s.deferred && !s.closed && s.latest != nil && !s.source.IsZero() {
		s.deferred = false
		next := s.launchLocked(s.deferredBy)
		go s.run(next)
	}
}
