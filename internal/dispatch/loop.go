package dispatch

import "sync"

// Loop is a serial executor backed by one goroutine. It stands in for the UI
// thread in headless runs and tests.
type Loop struct {
	work chan func()
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		work: make(chan func(), buffer),
		done: make(chan struct{}),
	}
}

// Start launches the loop goroutine.
func (l *Loop) Start() {
	l.wg.Add(1)
	go l.Run()
}

// Run executes submitted functions until Stop is called.
func (l *Loop) Run() {
	defer l.wg.Done()
	for {
		select {
		case fn := <-l.work:
			fn()
		case <-l.done:
			return
		}
	}
}

// Do queues fn. Unlike a best-effort UI update queue, work is never dropped:
// a full buffer blocks the caller until the loop catches up.
func (l *Loop) Do(fn func()) {
	select {
	case l.work <- fn:
	case <-l.done:
	}
}

// Sync runs fn on the loop and waits for it to return.
func (l *Loop) Sync(fn func()) {
	finished := make(chan struct{})
	l.Do(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-l.done:
	}
}

func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
}

// Shutdown satisfies shutdown.Shutdownable.
func (l *Loop) Shutdown() {
	l.Stop()
}
