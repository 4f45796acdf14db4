package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/focus-alarm/constant"
	"github.com/lixenwraith/focus-alarm/core"
)

// Loop is the production Timeline: a single goroutine drains a function queue
// Go timers and tickers only enqueue callbacks, they never run session code themselves
type Loop struct {
	clock Clock
	queue chan func()

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewLoop creates a stopped loop reading time from clock
func NewLoop(clock Clock) *Loop {
	if clock == nil {
		clock = NewTimeProvider()
	}
	return &Loop{
		clock:    clock,
		queue:    make(chan func(), constant.LoopQueueSize),
		stopChan: make(chan struct{}),
	}
}

// Start begins draining the queue
func (l *Loop) Start() {
	if l.running.CompareAndSwap(false, true) {
		l.wg.Add(1)
		core.Go(l.run)
	}
}

// Stop halts the loop and waits for the running callback to return
// Callbacks still queued are discarded
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
		if l.running.Load() {
			l.wg.Wait()
		}
	})
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.stopChan:
			return
		case fn := <-l.queue:
			select {
			case <-l.stopChan:
				return
			default:
			}
			fn()
		}
	}
}

// Now returns the loop clock time
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Post enqueues fn, dropped once the loop is stopped
// Blocks while the queue is full; must not be called with a full queue from the loop goroutine
func (l *Loop) Post(fn func()) {
	select {
	case <-l.stopChan:
		return
	default:
	}
	select {
	case l.queue <- fn:
	case <-l.stopChan:
	}
}

// TryPost enqueues fn without blocking
// Returns false when the queue is full or the loop is stopped
func (l *Loop) TryPost(fn func()) bool {
	select {
	case <-l.stopChan:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	default:
		return false
	}
}

// Do runs fn on the loop and waits for it to return
// Returns false if the loop stopped first; must not be called from the loop goroutine
func (l *Loop) Do(fn func()) bool {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return true
	case <-l.stopChan:
		return false
	}
}

// loopTimer tracks cancellation for both one-shot and periodic callbacks
// The stopped flag is checked on the loop goroutine, so a callback already queued is skipped after Stop
type loopTimer struct {
	stopped atomic.Bool
	timer   *time.Timer
	ticker  *time.Ticker
	done    chan struct{}
}

func (t *loopTimer) Stop() bool {
	if !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
		return true
	}
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.done)
	}
	return true
}

// AfterFunc schedules fn on the loop after d
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

// Every schedules fn on the loop every d
// time.Ticker drops ticks for slow receivers, which matches the no catch-up contract
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := &loopTimer{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	core.Go(func() {
		for {
			select {
			case <-t.ticker.C:
				l.Post(func() {
					if !t.stopped.Load() {
						fn()
					}
				})
			case <-t.done:
				return
			case <-l.stopChan:
				t.ticker.Stop()
				return
			}
		}
	})
	return t
}
