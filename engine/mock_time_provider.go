package engine

import (
	"sync"
	"time"
)

// ManualTimeline provides a controllable Timeline for testing
// Time moves only through Advance and Jump; callbacks run on the caller goroutine
type ManualTimeline struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	tl     *ManualTimeline
	due    time.Time
	every  time.Duration
	seq    uint64
	fn     func()
	active bool
}

// NewManualTimeline creates a new manual timeline with the given start time
func NewManualTimeline(start time.Time) *ManualTimeline {
	return &ManualTimeline{now: start}
}

// Now returns the current virtual time
func (m *ManualTimeline) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn at now+d
func (m *ManualTimeline) AfterFunc(d time.Duration, fn func()) Timer {
	return m.schedule(d, 0, fn)
}

// Every schedules fn at now+d and every d after that
func (m *ManualTimeline) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		panic("engine: non-positive interval for ManualTimeline.Every")
	}
	return m.schedule(d, d, fn)
}

// Post schedules fn at the current instant; it runs on the next Advance or Flush
func (m *ManualTimeline) Post(fn func()) {
	m.schedule(0, 0, fn)
}

func (m *ManualTimeline) schedule(d, every time.Duration, fn func()) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{
		tl:     m,
		due:    m.now.Add(d),
		every:  every,
		seq:    m.seq,
		fn:     fn,
		active: true,
	}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	m := t.tl
	m.mu.Lock()
	defer m.mu.Unlock()
	if !t.active {
		return false
	}
	t.active = false
	m.remove(t)
	return true
}

// remove drops t from the pending list, caller holds mu
func (m *ManualTimeline) remove(t *manualTimer) {
	for i, p := range m.timers {
		if p == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// Advance moves time forward by d, running every callback that falls due in deadline order
// Each callback observes Now() equal to its own deadline
func (m *ManualTimeline) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.earliestLocked(target)
		if next == nil {
			if target.After(m.now) {
				m.now = target
			}
			m.mu.Unlock()
			return
		}

		if next.due.After(m.now) {
			m.now = next.due
		}
		if next.every > 0 {
			due := next.due.Add(next.every)
			if !due.After(m.now) {
				// Overdue after a jump: fire once, resume cadence from now
				due = m.now.Add(next.every)
			}
			next.due = due
		} else {
			next.active = false
			m.remove(next)
		}
		fn := next.fn
		m.mu.Unlock()

		fn()
	}
}

// Flush runs callbacks already due without moving time
func (m *ManualTimeline) Flush() {
	m.Advance(0)
}

// Jump moves time forward by d without running callbacks, like a throttled or sleeping process
// Overdue callbacks run once on the next Advance or Flush
func (m *ManualTimeline) Jump(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Pending returns the number of scheduled callbacks
func (m *ManualTimeline) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *ManualTimeline) earliestLocked(limit time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if t.due.After(limit) {
			continue
		}
		if best == nil || t.due.Before(best.due) || (t.due.Equal(best.due) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}
