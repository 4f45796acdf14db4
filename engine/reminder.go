package engine

import (
	"time"

	"github.com/lixenwraith/focus-alarm/constant"
)

// ReminderWindow bounds the randomized reminder interval
type ReminderWindow struct {
	Min time.Duration
	Max time.Duration
}

// DefaultReminderWindow returns the 180-300 s window
func DefaultReminderWindow() ReminderWindow {
	return ReminderWindow{
		Min: constant.ReminderMinInterval,
		Max: constant.ReminderMaxInterval,
	}
}

// normalize fills zero bounds with defaults and orders them
func (w ReminderWindow) normalize() ReminderWindow {
	def := DefaultReminderWindow()
	if w.Min <= 0 {
		w.Min = def.Min
	}
	if w.Max <= 0 {
		w.Max = def.Max
	}
	if w.Max < w.Min {
		w.Max = w.Min
	}
	return w
}

// ReminderScheduler fires a callback at pseudo-random intervals while a session runs
// It polls on its own cadence, independent of the session clock poll
// Must be used from the Timeline goroutine only
type ReminderScheduler struct {
	tl     Timeline
	source IntervalSource
	window ReminderWindow
	active func() bool
	onFire func()

	next  time.Time
	armed bool
	poll  Timer
}

// NewReminderScheduler creates a disarmed scheduler
// active gates firing; a nil source draws uniformly
func NewReminderScheduler(tl Timeline, source IntervalSource, window ReminderWindow, active func() bool, onFire func()) *ReminderScheduler {
	if source == nil {
		source = NewUniformInterval()
	}
	if active == nil {
		active = func() bool { return true }
	}
	if onFire == nil {
		onFire = func() {}
	}
	return &ReminderScheduler{
		tl:     tl,
		source: source,
		window: window.normalize(),
		active: active,
		onFire: onFire,
	}
}

// Window returns the effective bounds
func (r *ReminderScheduler) Window() ReminderWindow {
	return r.window
}

// Arm sets the next fire time within the window and ensures polling runs
func (r *ReminderScheduler) Arm() {
	d := clampInterval(r.source.Next(r.window.Min, r.window.Max), r.window.Min, r.window.Max)
	r.next = r.tl.Now().Add(d)
	r.armed = true
	if r.poll == nil {
		r.poll = r.tl.Every(constant.PollInterval, r.check)
	}
}

// Disarm clears the next fire time and cancels polling
func (r *ReminderScheduler) Disarm() {
	r.armed = false
	r.next = time.Time{}
	if r.poll != nil {
		r.poll.Stop()
		r.poll = nil
	}
}

// NextFire returns the pending fire time
func (r *ReminderScheduler) NextFire() (time.Time, bool) {
	return r.next, r.armed
}

// check fires at most once per poll; missed reminders are not queued
func (r *ReminderScheduler) check() {
	if !r.armed || !r.active() {
		return
	}
	if r.tl.Now().Before(r.next) {
		return
	}

	r.onFire()
	if r.armed {
		r.Arm()
	}
}
