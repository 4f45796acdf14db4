package engine

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/focus-alarm/constant"
	"github.com/lixenwraith/focus-alarm/core"
	"github.com/lixenwraith/focus-alarm/status"
)

// TonePlayer renders a sound by id without blocking
type TonePlayer interface {
	Render(ctx context.Context, soundID string)
}

// ControllerConfig holds session behavior settings
type ControllerConfig struct {
	Sound       string
	PlayOnStart bool
	Window      ReminderWindow
	Interval    IntervalSource
	Registry    *status.Registry
}

// DefaultControllerConfig returns the stock behavior
func DefaultControllerConfig() *ControllerConfig {
	return &ControllerConfig{
		PlayOnStart: true,
		Window:      DefaultReminderWindow(),
	}
}

// Controller owns the session lifecycle: clock, reminders and the completion sequence
// Every method must run on the Timeline goroutine; UI code uses Timeline.Post
type Controller struct {
	tl       Timeline
	player   TonePlayer
	listener Listener

	clock     *SessionClock
	reminders *ReminderScheduler

	sound       string
	playOnStart bool

	session       SessionInfo
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	lifeCtx       context.Context
	lifeCancel    context.CancelFunc
	pendingAck    Timer
	completion    []Timer

	statStarted   *atomic.Int64
	statCompleted *atomic.Int64
	statStopped   *atomic.Int64
	statTicks     *atomic.Int64
	statReminders *atomic.Int64
	statRenderErr *atomic.Int64
	statActive    *atomic.Bool
}

// NewController wires a session clock and reminder scheduler onto tl
func NewController(tl Timeline, player TonePlayer, listener Listener, cfg *ControllerConfig) *Controller {
	if cfg == nil {
		cfg = DefaultControllerConfig()
	}
	if listener == nil {
		listener = NopListener{}
	}
	reg := cfg.Registry
	if reg == nil {
		reg = status.NewRegistry()
	}

	lifeCtx, lifeCancel := context.WithCancel(context.Background())
	c := &Controller{
		tl:            tl,
		player:        player,
		listener:      listener,
		sound:         cfg.Sound,
		playOnStart:   cfg.PlayOnStart,
		sessionCtx:    lifeCtx,
		sessionCancel: func() {},
		lifeCtx:       lifeCtx,
		lifeCancel:    lifeCancel,
		statStarted:   reg.Ints.Get("session.started"),
		statCompleted: reg.Ints.Get("session.completed"),
		statStopped:   reg.Ints.Get("session.stopped"),
		statTicks:     reg.Ints.Get("clock.ticks"),
		statReminders: reg.Ints.Get("reminder.fired"),
		statRenderErr: reg.Ints.Get("tone.failed"),
		statActive:    reg.Bools.Get("session.active"),
	}

	c.clock = NewSessionClock(tl, c.handleTick, c.handleExpire)
	c.reminders = NewReminderScheduler(tl, cfg.Interval, cfg.Window, c.clock.IsActive, c.handleReminder)
	return c
}

// Start begins a countdown of durationSeconds
// Invalid input is reported to the listener and returned; no state changes
func (c *Controller) Start(durationSeconds int) error {
	if err := c.clock.Start(durationSeconds); err != nil {
		c.listener.InputRejected(err)
		return err
	}

	c.cancelAck()
	c.sessionCtx, c.sessionCancel = context.WithCancel(c.lifeCtx)

	st := c.clock.State()
	c.session = SessionInfo{
		ID:           uuid.NewString(),
		TotalSeconds: st.TotalSeconds,
		Start:        st.Start,
		End:          st.End,
		Sound:        c.sound,
	}
	c.reminders.Arm()
	c.statStarted.Add(1)
	c.statActive.Store(true)

	next, _ := c.reminders.NextFire()
	log.Printf("[session] %s started: %ds, first reminder in %s", c.session.ID, st.TotalSeconds, next.Sub(st.Start).Round(time.Second))

	c.listener.SessionStarted(c.session)
	c.listener.Tick(c.clock.Snapshot())

	if c.playOnStart {
		c.render(c.sessionCtx, c.sound)
	}
	return nil
}

// StartHMS starts a countdown from hour, minute and second fields
func (c *Controller) StartHMS(hours, minutes, seconds int) error {
	total, err := DurationSeconds(hours, minutes, seconds)
	if err != nil {
		c.listener.InputRejected(err)
		return err
	}
	return c.Start(total)
}

// Stop ends the countdown without completion
// The display always resets; SessionStopped fires only if a session was running
func (c *Controller) Stop() {
	wasActive := c.clock.Stop()
	c.reminders.Disarm()
	c.sessionCancel()
	c.statActive.Store(false)

	c.listener.Tick(Tick{})
	if !wasActive {
		return
	}

	c.statStopped.Add(1)
	log.Printf("[session] %s stopped", c.session.ID)
	c.listener.SessionStopped(c.session)
}

// TestSound renders the selected sound regardless of session state
func (c *Controller) TestSound() {
	c.render(c.lifeCtx, c.sound)
}

// SelectSound changes the sound used by reminders, completion and test
func (c *Controller) SelectSound(id string) {
	c.sound = id
}

// Sound returns the selected sound id
func (c *Controller) Sound() string {
	return c.sound
}

// SetPlayOnStart toggles the start tone
func (c *Controller) SetPlayOnStart(on bool) {
	c.playOnStart = on
}

// State returns the session clock record
func (c *Controller) State() SessionState {
	return c.clock.State()
}

// Session returns the current or most recent session info
func (c *Controller) Session() SessionInfo {
	return c.session
}

// NextReminder returns the pending reminder time
func (c *Controller) NextReminder() (time.Time, bool) {
	return c.reminders.NextFire()
}

// tryPoster is a Timeline that can enqueue without blocking
type tryPoster interface {
	TryPost(fn func()) bool
}

// ReportAudio forwards a device status change to the listener on the Timeline
// Safe to call from any goroutine, including the timeline's own; it never blocks
// With a full queue the post moves to its own goroutine and may land after later events
func (c *Controller) ReportAudio(s AudioStatus) {
	fn := func() {
		c.listener.AudioStatus(s)
	}
	tp, ok := c.tl.(tryPoster)
	if !ok {
		c.tl.Post(fn)
		return
	}
	if !tp.TryPost(fn) {
		core.Go(func() { c.tl.Post(fn) })
	}
}

// Close stops the session and cancels every pending callback
func (c *Controller) Close() {
	c.Stop()
	c.cancelAck()
	for _, t := range c.completion {
		t.Stop()
	}
	c.completion = nil
	c.lifeCancel()
}

func (c *Controller) handleTick(t Tick) {
	c.statTicks.Add(1)
	c.listener.Tick(t)
}

func (c *Controller) handleReminder() {
	c.statReminders.Add(1)
	log.Printf("[session] %s reminder", c.session.ID)
	c.render(c.sessionCtx, c.sound)
}

// handleExpire runs the completion sequence: disarm, notify, chime, acknowledge
func (c *Controller) handleExpire(SessionState) {
	c.reminders.Disarm()
	c.sessionCancel()
	c.statCompleted.Add(1)
	c.statActive.Store(false)

	info := c.session
	sound := c.sound
	log.Printf("[session] %s completed", info.ID)

	c.listener.SessionCompleted(info, Tick{Progress: 1})

	c.completion = c.completion[:0]
	c.render(c.lifeCtx, sound)
	for i := 1; i < constant.CompletionRepeats; i++ {
		t := c.tl.AfterFunc(time.Duration(i)*constant.CompletionSpacing, func() {
			c.render(c.lifeCtx, sound)
		})
		c.completion = append(c.completion, t)
	}

	c.pendingAck = c.tl.AfterFunc(constant.CompletionAckDelay, func() {
		c.pendingAck = nil
		c.listener.CompletionAcknowledged(info)
	})
}

func (c *Controller) cancelAck() {
	if c.pendingAck != nil {
		c.pendingAck.Stop()
		c.pendingAck = nil
	}
}

// render isolates player failures so one bad render cannot break a sequence
func (c *Controller) render(ctx context.Context, id string) {
	if c.player == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.statRenderErr.Add(1)
			log.Printf("[tone] render %q panicked: %v", id, r)
		}
	}()
	c.player.Render(ctx, id)
}
