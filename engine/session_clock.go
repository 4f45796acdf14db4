package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/focus-alarm/constant"
)

var (
	ErrInvalidDuration = errors.New("duration must be greater than zero")
	ErrSessionActive   = errors.New("a session is already running")
)

// SessionState is the countdown record; the zero value is the inactive state
// While active, End equals Start plus TotalSeconds
type SessionState struct {
	Active       bool
	TotalSeconds int
	Start        time.Time
	End          time.Time
}

// Tick is one display update of the countdown
type Tick struct {
	RemainingSeconds int
	Hours            int
	Minutes          int
	Seconds          int
	Progress         float64 // 0..1
}

// Display formats the remaining time as HH:MM:SS
func (t Tick) Display() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// Percent returns progress scaled to 0..100
func (t Tick) Percent() float64 {
	return t.Progress * 100
}

// NewTick splits remaining seconds into clock fields
func NewTick(remainingSeconds int, progress float64) Tick {
	if remainingSeconds < 0 {
		remainingSeconds = 0
	}
	return Tick{
		RemainingSeconds: remainingSeconds,
		Hours:            remainingSeconds / 3600,
		Minutes:          (remainingSeconds % 3600) / 60,
		Seconds:          remainingSeconds % 60,
		Progress:         progress,
	}
}

// FormatClock formats a second count as HH:MM:SS
func FormatClock(seconds int) string {
	return NewTick(seconds, 0).Display()
}

// DurationSeconds combines hour, minute and second inputs into a total
// Any field may be zero; negative fields are rejected
func DurationSeconds(hours, minutes, seconds int) (int, error) {
	if hours < 0 || minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("negative field in %dh %dm %ds: %w", hours, minutes, seconds, ErrInvalidDuration)
	}
	total := hours*3600 + minutes*60 + seconds
	if total <= 0 {
		return 0, ErrInvalidDuration
	}
	return total, nil
}

// SessionClock counts down from absolute timestamps
// Remaining time is recomputed from End on every poll, so delayed or skipped polls never cause drift
// Must be used from the Timeline goroutine only
type SessionClock struct {
	tl       Timeline
	state    SessionState
	poll     Timer
	onTick   func(Tick)
	onExpire func(SessionState)
}

// NewSessionClock creates an inactive clock
// onTick receives every poll while time remains; onExpire receives the final state once, in place of a tick
func NewSessionClock(tl Timeline, onTick func(Tick), onExpire func(SessionState)) *SessionClock {
	if onTick == nil {
		onTick = func(Tick) {}
	}
	if onExpire == nil {
		onExpire = func(SessionState) {}
	}
	return &SessionClock{
		tl:       tl,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Start records start and end timestamps and begins polling
func (c *SessionClock) Start(durationSeconds int) error {
	if durationSeconds <= 0 {
		return ErrInvalidDuration
	}
	if c.state.Active {
		return ErrSessionActive
	}

	now := c.tl.Now()
	c.state = SessionState{
		Active:       true,
		TotalSeconds: durationSeconds,
		Start:        now,
		End:          now.Add(time.Duration(durationSeconds) * time.Second),
	}
	c.poll = c.tl.Every(constant.PollInterval, c.check)
	return nil
}

// Stop clears the session and cancels polling, returns true if a session was active
func (c *SessionClock) Stop() bool {
	wasActive := c.state.Active
	c.cancelPoll()
	c.state = SessionState{}
	return wasActive
}

// State returns a copy of the session record
func (c *SessionClock) State() SessionState {
	return c.state
}

// IsActive reports whether a countdown is running
func (c *SessionClock) IsActive() bool {
	return c.state.Active
}

// Snapshot computes the tick for the current instant without side effects
func (c *SessionClock) Snapshot() Tick {
	if !c.state.Active {
		return Tick{}
	}
	return c.tickAt(c.tl.Now())
}

func (c *SessionClock) cancelPoll() {
	if c.poll != nil {
		c.poll.Stop()
		c.poll = nil
	}
}

// check is the 1 s poll body
func (c *SessionClock) check() {
	if !c.state.Active {
		return
	}

	now := c.tl.Now()
	if !c.state.End.After(now) {
		expired := c.state
		c.cancelPoll()
		c.state = SessionState{}
		c.onExpire(expired)
		return
	}

	c.onTick(c.tickAt(now))
}

func (c *SessionClock) tickAt(now time.Time) Tick {
	remaining := c.state.End.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	// Ceiling so the display never shows 00:00:00 while time remains
	secs := int((remaining + time.Second - 1) / time.Second)

	total := time.Duration(c.state.TotalSeconds) * time.Second
	progress := float64(now.Sub(c.state.Start)) / float64(total)
	progress = min(max(progress, 0), 1)

	return NewTick(secs, progress)
}
