package ui

import (
	"errors"
	"sync"

	"github.com/lixenwraith/focus-alarm/engine"
)

// View is an immutable snapshot of what the screen shows
type View struct {
	Clock     string
	Preset    string
	Progress  float64
	Active    bool
	Completed bool
	Sound     string
	Audio     string
	AudioOK   bool
	Message   string
	Error     string
	Session   engine.SessionInfo
}

// Model collects controller notifications into a View
// Listener methods run on the timeline goroutine, Snapshot on the UI goroutine
type Model struct {
	mu       sync.Mutex
	view     View
	onChange func()
}

var _ engine.Listener = (*Model)(nil)

// NewModel creates an idle view with sound preselected
func NewModel(sound string) *Model {
	return &Model{
		view: View{
			Clock: engine.FormatClock(0),
			Sound: sound,
			Audio: "-",
		},
	}
}

// SetOnChange registers fn to run after every update
func (m *Model) SetOnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Snapshot returns the current view
func (m *Model) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// SetSound records the selected sound
func (m *Model) SetSound(name string) {
	m.update(func(v *View) { v.Sound = name })
}

// SetPreset records the duration the next start will use
func (m *Model) SetPreset(seconds int) {
	m.update(func(v *View) { v.Preset = engine.FormatClock(seconds) })
}

func (m *Model) update(fn func(v *View)) {
	m.mu.Lock()
	fn(&m.view)
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func (m *Model) Tick(t engine.Tick) {
	m.update(func(v *View) {
		v.Clock = t.Display()
		v.Progress = t.Progress
	})
}

func (m *Model) AudioStatus(s engine.AudioStatus) {
	m.update(func(v *View) {
		v.Audio = s.Status
		v.AudioOK = s.OK
	})
}

func (m *Model) SessionStarted(info engine.SessionInfo) {
	m.update(func(v *View) {
		v.Active = true
		v.Completed = false
		v.Session = info
		v.Sound = info.Sound
		v.Message = "Focus session started"
		v.Error = ""
	})
}

func (m *Model) SessionStopped(engine.SessionInfo) {
	m.update(func(v *View) {
		v.Active = false
		v.Message = "Session stopped"
	})
}

func (m *Model) SessionCompleted(_ engine.SessionInfo, final engine.Tick) {
	m.update(func(v *View) {
		v.Active = false
		v.Completed = true
		v.Clock = final.Display()
		v.Progress = final.Progress
		v.Message = "Time is up"
	})
}

func (m *Model) CompletionAcknowledged(engine.SessionInfo) {
	m.update(func(v *View) { v.Message = engine.CompletionMessage })
}

func (m *Model) InputRejected(err error) {
	m.update(func(v *View) {
		switch {
		case errors.Is(err, engine.ErrSessionActive):
			v.Error = "A session is already running"
		case errors.Is(err, engine.ErrInvalidDuration):
			v.Error = "Please enter a valid time"
		default:
			v.Error = err.Error()
		}
	})
}
