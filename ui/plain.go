package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/lixenwraith/focus-alarm/engine"
)

var (
	plainClock   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	plainBar     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	plainInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	plainWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	plainError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	plainMessage = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

const plainBarWidth = 30

// Plain prints session progress as lines for non-interactive use
// In overwrite mode each tick rewrites the current line; otherwise a line is printed per minute
// and for the final ten seconds
type Plain struct {
	mu        sync.Mutex
	out       io.Writer
	overwrite bool
	midLine   bool

	done     chan struct{}
	doneOnce sync.Once
}

var _ engine.Listener = (*Plain)(nil)

// NewPlain writes to out; overwrite selects carriage-return updates for terminals
func NewPlain(out io.Writer, overwrite bool) *Plain {
	return &Plain{
		out:       out,
		overwrite: overwrite,
		done:      make(chan struct{}),
	}
}

// Done is closed once the session has ended, been stopped or rejected
func (p *Plain) Done() <-chan struct{} {
	return p.done
}

func (p *Plain) finish() {
	p.doneOnce.Do(func() { close(p.done) })
}

// println ends any in-place tick line before printing s
func (p *Plain) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.midLine {
		fmt.Fprintln(p.out)
		p.midLine = false
	}
	fmt.Fprintln(p.out, s)
}

func tickLine(t engine.Tick) string {
	return fmt.Sprintf("%s %s %s",
		plainClock.Render(t.Display()),
		plainBar.Render(ProgressBar(t.Progress, plainBarWidth)),
		FormatPercent(t.Progress))
}

func (p *Plain) Tick(t engine.Tick) {
	if p.overwrite {
		p.mu.Lock()
		fmt.Fprintf(p.out, "\r%s", tickLine(t))
		p.midLine = true
		p.mu.Unlock()
		return
	}
	if t.RemainingSeconds%60 == 0 || t.RemainingSeconds <= 10 {
		p.println(tickLine(t))
	}
}

func (p *Plain) AudioStatus(s engine.AudioStatus) {
	style := plainInfo
	if !s.OK {
		style = plainWarn
	}
	p.println(style.Render("audio: " + s.Status))
}

func (p *Plain) SessionStarted(info engine.SessionInfo) {
	p.println(plainInfo.Render(fmt.Sprintf("Focus session started: %s (sound: %s)",
		engine.FormatClock(info.TotalSeconds), info.Sound)))
}

func (p *Plain) SessionStopped(engine.SessionInfo) {
	p.println(plainWarn.Render("Session stopped"))
	p.finish()
}

func (p *Plain) SessionCompleted(_ engine.SessionInfo, final engine.Tick) {
	p.println(tickLine(final))
	p.println(plainMessage.Render("Time is up"))
}

func (p *Plain) CompletionAcknowledged(engine.SessionInfo) {
	p.println(plainMessage.Render(engine.CompletionMessage))
	p.finish()
}

func (p *Plain) InputRejected(err error) {
	p.println(plainError.Render("error: " + err.Error()))
	p.finish()
}
