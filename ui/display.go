package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/focus-alarm/core"
)

// Commands are the actions the interactive display can trigger
// Implementations must be safe to call from the UI goroutine
type Commands interface {
	StartSession()
	StopSession()
	TestSound()
	CycleSound(step int)
	AdjustPreset(deltaSeconds int)
}

const helpLine = "s start  x stop  t test  n/p sound  +/- minutes  q quit"

var (
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleClock   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleIdle    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBar     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleOK      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleWarn    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleMessage = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleHelp    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Display draws the model on a tcell screen and maps keys to commands
type Display struct {
	screen tcell.Screen
	model  *Model
	cmds   Commands

	width, height int
	redraw        chan struct{}
}

// NewDisplay binds model and cmds to an initialized screen
func NewDisplay(screen tcell.Screen, model *Model, cmds Commands) *Display {
	d := &Display{
		screen: screen,
		model:  model,
		cmds:   cmds,
		redraw: make(chan struct{}, 1),
	}
	d.width, d.height = screen.Size()
	model.SetOnChange(d.requestRedraw)
	return d
}

// requestRedraw coalesces redraw requests from any goroutine
func (d *Display) requestRedraw() {
	select {
	case d.redraw <- struct{}{}:
	default:
	}
}

// Run draws and handles input until the user quits or done is closed
func (d *Display) Run(done <-chan struct{}) {
	eventChan := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := d.screen.PollEvent()
			// Nil after Fini
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	})

	d.draw()
	for {
		select {
		case ev := <-eventChan:
			if !d.handleInput(ev) {
				return
			}
		case <-d.redraw:
			d.draw()
		case <-done:
			d.draw()
			return
		}
	}
}

// handleInput returns false when the user asked to quit
func (d *Display) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			return d.handleRune(ev.Rune())
		}

	case *tcell.EventResize:
		d.width, d.height = d.screen.Size()
		d.screen.Sync()
		d.draw()
	}
	return true
}

func (d *Display) handleRune(r rune) bool {
	switch r {
	case 'q', 'Q':
		return false
	case 's', 'S':
		d.cmds.StartSession()
	case 'x', 'X':
		d.cmds.StopSession()
	case 't', 'T':
		d.cmds.TestSound()
	case 'n', 'N':
		d.cmds.CycleSound(1)
	case 'p', 'P':
		d.cmds.CycleSound(-1)
	case '+', '=':
		d.cmds.AdjustPreset(60)
	case '-', '_':
		d.cmds.AdjustPreset(-60)
	}
	return true
}

func (d *Display) draw() {
	v := d.model.Snapshot()
	d.screen.Clear()

	x, y := 2, 1
	d.drawText(x, y, "Focus Alarm", styleTitle)
	y += 2

	clockStyle := styleClock
	if !v.Active && !v.Completed {
		clockStyle = styleIdle
	}
	d.drawText(x, y, v.Clock, clockStyle)
	if !v.Active && v.Preset != "" {
		d.drawText(x+len(v.Clock)+3, y, "preset "+v.Preset, styleLabel)
	}
	y++

	barWidth := min(40, d.width-x-12)
	if barWidth > 0 {
		d.drawText(x, y, ProgressBar(v.Progress, barWidth), styleBar)
		d.drawText(x+barWidth+1, y, FormatPercent(v.Progress), styleLabel)
	}
	y += 2

	d.drawText(x, y, "Sound: ", styleLabel)
	d.drawText(x+7, y, v.Sound, styleClock)
	y++

	audioStyle := styleOK
	if !v.AudioOK {
		audioStyle = styleWarn
	}
	d.drawText(x, y, "Audio: ", styleLabel)
	d.drawText(x+7, y, v.Audio, audioStyle)
	y += 2

	if v.Message != "" {
		d.drawText(x, y, v.Message, styleMessage)
	}
	y++
	if v.Error != "" {
		d.drawText(x, y, v.Error, styleError)
	}

	if d.height > 0 {
		d.drawText(x, d.height-1, helpLine, styleHelp)
	}
	d.screen.Show()
}

// drawText writes s starting at (x, y), clipped to the screen width
func (d *Display) drawText(x, y int, s string, style tcell.Style) {
	if y < 0 || y >= d.height {
		return
	}
	for _, r := range s {
		if x >= d.width {
			return
		}
		d.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
