package main

import (
	"log"

	"github.com/lixenwraith/focus-alarm/audio"
	"github.com/lixenwraith/focus-alarm/config"
	"github.com/lixenwraith/focus-alarm/engine"
	"github.com/lixenwraith/focus-alarm/status"
	"github.com/lixenwraith/focus-alarm/ui"
)

// minPreset is the smallest duration the +/- keys can reach
const minPreset = 60

// app wires the controller, tone engine and view together on one timeline
// UI actions are posted to the timeline; fields below tl are timeline-confined
type app struct {
	tl    engine.Timeline
	ctrl  *engine.Controller
	tone  *audio.ToneEngine
	model *ui.Model // nil in plain mode

	preset int
}

var _ ui.Commands = (*app)(nil)

// newApp builds the controller on tl and routes tone engine status to listener
func newApp(tl engine.Timeline, tone *audio.ToneEngine, listener engine.Listener, model *ui.Model, cfg *config.Config, reg *status.Registry) *app {
	cc := cfg.ControllerConfig(reg)
	cc.Sound = tone.Catalog().Resolve(cfg.Session.Sound)

	a := &app{
		tl:    tl,
		tone:  tone,
		model: model,
	}
	a.ctrl = engine.NewController(tl, tone, listener, cc)
	if secs, err := cfg.SessionSeconds(); err == nil {
		a.preset = secs
	} else {
		a.preset = minPreset
	}

	tone.SetStatusHandler(func(r audio.StatusReport) {
		a.ctrl.ReportAudio(engine.AudioStatus{Status: string(r.Status), OK: r.OK})
	})

	if model != nil {
		model.SetSound(cc.Sound)
		model.SetPreset(a.preset)
	}
	return a
}

func (a *app) StartSession() {
	a.tl.Post(func() { _ = a.ctrl.Start(a.preset) })
}

func (a *app) StopSession() {
	a.tl.Post(a.ctrl.Stop)
}

func (a *app) TestSound() {
	a.tl.Post(a.ctrl.TestSound)
}

func (a *app) CycleSound(step int) {
	a.tl.Post(func() {
		a.selectSound(a.tone.Catalog().Next(a.ctrl.Sound(), step))
	})
}

func (a *app) AdjustPreset(deltaSeconds int) {
	a.tl.Post(func() {
		a.preset = max(minPreset, a.preset+deltaSeconds)
		if a.model != nil {
			a.model.SetPreset(a.preset)
		}
	})
}

// selectSound must run on the timeline
func (a *app) selectSound(name string) {
	a.ctrl.SelectSound(name)
	if a.model != nil {
		a.model.SetSound(name)
	}
}

// applyConfig live-applies sound and volume changes from an edited config file
func (a *app) applyConfig(old, updated *config.Config) {
	ch := config.Diff(old, updated)
	if ch.Sound {
		name := a.tone.Catalog().Resolve(updated.Session.Sound)
		log.Printf("[config] sound -> %s", name)
		a.tl.Post(func() { a.selectSound(name) })
	}
	if ch.Volume {
		log.Printf("[config] volume -> %.2f", updated.Audio.MasterVolume)
		a.tone.SetVolume(updated.Audio.MasterVolume)
	}
}

// close stops the session and cancels pending callbacks on the timeline
func (a *app) close() {
	if l, ok := a.tl.(*engine.Loop); ok {
		l.Do(a.ctrl.Close)
		return
	}
	a.tl.Post(a.ctrl.Close)
}
