package audio

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/focus-alarm/core"
)

// Device is an output that can be suspended after inactivity and must be resumed before emission
type Device interface {
	Name() string
	State() DeviceState
	// Resume brings a suspended device back to running; may block until ctx is done
	Resume(ctx context.Context) error
	// Play schedules s for output and returns immediately
	Play(s beep.Streamer) error
	Close() error
}

// DeviceFactory constructs the output device on first use
type DeviceFactory func(cfg *AudioConfig) (Device, error)

// NewDevice opens the device selected by cfg.Backend
// Auto tries the in-process speaker first and falls back to a piped system player
func NewDevice(cfg *AudioConfig) (Device, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, ErrAudioDisabled
	case BackendSpeaker:
		d, err := newSpeakerDevice(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendPipe:
		return pipeOrNil(cfg)
	case BackendAuto, "":
		d, err := newSpeakerDevice(cfg)
		if err == nil {
			return d, nil
		}
		log.Printf("[tone] speaker unavailable: %v, trying pipe backends", err)
		return pipeOrNil(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// pipeOrNil keeps a failed open from producing a non-nil interface around a nil pointer
func pipeOrNil(cfg *AudioConfig) (Device, error) {
	d, err := openPipeDevice(cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// playTracker counts sounds in flight and reports when the device has been quiet for a while
// A reset drops the count and bumps gen, so drains from a dead output are ignored
type playTracker struct {
	mu      sync.Mutex
	playing int
	gen     uint64
	after   time.Duration
	timer   *time.Timer
	onIdle  func()
}

func newPlayTracker(after time.Duration, onIdle func()) *playTracker {
	return &playTracker{after: after, onIdle: onIdle}
}

// wrap registers s as playing and marks it finished once it drains
// The callback runs inside the output goroutine, so it only hands off
func (p *playTracker) wrap(s beep.Streamer) beep.Streamer {
	gen := p.begin()
	return beep.Seq(s, beep.Callback(func() {
		core.Go(func() { p.finish(gen) })
	}))
}

func (p *playTracker) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	return p.gen
}

// end releases a sound that never reached the output
func (p *playTracker) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endLocked()
}

func (p *playTracker) finish(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return
	}
	p.endLocked()
}

func (p *playTracker) endLocked() {
	if p.playing > 0 {
		p.playing--
	}
	if p.playing == 0 && p.after > 0 && p.onIdle != nil {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.timer = time.AfterFunc(p.after, p.onIdle)
	}
}

// idle reports whether nothing is playing
func (p *playTracker) idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing == 0
}

// reset forgets sounds lost with a stopped output
func (p *playTracker) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = 0
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *playTracker) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
