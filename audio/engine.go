package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/focus-alarm/core"
	"github.com/lixenwraith/focus-alarm/status"
)

// ToneEngine renders catalog recipes on a lazily created output device
// Render never blocks and never fails past its boundary: errors are logged, counted and reported as status
type ToneEngine struct {
	config  *AudioConfig
	factory DeviceFactory
	cache   *renderCache

	mu       sync.Mutex // Protects device, catalog, status and volume
	device   Device
	catalog  *Catalog
	volume   float64
	onStatus func(StatusReport)
	status   DeviceStatus

	wg     sync.WaitGroup
	closed atomic.Bool

	statRequested *atomic.Int64
	statRendered  *atomic.Int64
	statFailed    *atomic.Int64
	statStatus    *status.AtomicString
	statVolume    *status.AtomicFloat
}

// NewToneEngine creates an engine; no device is opened until the first render
// A nil factory uses NewDevice, a nil registry keeps metrics private
func NewToneEngine(cfg *AudioConfig, factory DeviceFactory, reg *status.Registry) *ToneEngine {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	if factory == nil {
		factory = NewDevice
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	te := &ToneEngine{
		config:        cfg.Clone(),
		factory:       factory,
		cache:         newRenderCache(),
		catalog:       DefaultCatalog(),
		volume:        cfg.MasterVolume,
		statRequested: reg.Ints.Get("tone.requested"),
		statRendered:  reg.Ints.Get("tone.rendered"),
		statFailed:    reg.Ints.Get("tone.failed"),
		statStatus:    reg.Strings.Get("audio.status"),
		statVolume:    reg.Floats.Get("audio.volume"),
	}
	te.statVolume.Set(te.volume)
	return te
}

// UseCatalog replaces the recipe table
func (te *ToneEngine) UseCatalog(c *Catalog) {
	te.mu.Lock()
	defer te.mu.Unlock()
	te.catalog = c
	te.cache.reset()
}

// Catalog returns the active recipe table
func (te *ToneEngine) Catalog() *Catalog {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.catalog
}

// SetStatusHandler registers fn for status transitions; fn may be called from any goroutine
func (te *ToneEngine) SetStatusHandler(fn func(StatusReport)) {
	te.mu.Lock()
	defer te.mu.Unlock()
	te.onStatus = fn
}

// Status returns the last reported device status, empty before the first render
func (te *ToneEngine) Status() DeviceStatus {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.status
}

// SetVolume updates master volume (0.0-1.0)
func (te *ToneEngine) SetVolume(vol float64) {
	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}

	te.mu.Lock()
	te.volume = vol
	te.mu.Unlock()
	te.statVolume.Set(vol)
}

// Volume returns the master volume
func (te *ToneEngine) Volume() float64 {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.volume
}

// Preload synthesizes every recipe ahead of the first render
func (te *ToneEngine) Preload() {
	te.cache.preload(te.Catalog(), te.config.SampleRate)
}

// Render schedules soundID on the device and returns immediately
// Unknown ids render the default recipe. A suspended device is resumed in the background;
// if ctx is cancelled by the time the resume completes, nothing is played
func (te *ToneEngine) Render(ctx context.Context, soundID string) {
	te.statRequested.Add(1)
	if !te.config.Enabled || te.closed.Load() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			te.statFailed.Add(1)
			log.Printf("[tone] render %q panicked: %v", soundID, r)
		}
	}()

	recipe := te.Catalog().Lookup(soundID)
	dev := te.acquire()
	if dev == nil {
		return
	}

	if dev.State() == DeviceSuspended {
		te.resumeAsync(ctx, dev, recipe)
		return
	}

	if err := te.emit(dev, recipe, nil); err != nil {
		if errors.Is(err, ErrDeviceSuspended) {
			// Suspended between the state check and Play
			te.resumeAsync(ctx, dev, recipe)
			return
		}
		te.fail(recipe.Name, err)
	}
}

func (te *ToneEngine) resumeAsync(ctx context.Context, dev Device, recipe Recipe) {
	te.wg.Add(1)
	core.Go(func() {
		defer te.wg.Done()
		te.resumeAndEmit(ctx, dev, recipe)
	})
}

func (te *ToneEngine) resumeAndEmit(ctx context.Context, dev Device, recipe Recipe) {
	rctx, cancel := context.WithTimeout(ctx, te.config.ResumeTimeout)
	defer cancel()

	err := dev.Resume(rctx)
	if ctx.Err() != nil || te.closed.Load() {
		// Requester went away while resuming
		return
	}
	if err != nil {
		log.Printf("[tone] resume %s failed: %v", dev.Name(), err)
		te.report(StatusSuspended, false)
		return
	}
	te.report(StatusActive, true)

	if err := te.emit(dev, recipe, nil); err != nil {
		te.fail(recipe.Name, err)
	}
}

// RenderSync plays soundID and blocks until it finishes or ctx is done
// Returns the recipe duration; errors are returned rather than absorbed
func (te *ToneEngine) RenderSync(ctx context.Context, soundID string) (time.Duration, error) {
	te.statRequested.Add(1)
	if !te.config.Enabled {
		return 0, ErrAudioDisabled
	}
	if te.closed.Load() {
		return 0, ErrDeviceClosed
	}

	recipe := te.Catalog().Lookup(soundID)
	dev := te.acquire()
	if dev == nil {
		return 0, ErrNoAudioBackend
	}

	if dev.State() == DeviceSuspended {
		rctx, cancel := context.WithTimeout(ctx, te.config.ResumeTimeout)
		err := dev.Resume(rctx)
		cancel()
		if err != nil {
			te.report(StatusSuspended, false)
			return 0, fmt.Errorf("resume %s: %w", dev.Name(), err)
		}
		te.report(StatusActive, true)
	}

	done := make(chan struct{})
	if err := te.emit(dev, recipe, func() { close(done) }); err != nil {
		te.fail(recipe.Name, err)
		return 0, err
	}

	select {
	case <-done:
		return recipe.Duration(), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// emit synthesizes (or fetches) recipe and plays it at master volume
func (te *ToneEngine) emit(dev Device, recipe Recipe, onDone func()) error {
	buf, err := te.cache.get(recipe, te.config.SampleRate)
	if err != nil {
		return err
	}

	var s beep.Streamer = newVolume(buf.Streamer(0, buf.Len()), te.Volume())
	if onDone != nil {
		s = beep.Seq(s, beep.Callback(onDone))
	}
	if err := dev.Play(s); err != nil {
		return err
	}
	te.statRendered.Add(1)
	return nil
}

// acquire returns the cached device, constructing it when absent
// Construction failure reports Not Available and returns nil
func (te *ToneEngine) acquire() Device {
	te.mu.Lock()
	if te.device != nil && te.device.State() != DeviceClosed {
		dev := te.device
		te.mu.Unlock()
		return dev
	}
	te.mu.Unlock()

	dev, err := te.factory(te.config)

	te.mu.Lock()
	if err != nil {
		te.mu.Unlock()
		log.Printf("[tone] audio device unavailable: %v", err)
		te.report(StatusNotAvailable, false)
		return nil
	}
	if te.device != nil && te.device.State() != DeviceClosed {
		// Lost a construction race
		winner := te.device
		te.mu.Unlock()
		dev.Close()
		return winner
	}
	te.device = dev
	te.mu.Unlock()

	log.Printf("[tone] audio device %s ready", dev.Name())
	te.report(StatusReady, true)
	return dev
}

// report publishes a status transition; repeated statuses are suppressed
func (te *ToneEngine) report(s DeviceStatus, ok bool) {
	te.mu.Lock()
	if te.status == s {
		te.mu.Unlock()
		return
	}
	te.status = s
	fn := te.onStatus
	te.mu.Unlock()

	te.statStatus.Store(string(s))
	if fn != nil {
		fn(StatusReport{Status: s, OK: ok})
	}
}

func (te *ToneEngine) fail(name string, err error) {
	te.statFailed.Add(1)
	log.Printf("[tone] render %q failed: %v", name, err)
}

// Wait blocks until every background resume has finished
func (te *ToneEngine) Wait() {
	te.wg.Wait()
}

// Close waits for pending resumes and releases the device
func (te *ToneEngine) Close() error {
	if !te.closed.CompareAndSwap(false, true) {
		return nil
	}
	te.wg.Wait()

	te.mu.Lock()
	dev := te.device
	te.device = nil
	te.mu.Unlock()

	if dev != nil {
		return dev.Close()
	}
	return nil
}
