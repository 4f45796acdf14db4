package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/focus-alarm/constant"
	"github.com/lixenwraith/focus-alarm/core"
)

// speakerDevice plays through the process-wide beep speaker
type speakerDevice struct {
	mu      sync.Mutex
	state   DeviceState
	tracker *playTracker
}

func newSpeakerDevice(cfg *AudioConfig) (*speakerDevice, error) {
	rate := beep.SampleRate(cfg.SampleRate)

	// Initialize speaker with sample rate and buffer size
	if err := speaker.Init(rate, rate.N(constant.AudioBufferDuration)); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}

	d := &speakerDevice{state: DeviceRunning}
	d.tracker = newPlayTracker(cfg.IdleSuspend, d.suspendIfIdle)
	return d, nil
}

func (d *speakerDevice) Name() string {
	return "speaker"
}

func (d *speakerDevice) State() DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// suspendIfIdle releases the hardware stream when nothing has played for the idle period
func (d *speakerDevice) suspendIfIdle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DeviceRunning || !d.tracker.idle() {
		return
	}
	if err := speaker.Suspend(); err != nil {
		return
	}
	d.state = DeviceSuspended
}

func (d *speakerDevice) Resume(ctx context.Context) error {
	d.mu.Lock()
	state := d.state
	d.mu.Unlock()

	switch state {
	case DeviceRunning:
		return nil
	case DeviceClosed:
		return ErrDeviceClosed
	}

	errc := make(chan error, 1)
	core.Go(func() {
		errc <- speaker.Resume()
	})

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("speaker resume: %w", err)
		}
		d.mu.Lock()
		if d.state == DeviceSuspended {
			d.state = DeviceRunning
		}
		d.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *speakerDevice) Play(s beep.Streamer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case DeviceSuspended:
		return ErrDeviceSuspended
	case DeviceClosed:
		return ErrDeviceClosed
	}

	speaker.Play(d.tracker.wrap(s))
	return nil
}

func (d *speakerDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == DeviceClosed {
		return nil
	}
	d.tracker.stop()
	speaker.Clear()
	speaker.Close()
	d.state = DeviceClosed
	return nil
}
