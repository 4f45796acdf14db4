package audio

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/focus-alarm/core"
)

// pipeOpener starts a backend and returns its PCM input
type pipeOpener func(b *BackendConfig) (io.WriteCloser, error)

// processPipe is the stdin of a running player process
type processPipe struct {
	stdin io.WriteCloser
	cmd   *exec.Cmd
}

func (p *processPipe) Write(b []byte) (int, error) {
	return p.stdin.Write(b)
}

func (p *processPipe) Close() error {
	p.stdin.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
	return nil
}

// openBackend launches the player, or opens the OSS device for direct writes
func openBackend(b *BackendConfig) (io.WriteCloser, error) {
	if b.Type == BackendOSS {
		return os.OpenFile(b.Path, os.O_WRONLY, 0)
	}

	cmd := exec.Command(b.Path, b.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%s stdin: %w", b.Name, err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("%s start: %w", b.Name, err)
	}
	return &processPipe{stdin: stdin, cmd: cmd}, nil
}

// pipeDevice mixes sounds into a system player's stdin
// Suspending stops the player process; resuming starts a fresh one
type pipeDevice struct {
	mu      sync.Mutex
	backend *BackendConfig
	rate    int
	open    pipeOpener

	out   io.WriteCloser
	mixer *Mixer
	state DeviceState

	tracker *playTracker
}

func openPipeDevice(cfg *AudioConfig) (*pipeDevice, error) {
	backend, err := DetectBackend(cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	return newPipeDevice(cfg, backend, openBackend)
}

func newPipeDevice(cfg *AudioConfig, backend *BackendConfig, open pipeOpener) (*pipeDevice, error) {
	d := &pipeDevice{
		backend: backend,
		rate:    cfg.SampleRate,
		open:    open,
	}
	d.tracker = newPlayTracker(cfg.IdleSuspend, d.suspendIfIdle)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.startLocked(); err != nil {
		return nil, err
	}
	d.state = DeviceRunning
	return d, nil
}

func (d *pipeDevice) Name() string {
	return "pipe:" + d.backend.Name
}

func (d *pipeDevice) State() DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *pipeDevice) startLocked() error {
	out, err := d.open(d.backend)
	if err != nil {
		return err
	}
	m := NewMixer(out, d.rate)
	m.Start()
	d.out = out
	d.mixer = m

	core.Go(func() { d.watch(m) })
	return nil
}

func (d *pipeDevice) stopLocked() {
	m, out := d.mixer, d.out
	d.mixer, d.out = nil, nil
	// Closing the pipe first unblocks a mixer stuck in Write
	if out != nil {
		out.Close()
	}
	if m != nil {
		m.Stop()
	}
	// Sounds queued on the stopped mixer never drain
	d.tracker.reset()
}

// watch marks the device suspended when the player dies, so the next render restarts it
func (d *pipeDevice) watch(m *Mixer) {
	select {
	case err := <-m.Errors():
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.mixer != m {
			return
		}
		log.Printf("[tone] %s: %v", d.Name(), err)
		d.stopLocked()
		if d.state == DeviceRunning {
			d.state = DeviceSuspended
		}
	case <-m.done:
	}
}

func (d *pipeDevice) suspendIfIdle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DeviceRunning || !d.tracker.idle() {
		return
	}
	d.stopLocked()
	d.state = DeviceSuspended
}

func (d *pipeDevice) Resume(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case DeviceRunning:
		return nil
	case DeviceClosed:
		return ErrDeviceClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.startLocked(); err != nil {
		return fmt.Errorf("%s resume: %w", d.Name(), err)
	}
	d.state = DeviceRunning
	return nil
}

func (d *pipeDevice) Play(s beep.Streamer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case DeviceSuspended:
		return ErrDeviceSuspended
	case DeviceClosed:
		return ErrDeviceClosed
	}

	if !d.mixer.Play(d.tracker.wrap(s)) {
		d.tracker.end()
		return fmt.Errorf("%s: play queue full", d.Name())
	}
	return nil
}

func (d *pipeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == DeviceClosed {
		return nil
	}
	d.tracker.stop()
	d.stopLocked()
	d.state = DeviceClosed
	return nil
}

// Stats returns mixer played and dropped counts
func (d *pipeDevice) Stats() (played, dropped uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mixer == nil {
		return 0, 0
	}
	return d.mixer.GetStats()
}
