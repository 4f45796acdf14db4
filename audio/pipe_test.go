package audio

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// fakeOpener hands out in-memory pipes and counts opens
type fakeOpener struct {
	mu    sync.Mutex
	pipes []*syncBuffer
	err   error
	fail  error
}

func (o *fakeOpener) open(*BackendConfig) (io.WriteCloser, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	p := &syncBuffer{}
	if o.fail != nil {
		p.fail(o.fail)
	}
	o.pipes = append(o.pipes, p)
	return p, nil
}

func (o *fakeOpener) opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pipes)
}

func (o *fakeOpener) last() *syncBuffer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pipes[len(o.pipes)-1]
}

func testBackend() *BackendConfig {
	return &BackendConfig{Type: BackendALSA, Name: "aplay", Path: "/usr/bin/aplay"}
}

func waitForState(t *testing.T, d Device, want DeviceState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d.State() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Expected state %s, got %s", want, d.State())
}

// TestPipeDeviceIdleSuspendResume verifies the player is stopped when idle and restarted on resume
func TestPipeDeviceIdleSuspendResume(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.SampleRate = 8000
	cfg.IdleSuspend = 50 * time.Millisecond

	opener := &fakeOpener{}
	d, err := newPipeDevice(cfg, testBackend(), opener.open)
	if err != nil {
		t.Fatalf("newPipeDevice: %v", err)
	}
	defer d.Close()

	if d.Name() != "pipe:aplay" {
		t.Errorf("Unexpected name %q", d.Name())
	}
	if d.State() != DeviceRunning {
		t.Fatalf("Expected running device, got %s", d.State())
	}

	if err := d.Play(&monoStreamer{buf: floatBuffer{0.2, 0.2}}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	waitForState(t, d, DeviceSuspended)

	if err := d.Play(&monoStreamer{buf: floatBuffer{0.2}}); !errors.Is(err, ErrDeviceSuspended) {
		t.Errorf("Expected ErrDeviceSuspended, got %v", err)
	}

	if err := d.Resume(context.Background()); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if d.State() != DeviceRunning {
		t.Errorf("Expected running after resume, got %s", d.State())
	}
	if opener.opens() != 2 {
		t.Errorf("Expected resume to reopen the player, got %d opens", opener.opens())
	}
}

// TestPipeDeviceClose verifies a closed device rejects play and resume
func TestPipeDeviceClose(t *testing.T) {
	opener := &fakeOpener{}
	d, err := newPipeDevice(DefaultAudioConfig(), testBackend(), opener.open)
	if err != nil {
		t.Fatalf("newPipeDevice: %v", err)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Expected repeated Close to be a no-op, got %v", err)
	}
	if err := d.Play(&monoStreamer{}); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("Expected ErrDeviceClosed from Play, got %v", err)
	}
	if err := d.Resume(context.Background()); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("Expected ErrDeviceClosed from Resume, got %v", err)
	}
}

// TestPipeDeviceOpenError verifies construction fails when the player cannot start
func TestPipeDeviceOpenError(t *testing.T) {
	opener := &fakeOpener{err: errors.New("exec failed")}
	if _, err := newPipeDevice(DefaultAudioConfig(), testBackend(), opener.open); err == nil {
		t.Error("Expected open error")
	}
}

// TestPipeDeviceBrokenPipe verifies a dead player leaves the device suspended
func TestPipeDeviceBrokenPipe(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.SampleRate = 8000

	opener := &fakeOpener{fail: errors.New("EPIPE")}
	d, err := newPipeDevice(cfg, testBackend(), opener.open)
	if err != nil {
		t.Fatalf("newPipeDevice: %v", err)
	}
	defer d.Close()

	waitForState(t, d, DeviceSuspended)
}

// TestPipeDeviceIdleSuspendAfterPlayerDeath verifies sounds lost with a dead player do not block idle suspend
func TestPipeDeviceIdleSuspendAfterPlayerDeath(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.SampleRate = 8000
	cfg.IdleSuspend = 50 * time.Millisecond

	opener := &fakeOpener{}
	d, err := newPipeDevice(cfg, testBackend(), opener.open)
	if err != nil {
		t.Fatalf("newPipeDevice: %v", err)
	}
	defer d.Close()

	// An endless sound is still playing when the pipe breaks
	if err := d.Play(beep.Silence(-1)); err != nil {
		t.Fatalf("Play: %v", err)
	}
	opener.last().fail(errors.New("EPIPE"))
	waitForState(t, d, DeviceSuspended)

	if err := d.Resume(context.Background()); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if !d.tracker.idle() {
		t.Error("Expected no sounds in flight after the player restarted")
	}

	if err := d.Play(&monoStreamer{buf: floatBuffer{0.2, 0.2}}); err != nil {
		t.Fatalf("Play after resume: %v", err)
	}
	waitForState(t, d, DeviceSuspended)
	if opener.opens() != 2 {
		t.Errorf("Expected 2 opens, got %d", opener.opens())
	}
}
