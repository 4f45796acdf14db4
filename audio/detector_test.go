package audio

import (
	"errors"
	"os"
	"os/exec"
	"slices"
	"testing"
)

func stubLookPath(t *testing.T, available ...string) {
	t.Helper()
	origLook, origStat := lookPath, statPath
	t.Cleanup(func() {
		lookPath, statPath = origLook, origStat
	})

	lookPath = func(name string) (string, error) {
		if slices.Contains(available, name) {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
	statPath = func(string) (os.FileInfo, error) {
		return nil, os.ErrNotExist
	}
}

// TestDetectBackendPriority verifies the first available player wins
func TestDetectBackendPriority(t *testing.T) {
	stubLookPath(t, "aplay", "ffplay")

	b, err := DetectBackend(48000)
	if err != nil {
		t.Fatalf("DetectBackend: %v", err)
	}
	if b.Type != BackendALSA || b.Name != "aplay" {
		t.Errorf("Expected aplay, got %s", b.Name)
	}
	if b.Path != "/usr/bin/aplay" {
		t.Errorf("Unexpected path %q", b.Path)
	}
	if !slices.Contains(b.Args, "48000") {
		t.Errorf("Expected rate in args, got %v", b.Args)
	}
}

// TestDetectBackendPulseFirst verifies pacat is preferred over everything else
func TestDetectBackendPulseFirst(t *testing.T) {
	stubLookPath(t, "pacat", "pw-cat", "aplay")

	b, err := DetectBackend(44100)
	if err != nil {
		t.Fatalf("DetectBackend: %v", err)
	}
	if b.Type != BackendPulse {
		t.Errorf("Expected pacat, got %s", b.Name)
	}
	if !slices.Contains(b.Args, "--rate=44100") {
		t.Errorf("Expected rate flag, got %v", b.Args)
	}
}

// TestDetectBackendNone verifies the sentinel error when nothing is installed
func TestDetectBackendNone(t *testing.T) {
	stubLookPath(t)

	if _, err := DetectBackend(44100); !errors.Is(err, ErrNoAudioBackend) {
		t.Errorf("Expected ErrNoAudioBackend, got %v", err)
	}
}

// TestNewDeviceNone verifies the none backend disables output
func TestNewDeviceNone(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.Backend = BackendNone
	if d, err := NewDevice(cfg); !errors.Is(err, ErrAudioDisabled) || d != nil {
		t.Errorf("Expected (nil, ErrAudioDisabled), got (%v, %v)", d, err)
	}

	cfg.Backend = "jack"
	if _, err := NewDevice(cfg); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
}

// TestNewDevicePipeUnavailable verifies a missing player yields a nil interface
func TestNewDevicePipeUnavailable(t *testing.T) {
	stubLookPath(t)

	cfg := DefaultAudioConfig()
	cfg.Backend = BackendPipe
	d, err := NewDevice(cfg)
	if !errors.Is(err, ErrNoAudioBackend) {
		t.Errorf("Expected ErrNoAudioBackend, got %v", err)
	}
	if d != nil {
		t.Error("Expected nil device interface")
	}
}
