package audio

import "testing"

// TestWaveformString verifies waveform names
func TestWaveformString(t *testing.T) {
	cases := map[Waveform]string{
		WaveSine:     "sine",
		WaveTriangle: "triangle",
		WaveSquare:   "square",
		WaveSaw:      "saw",
		Waveform(9):  "unknown",
	}
	for w, want := range cases {
		if got := w.String(); got != want {
			t.Errorf("Waveform(%d).String() = %q, want %q", int(w), got, want)
		}
	}
}

// TestDeviceStateString verifies device state names
func TestDeviceStateString(t *testing.T) {
	cases := map[DeviceState]string{
		DeviceRunning:   "running",
		DeviceSuspended: "suspended",
		DeviceClosed:    "closed",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("DeviceState(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

// TestDeviceStatusText verifies user-facing status strings
func TestDeviceStatusText(t *testing.T) {
	if StatusReady != "Ready" || StatusActive != "Active" ||
		StatusNotAvailable != "Not Available" || StatusSuspended != "Suspended" {
		t.Error("Unexpected status text")
	}
}
