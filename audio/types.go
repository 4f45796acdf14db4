package audio

import (
	"errors"
	"time"
)

// Waveform selects the oscillator shape
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WaveSaw
)

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSquare:
		return "square"
	case WaveSaw:
		return "saw"
	default:
		return "unknown"
	}
}

// Curve is the interpolation shape of an envelope segment or frequency sweep
type Curve int

const (
	CurveLinear Curve = iota
	CurveExponential
)

// ModTarget is the parameter an LFO modulates
type ModTarget int

const (
	ModAmplitude ModTarget = iota // added to the envelope gain
	ModFrequency                  // added to the instantaneous frequency in Hz
)

// Breakpoint is one envelope point; the segment ending here uses Curve
// The first breakpoint sets the starting value and its Curve is ignored
type Breakpoint struct {
	At    time.Duration
	Gain  float64
	Curve Curve
}

// Modulator is a sine LFO
type Modulator struct {
	Freq   float64
	Depth  float64
	Target ModTarget
}

// Sweep glides the voice frequency to To over the voice duration
type Sweep struct {
	To    float64
	Curve Curve
}

// Voice is one oscillator with its gain envelope, placed at Offset inside the recipe
type Voice struct {
	Wave     Waveform
	Freq     float64
	Sweep    *Sweep
	Mod      *Modulator
	Envelope []Breakpoint
	Offset   time.Duration
	Duration time.Duration
}

// Recipe is a named, declarative sound
type Recipe struct {
	Name        string
	Description string
	Voices      []Voice
}

// DeviceState is the runtime state of an output device
type DeviceState int

const (
	DeviceRunning DeviceState = iota
	DeviceSuspended
	DeviceClosed
)

func (s DeviceState) String() string {
	switch s {
	case DeviceRunning:
		return "running"
	case DeviceSuspended:
		return "suspended"
	case DeviceClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DeviceStatus is the user-facing audio status
type DeviceStatus string

const (
	StatusReady        DeviceStatus = "Ready"
	StatusActive       DeviceStatus = "Active"
	StatusNotAvailable DeviceStatus = "Not Available"
	StatusSuspended    DeviceStatus = "Suspended"
)

// StatusReport is delivered to the status handler on every status transition
type StatusReport struct {
	Status DeviceStatus
	OK     bool
}

// BackendType identifies the audio backend
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
)

// BackendConfig describes a CLI audio backend
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

// Sentinel errors
var (
	ErrNoAudioBackend  = errors.New("no compatible audio backend found")
	ErrPipeClosed      = errors.New("audio pipe closed")
	ErrInvalidRecipe   = errors.New("invalid recipe")
	ErrDeviceSuspended = errors.New("audio device suspended")
	ErrDeviceClosed    = errors.New("audio device closed")
	ErrAudioDisabled   = errors.New("audio disabled")
	ErrUnknownBackend  = errors.New("unknown audio backend")
)
