package audio

import (
	"fmt"
	"time"

	"github.com/lixenwraith/focus-alarm/constant"
)

// Backend names accepted by AudioConfig.Backend
const (
	BackendAuto    = "auto"    // speaker, then pipe
	BackendSpeaker = "speaker" // in-process output through beep/oto
	BackendPipe    = "pipe"    // raw PCM piped to a system player
	BackendNone    = "none"    // silent operation
)

// AudioConfig holds audio system configuration
type AudioConfig struct {
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	MasterVolume  float64       `mapstructure:"volume" yaml:"volume"`
	SampleRate    int           `mapstructure:"sample_rate" yaml:"sample_rate"`
	Backend       string        `mapstructure:"backend" yaml:"backend"`
	IdleSuspend   time.Duration `mapstructure:"idle_suspend" yaml:"idle_suspend"`
	ResumeTimeout time.Duration `mapstructure:"resume_timeout" yaml:"resume_timeout"`
}

// DefaultAudioConfig returns the stock audio settings
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		Enabled:       true,
		MasterVolume:  constant.DefaultMasterVolume,
		SampleRate:    constant.AudioSampleRate,
		Backend:       BackendAuto,
		IdleSuspend:   constant.AudioIdleSuspend,
		ResumeTimeout: constant.AudioResumeTimeout,
	}
}

// Validate checks ranges and backend name
func (c *AudioConfig) Validate() error {
	if c.MasterVolume < 0 || c.MasterVolume > 1 {
		return fmt.Errorf("audio volume %v out of range [0, 1]", c.MasterVolume)
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("audio sample rate %d out of range [8000, 192000]", c.SampleRate)
	}
	switch c.Backend {
	case BackendAuto, BackendSpeaker, BackendPipe, BackendNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.IdleSuspend < 0 {
		return fmt.Errorf("audio idle suspend %v is negative", c.IdleSuspend)
	}
	if c.ResumeTimeout <= 0 {
		return fmt.Errorf("audio resume timeout %v must be positive", c.ResumeTimeout)
	}
	return nil
}

// Clone returns an independent copy
func (c *AudioConfig) Clone() *AudioConfig {
	cp := *c
	return &cp
}
