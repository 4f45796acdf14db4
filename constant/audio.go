package constant

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate    = 44100
	AudioChannels      = 2
	AudioBitDepth      = 16
	AudioBytesPerFrame = AudioChannels * (AudioBitDepth / 8) // 4 bytes
	AudioPrecision     = AudioBitDepth / 8
)

// Audio Device Timing
const (
	// AudioBufferDuration determines speaker latency and pipe mixer tick rate
	AudioBufferDuration = 50 * time.Millisecond

	// AudioIdleSuspend is how long a device stays open without playback before suspending itself
	AudioIdleSuspend = 60 * time.Second

	// AudioResumeTimeout bounds a single device resume attempt
	AudioResumeTimeout = 3 * time.Second

	// AudioPlayQueueSize is the pipe mixer request buffer; overflow drops the sound
	AudioPlayQueueSize = 32
)

// Audio Levels
const (
	// DefaultMasterVolume scales every recipe after synthesis
	DefaultMasterVolume = 1.0

	// SoftLimitKnee is where pipe output starts soft limiting before hard clip
	SoftLimitKnee = 0.8
)
