package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/focus-alarm/audio"
	"github.com/lixenwraith/focus-alarm/status"
)

// writeConfig is a helper to place YAML in a temp dir and return its path.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// TestLoad_MissingFileUsesDefaults tests that an absent file is not an error.
func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	v := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, Defaults(), *cfg)
	assert.Equal(t, 3*time.Minute, cfg.Reminder.MinInterval)
	assert.Equal(t, 5*time.Minute, cfg.Reminder.MaxInterval)
	assert.Equal(t, audio.DefaultSound, cfg.Session.Sound)
}

// TestLoad_FileOverrides tests YAML values including duration strings.
func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
session:
  hours: 1
  minutes: 0
  sound: Marimba
  play_on_start: false
reminder:
  min_interval: 2m
  max_interval: 4m30s
audio:
  volume: 0.4
  backend: none
`)
	cfg, err := Load(NewViper(path))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Session.Hours)
	assert.Equal(t, 0, cfg.Session.Minutes)
	assert.Equal(t, "Marimba", cfg.Session.Sound)
	assert.False(t, cfg.Session.PlayOnStart)
	assert.Equal(t, 2*time.Minute, cfg.Reminder.MinInterval)
	assert.Equal(t, 4*time.Minute+30*time.Second, cfg.Reminder.MaxInterval)
	assert.InDelta(t, 0.4, cfg.Audio.MasterVolume, 1e-9)
	assert.Equal(t, audio.BackendNone, cfg.Audio.Backend)
	// Untouched keys keep defaults
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.True(t, cfg.Audio.Enabled)

	secs, err := cfg.SessionSeconds()
	require.NoError(t, err)
	assert.Equal(t, 3600, secs)
}

// TestLoad_EnvOverrides tests FOCUS_ALARM_ environment variables over file values.
func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "audio:\n  volume: 0.4\n")
	t.Setenv("FOCUS_ALARM_AUDIO_VOLUME", "0.7")
	t.Setenv("FOCUS_ALARM_SESSION_SOUND", "Sencha")
	t.Setenv("FOCUS_ALARM_AUDIO_ENABLED", "false")

	cfg, err := Load(NewViper(path))
	require.NoError(t, err)

	assert.InDelta(t, 0.7, cfg.Audio.MasterVolume, 1e-9)
	assert.Equal(t, "Sencha", cfg.Session.Sound)
	assert.False(t, cfg.Audio.Enabled)
}

// TestLoad_FlagOverrides tests bound pflags over environment values.
func TestLoad_FlagOverrides(t *testing.T) {
	t.Setenv("FOCUS_ALARM_SESSION_MINUTES", "10")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("minutes", 0, "")
	flags.String("sound", "", "")
	flags.Bool("unrelated", false, "")
	require.NoError(t, flags.Parse([]string{"--minutes=45", "--sound=Radar"}))

	v := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Session.Minutes)
	assert.Equal(t, "Radar", cfg.Session.Sound)
}

// TestLoad_DurationFlagsReplaceConfigured tests that one duration flag zeroes the other fields.
func TestLoad_DurationFlagsReplaceConfigured(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"seconds only", []string{"--seconds=5"}, 5},
		{"hours only", []string{"--hours=1"}, 3600},
		{"minutes and seconds", []string{"--minutes=1", "--seconds=30"}, 90},
		{"no duration flags", nil, 25 * 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.Int("hours", 0, "")
			flags.Int("minutes", 0, "")
			flags.Int("seconds", 0, "")
			require.NoError(t, flags.Parse(tt.args))

			v := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, BindFlags(v, flags))

			cfg, err := Load(v)
			require.NoError(t, err)
			secs, err := cfg.SessionSeconds()
			require.NoError(t, err)
			assert.Equal(t, tt.want, secs)
		})
	}
}

// TestLoad_DurationFlagsOverFile tests that a file duration is replaced, not merged.
func TestLoad_DurationFlagsOverFile(t *testing.T) {
	path := writeConfig(t, "session:\n  hours: 2\n  minutes: 10\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("hours", 0, "")
	flags.Int("minutes", 0, "")
	flags.Int("seconds", 0, "")
	require.NoError(t, flags.Parse([]string{"--seconds=5"}))

	v := NewViper(path)
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Session.Hours)
	assert.Equal(t, 0, cfg.Session.Minutes)
	assert.Equal(t, 5, cfg.Session.Seconds)
}

// TestLoad_Invalid tests validation and parse errors.
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"volume", "audio:\n  volume: 2\n", "volume"},
		{"window", "reminder:\n  min_interval: 5m\n  max_interval: 1m\n", "max_interval"},
		{"negative", "session:\n  minutes: -1\n", "negative"},
		{"backend", "audio:\n  backend: jack\n", "unknown audio backend"},
		{"syntax", "session: [\n", "reading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(NewViper(writeConfig(t, tt.body)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

// TestSessionSeconds_Zero tests that an empty preset is rejected.
func TestSessionSeconds_Zero(t *testing.T) {
	cfg := Defaults()
	cfg.Session.Minutes = 0
	_, err := cfg.SessionSeconds()
	require.Error(t, err)
}

// TestControllerConfig tests conversion into engine settings.
func TestControllerConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Session.Sound = "Beacon"
	cfg.Reminder.MinInterval = time.Minute

	cc := cfg.ControllerConfig(nil)
	assert.Equal(t, "Beacon", cc.Sound)
	assert.True(t, cc.PlayOnStart)
	assert.Equal(t, time.Minute, cc.Window.Min)
	assert.Equal(t, 5*time.Minute, cc.Window.Max)
	assert.NotNil(t, cc.Interval)
}

// TestControllerConfigIntervalMetric tests drawn intervals stay in the window and are published.
func TestControllerConfigIntervalMetric(t *testing.T) {
	reg := status.NewRegistry()
	cfg := Defaults()
	cc := cfg.ControllerConfig(reg)
	assert.Same(t, reg, cc.Registry)

	for i := 0; i < 20; i++ {
		d := cc.Interval.Next(3*time.Minute, 5*time.Minute)
		assert.GreaterOrEqual(t, d, 3*time.Minute)
		assert.LessOrEqual(t, d, 5*time.Minute)
		assert.Equal(t, d.Seconds(), reg.Floats.Get("reminder.interval").Get())
	}
}

// TestWriteDefault tests the generated file loads back to the defaults.
func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# focus-alarm configuration")
	assert.Contains(t, string(data), "Wind Chime")
	assert.Contains(t, string(data), "min_interval: 3m0s")

	cfg, err := Load(NewViper(path))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)

	err = WriteDefault(path, false)
	require.ErrorIs(t, err, ErrConfigExists)
	require.NoError(t, WriteDefault(path, true))
}

// TestDiff tests detection of live-applicable changes.
func TestDiff(t *testing.T) {
	a := Defaults()
	b := Defaults()
	assert.Equal(t, Changes{}, Diff(&a, &b))

	b.Session.Sound = "Radar"
	b.Audio.MasterVolume = 0.3
	assert.Equal(t, Changes{Sound: true, Volume: true}, Diff(&a, &b))
}

// TestWatch_NoFile tests that watching is skipped without a config file.
func TestWatch_NoFile(t *testing.T) {
	v := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.False(t, Watch(v, func(*Config, error) {}))
}

// TestWatch_AppliesEdits tests that a file edit reaches the callback.
func TestWatch_AppliesEdits(t *testing.T) {
	path := writeConfig(t, "session:\n  sound: Marimba\n")
	v := NewViper(path)
	_, err := Load(v)
	require.NoError(t, err)

	var mu sync.Mutex
	var got *Config
	require.True(t, Watch(v, func(cfg *Config, err error) {
		if err != nil {
			return
		}
		mu.Lock()
		got = cfg
		mu.Unlock()
	}))

	require.NoError(t, os.WriteFile(path, []byte("session:\n  sound: Radar\n"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.Session.Sound == "Radar"
	}, 3*time.Second, 20*time.Millisecond)
}
