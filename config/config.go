package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lixenwraith/focus-alarm/audio"
	"github.com/lixenwraith/focus-alarm/constant"
	"github.com/lixenwraith/focus-alarm/engine"
	"github.com/lixenwraith/focus-alarm/status"
)

// EnvPrefix namespaces environment overrides, e.g. FOCUS_ALARM_AUDIO_VOLUME
const EnvPrefix = "FOCUS_ALARM"

// ErrConfigExists is returned by WriteDefault when the target is already present
var ErrConfigExists = errors.New("config file already exists")

// SessionConfig holds the preset duration and sound selection
type SessionConfig struct {
	Hours       int    `mapstructure:"hours" yaml:"hours"`
	Minutes     int    `mapstructure:"minutes" yaml:"minutes"`
	Seconds     int    `mapstructure:"seconds" yaml:"seconds"`
	Sound       string `mapstructure:"sound" yaml:"sound"`
	PlayOnStart bool   `mapstructure:"play_on_start" yaml:"play_on_start"`
}

// ReminderConfig bounds the randomized reminder interval
type ReminderConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	MaxInterval time.Duration `mapstructure:"max_interval" yaml:"max_interval"`
}

// LogConfig controls file logging
type LogConfig struct {
	Debug bool   `mapstructure:"debug" yaml:"debug"`
	Dir   string `mapstructure:"dir" yaml:"dir"`
}

// Config is the complete application configuration
type Config struct {
	Session  SessionConfig     `mapstructure:"session" yaml:"session"`
	Reminder ReminderConfig    `mapstructure:"reminder" yaml:"reminder"`
	Audio    audio.AudioConfig `mapstructure:"audio" yaml:"audio"`
	Log      LogConfig         `mapstructure:"log" yaml:"log"`
}

// Defaults returns a Config with the stock values
func Defaults() Config {
	return Config{
		Session: SessionConfig{
			Minutes:     25,
			Sound:       audio.DefaultSound,
			PlayOnStart: true,
		},
		Reminder: ReminderConfig{
			MinInterval: constant.ReminderMinInterval,
			MaxInterval: constant.ReminderMaxInterval,
		},
		Audio: *audio.DefaultAudioConfig(),
		Log: LogConfig{
			Dir: "logs",
		},
	}
}

// Validate checks ranges across all sections
func (c *Config) Validate() error {
	s := c.Session
	if s.Hours < 0 || s.Minutes < 0 || s.Seconds < 0 {
		return fmt.Errorf("session duration fields must not be negative (%dh %dm %ds)", s.Hours, s.Minutes, s.Seconds)
	}
	if c.Reminder.MinInterval <= 0 {
		return fmt.Errorf("reminder min_interval %v must be positive", c.Reminder.MinInterval)
	}
	if c.Reminder.MaxInterval < c.Reminder.MinInterval {
		return fmt.Errorf("reminder max_interval %v is below min_interval %v", c.Reminder.MaxInterval, c.Reminder.MinInterval)
	}
	if err := c.Audio.Validate(); err != nil {
		return err
	}
	return nil
}

// SessionSeconds returns the preset duration, or an error when it is not positive
func (c *Config) SessionSeconds() (int, error) {
	return engine.DurationSeconds(c.Session.Hours, c.Session.Minutes, c.Session.Seconds)
}

// ReminderWindow converts the reminder section for the scheduler
func (c *Config) ReminderWindow() engine.ReminderWindow {
	return engine.ReminderWindow{Min: c.Reminder.MinInterval, Max: c.Reminder.MaxInterval}
}

// ControllerConfig builds the engine settings for this configuration
// Each drawn reminder interval is published as reminder.interval in seconds
func (c *Config) ControllerConfig(reg *status.Registry) *engine.ControllerConfig {
	if reg == nil {
		reg = status.NewRegistry()
	}
	uniform := engine.NewUniformInterval()
	last := reg.Floats.Get("reminder.interval")

	return &engine.ControllerConfig{
		Sound:       c.Session.Sound,
		PlayOnStart: c.Session.PlayOnStart,
		Window:      c.ReminderWindow(),
		Interval: engine.IntervalFunc(func(min, max time.Duration) time.Duration {
			d := uniform.Next(min, max)
			last.Set(d.Seconds())
			return d
		}),
		Registry: reg,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/focus-alarm/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "focus-alarm", "config.yaml")
}

// NewViper creates a viper instance with defaults, env binding and the config file at path
// An empty path selects DefaultPath
func NewViper(path string) *viper.Viper {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, Defaults())
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("session.hours", d.Session.Hours)
	v.SetDefault("session.minutes", d.Session.Minutes)
	v.SetDefault("session.seconds", d.Session.Seconds)
	v.SetDefault("session.sound", d.Session.Sound)
	v.SetDefault("session.play_on_start", d.Session.PlayOnStart)

	v.SetDefault("reminder.min_interval", d.Reminder.MinInterval)
	v.SetDefault("reminder.max_interval", d.Reminder.MaxInterval)

	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.volume", d.Audio.MasterVolume)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.backend", d.Audio.Backend)
	v.SetDefault("audio.idle_suspend", d.Audio.IdleSuspend)
	v.SetDefault("audio.resume_timeout", d.Audio.ResumeTimeout)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.dir", d.Log.Dir)
}

// flagKeys maps CLI flag names to config keys
var flagKeys = map[string]string{
	"hours":   "session.hours",
	"minutes": "session.minutes",
	"seconds": "session.seconds",
	"sound":   "session.sound",
	"volume":  "audio.volume",
	"backend": "audio.backend",
	"debug":   "log.debug",
}

// durationFlags are set together: passing any of them zeroes the others
var durationFlags = []string{"hours", "minutes", "seconds"}

// BindFlags binds the known flags present in flags; absent flags are skipped
// A duration given on the command line replaces the configured one as a whole,
// so --seconds 5 is a five second session rather than the default minutes plus five
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	explicit := false
	for _, name := range durationFlags {
		if flags.Changed(name) {
			explicit = true
			break
		}
	}
	if !explicit {
		return nil
	}
	for _, name := range durationFlags {
		if !flags.Changed(name) {
			v.Set(flagKeys[name], 0)
		}
	}
	return nil
}

// Load reads the config file if present and decodes the merged settings
// A missing file is not an error; defaults and environment still apply
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
