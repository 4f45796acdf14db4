package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/focus-alarm/audio"
)

// DefaultTemplate renders the default config as YAML under a comment header
func DefaultTemplate() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# focus-alarm configuration\n#\n")
	buf.WriteString("# Every key can be overridden from the environment with the " + EnvPrefix + "_ prefix,\n")
	buf.WriteString("# e.g. " + EnvPrefix + "_AUDIO_VOLUME=0.5 or " + EnvPrefix + "_SESSION_SOUND=Marimba\n#\n")
	buf.WriteString("# audio.backend: auto | speaker | pipe | none\n")
	buf.WriteString("# session.sound: one of\n")
	for _, r := range audio.DefaultCatalog().Recipes() {
		fmt.Fprintf(&buf, "#   %-13s %s\n", r.Name, r.Description)
	}
	buf.WriteString("#\n# sound and volume changes are applied live while a session runs\n\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	d := Defaults()
	if err := enc.Encode(&d); err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault creates a config file at path with default settings and comments
// An existing file is kept unless overwrite is set
func WriteDefault(path string, overwrite bool) error {
	if path == "" {
		path = DefaultPath()
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := DefaultTemplate()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Describe renders cfg as YAML without the header, used by `config show`
func Describe(cfg *Config) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
