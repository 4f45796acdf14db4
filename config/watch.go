package config

import (
	"log"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-decodes the config whenever the file changes and passes the result to fn
// Invalid edits are reported as errors and leave the running settings untouched
// Returns false when there is no file to watch
func Watch(v *viper.Viper, fn func(*Config, error)) bool {
	path := v.ConfigFileUsed()
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		log.Printf("[config] %s changed", e.Name)
		fn(decode(v))
	})
	v.WatchConfig()
	return true
}

// Changes lists the live-applicable settings that differ between two configs
type Changes struct {
	Sound  bool
	Volume bool
}

// Diff reports which live settings changed from old to updated
func Diff(old, updated *Config) Changes {
	return Changes{
		Sound:  old.Session.Sound != updated.Session.Sound,
		Volume: old.Audio.MasterVolume != updated.Audio.MasterVolume,
	}
}
