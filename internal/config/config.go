// Package config loads optional defaults from the user's config file.
// Command-line flags always win over config values.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config file keys.
const (
	KeyDevice   = "device"
	KeySession  = "session"
	KeyInterval = "interval_ms"
	KeyVerbose  = "verbose"
)

var (
	once sync.Once
	v    *viper.Viper
)

// Path returns the config file location, or "" if the user config
// directory cannot be determined.
func Path() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "backlight-dbus", "config.yaml")
}

// Load reads the config file once. A missing file leaves every key at
// its default.
func Load() *viper.Viper {
	once.Do(func() {
		v = viper.New()
		if p := Path(); p != "" {
			v.SetConfigFile(p)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					slog.Warn("ignoring unreadable config file", "path", p, "err", err)
				}
			}
		}
	})
	return v
}

// Watch fires onChange whenever the config file is rewritten. Load
// must have been called first.
func Watch(onChange func()) {
	v.OnConfigChange(func(e fsnotify.Event) {
		onChange()
	})
	v.WatchConfig()
}
