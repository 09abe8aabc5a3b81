// Package paths locates relay's per-user files.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigFileName is the name of the user configuration file.
const ConfigFileName = "config.yaml"

// ConfigDir returns the config directory for relay.
// Order: XDG_CONFIG_HOME/relay, platform-specific fallback.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "relay")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Relay")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "relay")
}

// DefaultConfigFile returns the configuration file read when --config is not
// given. The file is optional.
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}
