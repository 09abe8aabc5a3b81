// pkg/config/config.go
// Package config layers defaults, a YAML file, RELAY_ environment variables
// and command-line flags into a validated Config.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ErrInvalidConfig indicates the merged configuration failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// flagKeys maps the flags registered by BindFlags to configuration keys.
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"provider-tag": "compiler.provider_tag",
	"listener-tag": "compiler.listener_tag",
	"format":       "output.format",
	"debounce":     "watch.debounce",
}

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex
}

// NewManager creates a Manager with an empty koanf instance.
func NewManager() *Manager {
	return &Manager{
		koanfInstance: koanf.New("."),
		currentConfig: DefaultConfig(),
	}
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Compiler: CompilerConfig{
			ProviderTag: "listener_provider",
			ListenerTag: "event_listener",
		},
		Output: OutputConfig{
			Format: "yaml",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
	}
}

// DefaultConfigAsMap flattens DefaultConfig for koanf's confmap provider.
func DefaultConfigAsMap() map[string]any {
	def := DefaultConfig()
	return map[string]any{
		"log.level":             def.Log.Level,
		"log.format":            def.Log.Format,
		"compiler.provider_tag": def.Compiler.ProviderTag,
		"compiler.listener_tag": def.Compiler.ListenerTag,
		"output.format":         def.Output.Format,
		"watch.debounce":        def.Watch.Debounce.String(),
	}
}

// Load loads the default sources: defaults, the optional file at
// configPath, RELAY_ environment variables and flags.
func (m *Manager) Load(flags *pflag.FlagSet, configPath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	return m.LoadWithSources(DefaultSources(configPath, flags, debug))
}

// LoadWithSources loads sources in ascending priority, then unmarshals and
// validates the merged result. The current configuration is only replaced
// when every step succeeds.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := slices.Clone(sources)
	slices.SortStableFunc(ordered, func(a, b ConfigSource) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})

	k := koanf.New(".")
	for _, src := range ordered {
		if err := src.Load(k); err != nil {
			return fmt.Errorf("source %s: %w", src.Name(), err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	m.koanfInstance = k
	m.currentConfig = cfg
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// Koanf returns the merged koanf instance of the last successful load.
func (m *Manager) Koanf() *koanf.Koanf {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.koanfInstance
}

// BindFlags defines the command-line flags that override configuration keys.
// Flags left at their default do not override file or environment values.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()

	flags.String("log-level", defaults.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "Log format (text, json)")
	flags.String("provider-tag", defaults.Compiler.ProviderTag, "Tag identifying listener providers")
	flags.String("listener-tag", defaults.Compiler.ListenerTag, "Default listener tag")
	flags.Bool("debug", false, "Enable debug logging")
}
