// pkg/config/types.go
package config

import "time"

// Config is the root configuration of the relay CLI.
type Config struct {
	Log      LogConfig      `description:"Logging configuration" koanf:"log"`
	Compiler CompilerConfig `description:"Listener compilation" koanf:"compiler"`
	Output   OutputConfig   `description:"Command output" koanf:"output"`
	Watch    WatchConfig    `description:"File watching" koanf:"watch"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level: trace | debug | info | warn | error" koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `description:"Log format: json | text" koanf:"format" validate:"oneof=json text"`
}

// CompilerConfig names the tags the compiler looks for.
type CompilerConfig struct {
	ProviderTag string `description:"Tag identifying listener providers" koanf:"provider_tag" validate:"required"`
	ListenerTag string `description:"Listener tag used when a provider does not set one" koanf:"listener_tag" validate:"required"`
}

// OutputConfig controls how resolved orders are printed.
type OutputConfig struct {
	Format string `description:"Output format: yaml | json | table" koanf:"format" validate:"oneof=yaml json table"`
}

// WatchConfig controls --watch behaviour.
type WatchConfig struct {
	Debounce time.Duration `description:"Delay between the last change and a reload" koanf:"debounce" validate:"gt=0"`
}
