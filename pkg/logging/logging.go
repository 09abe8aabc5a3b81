// pkg/logging/logging.go
// Package logging configures zerolog for the relay CLI and builds
// component-scoped loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	mu sync.Mutex

	// logWriter is where global logs go. Logs use stderr so command output
	// on stdout stays machine readable.
	logWriter io.Writer = os.Stderr
)

// init keeps library users quiet until the CLI configures logging.
func init() {
	log.Logger = log.Logger.Level(zerolog.ErrorLevel)
}

// ConfigureGlobalLogging sets the global level and output format. Format
// "text" writes human readable console output; anything else writes JSON.
func ConfigureGlobalLogging(levelStr, format string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}

	mu.Lock()
	w := logWriter
	mu.Unlock()

	if strings.EqualFold(format, FormatText) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	configure(level, w)
	return nil
}

// ConfigureGlobal installs a global JSON logger at level writing to the
// current log writer.
func ConfigureGlobal(level zerolog.Level) {
	configure(level, currentWriter())
}

func configure(level zerolog.Level, out io.Writer) {
	ctx := zerolog.New(out).With().Timestamp()
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger
}

// ParseLevel converts a level name to a zerolog.Level. An empty name means
// error level.
func ParseLevel(levelStr string) (zerolog.Level, error) {
	if levelStr == "" {
		return zerolog.ErrorLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", levelStr, err)
	}
	return level, nil
}

// SetLogWriter sets the writer used by later ConfigureGlobalLogging calls.
func SetLogWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logWriter = w
}

func currentWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return logWriter
}

// NewLogger returns a logger tagged with component, writing JSON to the
// current log writer.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return NewLoggerWithWriter(component, level, currentWriter())
}

// NewLoggerWithWriter returns a logger tagged with component writing to w.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
