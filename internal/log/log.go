// Package log wraps zerolog with the component/entity-scoped child
// logger convention used throughout bpcore.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the package-wide logger instance, configured by Init.
var Logger zerolog.Logger

// Level is a logging verbosity level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config configures the global logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init configures the global logger. Call once at process start; tests
// may call it multiple times to redirect output.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

func init() {
	// Usable before Init is called, e.g. from package-level var
	// initializers in tests.
	Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// WithComponent returns a child logger tagged with a subsystem name
// (mpool, route, cache, ...).
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithInterface returns a child logger tagged with a numeric interface
// handle, for per-flow log lines.
func WithInterface(handle uint16) zerolog.Logger {
	return Logger.With().Uint16("intf", handle).Logger()
}

// WithBundleID returns a child logger tagged with a bundle's source-EID
// plus creation-timestamp fingerprint.
func WithBundleID(id string) zerolog.Logger {
	return Logger.With().Str("bundle_id", id).Logger()
}
