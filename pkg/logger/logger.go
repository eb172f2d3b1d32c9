// Package logger provides the structured logger used across the risk engine.
// All components receive a zerolog.Logger created here and tag themselves
// with a "component" field.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfold/riskengine/pkg/config"
)

// New creates the root logger from config.
func New(cfg *config.Config) zerolog.Logger {
	var output io.Writer
	if cfg.LogFormat == "console" || cfg.LogFormat == "pretty" {
		// Human-readable console output
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	} else {
		// JSON output (default)
		output = os.Stdout
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.LogLevel))

	return zerolog.New(output).
		With().
		Timestamp().
		Str("env", cfg.Env).
		Logger()
}

// ParseLevel converts a string log level to zerolog.Level.
func ParseLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
