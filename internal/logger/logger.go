// Package logger configures the zerolog logger used by the CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects level, format and destination
type Config struct {
	Level  string `mapstructure:"level" yaml:"level"`   // trace, debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // console or json
	Output string `mapstructure:"output" yaml:"output"` // stderr, stdout, or a file path
}

// Logger is the process logger, set by Init
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures Logger. The returned closer releases a log file, if any.
func Init(cfg Config) (io.Closer, error) {
	l, closer, err := New(cfg)
	if err != nil {
		return nil, err
	}
	Logger = l
	log.Logger = l
	Logger.Debug().
		Str("level", cfg.Level).
		Str("format", cfg.Format).
		Str("output", cfg.Output).
		Msg("logger initialized")
	return closer, nil
}

// New builds a logger from cfg without touching globals
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	levelName := strings.ToLower(strings.TrimSpace(cfg.Level))
	if levelName == "" {
		levelName = "info"
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level '%s': %w", cfg.Level, err)
	}

	var out io.Writer
	var closer io.Closer = nopCloser{}
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file '%s': %w", cfg.Output, err)
		}
		out = f
		closer = f
	}

	switch strings.ToLower(cfg.Format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	case "json":
	default:
		return zerolog.Nop(), nil, fmt.Errorf("invalid log format '%s'", cfg.Format)
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return l, closer, nil
}

// IsStream reports whether output names a standard stream rather than a file
func IsStream(output string) bool {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stderr", "stdout":
		return true
	}
	return false
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
