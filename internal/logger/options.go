package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// config collects the knobs the options below adjust before the logger
// is constructed.
type config struct {
	output       io.Writer
	level        zerolog.Level
	excludeParts []string
	console      bool
}

// Option adjusts the logger configuration.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(cfg *config) {
	f(cfg)
}

// WithLevel sets the minimum level by name (trace, debug, info, warn,
// error, fatal). Unknown names fall back to info.
func WithLevel(level string) Option {
	return optionFunc(func(cfg *config) {
		cfg.level = parseLevel(level)
	})
}

// WithConsoleWriter toggles human-readable console output. Off, the
// logger emits plain JSON lines.
func WithConsoleWriter(console bool) Option {
	return optionFunc(func(cfg *config) {
		cfg.console = console
	})
}

// WithOutput sets the destination writer.
func WithOutput(output io.Writer) Option {
	return optionFunc(func(cfg *config) {
		cfg.output = output
	})
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
