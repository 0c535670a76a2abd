package logger

import (
	"os"

	"github.com/rs/zerolog"
)

const (
	DefaultLogLevel = "info"

	// LogLevelEnvVar overrides the default level for every convey
	// command, e.g. CONVEY_CLI_LOG_LEVEL=debug.
	LogLevelEnvVar = "CONVEY_CLI_LOG_LEVEL"
)

// New builds a zerolog logger from the given options.
func New(opts ...Option) *zerolog.Logger {
	cfg := &config{
		output:       os.Stdout,
		level:        parseLevel(DefaultLogLevel),
		excludeParts: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName},
		console:      true,
	}

	for _, opt := range opts {
		opt.apply(cfg)
	}

	logger := zerolog.New(cfg.output).
		Level(cfg.level).
		With().
		Logger()

	// Console output drops timestamps and level tags so command output
	// stays readable in a terminal.
	if cfg.console {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:          cfg.output,
			PartsExclude: cfg.excludeParts,
		})
	}

	return &logger
}

// NewConsoleLogger is the logger every convey command starts from:
// console output on stderr, info level unless CONVEY_CLI_LOG_LEVEL
// says otherwise. The --verbose flag later lowers the level to debug.
func NewConsoleLogger() *zerolog.Logger {
	level := DefaultLogLevel
	if env := os.Getenv(LogLevelEnvVar); env != "" {
		level = env
	}
	return New(
		WithLevel(level),
		WithOutput(os.Stderr),
		WithConsoleWriter(true),
	)
}
