package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mrjpierce/mp3-file-analysis/config"
)

// bootstrapLogger builds the pre-configuration logger from CLI flags
// so that config loading itself gets logged.
func bootstrapLogger(cli *CLIConfig) *slog.Logger {
	return newLogger(cli.LogLevel, cli.LogFormat).With(
		"service", appName,
		"version", Version,
	)
}

// configuredLogger rebuilds the logger once configuration is resolved.
// The file and environment layers decide level and format unless the
// operator set them explicitly on the command line; the service
// identity from the config is stamped onto every record.
func configuredLogger(cli *CLIConfig, cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if cli.LogLevelSet || cli.Debug {
		level = cli.LogLevel
	}
	format := cfg.Logging.Format
	if cli.LogFormatSet {
		format = cli.LogFormat
	}

	logger := newLogger(level, format).With(
		"service", cfg.Service.Name,
		"version", Version,
		"pid", os.Getpid(),
	)
	if cfg.Service.InstanceID != "" {
		logger = logger.With("instance_id", cfg.Service.InstanceID)
	}
	if cfg.Service.Environment != "" {
		logger = logger.With("environment", cfg.Service.Environment)
	}
	return logger
}

func newLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
