package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrjpierce/mp3-file-analysis/config"
)

func testAppConfig(level, format string) *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{Name: "mp3-file-analysis"},
		Logging: config.LoggingConfig{Level: level, Format: format},
	}
}

func TestConfiguredLogger_ConfigDrivesLevel(t *testing.T) {
	cli := &CLIConfig{LogLevel: "info", LogFormat: "json"}
	logger := configuredLogger(cli, testAppConfig("error", "json"))

	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.True(t, logger.Enabled(ctx, slog.LevelError))
}

func TestConfiguredLogger_ExplicitFlagWinsOverConfig(t *testing.T) {
	cli := &CLIConfig{LogLevel: "debug", LogFormat: "json", LogLevelSet: true}
	logger := configuredLogger(cli, testAppConfig("error", "json"))

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestConfiguredLogger_DebugFlagWins(t *testing.T) {
	cli := &CLIConfig{LogLevel: "debug", LogFormat: "json", Debug: true}
	logger := configuredLogger(cli, testAppConfig("warn", "json"))

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	logger := newLogger("chatty", "json")

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
}
