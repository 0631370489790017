package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	Debug           bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool

	// LogLevelSet and LogFormatSet record whether the operator passed
	// the flag explicitly, so CLI values can win over the config file.
	LogLevelSet  bool
	LogFormatSet bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Flags fall back to environment variables so container
	// deployments need no argument plumbing.
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("MP3ANALYSIS_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: MP3ANALYSIS_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("MP3ANALYSIS_CONFIG", ""),
		"Path to configuration file, empty for defaults (env: MP3ANALYSIS_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("MP3ANALYSIS_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: MP3ANALYSIS_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("MP3ANALYSIS_LOG_FORMAT", "json"),
		"Log format: json, text (env: MP3ANALYSIS_LOG_FORMAT)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("MP3ANALYSIS_DEBUG", false),
		"Enable debug mode (env: MP3ANALYSIS_DEBUG)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("MP3ANALYSIS_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: MP3ANALYSIS_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printDetailedHelp

	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevelSet = true
		case "log-format":
			cfg.LogFormatSet = true
		}
	})

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - MP3 frame analysis service

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run with defaults (NATS on localhost, HTTP on :8080)
  %s

  # Run with custom config
  %s --config=/etc/mp3analysis/config.json

  # Run with debug logging
  %s --log-level=debug --log-format=text

  # Validate configuration only
  %s --config=config.json --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "1", "t", "true", "TRUE", "True":
			return true
		case "0", "f", "false", "FALSE", "False":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
