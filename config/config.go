package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/mrjpierce/mp3-file-analysis/pkg/tlsutil"
)

// Config represents the complete application configuration.
type Config struct {
	Service  ServiceConfig  `json:"service"`
	NATS     NATSConfig     `json:"nats"`
	Storage  StorageConfig  `json:"storage"`
	Analyzer AnalyzerConfig `json:"analyzer"`
	HTTP     HTTPConfig     `json:"http"`
	Metrics  MetricsConfig  `json:"metrics"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServiceConfig defines the service identity used in logs, metrics,
// and health output.
type ServiceConfig struct {
	Name        string `json:"name"`
	InstanceID  string `json:"instance_id,omitempty"` // e.g. "prod-1", "dev-local"
	Environment string `json:"environment,omitempty"` // "prod", "dev", "test"
}

// NATSConfig defines NATS connection settings.
type NATSConfig struct {
	URLs          []string      `json:"urls,omitempty"`
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
}

// StorageConfig defines the upload object store bucket.
type StorageConfig struct {
	Bucket      string        `json:"bucket"`
	Description string        `json:"description,omitempty"`
	MaxBytes    int64         `json:"max_bytes,omitempty"` // 0 = unlimited
	TTL         time.Duration `json:"ttl,omitempty"`       // 0 = keep forever
	Replicas    int           `json:"replicas,omitempty"`
	KeyPrefix   string        `json:"key_prefix,omitempty"`
}

// AnalyzerConfig tunes the corruption screen. Zero frame caps mean
// the parser defaults; a screen capped at zero frames would check
// nothing.
type AnalyzerConfig struct {
	// MaxValidateFrames caps how many leading frames the screen walks
	MaxValidateFrames int `json:"max_validate_frames,omitempty"`

	// ConsistencyFrames is how many frames must agree on encoding
	// parameters before the stream is trusted
	ConsistencyFrames int `json:"consistency_frames,omitempty"`

	// AlignmentTolerance is the accepted drift in bytes between a
	// frame's declared length and where the next sync is found
	AlignmentTolerance int `json:"alignment_tolerance,omitempty"`
}

// HTTPConfig defines the gateway listener.
type HTTPConfig struct {
	Port            int                  `json:"port"`
	MaxUploadBytes  int64                `json:"max_upload_bytes,omitempty"`
	ReadTimeout     time.Duration        `json:"read_timeout,omitempty"`
	WriteTimeout    time.Duration        `json:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration        `json:"shutdown_timeout,omitempty"`
	EnableCORS      bool                 `json:"enable_cors,omitempty"`
	AllowedOrigins  []string             `json:"allowed_origins,omitempty"`
	TLS             tlsutil.ServerConfig `json:"tls,omitempty"`
}

// MetricsConfig defines the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool                 `json:"enabled"`
	Port    int                  `json:"port,omitempty"`
	Path    string               `json:"path,omitempty"`
	TLS     tlsutil.ServerConfig `json:"tls,omitempty"`
}

// LoggingConfig defines structured logging output.
type LoggingConfig struct {
	Level  string `json:"level,omitempty"`  // debug, info, warn, error
	Format string `json:"format,omitempty"` // json, text
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically updates the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return errors.New("service.name is required")
	}
	c.Service.Name = strings.ToLower(c.Service.Name)
	if !isValidSubjectPart(c.Service.Name) {
		return fmt.Errorf(
			"service.name %q is not valid for NATS subjects (must be alphanumeric with dots, dashes, underscores)",
			c.Service.Name,
		)
	}

	if len(c.NATS.URLs) == 0 {
		return errors.New("nats.urls is required")
	}

	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required")
	}
	if c.Storage.Replicas < 0 || c.Storage.Replicas > 5 {
		return fmt.Errorf("storage.replicas %d out of range (0-5)", c.Storage.Replicas)
	}

	if c.Analyzer.MaxValidateFrames < 0 {
		return errors.New("analyzer.max_validate_frames cannot be negative")
	}
	if c.Analyzer.ConsistencyFrames < 0 {
		return errors.New("analyzer.consistency_frames cannot be negative")
	}
	if c.Analyzer.MaxValidateFrames > 0 && c.Analyzer.ConsistencyFrames > c.Analyzer.MaxValidateFrames {
		return fmt.Errorf("analyzer.consistency_frames %d exceeds max_validate_frames %d",
			c.Analyzer.ConsistencyFrames, c.Analyzer.MaxValidateFrames)
	}
	if c.Analyzer.AlignmentTolerance < 0 {
		return errors.New("analyzer.alignment_tolerance cannot be negative")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	if c.HTTP.MaxUploadBytes < 0 {
		return errors.New("http.max_upload_bytes cannot be negative")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port %d out of range", c.Metrics.Port)
		}
		if c.Metrics.Port == c.HTTP.Port {
			return fmt.Errorf("metrics.port %d collides with http.port", c.Metrics.Port)
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q invalid (debug, info, warn, error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format %q invalid (json, text)", c.Logging.Format)
	}

	if err := c.validateTLS("http.tls", c.HTTP.TLS); err != nil {
		return err
	}
	return c.validateTLS("metrics.tls", c.Metrics.TLS)
}

// validateTLS checks cert material exists for an enabled listener.
func (c *Config) validateTLS(section string, tls tlsutil.ServerConfig) error {
	if !tls.Enabled {
		return nil
	}
	if tls.CertFile == "" {
		return fmt.Errorf("%s.cert_file is required when TLS is enabled", section)
	}
	if tls.KeyFile == "" {
		return fmt.Errorf("%s.key_file is required when TLS is enabled", section)
	}
	if _, err := os.Stat(tls.CertFile); err != nil {
		return fmt.Errorf("%s.cert_file: %w", section, err)
	}
	if _, err := os.Stat(tls.KeyFile); err != nil {
		return fmt.Errorf("%s.key_file: %w", section, err)
	}
	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("%s.min_version %q invalid (must be \"1.2\" or \"1.3\")", section, tls.MinVersion)
	}
}

// isValidSubjectPart checks if a string is valid for use in NATS
// subjects. Valid characters are alphanumeric, dots, dashes, and
// underscores.
func isValidSubjectPart(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
			r != '-' && r != '_' && r != '.' {
			return false
		}
	}
	return true
}
