package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Loader handles configuration loading with layers and overrides.
// Layers are merged in order, later layers winning; environment
// variables override everything.
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: true,
		envPrefix:  "MP3ANALYSIS",
	}
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	cfg := l.getDefaults()

	for _, path := range l.layers {
		rawConfig, err := l.loadRawJSON(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg = l.mergeFromMap(cfg, rawConfig)
	}

	l.applyEnvOverrides(cfg)

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// getDefaults returns the default configuration. Defaults describe a
// single-node development setup; production deployments override via
// file layers.
func (l *Loader) getDefaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "mp3-file-analysis",
			Environment: "dev",
		},
		NATS: NATSConfig{
			URLs:          []string{"nats://localhost:4222"},
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Storage: StorageConfig{
			Bucket:      "UPLOADS",
			Description: "uploaded audio files pending analysis",
			TTL:         24 * time.Hour,
			Replicas:    1,
			KeyPrefix:   "uploads/",
		},
		Analyzer: AnalyzerConfig{
			MaxValidateFrames:  10,
			ConsistencyFrames:  5,
			AlignmentTolerance: 3,
		},
		HTTP: HTTPConfig{
			Port:            8080,
			MaxUploadBytes:  512 << 20,
			ReadTimeout:     5 * time.Minute,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadRawJSON loads configuration from a JSON file as a map
func (l *Loader) loadRawJSON(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := validateJSONDepth(data); err != nil {
		return nil, fmt.Errorf("invalid JSON structure: %w", err)
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return nil, err
	}

	l.parseDurations(rawConfig)
	return rawConfig, nil
}

// mergeFromMap merges configuration from a raw map, only overriding
// fields present in the map
func (l *Loader) mergeFromMap(base *Config, override map[string]any) *Config {
	if override == nil {
		return base
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base
	}
	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return base
	}

	mergedMap := l.deepMergeMaps(baseMap, override)

	mergedJSON, err := json.Marshal(mergedMap)
	if err != nil {
		return base
	}
	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return base
	}
	return &merged
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func (l *Loader) deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any)

	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, baseOk := base[k].(map[string]any); baseOk {
			if overrideMap, overrideOk := v.(map[string]any); overrideOk {
				result[k] = l.deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// parseDurations converts duration strings to nanoseconds so the JSON
// unmarshal into time.Duration fields works. File layers may write
// "30s" or "14d" where the struct wants nanoseconds.
func (l *Loader) parseDurations(data map[string]any) {
	if nats, ok := data["nats"].(map[string]any); ok {
		parseDurationKey(nats, "reconnect_wait")
	}
	if storage, ok := data["storage"].(map[string]any); ok {
		parseDurationKey(storage, "ttl")
	}
	if httpCfg, ok := data["http"].(map[string]any); ok {
		parseDurationKey(httpCfg, "read_timeout")
		parseDurationKey(httpCfg, "write_timeout")
		parseDurationKey(httpCfg, "shutdown_timeout")
	}
}

func parseDurationKey(section map[string]any, key string) {
	if s, ok := section[key].(string); ok {
		if d, err := parseDurationWithDays(s); err == nil {
			section[key] = d.Nanoseconds()
		}
	}
}

// parseDurationWithDays parses durations that may include days (e.g., "14d")
func parseDurationWithDays(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days := strings.TrimSuffix(s, "d")
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if val := l.getenv("SERVICE_NAME"); val != "" {
		cfg.Service.Name = val
	}
	if val := l.getenv("SERVICE_INSTANCE_ID"); val != "" {
		cfg.Service.InstanceID = val
	}
	if val := l.getenv("SERVICE_ENVIRONMENT"); val != "" {
		cfg.Service.Environment = val
	}

	if val := l.getenv("NATS_URLS"); val != "" {
		cfg.NATS.URLs = strings.Split(val, ",")
	}
	if val := l.getenv("NATS_USERNAME"); val != "" {
		cfg.NATS.Username = val
	}
	if val := l.getenv("NATS_PASSWORD"); val != "" {
		cfg.NATS.Password = val
	}
	if val := l.getenv("NATS_TOKEN"); val != "" {
		cfg.NATS.Token = val
	}

	if val := l.getenv("STORAGE_BUCKET"); val != "" {
		cfg.Storage.Bucket = val
	}
	if val := l.getenv("STORAGE_TTL"); val != "" {
		if d, err := parseDurationWithDays(val); err == nil {
			cfg.Storage.TTL = d
		}
	}

	if val := l.getenv("HTTP_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.HTTP.Port = port
		}
	}
	if val := l.getenv("HTTP_MAX_UPLOAD_BYTES"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.HTTP.MaxUploadBytes = n
		}
	}

	if val := l.getenv("METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.Port = port
		}
	}

	if val := l.getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := l.getenv("LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}

// getenv reads a prefixed environment variable, rejecting oversized
// values.
func (l *Loader) getenv(suffix string) string {
	val := os.Getenv(l.envPrefix + "_" + suffix)
	if len(val) > maxEnvVarLen {
		return ""
	}
	return val
}
