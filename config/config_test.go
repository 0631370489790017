package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "mp3-file-analysis", cfg.Service.Name)
	assert.Equal(t, []string{"nats://localhost:4222"}, cfg.NATS.URLs)
	assert.Equal(t, "UPLOADS", cfg.Storage.Bucket)
	assert.Equal(t, 24*time.Hour, cfg.Storage.TTL)
	assert.Equal(t, 10, cfg.Analyzer.MaxValidateFrames)
	assert.Equal(t, 5, cfg.Analyzer.ConsistencyFrames)
	assert.Equal(t, 3, cfg.Analyzer.AlignmentTolerance)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FileLayerOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, "layer.json", `{
		"service": {"name": "analysis-test"},
		"http": {"port": 9000, "read_timeout": "30s"},
		"storage": {"ttl": "14d"}
	}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "analysis-test", cfg.Service.Name)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 14*24*time.Hour, cfg.Storage.TTL)

	// Untouched sections keep their defaults.
	assert.Equal(t, "UPLOADS", cfg.Storage.Bucket)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestLoad_LaterLayerWins(t *testing.T) {
	first := writeConfigFile(t, "first.json", `{"http": {"port": 9000}}`)
	second := writeConfigFile(t, "second.json", `{"http": {"port": 9001}}`)

	loader := NewLoader()
	loader.AddLayer(first)
	loader.AddLayer(second)

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.HTTP.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MP3ANALYSIS_SERVICE_NAME", "env-named")
	t.Setenv("MP3ANALYSIS_NATS_URLS", "nats://a:4222,nats://b:4222")
	t.Setenv("MP3ANALYSIS_HTTP_PORT", "8888")
	t.Setenv("MP3ANALYSIS_STORAGE_TTL", "2d")
	t.Setenv("MP3ANALYSIS_LOG_LEVEL", "debug")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "env-named", cfg.Service.Name)
	assert.Equal(t, []string{"nats://a:4222", "nats://b:4222"}, cfg.NATS.URLs)
	assert.Equal(t, 8888, cfg.HTTP.Port)
	assert.Equal(t, 48*time.Hour, cfg.Storage.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	loader := NewLoader()
	loader.AddLayer(filepath.Join(t.TempDir(), "missing.json"))
	_, err := loader.Load()
	require.Error(t, err)
}

func TestLoad_NonJSONPathRejected(t *testing.T) {
	path := writeConfigFile(t, "config.yaml.json", `{}`)
	require.NoError(t, os.Rename(path, path[:len(path)-5]))

	loader := NewLoader()
	loader.AddLayer(path[:len(path)-5])
	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON")
}

func TestValidate(t *testing.T) {
	base := func() *Config { return NewLoader().getDefaults() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.Service.Name = "" },
			wantErr: "service.name",
		},
		{
			name:    "service name with spaces",
			mutate:  func(c *Config) { c.Service.Name = "my service" },
			wantErr: "NATS subjects",
		},
		{
			name:    "no nats urls",
			mutate:  func(c *Config) { c.NATS.URLs = nil },
			wantErr: "nats.urls",
		},
		{
			name:    "missing bucket",
			mutate:  func(c *Config) { c.Storage.Bucket = "" },
			wantErr: "storage.bucket",
		},
		{
			name:    "replicas out of range",
			mutate:  func(c *Config) { c.Storage.Replicas = 7 },
			wantErr: "storage.replicas",
		},
		{
			name: "zero screen cap means parser defaults",
			mutate: func(c *Config) {
				c.Analyzer.MaxValidateFrames = 0
			},
		},
		{
			name:    "negative consistency frames",
			mutate:  func(c *Config) { c.Analyzer.ConsistencyFrames = -1 },
			wantErr: "consistency_frames",
		},
		{
			name: "consistency exceeds screen cap",
			mutate: func(c *Config) {
				c.Analyzer.MaxValidateFrames = 3
				c.Analyzer.ConsistencyFrames = 5
			},
			wantErr: "consistency_frames",
		},
		{
			name:    "negative tolerance",
			mutate:  func(c *Config) { c.Analyzer.AlignmentTolerance = -1 },
			wantErr: "alignment_tolerance",
		},
		{
			name:    "http port zero",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: "http.port",
		},
		{
			name: "metrics port collides",
			mutate: func(c *Config) {
				c.Metrics.Port = c.HTTP.Port
			},
			wantErr: "collides",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name: "tls enabled without cert",
			mutate: func(c *Config) {
				c.HTTP.TLS.Enabled = true
			},
			wantErr: "cert_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NormalizesServiceName(t *testing.T) {
	cfg := NewLoader().getDefaults()
	cfg.Service.Name = "MP3-Analysis"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mp3-analysis", cfg.Service.Name)
}

func TestSafeConfig(t *testing.T) {
	original := NewLoader().getDefaults()
	sc := NewSafeConfig(original)

	// Get returns an independent copy.
	copy1 := sc.Get()
	copy1.HTTP.Port = 1
	assert.Equal(t, 8080, sc.Get().HTTP.Port)

	// Update rejects invalid configs.
	bad := NewLoader().getDefaults()
	bad.Service.Name = ""
	require.Error(t, sc.Update(bad))
	assert.Equal(t, "mp3-file-analysis", sc.Get().Service.Name)

	// Valid updates land.
	good := NewLoader().getDefaults()
	good.HTTP.Port = 8099
	require.NoError(t, sc.Update(good))
	assert.Equal(t, 8099, sc.Get().HTTP.Port)

	require.Error(t, sc.Update(nil))
}

func TestClone_NilReceiver(t *testing.T) {
	var c *Config
	clone := c.Clone()
	require.NotNil(t, clone)
}

func TestValidateJSONDepth(t *testing.T) {
	assert.NoError(t, validateJSONDepth([]byte(`{"a": {"b": [1, 2, 3]}}`)))

	deep := ""
	for i := 0; i < maxJSONDepth+1; i++ {
		deep += "["
	}
	assert.Error(t, validateJSONDepth([]byte(deep)))

	// Braces inside strings do not count toward depth.
	assert.NoError(t, validateJSONDepth([]byte(`{"a": "{{{{{{"}`)))
}

func TestParseDurationWithDays(t *testing.T) {
	d, err := parseDurationWithDays("3d")
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, d)

	d, err = parseDurationWithDays("90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseDurationWithDays("xd")
	require.Error(t, err)
}
