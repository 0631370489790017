// Package tlsutil provides TLS configuration loading for the HTTP
// surfaces of the service.
package tlsutil

import (
	"crypto/tls"

	"github.com/mrjpierce/mp3-file-analysis/errors"
)

// ServerConfig holds TLS configuration for HTTP servers.
type ServerConfig struct {
	Enabled    bool   `json:"enabled"`
	CertFile   string `json:"cert_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty"`
	MinVersion string `json:"min_version,omitempty"` // "1.2" or "1.3"
}

// LoadServerTLSConfig creates a tls.Config for HTTP servers. Returns
// nil when TLS is disabled, which callers treat as plain HTTP.
func LoadServerTLSConfig(cfg ServerConfig) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, errors.WrapFatal(err, "tlsutil", "LoadServerTLSConfig", "load certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   parseTLSVersion(cfg.MinVersion),
	}, nil
}

// parseTLSVersion maps a config version string to a tls constant.
// Unknown values fall back to TLS 1.2.
func parseTLSVersion(version string) uint16 {
	switch version {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
