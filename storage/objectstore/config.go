package objectstore

import "time"

// Config holds configuration for the JetStream-backed blob store.
type Config struct {
	// Bucket is the JetStream ObjectStore bucket name
	Bucket string `json:"bucket"`

	// Description is stored on the bucket when it is created
	Description string `json:"description,omitempty"`

	// MaxBytes caps the bucket size (0 = unlimited)
	MaxBytes int64 `json:"max_bytes,omitempty"`

	// TTL expires stored uploads after this duration (0 = keep forever).
	// Analyzed files are read back within seconds, so short TTLs keep
	// the bucket from accumulating abandoned uploads.
	TTL time.Duration `json:"ttl,omitempty"`

	// Replicas is the JetStream replica count for the bucket
	Replicas int `json:"replicas,omitempty"`
}

// DefaultConfig returns the default blob store configuration
func DefaultConfig() Config {
	return Config{
		Bucket:      "UPLOADS",
		Description: "uploaded audio files pending analysis",
		TTL:         24 * time.Hour,
		Replicas:    1,
	}
}
