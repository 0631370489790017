// Package mp3analysis is an HTTP service that counts the audio frames
// in uploaded MP3 files.
//
// # Architecture
//
// Uploads stream through a fixed pipeline, never held whole in memory:
//
//	HTTP gateway -> object store -> detect -> validate -> count
//
// The gateway (gateway/http) accepts a file on POST /v1/analyze and
// hands it to the analyzer, which persists it to a NATS JetStream
// object store (storage/objectstore) and reads it back through three
// independent readers: one for format detection (mpeg), one for a
// bounded corruption screen, and one for the full frame count
// (parser). The frame scanner itself (stream) is an incremental
// pull-based iterator that works on arbitrary chunk boundaries, so
// results are identical whether the bytes arrive contiguously or in
// single-byte reads.
//
// Infrastructure packages follow the same shape across the codebase:
// classified errors (errors), a private Prometheus registry (metric),
// a circuit-breaker NATS client (natsclient), health aggregation
// (health), and layered JSON configuration (config).
//
// The service binary lives in cmd/mp3analysis.
package mp3analysis
