// Package storage holds the BlobStore interface that decouples the
// analysis pipeline from its storage backend.
//
// The objectstore subpackage provides the production implementation on
// NATS JetStream ObjectStore. Tests substitute in-memory
// implementations; the pipeline only ever sees the interface.
package storage
