// Package storage defines the pluggable blob storage interface the
// analysis pipeline persists uploads through.
package storage

import (
	"context"
	"io"
)

// BlobStore is the backend interface for uploaded file storage.
//
// Keys are opaque strings; the analyzer derives them from request IDs.
// Values are raw uploaded bytes. GetReader may be called any number of
// times for the same key, and each call returns an independent reader
// positioned at the start of the object. The analysis pipeline relies
// on this to run format detection, validation and counting as three
// separate passes over one stored upload.
//
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Put stores the bytes read from r under key, replacing any
	// existing object
	Put(ctx context.Context, key string, r io.Reader) error

	// GetReader returns a fresh reader over the object at key. The
	// caller owns the reader and must close it. A missing key fails
	// with a key-not-found error.
	GetReader(ctx context.Context, key string) (io.ReadCloser, error)

	// Size returns the stored object's size in bytes
	Size(ctx context.Context, key string) (int64, error)

	// List returns all keys with the given prefix in lexicographic
	// order. An empty prefix lists everything.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object at key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
}
