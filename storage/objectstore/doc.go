// Package objectstore stores uploaded files in a NATS JetStream
// ObjectStore bucket.
//
// The Store implements storage.BlobStore. Each GetReader call opens an
// independent server-side reader, which is what lets the analysis
// pipeline make multiple passes over one upload without buffering it
// in memory. Uploads expire via the bucket TTL so abandoned files do
// not accumulate.
//
// Operation counts, latencies and bucket usage are registered with the
// service metrics registry per bucket.
package objectstore
