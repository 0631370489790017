// Package natsclient provides the NATS connection layer for the
// analysis service.
//
// The Client wraps a single NATS connection with a circuit breaker:
// after a threshold of consecutive connection failures the circuit
// opens and further attempts are rejected until an exponential backoff
// expires. JetStream object store buckets are opened through the
// client so every storage path shares the same connection state and
// metrics.
//
// TestClient starts a real NATS server in a container for integration
// tests; nothing in this package mocks the wire protocol.
package natsclient
