package health

import (
	"context"
	"fmt"
	"time"

	"github.com/mrjpierce/mp3-file-analysis/natsclient"
	"github.com/mrjpierce/mp3-file-analysis/storage"
)

// Checker probes one dependency and reports its status.
type Checker interface {
	Name() string
	Check(ctx context.Context) Status
}

// NATSChecker reports the NATS connection state.
type NATSChecker struct {
	client *natsclient.Client
}

// NewNATSChecker creates a checker over the given client
func NewNATSChecker(client *natsclient.Client) *NATSChecker {
	return &NATSChecker{client: client}
}

// Name returns the component name
func (c *NATSChecker) Name() string { return "nats" }

// Check reports connection health. An open circuit breaker is
// degraded rather than unhealthy: the client will recover on its own.
func (c *NATSChecker) Check(_ context.Context) Status {
	switch c.client.Status() {
	case natsclient.StatusConnected:
		return NewHealthy("nats", "connected")
	case natsclient.StatusCircuitOpen:
		return NewDegraded("nats", fmt.Sprintf("circuit open, backoff %v", c.client.Backoff()))
	case natsclient.StatusReconnecting:
		return NewDegraded("nats", "reconnecting")
	default:
		return NewUnhealthy("nats", c.client.Status().String())
	}
}

// StoreChecker probes blob store reachability with a bounded list call.
type StoreChecker struct {
	store   storage.BlobStore
	timeout time.Duration
}

// NewStoreChecker creates a checker over the given store
func NewStoreChecker(store storage.BlobStore) *StoreChecker {
	return &StoreChecker{store: store, timeout: 2 * time.Second}
}

// Name returns the component name
func (c *StoreChecker) Name() string { return "store" }

// Check lists the bucket to verify reachability
func (c *StoreChecker) Check(ctx context.Context) Status {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.store.List(probeCtx, ""); err != nil {
		return NewUnhealthy("store", "list probe failed")
	}
	return NewHealthy("store", "reachable")
}

// RunCheckers runs every checker and folds the results into a monitor.
func RunCheckers(ctx context.Context, monitor *Monitor, checkers ...Checker) {
	for _, checker := range checkers {
		monitor.Update(checker.Name(), checker.Check(ctx))
	}
}
