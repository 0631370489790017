//go:build integration

package natsclient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_ConnectToRealNATS connects against a containerized server
func TestIntegration_ConnectToRealNATS(t *testing.T) {
	tc := NewTestClient(t)

	assert.True(t, tc.IsReady())
	assert.Equal(t, StatusConnected, tc.Client.Status())

	rtt, err := tc.Client.RTT()
	require.NoError(t, err)
	assert.Greater(t, rtt, time.Duration(0))

	status := tc.Client.GetStatus()
	assert.Equal(t, StatusConnected, status.Status)
	assert.Equal(t, int32(0), status.FailureCount)
}

// TestIntegration_ObjectStoreRoundTrip exercises bucket creation and reopen
func TestIntegration_ObjectStoreRoundTrip(t *testing.T) {
	tc := NewTestClient(t, WithJetStream())
	ctx := context.Background()

	obs, err := tc.Client.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket: "ANALYSIS-TEST",
	})
	require.NoError(t, err)

	_, err = obs.PutBytes(ctx, "probe", []byte("hello"))
	require.NoError(t, err)

	reopened, err := tc.Client.ObjectStore(ctx, "ANALYSIS-TEST")
	require.NoError(t, err)

	data, err := reopened.GetBytes(ctx, "probe")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	// Creating an existing bucket opens it instead of failing
	again, err := tc.Client.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket: "ANALYSIS-TEST",
	})
	require.NoError(t, err)
	require.NotNil(t, again)
}

// TestIntegration_MissingBucket maps the JetStream error to the domain error
func TestIntegration_MissingBucket(t *testing.T) {
	tc := NewTestClient(t, WithJetStream())

	_, err := tc.Client.ObjectStore(context.Background(), "NO-SUCH-BUCKET")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "NO-SUCH-BUCKET"))
}

// TestIntegration_CloseDrains verifies clean shutdown against a live server
func TestIntegration_CloseDrains(t *testing.T) {
	tc := NewTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, tc.Client.Close(ctx))
	assert.Equal(t, StatusDisconnected, tc.Client.Status())
}
