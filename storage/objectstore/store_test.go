package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/metric"
)

func TestValidateKey(t *testing.T) {
	assert.NoError(t, validateKey("uploads/abc-123"))
	assert.NoError(t, validateKey("a"))

	err := validateKey("")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	err = validateKey("has space")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	err = validateKey("has\nnewline")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "UPLOADS", cfg.Bucket)
	assert.NotZero(t, cfg.TTL)
	assert.Equal(t, 1, cfg.Replicas)
}

func TestNewStoreMetrics_NilRegistry(t *testing.T) {
	m, err := newStoreMetrics(nil, "UPLOADS")
	require.NoError(t, err)
	assert.Nil(t, m)

	// Nil metrics must be safe to record against
	m.recordReadOp()
	m.recordWriteOp()
	m.recordDeleteOp()
	m.recordListOp()
	m.recordReadLatency(0.01)
	m.recordWriteLatency(0.01)
	m.recordDeleteLatency(0.01)
	m.recordListLatency(0.01)
	m.recordError("get")
	m.updateStorageBytes(100)
}

func TestNewStoreMetrics_Registers(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	m, err := newStoreMetrics(registry, "UPLOADS")
	require.NoError(t, err)
	require.NotNil(t, m)

	m.recordWriteOp()
	m.recordError("put")

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["mp3analysis_blobstore_write_operations_total"])
	assert.True(t, names["mp3analysis_blobstore_operation_errors_total"])
}

func TestNewStoreMetrics_DuplicateBucketFails(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	_, err := newStoreMetrics(registry, "UPLOADS")
	require.NoError(t, err)

	_, err = newStoreMetrics(registry, "UPLOADS")
	assert.Error(t, err)
}
