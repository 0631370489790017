package objectstore

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrjpierce/mp3-file-analysis/metric"
)

// storeMetrics holds Prometheus metrics for blob store operations.
// All methods are nil-receiver safe so the store works without a
// registry (tests, tooling).
type storeMetrics struct {
	readOps   prometheus.Counter
	writeOps  prometheus.Counter
	deleteOps prometheus.Counter
	listOps   prometheus.Counter

	readLatency   prometheus.Histogram
	writeLatency  prometheus.Histogram
	deleteLatency prometheus.Histogram
	listLatency   prometheus.Histogram

	errors *prometheus.CounterVec

	storageBytes prometheus.Gauge
}

// newStoreMetrics creates and registers blob store metrics with the provided registry.
func newStoreMetrics(registry *metric.MetricsRegistry, bucket string) (*storeMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	constLabels := prometheus.Labels{"bucket": bucket}
	latencyBuckets := []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0}

	m := &storeMetrics{
		readOps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "read_operations_total",
			Help:        "Total number of read operations",
			ConstLabels: constLabels,
		}),

		writeOps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "write_operations_total",
			Help:        "Total number of write operations",
			ConstLabels: constLabels,
		}),

		deleteOps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "delete_operations_total",
			Help:        "Total number of delete operations",
			ConstLabels: constLabels,
		}),

		listOps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "list_operations_total",
			Help:        "Total number of list operations",
			ConstLabels: constLabels,
		}),

		readLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "read_duration_seconds",
			Help:        "Read operation duration in seconds",
			ConstLabels: constLabels,
			Buckets:     latencyBuckets,
		}),

		writeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "write_duration_seconds",
			Help:        "Write operation duration in seconds",
			ConstLabels: constLabels,
			Buckets:     latencyBuckets,
		}),

		deleteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "delete_duration_seconds",
			Help:        "Delete operation duration in seconds",
			ConstLabels: constLabels,
			Buckets:     latencyBuckets,
		}),

		listLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "list_duration_seconds",
			Help:        "List operation duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "operation_errors_total",
			Help:        "Total number of operation errors",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		storageBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "mp3analysis",
			Subsystem:   "blobstore",
			Name:        "storage_bytes",
			Help:        "Storage bytes used",
			ConstLabels: constLabels,
		}),
	}

	prefix := "blobstore_" + bucket

	if err := registry.RegisterCounter(prefix, "read_ops", m.readOps); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "write_ops", m.writeOps); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "delete_ops", m.deleteOps); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "list_ops", m.listOps); err != nil {
		return nil, err
	}

	if err := registry.RegisterHistogram(prefix, "read_latency", m.readLatency); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram(prefix, "write_latency", m.writeLatency); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram(prefix, "delete_latency", m.deleteLatency); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram(prefix, "list_latency", m.listLatency); err != nil {
		return nil, err
	}

	if err := registry.RegisterCounterVec(prefix, "errors", m.errors); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "storage_bytes", m.storageBytes); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *storeMetrics) recordReadOp() {
	if m != nil {
		m.readOps.Inc()
	}
}

func (m *storeMetrics) recordWriteOp() {
	if m != nil {
		m.writeOps.Inc()
	}
}

func (m *storeMetrics) recordDeleteOp() {
	if m != nil {
		m.deleteOps.Inc()
	}
}

func (m *storeMetrics) recordListOp() {
	if m != nil {
		m.listOps.Inc()
	}
}

func (m *storeMetrics) recordReadLatency(seconds float64) {
	if m != nil {
		m.readLatency.Observe(seconds)
	}
}

func (m *storeMetrics) recordWriteLatency(seconds float64) {
	if m != nil {
		m.writeLatency.Observe(seconds)
	}
}

func (m *storeMetrics) recordDeleteLatency(seconds float64) {
	if m != nil {
		m.deleteLatency.Observe(seconds)
	}
}

func (m *storeMetrics) recordListLatency(seconds float64) {
	if m != nil {
		m.listLatency.Observe(seconds)
	}
}

func (m *storeMetrics) recordError(operation string) {
	if m != nil {
		m.errors.WithLabelValues(operation).Inc()
	}
}

func (m *storeMetrics) updateStorageBytes(bytes float64) {
	if m != nil {
		m.storageBytes.Set(bytes)
	}
}
