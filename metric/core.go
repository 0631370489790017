package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the service-level metrics shared across the
// analysis pipeline. Domain components register their own collectors
// through the MetricsRegistry.
type Metrics struct {
	// Analysis pipeline
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	FramesCounted    prometheus.Histogram
	UploadBytes      prometheus.Histogram
	ErrorsTotal      *prometheus.CounterVec

	// Service state
	ServiceStatus     *prometheus.GaugeVec
	HealthCheckStatus *prometheus.GaugeVec

	// NATS connection
	NATSConnected      prometheus.Gauge
	NATSRTT            prometheus.Gauge
	NATSReconnects     prometheus.Counter
	NATSCircuitBreaker prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all service metrics
func NewMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mp3analysis",
				Subsystem: "pipeline",
				Name:      "analyses_total",
				Help:      "Total number of analysis requests by format and outcome",
			},
			[]string{"format", "outcome"},
		),

		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mp3analysis",
				Subsystem: "pipeline",
				Name:      "duration_seconds",
				Help:      "Analysis stage duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		FramesCounted: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "mp3analysis",
				Subsystem: "pipeline",
				Name:      "frames_counted",
				Help:      "Distribution of frame counts per analyzed file",
				Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
			},
		),

		UploadBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "mp3analysis",
				Subsystem: "pipeline",
				Name:      "upload_bytes",
				Help:      "Distribution of uploaded file sizes in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mp3analysis",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by kind",
			},
			[]string{"service", "kind"},
		),

		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mp3analysis",
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"service"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mp3analysis",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"check"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mp3analysis",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSRTT: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mp3analysis",
				Subsystem: "nats",
				Name:      "rtt_milliseconds",
				Help:      "NATS round-trip time in milliseconds",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mp3analysis",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),

		NATSCircuitBreaker: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mp3analysis",
				Subsystem: "nats",
				Name:      "circuit_breaker",
				Help:      "NATS circuit breaker status (0=closed, 1=open)",
			},
		),
	}
}

// RecordAnalysis increments the analysis counter for a format and outcome
func (c *Metrics) RecordAnalysis(format, outcome string) {
	c.AnalysesTotal.WithLabelValues(format, outcome).Inc()
}

// RecordStageDuration records how long an analysis stage took
func (c *Metrics) RecordStageDuration(stage string, duration time.Duration) {
	c.AnalysisDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordFrameCount records the frame count of a completed analysis
func (c *Metrics) RecordFrameCount(frames int) {
	c.FramesCounted.Observe(float64(frames))
}

// RecordUploadSize records the size of an uploaded file
func (c *Metrics) RecordUploadSize(bytes int64) {
	c.UploadBytes.Observe(float64(bytes))
}

// RecordError increments the error counter for a service and error kind
func (c *Metrics) RecordError(service, kind string) {
	c.ErrorsTotal.WithLabelValues(service, kind).Inc()
}

// RecordServiceStatus updates the service status gauge
func (c *Metrics) RecordServiceStatus(service string, status int) {
	c.ServiceStatus.WithLabelValues(service).Set(float64(status))
}

// RecordHealthStatus updates a health check status gauge
func (c *Metrics) RecordHealthStatus(check string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthCheckStatus.WithLabelValues(check).Set(value)
}

// RecordNATSStatus updates the NATS connection status gauge
func (c *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.NATSConnected.Set(value)
}

// RecordNATSRTT updates the NATS round-trip time gauge
func (c *Metrics) RecordNATSRTT(rtt time.Duration) {
	c.NATSRTT.Set(float64(rtt.Milliseconds()))
}

// RecordNATSReconnect increments the reconnection counter
func (c *Metrics) RecordNATSReconnect() {
	c.NATSReconnects.Inc()
}

// RecordCircuitBreakerState updates the circuit breaker status gauge
func (c *Metrics) RecordCircuitBreakerState(open bool) {
	value := 0.0
	if open {
		value = 1.0
	}
	c.NATSCircuitBreaker.Set(value)
}
