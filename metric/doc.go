// Package metric provides Prometheus metrics for the analysis service.
//
// The package wraps a private Prometheus registry so the /metrics
// endpoint exposes exactly what the service registers: core pipeline
// metrics (analysis counts, durations, frame count distributions),
// NATS connection metrics, and whatever domain components add through
// the MetricsRegistrar interface.
//
// A typical wiring:
//
//	registry := metric.NewMetricsRegistry()
//	registry.CoreMetrics().RecordAnalysis("MPEG-1 Layer III", "ok")
//
//	server := metric.NewServer(9090, "/metrics", registry, tlsCfg)
//	go server.Start()
package metric
