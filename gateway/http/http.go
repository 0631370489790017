// Package http provides the HTTP boundary for the analysis service:
// file uploads in, frame counts out, plus health and runtime stats.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mrjpierce/mp3-file-analysis/analyzer"
	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/health"
	"github.com/mrjpierce/mp3-file-analysis/metric"
	"github.com/mrjpierce/mp3-file-analysis/pkg/tlsutil"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Port to listen on
	Port int `json:"port"`

	// MaxUploadBytes caps the size of a single upload. Requests whose
	// body exceeds the cap are rejected with 413.
	MaxUploadBytes int64 `json:"max_upload_bytes"`

	// ReadTimeout bounds reading the full request, body included
	ReadTimeout time.Duration `json:"read_timeout"`

	// WriteTimeout bounds writing the response
	WriteTimeout time.Duration `json:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// EnableCORS turns on CORS headers for browser clients
	EnableCORS bool `json:"enable_cors"`

	// AllowedOrigins lists origins allowed when CORS is enabled.
	// Empty means same-origin only.
	AllowedOrigins []string `json:"allowed_origins"`

	// TLS configures optional HTTPS serving
	TLS tlsutil.ServerConfig `json:"tls"`
}

// DefaultConfig returns the default HTTP configuration.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		MaxUploadBytes:  512 << 20, // 512MB
		ReadTimeout:     5 * time.Minute,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Stats is a snapshot of the server's request counters.
type Stats struct {
	RequestsTotal   uint64 `json:"requests_total"`
	RequestsSuccess uint64 `json:"requests_success"`
	RequestsFailed  uint64 `json:"requests_failed"`
	BytesReceived   uint64 `json:"bytes_received"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
}

// Server is the HTTP gateway. It accepts uploads on /v1/analyze,
// hands them to the analysis service, and maps pipeline failures to
// client responses. Upload bodies stream straight into the pipeline;
// the gateway never buffers a whole file.
type Server struct {
	config   Config
	service  *analyzer.Service
	monitor  *health.Monitor
	checkers []health.Checker
	metrics  *metric.Metrics

	metricsRegistry *metric.MetricsRegistry
	logger          *slog.Logger

	httpServer *http.Server
	running    atomic.Bool
	startTime  time.Time

	requestsTotal   atomic.Uint64
	requestsSuccess atomic.Uint64
	requestsFailed  atomic.Uint64
	bytesReceived   atomic.Uint64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics wires gateway metrics recording
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealth sets the health monitor and the checkers probed by the
// /healthz endpoint
func WithHealth(monitor *health.Monitor, checkers ...health.Checker) Option {
	return func(s *Server) {
		s.monitor = monitor
		s.checkers = checkers
	}
}

// WithMetricsRegistry mounts the registry's scrape handler at /metrics
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(s *Server) { s.metricsRegistry = registry }
}

// NewServer creates the gateway over the given analysis service.
func NewServer(config Config, service *analyzer.Service, opts ...Option) (*Server, error) {
	if service == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Server", "NewServer", "analysis service required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Server", "NewServer",
			fmt.Sprintf("port %d out of range", config.Port))
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}

	s := &Server{
		config:  config,
		service: service,
		monitor: health.NewMonitor(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the server's route table. Exposed separately from
// Start so tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/stats", s.handleStats)
	if s.metricsRegistry != nil {
		mux.Handle("/metrics", s.metricsRegistry.Handler())
	}

	var handler http.Handler = mux
	if s.config.EnableCORS {
		handler = s.corsMiddleware(handler)
	}
	return handler
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Server", "Start", "gateway already running")
	}
	s.startTime = time.Now()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	tlsConfig, err := tlsutil.LoadServerTLSConfig(s.config.TLS)
	if err != nil {
		s.running.Store(false)
		return errors.WrapFatal(err, "Server", "Start", "load TLS config")
	}

	s.logger.Info("gateway listening",
		slog.String("addr", s.httpServer.Addr),
		slog.Bool("tls", tlsConfig != nil))

	if tlsConfig != nil {
		s.httpServer.TLSConfig = tlsConfig
		err = s.httpServer.ListenAndServeTLS("", "")
	} else {
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		s.running.Store(false)
		return errors.WrapTransient(err, "Server", "Start", "serve")
	}
	return nil
}

// Stop shuts the server down gracefully, waiting for in-flight
// requests up to the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer == nil {
		return nil
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.WrapTransient(err, "Server", "Stop", "shutdown")
	}
	s.logger.Info("gateway stopped")
	return nil
}

// Stats returns a snapshot of the request counters.
func (s *Server) Stats() Stats {
	var uptime int64
	if !s.startTime.IsZero() {
		uptime = int64(time.Since(s.startTime).Seconds())
	}
	return Stats{
		RequestsTotal:   s.requestsTotal.Load(),
		RequestsSuccess: s.requestsSuccess.Load(),
		RequestsFailed:  s.requestsFailed.Load(),
		BytesReceived:   s.bytesReceived.Load(),
		UptimeSeconds:   uptime,
	}
}

// handleAnalyze accepts an upload on POST, runs the analysis
// pipeline, and responds with the frame count. The body is either a
// multipart form with a "file" field or the raw file bytes.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}
	s.requestsTotal.Add(1)

	requestID := getOrGenerateRequestID(r)
	w.Header().Set("X-Request-ID", requestID)
	log := s.logger.With(slog.String("http_request_id", requestID))

	if r.ContentLength > s.config.MaxUploadBytes {
		s.requestsFailed.Add(1)
		s.writeError(w, r, http.StatusRequestEntityTooLarge, errors.ErrUploadTooLarge.Error(), "upload_too_large")
		return
	}

	upload, cleanup, err := s.uploadReader(r)
	if err != nil {
		s.requestsFailed.Add(1)
		log.Warn("rejected upload", slog.String("error", err.Error()))
		s.writeError(w, r, http.StatusBadRequest, sanitizeError(err), "bad_request")
		return
	}
	defer cleanup()

	capped := &cappedReader{reader: upload, max: s.config.MaxUploadBytes}
	result, err := s.service.ProcessUpload(r.Context(), capped)
	s.bytesReceived.Add(uint64(capped.consumed))

	if capped.exceeded {
		s.requestsFailed.Add(1)
		s.writeError(w, r, http.StatusRequestEntityTooLarge, errors.ErrUploadTooLarge.Error(), "upload_too_large")
		return
	}
	if err != nil {
		s.requestsFailed.Add(1)
		status := statusForError(err)
		log.Warn("analysis failed",
			slog.String("error", err.Error()),
			slog.String("kind", errors.Kind(err)),
			slog.Int("status", status))
		s.writeError(w, r, status, sanitizeError(err), errors.Kind(err))
		return
	}

	s.requestsSuccess.Add(1)
	s.writeJSON(w, http.StatusOK, result)
}

// handleHealthz probes every registered checker and reports the
// aggregate. Degraded still answers 200 so load balancers keep
// routing while the service limps.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	health.RunCheckers(ctx, s.monitor, s.checkers...)

	aggregate := s.monitor.AggregateHealth("mp3-file-analysis")
	if s.metrics != nil {
		s.metrics.RecordHealthStatus("gateway", !aggregate.IsUnhealthy())
	}

	status := http.StatusOK
	if aggregate.IsUnhealthy() {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, aggregate)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.Stats())
}

// uploadReader extracts the file stream from the request. Multipart
// bodies are walked part by part so large files never land in a
// temp buffer; anything else is treated as the raw file bytes.
func (s *Server) uploadReader(r *http.Request) (io.Reader, func(), error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if contentType != "" && err != nil {
		return nil, nil, fmt.Errorf("malformed content type %q: %w", contentType, err)
	}

	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, fmt.Errorf("read multipart body: %w", err)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, nil, errors.New("multipart body has no file field")
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read multipart body: %w", err)
		}
		if part.FormName() == "file" {
			return part, func() { part.Close() }, nil
		}
		part.Close()
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, _ *http.Request, status int, message, kind string) {
	if s.metrics != nil {
		s.metrics.RecordError("gateway", kind)
	}
	s.writeJSON(w, status, map[string]any{
		"error":  message,
		"kind":   kind,
		"status": status,
	})
}

// statusForError maps a pipeline failure to an HTTP status. Every
// frame-level kind is a client problem; only infrastructure failures
// reach the 5xx range.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errors.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errors.ErrEmptyFile), errors.Is(err, errors.ErrFileTooSmall):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.IsInvalid(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.IsTransient(err):
		if strings.Contains(strings.ToLower(err.Error()), "timeout") {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeError strips internal wrapping context from an error before
// it reaches the client. Classified errors expose only the underlying
// sentinel's text; anything else gets a generic message.
func sanitizeError(err error) string {
	var ce *errors.ClassifiedError
	if errors.As(err, &ce) {
		switch ce.Class {
		case errors.ErrorInvalid:
			if kind := errors.Kind(err); kind != "internal" && kind != "transient" {
				return sentinelText(err)
			}
			return "invalid request"
		case errors.ErrorTransient:
			return "service temporarily unavailable"
		default:
			return "internal server error"
		}
	}
	if errors.IsInvalid(err) {
		return sentinelText(err)
	}
	if errors.IsTransient(err) {
		return "service temporarily unavailable"
	}
	return err.Error()
}

// sentinelText returns the bare text of the frame-level sentinel in
// err's chain, without component and method prefixes.
func sentinelText(err error) string {
	for _, sentinel := range []error{
		errors.ErrEmptyFile,
		errors.ErrFileTooSmall,
		errors.ErrCorruptedHeader,
		errors.ErrTruncatedFrame,
		errors.ErrFrameAlignment,
		errors.ErrCorruptedFrame,
		errors.ErrNoValidFrames,
		errors.ErrUnsupportedFormat,
		errors.ErrUploadTooLarge,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "invalid request"
}

// getOrGenerateRequestID returns the client's X-Request-ID header or
// a fresh random identifier.
func getOrGenerateRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

// cappedReader hands bytes through until the cap is crossed, then
// fails the read and remembers that it did. The caller distinguishes
// an oversize upload from a pipeline failure by checking exceeded.
type cappedReader struct {
	reader   io.Reader
	max      int64
	consumed int64
	exceeded bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.exceeded {
		return 0, errors.ErrUploadTooLarge
	}
	n, err := c.reader.Read(p)
	c.consumed += int64(n)
	if c.consumed > c.max {
		c.exceeded = true
		return n, errors.ErrUploadTooLarge
	}
	return n, err
}

// SourceErr reports the client-side failure that interrupted the
// stream, if any. The analyzer consults it to keep a client's
// oversize upload out of the infrastructure failure metrics.
func (c *cappedReader) SourceErr() error {
	if c.exceeded {
		return errors.ErrUploadTooLarge
	}
	return nil
}
