package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjpierce/mp3-file-analysis/analyzer"
	gateway "github.com/mrjpierce/mp3-file-analysis/gateway/http"
	"github.com/mrjpierce/mp3-file-analysis/health"
	"github.com/mrjpierce/mp3-file-analysis/metric"
	"github.com/mrjpierce/mp3-file-analysis/parser"
	"github.com/mrjpierce/mp3-file-analysis/testutil"
)

func newTestServer(t *testing.T, mutate func(*gateway.Config), opts ...gateway.Option) *gateway.Server {
	t.Helper()

	registry, err := parser.NewDefaultRegistry()
	require.NoError(t, err)

	svc, err := analyzer.NewService(testutil.NewMemStore(), registry)
	require.NoError(t, err)

	cfg := gateway.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	srv, err := gateway.NewServer(cfg, svc, opts...)
	require.NoError(t, err)
	return srv
}

func postRaw(t *testing.T, srv *gateway.Server, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAnalyze_RawBody(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postRaw(t, srv, testutil.Frames(7))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var result analyzer.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 7, result.FrameCount)
	assert.NotEmpty(t, result.Format)
	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, int64(len(testutil.Frames(7))), result.SizeBytes)
}

func TestAnalyze_MultipartUpload(t *testing.T) {
	srv := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "song.mp3")
	require.NoError(t, err)
	_, err = part.Write(testutil.Frames(4))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result analyzer.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 4, result.FrameCount)
}

func TestAnalyze_MultipartWithoutFileField(t *testing.T) {
	srv := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "song.mp3"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_EmptyBody(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postRaw(t, srv, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "empty_file", body["kind"])
	assert.Equal(t, "empty file", body["error"])
}

func TestAnalyze_UnsupportedFormat(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postRaw(t, srv, []byte("this is not an audio file at all, just some text padding"))
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "unsupported_format", decodeError(t, rec)["kind"])
}

func TestAnalyze_TruncatedFrame(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postRaw(t, srv, testutil.StandardFrame()[:200])
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "truncated_frame", decodeError(t, rec)["kind"])
}

func TestAnalyze_RejectsOversizeByContentLength(t *testing.T) {
	srv := newTestServer(t, func(cfg *gateway.Config) {
		cfg.MaxUploadBytes = 1000
	})

	rec := postRaw(t, srv, testutil.Frames(5))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "upload_too_large", decodeError(t, rec)["kind"])
}

func TestAnalyze_RejectsOversizeWhileStreaming(t *testing.T) {
	srv := newTestServer(t, func(cfg *gateway.Config) {
		cfg.MaxUploadBytes = 1000
	})

	// MultiReader hides the length so the request carries no
	// Content-Length and the cap is enforced during the stream.
	body := io.MultiReader(bytes.NewReader(testutil.Frames(5)))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	errBody := decodeError(t, rec)
	assert.Equal(t, "upload_too_large", errBody["kind"])
	assert.Equal(t, "upload exceeds size limit", errBody["error"])
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/analyze", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyze_EchoesRequestID(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(testutil.Frames(1)))
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied-id", rec.Header().Get("X-Request-ID"))
}

type staticChecker struct {
	name   string
	status health.Status
}

func (c staticChecker) Name() string { return c.name }

func (c staticChecker) Check(context.Context) health.Status { return c.status }

func TestHealthz_Healthy(t *testing.T) {
	monitor := health.NewMonitor()
	srv := newTestServer(t, nil, gateway.WithHealth(monitor,
		staticChecker{name: "store", status: health.NewHealthy("store", "reachable")}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status health.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.True(t, status.IsHealthy())
}

func TestHealthz_UnhealthyComponentFailsProbe(t *testing.T) {
	monitor := health.NewMonitor()
	srv := newTestServer(t, nil, gateway.WithHealth(monitor,
		staticChecker{name: "store", status: health.NewHealthy("store", "reachable")},
		staticChecker{name: "nats", status: health.NewUnhealthy("nats", "connection refused")}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var status health.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.True(t, status.IsUnhealthy())
	assert.Len(t, status.SubStatuses, 2)
}

func TestHealthz_DegradedStillAnswers200(t *testing.T) {
	monitor := health.NewMonitor()
	srv := newTestServer(t, nil, gateway.WithHealth(monitor,
		staticChecker{name: "nats", status: health.NewDegraded("nats", "reconnecting")}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStats_CountsRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	postRaw(t, srv, testutil.Frames(2))
	postRaw(t, srv, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats gateway.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, uint64(2), stats.RequestsTotal)
	assert.Equal(t, uint64(1), stats.RequestsSuccess)
	assert.Equal(t, uint64(1), stats.RequestsFailed)
	assert.Equal(t, uint64(len(testutil.Frames(2))), stats.BytesReceived)
}

func TestMetricsEndpointMounted(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	srv := newTestServer(t, nil,
		gateway.WithMetrics(registry.CoreMetrics()),
		gateway.WithMetricsRegistry(registry))

	postRaw(t, srv, testutil.Frames(2))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mp3analysis_pipeline_analyses_total")
}

func TestCORS_PreflightAllowedOrigin(t *testing.T) {
	srv := newTestServer(t, func(cfg *gateway.Config) {
		cfg.EnableCORS = true
		cfg.AllowedOrigins = []string{"https://studio.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/analyze", nil)
	req.Header.Set("Origin", "https://studio.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://studio.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DeniedOriginGetsNoHeaders(t *testing.T) {
	srv := newTestServer(t, func(cfg *gateway.Config) {
		cfg.EnableCORS = true
		cfg.AllowedOrigins = []string{"https://studio.example.com"}
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(testutil.Frames(1)))
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewServer_Validation(t *testing.T) {
	_, err := gateway.NewServer(gateway.DefaultConfig(), nil)
	require.Error(t, err)

	registry, err := parser.NewDefaultRegistry()
	require.NoError(t, err)
	svc, err := analyzer.NewService(testutil.NewMemStore(), registry)
	require.NoError(t, err)

	cfg := gateway.DefaultConfig()
	cfg.Port = -1
	_, err = gateway.NewServer(cfg, svc)
	require.Error(t, err)
}

func TestStartStop(t *testing.T) {
	srv := newTestServer(t, func(cfg *gateway.Config) {
		cfg.Port = 18099
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(context.Background()) }()

	// Give the listener a moment to bind before shutting down.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, srv.Stop(context.Background()))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}

	// Stopping twice is a no-op.
	require.NoError(t, srv.Stop(context.Background()))
}
