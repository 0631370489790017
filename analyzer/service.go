// Package analyzer orchestrates the analysis of one uploaded file:
// persist, detect, validate, count.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/metric"
	"github.com/mrjpierce/mp3-file-analysis/mpeg"
	"github.com/mrjpierce/mp3-file-analysis/parser"
	"github.com/mrjpierce/mp3-file-analysis/storage"
)

// Result is the outcome of a completed analysis.
type Result struct {
	// RequestID is the generated identifier for this upload
	RequestID string `json:"request_id"`

	// Format is the detected format label
	Format string `json:"format"`

	// FrameCount is the number of audio frames, summary frames excluded
	FrameCount int `json:"frame_count"`

	// SizeBytes is the size of the uploaded file
	SizeBytes int64 `json:"size_bytes"`
}

// Service runs the analysis pipeline. The upload is persisted first,
// then read back through three independent readers: one for format
// detection, one for the corruption screen, one for the full count.
// The pipeline never holds a whole file in memory.
type Service struct {
	store    storage.BlobStore
	registry *parser.Registry
	metrics  *metric.Metrics
	logger   *slog.Logger

	keyPrefix string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics wires pipeline metrics recording
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithKeyPrefix changes the storage key prefix for uploads
func WithKeyPrefix(prefix string) Option {
	return func(s *Service) { s.keyPrefix = prefix }
}

// NewService creates an analysis service over the given store and
// parser registry.
func NewService(store storage.BlobStore, registry *parser.Registry, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Service", "NewService", "blob store required")
	}
	if registry == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Service", "NewService", "parser registry required")
	}

	s := &Service{
		store:     store,
		registry:  registry,
		logger:    slog.Default(),
		keyPrefix: "uploads/",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ProcessUpload persists the upload and runs the full pipeline over
// it. The stored object remains after analysis; bucket TTL handles
// cleanup.
func (s *Service) ProcessUpload(ctx context.Context, r io.Reader) (*Result, error) {
	requestID := uuid.NewString()
	key := s.keyPrefix + requestID

	log := s.logger.With(slog.String("request_id", requestID))

	start := time.Now()
	if err := s.store.Put(ctx, key, r); err != nil {
		// A store write can fail because the upload stream itself broke,
		// not because the store did. Ask the reader before blaming the
		// infrastructure so a rejected upload never counts as transient.
		if src, ok := r.(interface{ SourceErr() error }); ok {
			if srcErr := src.SourceErr(); srcErr != nil {
				wrapped := errors.WrapInvalid(srcErr, "Service", "ProcessUpload", "persist upload")
				s.recordFailure("unknown", wrapped)
				return nil, wrapped
			}
		}
		wrapped := errors.WrapTransient(err, "Service", "ProcessUpload", "persist upload")
		s.recordFailure("unknown", wrapped)
		return nil, wrapped
	}
	s.recordStage("store", time.Since(start))

	size, err := s.store.Size(ctx, key)
	if err != nil {
		wrapped := errors.WrapTransient(err, "Service", "ProcessUpload", "stat upload")
		s.recordFailure("unknown", wrapped)
		return nil, wrapped
	}
	if s.metrics != nil {
		s.metrics.RecordUploadSize(size)
	}

	format, p, err := s.resolveParser(ctx, key, size)
	if err != nil {
		s.recordFailure(format.Label(), err)
		return nil, err
	}

	log.Debug("format detected",
		slog.String("format", format.Label()),
		slog.Int64("size_bytes", size))

	if err := s.validate(ctx, key, p); err != nil {
		s.recordFailure(format.Label(), err)
		return nil, err
	}

	count, err := s.count(ctx, key, p)
	if err != nil {
		s.recordFailure(format.Label(), err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordAnalysis(format.Label(), "ok")
		s.metrics.RecordFrameCount(count)
	}

	log.Info("analysis complete",
		slog.String("format", format.Label()),
		slog.Int("frame_count", count),
		slog.Int64("size_bytes", size))

	return &Result{
		RequestID:  requestID,
		Format:     format.Label(),
		FrameCount: count,
		SizeBytes:  size,
	}, nil
}

// resolveParser detects the stored upload's format and finds the
// parser registered for it. Detection failure on a zero-byte upload is
// an empty-file error, not an unsupported format.
func (s *Service) resolveParser(
	ctx context.Context, key string, size int64) (mpeg.FormatDescriptor, parser.Parser, error) {
	reader, err := s.store.GetReader(ctx, key)
	if err != nil {
		return mpeg.FormatDescriptor{}, nil, errors.WrapTransient(err, "Service", "resolveParser", "open upload")
	}
	defer reader.Close()

	start := time.Now()
	format := mpeg.DetectFormat(reader)
	s.recordStage("detect", time.Since(start))

	if !format.Known() {
		if size == 0 {
			return format, nil, errors.WrapInvalid(errors.ErrEmptyFile,
				"Service", "resolveParser", "zero-byte upload")
		}
		return format, nil, errors.WrapInvalid(errors.ErrUnsupportedFormat,
			"Service", "resolveParser", format.Label())
	}

	p, ok := s.registry.Lookup(format)
	if !ok {
		return format, nil, errors.WrapInvalid(errors.ErrUnsupportedFormat,
			"Service", "resolveParser",
			fmt.Sprintf("no parser registered for %s", format.Label()))
	}

	return format, p, nil
}

// validate runs the corruption screen over a fresh reader
func (s *Service) validate(ctx context.Context, key string, p parser.Parser) error {
	reader, err := s.store.GetReader(ctx, key)
	if err != nil {
		return errors.WrapTransient(err, "Service", "validate", "open upload")
	}
	defer reader.Close()

	start := time.Now()
	err = p.Validate(ctx, reader)
	s.recordStage("validate", time.Since(start))
	return err
}

// count walks a fresh reader to exhaustion
func (s *Service) count(ctx context.Context, key string, p parser.Parser) (int, error) {
	reader, err := s.store.GetReader(ctx, key)
	if err != nil {
		return 0, errors.WrapTransient(err, "Service", "count", "open upload")
	}
	defer reader.Close()

	start := time.Now()
	count, err := p.CountFrames(ctx, reader)
	s.recordStage("count", time.Since(start))
	return count, err
}

func (s *Service) recordStage(stage string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordStageDuration(stage, d)
	}
}

func (s *Service) recordFailure(format string, err error) {
	if s.metrics == nil {
		return
	}
	kind := errors.Kind(err)
	s.metrics.RecordAnalysis(format, kind)
	s.metrics.RecordError("analyzer", kind)
}
