// Package objectstore implements the storage.BlobStore interface on
// NATS JetStream ObjectStore.
package objectstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/metric"
	"github.com/mrjpierce/mp3-file-analysis/natsclient"
	"github.com/mrjpierce/mp3-file-analysis/pkg/retry"
	"github.com/mrjpierce/mp3-file-analysis/storage"
)

// Store is a storage.BlobStore backed by a JetStream ObjectStore
// bucket. Safe for concurrent use; all state lives server-side.
type Store struct {
	obs     jetstream.ObjectStore
	bucket  string
	metrics *storeMetrics
}

var _ storage.BlobStore = (*Store)(nil)

// New creates the bucket if needed and returns a Store on it. Bucket
// creation is retried: on startup the JetStream subsystem may lag the
// core connection by a few hundred milliseconds.
func New(ctx context.Context, client *natsclient.Client, cfg Config,
	registry *metric.MetricsRegistry) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Store", "New", "bucket name required")
	}

	obs, err := retry.DoWithResult(ctx, retry.Quick(), func() (jetstream.ObjectStore, error) {
		return client.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
			Bucket:      cfg.Bucket,
			Description: cfg.Description,
			MaxBytes:    cfg.MaxBytes,
			TTL:         cfg.TTL,
			Replicas:    cfg.Replicas,
		})
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "Store", "New",
			fmt.Sprintf("create bucket %s", cfg.Bucket))
	}

	metrics, err := newStoreMetrics(registry, cfg.Bucket)
	if err != nil {
		return nil, err
	}

	return &Store{
		obs:     obs,
		bucket:  cfg.Bucket,
		metrics: metrics,
	}, nil
}

// validateKey rejects keys the bucket cannot address
func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(
			fmt.Errorf("empty key"), "Store", "validateKey", "key required")
	}
	if strings.ContainsAny(key, " \t\n\r") {
		return errors.WrapInvalid(
			fmt.Errorf("key %q contains whitespace", key), "Store", "validateKey", "key validation")
	}
	return nil
}

// Put stores the bytes read from r under key
func (s *Store) Put(ctx context.Context, key string, r io.Reader) error {
	if err := validateKey(key); err != nil {
		return err
	}

	start := time.Now()
	_, err := s.obs.Put(ctx, jetstream.ObjectMeta{Name: key}, r)
	s.metrics.recordWriteLatency(time.Since(start).Seconds())

	if err != nil {
		s.metrics.recordError("put")
		return errors.WrapTransient(err, "Store", "Put",
			fmt.Sprintf("store object %s", key))
	}

	s.metrics.recordWriteOp()
	s.refreshUsage(ctx)
	return nil
}

// GetReader returns a fresh reader over the object at key
func (s *Store) GetReader(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.obs.Get(ctx, key)
	s.metrics.recordReadLatency(time.Since(start).Seconds())

	if err != nil {
		if stderrors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, errors.WrapInvalid(errors.ErrKeyNotFound, "Store", "GetReader",
				fmt.Sprintf("object %s", key))
		}
		s.metrics.recordError("get")
		return nil, errors.WrapTransient(err, "Store", "GetReader",
			fmt.Sprintf("retrieve object %s", key))
	}

	s.metrics.recordReadOp()
	return result, nil
}

// Size returns the stored object's size in bytes
func (s *Store) Size(ctx context.Context, key string) (int64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}

	info, err := s.obs.GetInfo(ctx, key)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrObjectNotFound) {
			return 0, errors.WrapInvalid(errors.ErrKeyNotFound, "Store", "Size",
				fmt.Sprintf("object %s", key))
		}
		s.metrics.recordError("size")
		return 0, errors.WrapTransient(err, "Store", "Size",
			fmt.Sprintf("stat object %s", key))
	}

	return int64(info.Size), nil
}

// List returns all keys with the given prefix in lexicographic order
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	infos, err := s.obs.List(ctx)
	s.metrics.recordListLatency(time.Since(start).Seconds())

	if err != nil {
		if stderrors.Is(err, jetstream.ErrNoObjectsFound) {
			s.metrics.recordListOp()
			return []string{}, nil
		}
		s.metrics.recordError("list")
		return nil, errors.WrapTransient(err, "Store", "List", "list objects")
	}

	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		if strings.HasPrefix(info.Name, prefix) {
			keys = append(keys, info.Name)
		}
	}
	sort.Strings(keys)

	s.metrics.recordListOp()
	return keys, nil
}

// Delete removes the object at key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	start := time.Now()
	err := s.obs.Delete(ctx, key)
	s.metrics.recordDeleteLatency(time.Since(start).Seconds())

	if err != nil {
		if stderrors.Is(err, jetstream.ErrObjectNotFound) {
			return nil
		}
		s.metrics.recordError("delete")
		return errors.WrapTransient(err, "Store", "Delete",
			fmt.Sprintf("delete object %s", key))
	}

	s.metrics.recordDeleteOp()
	s.refreshUsage(ctx)
	return nil
}

// refreshUsage updates the bucket state gauges. Failures are ignored;
// usage gauges are advisory.
func (s *Store) refreshUsage(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	status, err := s.obs.Status(ctx)
	if err != nil {
		return
	}
	s.metrics.updateStorageBytes(float64(status.Size()))
}
