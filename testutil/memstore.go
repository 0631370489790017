package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/storage"
)

// MemStore is an in-memory storage.BlobStore for tests. Every
// GetReader call returns an independent reader over a snapshot of the
// stored bytes, matching the contract the production store provides.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailPut, when set, makes every Put fail with this error
	FailPut error
	// FailGet, when set, makes every GetReader fail with this error
	FailGet error
}

var _ storage.BlobStore = (*MemStore)(nil)

// NewMemStore returns an empty in-memory blob store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

// Put stores the bytes read from r under key.
func (s *MemStore) Put(_ context.Context, key string, r io.Reader) error {
	if s.FailPut != nil {
		return s.FailPut
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

// GetReader returns a fresh reader over the object at key.
func (s *MemStore) GetReader(_ context.Context, key string) (io.ReadCloser, error) {
	if s.FailGet != nil {
		return nil, s.FailGet
	}

	s.mu.RLock()
	data, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return nil, errors.WrapInvalid(errors.ErrKeyNotFound, "MemStore", "GetReader",
			fmt.Sprintf("object %s", key))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Size returns the stored object's size in bytes.
func (s *MemStore) Size(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	data, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return 0, errors.WrapInvalid(errors.ErrKeyNotFound, "MemStore", "Size",
			fmt.Sprintf("object %s", key))
	}
	return int64(len(data)), nil
}

// List returns all keys with the given prefix in lexicographic order.
func (s *MemStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the object at key. Missing keys are ignored.
func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len reports how many objects the store holds.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
