package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

type memObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps documents in process memory. It backs local development
// without a MinIO server and the unit tests; validation is identical to the
// MinIO store.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memObject)}
}

func memKey(kind model.AttachmentKind, key string) string {
	return string(kind) + "/" + key
}

func (s *MemoryStore) Put(_ context.Context, kind model.AttachmentKind, r io.Reader, size int64) (string, error) {
	data, contentType, key, err := readAndValidate(r, size)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.objects[memKey(kind, key)] = memObject{data: data, contentType: contentType}
	s.mu.Unlock()

	return key, nil
}

func (s *MemoryStore) Get(_ context.Context, kind model.AttachmentKind, key string) (*Object, error) {
	s.mu.RLock()
	obj, ok := s.objects[memKey(kind, key)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, key)
	}

	return &Object{
		Reader:      io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (s *MemoryStore) Delete(_ context.Context, kind model.AttachmentKind, key string) error {
	s.mu.Lock()
	delete(s.objects, memKey(kind, key))
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored objects, used by tests to assert that
// replaced documents are released.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
